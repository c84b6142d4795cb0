package book

import (
	"bytes"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/books.yaml
var defaultData []byte

// Service is a landing page service tile.
type Service struct {
	Icon        string `yaml:"icon"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Dataset is the static content the storefront renders from.
type Dataset struct {
	Domains    []string  `yaml:"domains"`
	Categories []string  `yaml:"categories"`
	Services   []Service `yaml:"services"`
	Books      []Book    `yaml:"books"`

	byID map[string]int
}

// LoadDefault parses the embedded data set.
func LoadDefault() (*Dataset, error) {
	return Parse(defaultData)
}

// Parse decodes a YAML data set and validates every book.
func Parse(raw []byte) (*Dataset, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("parse book data: %w", err)
	}

	ds.byID = make(map[string]int, len(ds.Books))
	for i, b := range ds.Books {
		if err := b.Validate(); err != nil {
			return nil, err
		}
		if _, dup := ds.byID[b.ID]; dup {
			return nil, fmt.Errorf("duplicate book id %s", b.ID)
		}
		ds.byID[b.ID] = i
	}
	return &ds, nil
}

// Get returns the book with the given id.
func (d *Dataset) Get(id string) (Book, error) {
	i, ok := d.byID[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return d.Books[i], nil
}

// Lookup resolves ids in order, skipping the ones that are unknown.
func (d *Dataset) Lookup(ids []string) []Book {
	out := make([]Book, 0, len(ids))
	for _, id := range ids {
		if b, err := d.Get(id); err == nil {
			out = append(out, b)
		}
	}
	return out
}

// Featured returns the first n books, used by the landing page.
func (d *Dataset) Featured(n int) []Book {
	if n > len(d.Books) {
		n = len(d.Books)
	}
	return d.Books[:n]
}
