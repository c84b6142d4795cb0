package book

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// Status is the availability of a listed book.
type Status string

const (
	StatusAvailable  Status = "available"
	StatusOutOfStock Status = "out_of_stock"
	StatusPreOrder   Status = "pre_order"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusOutOfStock, StatusPreOrder:
		return true
	default:
		return false
	}
}

// Book represents a book shown on the storefront. Its ID is the id of the
// backend announcement that sells it.
type Book struct {
	ID              string  `json:"id" yaml:"id"`
	Title           string  `json:"title" yaml:"title"`
	Author          string  `json:"author" yaml:"author"`
	Description     string  `json:"description,omitempty" yaml:"description"`
	Price           float64 `json:"price" yaml:"price"`
	Pages           int     `json:"pages,omitempty" yaml:"pages"`
	Domain          string  `json:"domain" yaml:"domain"`
	ISBN            string  `json:"isbn,omitempty" yaml:"isbn"`
	PublicationYear int     `json:"publication_year,omitempty" yaml:"publication_year"`
	Status          Status  `json:"status" yaml:"status"`
	Image           string  `json:"image,omitempty" yaml:"image"`
	Rating          int     `json:"rating" yaml:"rating"`
}

// Validate checks the invariants of a static record.
func (b Book) Validate() error {
	if b.ID == "" {
		return errors.New("book id is required")
	}
	if _, err := b.AnnouncementID(); err != nil {
		return err
	}
	if b.Title == "" {
		return fmt.Errorf("book %s: title is required", b.ID)
	}
	if b.Rating < 0 || b.Rating > 5 {
		return fmt.Errorf("book %s: rating %d out of range 0-5", b.ID, b.Rating)
	}
	if b.Price < 0 {
		return fmt.Errorf("book %s: negative price", b.ID)
	}
	if !b.Status.Valid() {
		return fmt.Errorf("book %s: unknown status %q", b.ID, b.Status)
	}
	return nil
}

// AnnouncementID is ID as the backend's integer announcement id.
func (b Book) AnnouncementID() (int, error) {
	n, err := strconv.Atoi(b.ID)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("book %s: id must be a positive announcement id", b.ID)
	}
	return n, nil
}
