package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"math"
	"path"
	"strconv"
	"strings"
	"sync"

	"dzkitab/internal/book"
)

//go:embed templates
var templateFS embed.FS

// TemplateCache holds one parsed template set per page. Every set carries
// the shared layout, header, footer and cards.
type TemplateCache struct {
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		cache: make(map[string]*template.Template),
		funcs: defaultFuncs(),
	}
}

func (tc *TemplateCache) AddFunc(name string, fn any) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.funcs[name] = fn
}

// LoadEmbedded parses the templates compiled into the binary.
func (tc *TemplateCache) LoadEmbedded() error {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return err
	}
	return tc.Load(sub)
}

// Load parses layout/*.html together with each pages/*.html of fsys.
func (tc *TemplateCache) Load(fsys fs.FS) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	pages, err := fs.Glob(fsys, "pages/*.html")
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("no page templates found")
	}
	for _, page := range pages {
		name := path.Base(page)
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFS(fsys, "layout/*.html", page)
		if err != nil {
			slog.Error("failed to parse template", "file", page, "error", err)
			return err
		}
		tc.cache[name] = tmpl
		slog.Debug("cached template", "name", name)
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}

func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"prevPage": func(n int) int { return n - 1 },
		"nextPage": func(n int) int { return n + 1 },
		"price":    formatPrice,
		"stars":    stars,
		"join":     strings.Join,
		"initials": initials,
		"add":      func(a, b int) int { return a + b },
		"inSet":    func(set map[string]bool, id string) bool { return set[id] },
		"card":     newBookCard,
	}
}

// bookCard is the argument of the book_card template.
type bookCard struct {
	Book      book.Book
	Wished    bool
	CSRFField template.HTML
	Next      string
}

func newBookCard(b book.Book, wished map[string]bool, p page) bookCard {
	return bookCard{Book: b, Wished: wished[b.ID], CSRFField: p.CSRFField, Next: p.Path}
}

// formatPrice renders an amount in dinars with a space every three digits.
func formatPrice(v float64) string {
	n := int64(math.Floor(v))
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String() + " DA"
	if neg {
		out = "-" + out
	}
	return out
}

// stars returns five flags, the first rating of them set.
func stars(rating int) []bool {
	out := make([]bool, 5)
	for i := range out {
		out[i] = i < rating
	}
	return out
}

func initials(name string) string {
	var out []rune
	for _, f := range strings.Fields(name) {
		out = append(out, []rune(strings.ToUpper(f))[0])
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}
