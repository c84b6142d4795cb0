package catalog

import (
	"cmp"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"dzkitab/internal/book"
)

// Apply filters and sorts books without touching the input slice.
func Apply(books []book.Book, f Filter) []book.Book {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]book.Book, 0, len(books))
	for _, b := range books {
		if len(f.Domains) > 0 && !slices.Contains(f.Domains, b.Domain) {
			continue
		}
		if !f.Price.Contains(b.Price) {
			continue
		}
		if f.Rating > 0 && b.Rating != f.Rating {
			continue
		}
		if search != "" && !matches(b, search) {
			continue
		}
		out = append(out, b)
	}

	switch f.Sort {
	case SortPriceLow:
		slices.SortStableFunc(out, func(a, b book.Book) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceHigh:
		slices.SortStableFunc(out, func(a, b book.Book) int { return cmp.Compare(b.Price, a.Price) })
	case SortRating:
		slices.SortStableFunc(out, func(a, b book.Book) int { return cmp.Compare(b.Rating, a.Rating) })
	}
	return out
}

func matches(b book.Book, lowered string) bool {
	return strings.Contains(strings.ToLower(b.Title), lowered) ||
		strings.Contains(strings.ToLower(b.Author), lowered) ||
		strings.Contains(strings.ToLower(b.Domain), lowered)
}

// Page is one slice of a filtered listing.
type Page struct {
	Books      []book.Book
	Number     int
	TotalPages int
	Total      int
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Numbers returns 1..TotalPages for the pager.
func (p Page) Numbers() []int {
	n := make([]int, p.TotalPages)
	for i := range n {
		n[i] = i + 1
	}
	return n
}

// Paginate cuts out page n (1-based), clamped to the available range.
func Paginate(books []book.Book, n int) Page {
	total := len(books)
	pages := (total + PageSize - 1) / PageSize
	if n > pages {
		n = pages
	}
	if n < 1 {
		n = 1
	}
	start := (n - 1) * PageSize
	end := min(start+PageSize, total)
	if start > total {
		start = total
	}
	return Page{
		Books:      books[start:end],
		Number:     n,
		TotalPages: pages,
		Total:      total,
	}
}

// Listing is the stateful view behind the catalog page.
type Listing struct {
	books  []book.Book
	filter Filter
	page   int
}

func NewListing(books []book.Book) *Listing {
	return &Listing{books: books, filter: Filter{Sort: SortDefault}, page: 1}
}

func (l *Listing) Filter() Filter { return l.filter }
func (l *Listing) PageNumber() int { return l.page }

func (l *Listing) update(fn func(f *Filter)) {
	next := l.filter
	next.Domains = slices.Clone(l.filter.Domains)
	fn(&next)
	if !next.Equal(l.filter) {
		l.page = 1
	}
	l.filter = next
}

func (l *Listing) SetFilter(f Filter) {
	l.update(func(cur *Filter) { *cur = f })
}

// ToggleDomain adds or removes d from the selected domains.
func (l *Listing) ToggleDomain(d string) {
	l.update(func(f *Filter) {
		if i := slices.Index(f.Domains, d); i >= 0 {
			f.Domains = slices.Delete(f.Domains, i, i+1)
			return
		}
		f.Domains = append(f.Domains, d)
	})
}

func (l *Listing) SetPrice(b PriceBracket) {
	l.update(func(f *Filter) { f.Price = b })
}

// SetRating selects r; selecting the current rating again clears it.
func (l *Listing) SetRating(r int) {
	l.update(func(f *Filter) {
		if f.Rating == r {
			f.Rating = 0
			return
		}
		f.Rating = r
	})
}

func (l *Listing) SetSearch(q string) {
	l.update(func(f *Filter) { f.Search = q })
}

func (l *Listing) SetSort(s SortOrder) {
	l.update(func(f *Filter) { f.Sort = s })
}

// Clear drops every filter and the sort order.
func (l *Listing) Clear() {
	l.update(func(f *Filter) { *f = Filter{Sort: SortDefault} })
}

func (l *Listing) SetPage(n int) {
	l.page = max(n, 1)
}

// Results returns all matching books, unpaginated.
func (l *Listing) Results() []book.Book {
	return Apply(l.books, l.filter)
}

// Page returns the current page, clamped.
func (l *Listing) Page() Page {
	return Paginate(l.Results(), l.page)
}

// FromQuery rebuilds a listing from a catalog request. The "applied" value
// holds the filter key the previous page was rendered with; when it differs
// from the submitted filter the requested page is ignored.
func FromQuery(books []book.Book, q url.Values) *Listing {
	l := NewListing(books)
	f := FilterFromQuery(q)
	l.SetFilter(f)

	n, err := strconv.Atoi(q.Get("page"))
	if err != nil {
		return l
	}
	if applied, ok := q["applied"]; ok && applied[0] != f.Key() {
		return l
	}
	l.SetPage(n)
	return l
}

// PageURL renders the catalog link for page n under the current filter.
func (l *Listing) PageURL(n int) string {
	v := l.filter.Query()
	v.Set("page", strconv.Itoa(n))
	v.Set("applied", l.filter.Key())
	return "/catalog?" + v.Encode()
}
