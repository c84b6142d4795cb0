package catalog

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dzkitab/internal/book"
)

func fixture() []book.Book {
	return []book.Book{
		{ID: "a", Title: "Calculus", Author: "Stewart", Domain: "Mathematics", Price: 750, Rating: 5},
		{ID: "b", Title: "Linear Algebra", Author: "Lay", Domain: "Mathematics", Price: 1000, Rating: 4},
		{ID: "c", Title: "Probability", Author: "Blitzstein", Domain: "Mathematics", Price: 450, Rating: 4},
		{ID: "d", Title: "University Physics", Author: "Young", Domain: "Physics", Price: 2100, Rating: 5},
		{ID: "e", Title: "Fundamentals", Author: "Halliday", Domain: "Physics", Price: 900, Rating: 4},
		{ID: "f", Title: "The Republic", Author: "Plato", Domain: "Philosophy", Price: 2000, Rating: 3},
	}
}

func ids(books []book.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

func TestPriceBracket_Contains(t *testing.T) {
	tests := []struct {
		bracket PriceBracket
		price   float64
		want    bool
	}{
		{PriceUnder500, 499.99, true},
		{PriceUnder500, 500, false},
		{Price500To1000, 500, true},
		{Price500To1000, 1000, true},
		{Price500To1000, 1000.5, false},
		{Price1000To2000, 1000, true},
		{Price1000To2000, 2000, true},
		{PriceOver2000, 2000, false},
		{PriceOver2000, 2000.01, true},
		{PriceAny, 0, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.bracket.Contains(tt.price), "%s contains %v", tt.bracket, tt.price)
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter keeps order", Filter{}, []string{"a", "b", "c", "d", "e", "f"}},
		{"domain and bracket", Filter{Domains: []string{"Mathematics"}, Price: Price500To1000}, []string{"a", "b"}},
		{"domains are OR-ed", Filter{Domains: []string{"Physics", "Philosophy"}}, []string{"d", "e", "f"}},
		{"exact rating", Filter{Rating: 4}, []string{"b", "c", "e"}},
		{"search is case-insensitive on author", Filter{Search: "PLATO"}, []string{"f"}},
		{"search matches domain", Filter{Search: "physics"}, []string{"d", "e"}},
		{"blank search ignored", Filter{Search: "   "}, []string{"a", "b", "c", "d", "e", "f"}},
		{"price low", Filter{Sort: SortPriceLow}, []string{"c", "a", "e", "b", "f", "d"}},
		{"price high", Filter{Sort: SortPriceHigh}, []string{"d", "f", "b", "e", "a", "c"}},
		{"rating is stable", Filter{Sort: SortRating}, []string{"a", "d", "b", "c", "e", "f"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(fixture(), tt.filter))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_DefaultDataset(t *testing.T) {
	ds, err := book.LoadDefault()
	require.NoError(t, err)

	got := Apply(ds.Books, Filter{Domains: []string{"Mathematics"}, Price: Price500To1000})
	require.NotEmpty(t, got)
	for _, b := range got {
		assert.Equal(t, "Mathematics", b.Domain)
		assert.GreaterOrEqual(t, b.Price, 500.0)
		assert.LessOrEqual(t, b.Price, 1000.0)
	}
}

func TestPaginate(t *testing.T) {
	books := make([]book.Book, 20)
	for i := range books {
		books[i].ID = string(rune('A' + i))
	}

	p := Paginate(books, 1)
	assert.Len(t, p.Books, PageSize)
	assert.Equal(t, 3, p.TotalPages)
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())

	p = Paginate(books, 3)
	assert.Len(t, p.Books, 2)
	assert.False(t, p.HasNext())

	p = Paginate(books, 99)
	assert.Equal(t, 3, p.Number)

	p = Paginate(nil, 2)
	assert.Equal(t, 1, p.Number)
	assert.Empty(t, p.Books)
	assert.Empty(t, p.Numbers())
}

func TestListing_FilterChangeResetsPage(t *testing.T) {
	books := make([]book.Book, 30)
	for i := range books {
		books[i] = book.Book{ID: string(rune('A' + i)), Domain: "Mathematics", Price: float64(100 * (i + 1)), Rating: 1 + i%5}
	}

	steps := []struct {
		name   string
		change func(l *Listing)
	}{
		{"domain", func(l *Listing) { l.ToggleDomain("Physics") }},
		{"price", func(l *Listing) { l.SetPrice(PriceOver2000) }},
		{"rating", func(l *Listing) { l.SetRating(3) }},
		{"search", func(l *Listing) { l.SetSearch("x") }},
		{"sort", func(l *Listing) { l.SetSort(SortPriceHigh) }},
	}
	for _, s := range steps {
		t.Run(s.name, func(t *testing.T) {
			l := NewListing(books)
			l.SetPage(3)
			require.Equal(t, 3, l.PageNumber())
			s.change(l)
			assert.Equal(t, 1, l.PageNumber())
		})
	}

	t.Run("unchanged filter keeps page", func(t *testing.T) {
		l := NewListing(books)
		l.SetPage(2)
		l.SetSort(SortDefault)
		l.SetSearch("")
		assert.Equal(t, 2, l.PageNumber())
	})
}

func TestListing_SetRatingTogglesOff(t *testing.T) {
	l := NewListing(fixture())
	l.SetRating(4)
	assert.Equal(t, 4, l.Filter().Rating)
	l.SetRating(4)
	assert.Equal(t, 0, l.Filter().Rating)
}

func TestListing_ToggleDomain(t *testing.T) {
	l := NewListing(fixture())
	l.ToggleDomain("Physics")
	l.ToggleDomain("Mathematics")
	assert.Equal(t, []string{"Physics", "Mathematics"}, l.Filter().Domains)
	l.ToggleDomain("Physics")
	assert.Equal(t, []string{"Mathematics"}, l.Filter().Domains)
}

func TestFilterFromQuery(t *testing.T) {
	q := url.Values{
		"domain": {"Physics", "Mathematics", "Physics"},
		"price":  {"500-1000"},
		"rating": {"9"},
		"sort":   {"bogus"},
		"q":      {"alg"},
	}
	want := Filter{
		Domains: []string{"Physics", "Mathematics"},
		Price:   Price500To1000,
		Search:  "alg",
		Sort:    SortDefault,
	}
	if diff := cmp.Diff(want, FilterFromQuery(q)); diff != "" {
		t.Errorf("FilterFromQuery() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromQuery_PageReset(t *testing.T) {
	books := make([]book.Book, 30)
	for i := range books {
		books[i] = book.Book{ID: string(rune('A' + i)), Domain: "Mathematics", Price: 100}
	}

	first := NewListing(books)
	first.SetPage(2)
	link, err := url.Parse(first.PageURL(3))
	require.NoError(t, err)

	t.Run("same filter honours page", func(t *testing.T) {
		l := FromQuery(books, link.Query())
		assert.Equal(t, 3, l.PageNumber())
	})

	t.Run("changed filter resets page", func(t *testing.T) {
		q := link.Query()
		q.Set("sort", string(SortPriceLow))
		l := FromQuery(books, q)
		assert.Equal(t, 1, l.PageNumber())
	})

	t.Run("direct link without applied key", func(t *testing.T) {
		l := FromQuery(books, url.Values{"page": {"2"}})
		assert.Equal(t, 2, l.PageNumber())
	})
}
