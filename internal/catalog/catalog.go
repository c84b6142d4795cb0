package catalog

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// PageSize is the number of books shown per listing page.
const PageSize = 9

// PriceBracket is one of the fixed price filters, in DZD.
type PriceBracket string

const (
	PriceAny        PriceBracket = ""
	PriceUnder500   PriceBracket = "0-500"
	Price500To1000  PriceBracket = "500-1000"
	Price1000To2000 PriceBracket = "1000-2000"
	PriceOver2000   PriceBracket = "2000+"
)

// PriceBrackets lists the selectable brackets in display order.
var PriceBrackets = []PriceBracket{PriceUnder500, Price500To1000, Price1000To2000, PriceOver2000}

// Label is the text shown next to the bracket's radio button.
func (b PriceBracket) Label() string {
	switch b {
	case PriceUnder500:
		return "< 500 DA"
	case Price500To1000:
		return "500–1000 DA"
	case Price1000To2000:
		return "1000–2000 DA"
	case PriceOver2000:
		return "> 2000 DA"
	default:
		return "Any price"
	}
}

// Contains reports whether price falls inside the bracket. The two middle
// brackets are inclusive on both ends, so 1000 belongs to both.
func (b PriceBracket) Contains(price float64) bool {
	switch b {
	case PriceUnder500:
		return price < 500
	case Price500To1000:
		return price >= 500 && price <= 1000
	case Price1000To2000:
		return price >= 1000 && price <= 2000
	case PriceOver2000:
		return price > 2000
	default:
		return true
	}
}

func parsePriceBracket(s string) PriceBracket {
	b := PriceBracket(s)
	if slices.Contains(PriceBrackets, b) {
		return b
	}
	return PriceAny
}

// SortOrder is the ordering applied after filtering.
type SortOrder string

const (
	SortDefault   SortOrder = "default"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
	SortRating    SortOrder = "rating"
)

// SortOrders lists the sort options in display order.
var SortOrders = []SortOrder{SortDefault, SortPriceLow, SortPriceHigh, SortRating}

// Label is the text shown in the sort dropdown.
func (s SortOrder) Label() string {
	switch s {
	case SortPriceLow:
		return "Price: Low to High"
	case SortPriceHigh:
		return "Price: High to Low"
	case SortRating:
		return "Rating"
	default:
		return "Default sorting"
	}
}

func parseSortOrder(s string) SortOrder {
	o := SortOrder(s)
	if slices.Contains(SortOrders, o) {
		return o
	}
	return SortDefault
}

// Filter is the full set of listing inputs except the page number.
type Filter struct {
	Domains []string
	Price   PriceBracket
	Rating  int // 0 means any rating
	Search  string
	Sort    SortOrder
}

// Equal compares two filters, ignoring domain order.
func (f Filter) Equal(o Filter) bool {
	return f.Key() == o.Key()
}

// HasDomain reports whether d is selected.
func (f Filter) HasDomain(d string) bool {
	return slices.Contains(f.Domains, d)
}

// Query encodes the filter as URL query values.
func (f Filter) Query() url.Values {
	v := url.Values{}
	domains := slices.Clone(f.Domains)
	slices.Sort(domains)
	for _, d := range domains {
		v.Add("domain", d)
	}
	if f.Price != PriceAny {
		v.Set("price", string(f.Price))
	}
	if f.Rating > 0 {
		v.Set("rating", strconv.Itoa(f.Rating))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		v.Set("q", s)
	}
	if f.Sort != "" && f.Sort != SortDefault {
		v.Set("sort", string(f.Sort))
	}
	return v
}

// Key is a canonical string for the filter, used to detect changes between requests.
func (f Filter) Key() string {
	return f.Query().Encode()
}

// FilterFromQuery parses a filter from query values, dropping unknown values.
func FilterFromQuery(q url.Values) Filter {
	f := Filter{
		Price:  parsePriceBracket(q.Get("price")),
		Search: q.Get("q"),
		Sort:   parseSortOrder(q.Get("sort")),
	}
	for _, d := range q["domain"] {
		if d != "" && !slices.Contains(f.Domains, d) {
			f.Domains = append(f.Domains, d)
		}
	}
	if r, err := strconv.Atoi(q.Get("rating")); err == nil && r >= 1 && r <= 5 {
		f.Rating = r
	}
	return f
}
