package web

import (
	"errors"
	"net/http"
	"strconv"

	"dzkitab/internal/book"
	"dzkitab/internal/catalog"
	"dzkitab/internal/httpx"
	"dzkitab/internal/routing"
)

const featuredBooks = 8

type homeData struct {
	Services   []book.Service
	Categories []string
	Books      []book.Book
	Wished     map[string]bool
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "home.html", "Accueil", homeData{
		Services:   s.books.Services,
		Categories: s.books.Categories,
		Books:      s.books.Featured(featuredBooks),
		Wished:     s.wishlistSet(r),
	})
}

type ratingLink struct {
	Rating   int
	Selected bool
	URL      string
}

type pageLink struct {
	Number  int
	Current bool
	URL     string
}

type catalogData struct {
	Filter  catalog.Filter
	Applied string
	Page    catalog.Page
	Domains []string
	Prices  []catalog.PriceBracket
	Sorts   []catalog.SortOrder
	Ratings []ratingLink
	Pages   []pageLink
	PrevURL string
	NextURL string
	Wished  map[string]bool
}

func (s *Server) catalog(w http.ResponseWriter, r *http.Request) {
	listing := catalog.FromQuery(s.books.Books, r.URL.Query())
	f := listing.Filter()
	pg := listing.Page()

	data := catalogData{
		Filter:  f,
		Applied: f.Key(),
		Page:    pg,
		Domains: s.books.Domains,
		Prices:  catalog.PriceBrackets,
		Sorts:   catalog.SortOrders,
		Wished:  s.wishlistSet(r),
	}
	for rating := 5; rating >= 1; rating-- {
		l := catalog.NewListing(nil)
		l.SetFilter(f)
		l.SetRating(rating)
		data.Ratings = append(data.Ratings, ratingLink{Rating: rating, Selected: f.Rating == rating, URL: l.PageURL(1)})
	}
	for _, n := range pg.Numbers() {
		data.Pages = append(data.Pages, pageLink{Number: n, Current: n == pg.Number, URL: listing.PageURL(n)})
	}
	if pg.HasPrev() {
		data.PrevURL = listing.PageURL(pg.Number - 1)
	}
	if pg.HasNext() {
		data.NextURL = listing.PageURL(pg.Number + 1)
	}
	s.render(w, r, http.StatusOK, "catalog.html", "Catalogue", data)
}

type wishlistData struct {
	Books  []book.Book
	Wished map[string]bool
}

func (s *Server) wishlist(w http.ResponseWriter, r *http.Request) {
	ids, err := s.wishlists.IDs(r.Context(), httpx.VisitorIDFrom(r))
	var books []book.Book
	if err == nil {
		books = s.books.Lookup(ids)
	}
	s.render(w, r, http.StatusOK, "wishlist.html", "Ma liste d'envies", wishlistData{
		Books:  books,
		Wished: s.wishlistSet(r),
	})
}

type bookData struct {
	Book    book.Book
	Related []book.Book
	Wished  map[string]bool
}

func (s *Server) bookDetails(w http.ResponseWriter, r *http.Request) {
	b, ok := s.lookupBook(w, r)
	if !ok {
		return
	}
	var related []book.Book
	for _, other := range s.books.Books {
		if other.ID != b.ID && other.Domain == b.Domain {
			related = append(related, other)
			if len(related) == 4 {
				break
			}
		}
	}
	s.render(w, r, http.StatusOK, "book.html", b.Title, bookData{Book: b, Related: related, Wished: s.wishlistSet(r)})
}

// lookupBook resolves the :id of the route or renders the not found page.
func (s *Server) lookupBook(w http.ResponseWriter, r *http.Request) (book.Book, bool) {
	b, err := s.books.Get(routing.Param(r, "id"))
	if errors.Is(err, book.ErrNotFound) {
		s.notFound(w, r)
		return book.Book{}, false
	}
	return b, err == nil
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "notfound.html", "Page introuvable", nil)
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
