package web

import (
	"context"
	"net/http"

	"dzkitab/internal/announce"
	"dzkitab/internal/book"
	"dzkitab/internal/platform/apiclient"
	"dzkitab/internal/routing"
	"dzkitab/internal/session"
	"dzkitab/internal/wishlist"
)

// API is everything the pages need from the dz-kitab backend.
// *apiclient.Client satisfies it.
type API interface {
	announce.Backend
	UnreadCount(ctx context.Context) (int, error)
	Login(ctx context.Context, in apiclient.LoginRequest) (*apiclient.LoginResult, error)
	Register(ctx context.Context, in apiclient.RegisterRequest) error
	ContactSeller(ctx context.Context, in apiclient.ContactRequest) error
}

var _ API = (*apiclient.Client)(nil)

// Deps are the collaborators of a Server. RateLimit is optional and wraps
// the form posts that reach the backend.
type Deps struct {
	API       API
	Books     *book.Dataset
	Wishlists *wishlist.Registry
	Drafts    *announce.DraftStore
	Sessions  *session.Manager
	Templates *TemplateCache
	Table     *routing.Table
	RateLimit func(http.Handler) http.Handler
	Static    http.FileSystem
}

type Server struct {
	api       API
	books     *book.Dataset
	wishlists *wishlist.Registry
	drafts    *announce.DraftStore
	sessions  *session.Manager
	templates *TemplateCache
	table     *routing.Table
	rateLimit func(http.Handler) http.Handler
	static    http.FileSystem
	inbox     *inbox
}

func New(d Deps) *Server {
	if d.Table == nil {
		d.Table = routing.DefaultTable()
	}
	if d.RateLimit == nil {
		d.RateLimit = func(h http.Handler) http.Handler { return h }
	}
	return &Server{
		api:       d.API,
		books:     d.Books,
		wishlists: d.Wishlists,
		drafts:    d.Drafts,
		sessions:  d.Sessions,
		templates: d.Templates,
		table:     d.Table,
		rateLimit: d.RateLimit,
		static:    d.Static,
		inbox:     newInbox(),
	}
}

// Handler returns the site: JSON endpoints on the mux, every page through
// the routing table.
func (s *Server) Handler() http.Handler {
	router := routing.NewRouter(s.table, s.sessions.HasCredential)
	router.HandleFunc(routing.Home, s.home)
	router.Handle(routing.Login, s.limited(s.login))
	router.Handle(routing.Register, s.limited(s.register))
	router.HandleFunc(routing.Logout, s.logout)
	router.HandleFunc(routing.AddAnnounce, s.addAnnounce)
	router.HandleFunc(routing.EditAnnounce, s.addAnnounce)
	router.HandleFunc(routing.Messages, s.messages)
	router.HandleFunc(routing.Catalog, s.catalog)
	router.HandleFunc(routing.Wishlist, s.wishlist)
	router.HandleFunc(routing.BookDetails, s.bookDetails)
	router.Handle(routing.ContactSeller, s.limited(s.contactSeller))
	router.HandleFunc(routing.Admin, s.adminDashboard)
	router.HandleFunc(routing.AdminUsers, s.adminUsers)
	router.HandleFunc(routing.NotFound, s.notFound)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.healthz)
	mux.HandleFunc("POST /api/wishlist/{id}/toggle", s.toggleWishlist)
	mux.HandleFunc("POST /api/condition/preview", s.conditionPreview)
	if s.static != nil {
		mux.Handle("GET /static/", http.StripPrefix("/static", http.FileServer(s.static)))
	}
	mux.Handle("/", router)

	return s.sessions.Middleware(mux)
}

// limited rate limits the POSTs of a page and leaves its GETs alone.
func (s *Server) limited(h http.HandlerFunc) http.Handler {
	throttled := s.rateLimit(h)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			throttled.ServeHTTP(w, r)
			return
		}
		h(w, r)
	})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
