package web

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"dzkitab/internal/httpx"
	"dzkitab/internal/platform/apiclient"
	"dzkitab/internal/routing"
	"dzkitab/internal/session"
)

// page is what every template receives. Data holds the page specific part.
type page struct {
	Title     string
	Route     routing.Route
	Chrome    bool
	LoggedIn  bool
	User      apiclient.User
	Wishlist  int
	Unread    int
	Flashes   []session.Flash
	CSRFField template.HTML
	CSRFToken string
	Path      string
	Data      any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	tmpl := s.templates.Get(name)
	if tmpl == nil {
		slog.ErrorContext(r.Context(), "template not found", "name", name)
		http.Error(w, "Template introuvable", http.StatusInternalServerError)
		return
	}

	route, _ := routing.RouteFrom(r.Context())
	p := page{
		Title:     title,
		Route:     route,
		Chrome:    route.Chrome,
		CSRFField: csrf.TemplateField(r),
		CSRFToken: csrf.Token(r),
		Path:      r.URL.Path,
		Data:      data,
	}
	if cred, ok := session.CredentialFrom(r.Context()); ok {
		p.LoggedIn = true
		p.User = cred.User
	}
	if p.Chrome {
		p.Wishlist = s.wishlistCount(r)
		if p.LoggedIn {
			p.Unread = s.unreadCount(r)
		}
	}
	p.Flashes = s.sessions.Flashes(w, r)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		slog.ErrorContext(r.Context(), "template execution failed", "name", name, "error", err)
		http.Error(w, "Une erreur interne est survenue.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) unreadCount(r *http.Request) int {
	n, err := s.api.UnreadCount(r.Context())
	if err != nil {
		slog.DebugContext(r.Context(), "unread count unavailable", "error", err)
		return 0
	}
	return n
}

func (s *Server) wishlistCount(r *http.Request) int {
	ids, err := s.wishlists.IDs(r.Context(), httpx.VisitorIDFrom(r))
	if err != nil {
		return 0
	}
	return len(ids)
}

// wishlistSet returns the visitor's wishlist as a set for the card templates.
func (s *Server) wishlistSet(r *http.Request) map[string]bool {
	set := map[string]bool{}
	ids, err := s.wishlists.IDs(r.Context(), httpx.VisitorIDFrom(r))
	if err != nil {
		return set
	}
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func (s *Server) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if err := s.sessions.AddFlash(w, r, session.Flash{Type: kind, Message: msg}); err != nil {
		slog.WarnContext(r.Context(), "failed to store flash", "error", err)
	}
}

func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, to, kind, msg string) {
	s.flash(w, r, kind, msg)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// errorMessage turns an error into text fit for a flash. Backend
// validation failures come out one field per line.
func errorMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return "Erreur de connexion au serveur. Veuillez réessayer."
}

// backendStatus picks the status a page re-rendered after a failed backend call is sent with.
func backendStatus(err error) int {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}

// safeRedirect keeps redirects on this site.
func safeRedirect(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}
