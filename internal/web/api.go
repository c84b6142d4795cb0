package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"dzkitab/internal/announce"
	"dzkitab/internal/book"
	"dzkitab/internal/httpx"
)

type toggleResult struct {
	ID         string `json:"id"`
	InWishlist bool   `json:"in_wishlist"`
	Count      int    `json:"count"`
}

// toggleWishlist answers JSON to scripts and redirects plain form posts
// back to the page they came from.
func (s *Server) toggleWishlist(w http.ResponseWriter, r *http.Request) {
	form := isFormPost(r)
	id := r.PathValue("id")
	if _, err := s.books.Get(id); errors.Is(err, book.ErrNotFound) {
		if form {
			s.notFound(w, r)
			return
		}
		httpx.JSONErrorWithRequest(r, w, http.StatusNotFound, "NOT_FOUND", "Livre introuvable", nil)
		return
	}

	store, err := s.wishlists.For(r.Context(), httpx.VisitorIDFrom(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "wishlist unavailable", "error", err)
		httpx.JSONErrorWithRequest(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "Liste d'envies indisponible", nil)
		return
	}
	in, err := store.Toggle(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "wishlist toggle failed", "book_id", id, "error", err)
		httpx.JSONErrorWithRequest(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "Impossible de mettre à jour la liste d'envies", nil)
		return
	}

	if form {
		http.Redirect(w, r, safeRedirect(r.PostFormValue("next"), "/wishlist"), http.StatusSeeOther)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, toggleResult{ID: id, InWishlist: in, Count: store.Len()}, nil)
}

type previewRequest struct {
	Checks      announce.Checklist `json:"checks"`
	MarketPrice float64            `json:"market_price"`
}

// conditionPreview scores a checklist without touching any draft.
func (s *Server) conditionPreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if err := req.Checks.Validate(); err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if req.MarketPrice < 0 {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "VALIDATION_ERROR", "market_price must not be negative", []httpx.ErrorDetail{
			{Field: "market_price", Message: "must not be negative"},
		})
		return
	}
	httpx.JSONSuccessWithRequest(r, w, announce.Assess(req.Checks, req.MarketPrice), nil)
}

func isFormPost(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}
