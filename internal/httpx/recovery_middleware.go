package httpx

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
)

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.ErrorContext(r.Context(), "panic recovered",
					"request_id", RequestIDFrom(r),
					"error", err,
					"stack", string(debug.Stack()),
				)

				if rw, ok := w.(*responseWriter); ok && rw.wroteHeader() {
					return
				}
				if WantsJSON(r) {
					JSONErrorWithRequest(r, w, http.StatusInternalServerError, "internal_error", "An internal error occurred", nil)
					return
				}
				http.Error(w, "Une erreur interne est survenue.", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// WantsJSON reports whether the caller expects a JSON body rather than a page.
func WantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}
