package httpx

import (
	"context"
	"net/http"
)

type contextKey string

const (
	visitorIDKey contextKey = "visitorID"
	requestIDKey contextKey = "requestID"
)

// RequestIDFrom retrieves the request id set by RequestIDMiddleware.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// VisitorIDFrom retrieves the browser's visitor id.
func VisitorIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(visitorIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithVisitorID(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, visitorIDKey, visitorID)
}
