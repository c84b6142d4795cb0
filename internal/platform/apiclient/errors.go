package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// FieldError is one entry of a backend validation failure.
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type,omitempty"`
}

// Field names the offending input, without the leading "body" segment.
func (f FieldError) Field() string {
	parts := make([]string, 0, len(f.Loc))
	for i, p := range f.Loc {
		s := fmt.Sprint(p)
		if i == 0 && (s == "body" || s == "query" || s == "path") {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
	Details []FieldError
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return e.Flatten()
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// Flatten joins validation details into one "field: msg" line each.
func (e *APIError) Flatten() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	lines := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		if field := d.Field(); field != "" {
			lines = append(lines, field+": "+d.Msg)
			continue
		}
		lines = append(lines, d.Msg)
	}
	return strings.Join(lines, "\n")
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Detail) > 0 {
		var msg string
		if json.Unmarshal(envelope.Detail, &msg) == nil {
			apiErr.Message = msg
		} else {
			_ = json.Unmarshal(envelope.Detail, &apiErr.Details)
		}
	}
	if apiErr.Message == "" && len(apiErr.Details) == 0 {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
