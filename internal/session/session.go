package session

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"dzkitab/internal/httpx"
	"dzkitab/internal/platform/apiclient"
)

// Cookie names shared with the rest of the dz-kitab front ends.
const (
	TokenCookie = "access_token"
	UserCookie  = "user"
	Name        = "dzkitab"
)

const (
	visitorKey        = "visitor_id"
	defaultCredential = 7 * 24 * time.Hour
)

func init() {
	gob.Register(Flash{})
}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Type    string
	Message string
}

const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Credential is the bearer token plus the profile returned at login.
type Credential struct {
	AccessToken string
	User        apiclient.User
	ExpiresAt   time.Time
}

// Token makes a Credential usable as an apiclient.TokenSource.
func (c Credential) Token() string { return c.AccessToken }

// Manager reads and writes every piece of browser state the site keeps.
type Manager struct {
	store  sessions.Store
	secure bool
	now    func() time.Time
}

// NewCookieStore builds the signed cookie store behind the dzkitab session.
func NewCookieStore(key []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	store.Options.Path = "/"
	store.Options.MaxAge = int((365 * 24 * time.Hour).Seconds())
	return store
}

func NewManager(store sessions.Store, secure bool) *Manager {
	return &Manager{store: store, secure: secure, now: time.Now}
}

// Credential reads the credential cookies. An expired token counts as absent.
func (m *Manager) Credential(r *http.Request) (Credential, bool) {
	c, err := r.Cookie(TokenCookie)
	if err != nil || c.Value == "" {
		return Credential{}, false
	}
	cred := Credential{AccessToken: c.Value}

	if exp, ok := tokenExpiry(c.Value); ok {
		if !exp.After(m.now()) {
			return Credential{}, false
		}
		cred.ExpiresAt = exp
	}

	if uc, err := r.Cookie(UserCookie); err == nil {
		if raw, err := url.QueryUnescape(uc.Value); err == nil {
			if err := json.Unmarshal([]byte(raw), &cred.User); err != nil {
				slog.DebugContext(r.Context(), "ignoring unreadable user cookie", "error", err)
			}
		}
	}
	return cred, true
}

func (m *Manager) HasCredential(r *http.Request) bool {
	_, ok := m.Credential(r)
	return ok
}

// tokenExpiry reads the exp claim without verifying the signature; the
// backend remains the only party that validates tokens.
func tokenExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// SetCredential stores a successful login in the two credential cookies.
func (m *Manager) SetCredential(w http.ResponseWriter, res *apiclient.LoginResult) error {
	if res == nil || res.AccessToken == "" {
		return errors.New("session: login result has no access token")
	}
	userJSON, err := json.Marshal(res.User)
	if err != nil {
		return fmt.Errorf("encode user cookie: %w", err)
	}

	maxAge := defaultCredential
	if exp, ok := tokenExpiry(res.AccessToken); ok {
		maxAge = exp.Sub(m.now())
	}
	if maxAge <= 0 {
		return errors.New("session: access token already expired")
	}

	http.SetCookie(w, m.cookie(TokenCookie, res.AccessToken, maxAge, true))
	http.SetCookie(w, m.cookie(UserCookie, url.QueryEscape(string(userJSON)), maxAge, false))
	return nil
}

// ClearCredential expires both credential cookies.
func (m *Manager) ClearCredential(w http.ResponseWriter) {
	for _, name := range []string{TokenCookie, UserCookie} {
		c := m.cookie(name, "", 0, false)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

func (m *Manager) cookie(name, value string, maxAge time.Duration, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: httpOnly,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// VisitorID returns the browser's stable id, minting and saving one on first visit.
func (m *Manager) VisitorID(w http.ResponseWriter, r *http.Request) (string, error) {
	s, err := m.store.Get(r, Name)
	if err != nil {
		// A cookie signed with an old key decodes with an error but still yields a fresh session.
		slog.DebugContext(r.Context(), "resetting unreadable session", "error", err)
	}
	if id, ok := s.Values[visitorKey].(string); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	s.Values[visitorKey] = id
	if err := s.Save(r, w); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return id, nil
}

// AddFlash queues a message for the next page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, f Flash) error {
	s, _ := m.store.Get(r, Name)
	s.AddFlash(f)
	return s.Save(r, w)
}

// Flashes pops all queued messages.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	s, _ := m.store.Get(r, Name)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := s.Save(r, w); err != nil {
		slog.WarnContext(r.Context(), "failed to clear flashes", "error", err)
	}
	out := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if fm, ok := f.(Flash); ok {
			out = append(out, fm)
		}
	}
	return out
}

// Middleware makes the visitor id and, when present, the credential
// available to downstream handlers and to outgoing backend calls.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := m.VisitorID(w, r)
		// Read the context after VisitorID: the session registry lives in it.
		ctx := r.Context()
		if err == nil {
			ctx = httpx.ContextWithVisitorID(ctx, id)
		} else {
			slog.WarnContext(ctx, "visitor id unavailable", "error", err)
		}
		if cred, ok := m.Credential(r); ok {
			ctx = apiclient.WithTokenSource(ctx, cred)
			ctx = withCredential(ctx, cred)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
