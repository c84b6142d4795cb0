package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dzkitab/internal/httpx"
	"dzkitab/internal/platform/apiclient"
	"dzkitab/internal/testutil"
)

func newManager() *Manager {
	return NewManager(NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), false), false)
}

func replay(w *httptest.ResponseRecorder) *http.Request {
	return testutil.WithCookies(httptest.NewRequest(http.MethodGet, "/", nil), w)
}

func TestCredential_RoundTrip(t *testing.T) {
	m := newManager()
	token := testutil.IssueToken("secret", "1", time.Hour)

	w := httptest.NewRecorder()
	require.NoError(t, m.SetCredential(w, &apiclient.LoginResult{
		AccessToken: token,
		User:        apiclient.User{ID: 1, Email: "amina@univ-alger.dz", FirstName: "Amina"},
	}))

	cred, ok := m.Credential(replay(w))
	require.True(t, ok)
	assert.Equal(t, token, cred.Token())
	assert.Equal(t, "Amina", cred.User.DisplayName())
	assert.WithinDuration(t, time.Now().Add(time.Hour), cred.ExpiresAt, time.Minute)

	for _, c := range w.Result().Cookies() {
		switch c.Name {
		case TokenCookie:
			assert.True(t, c.HttpOnly)
			assert.InDelta(t, 3600, c.MaxAge, 60)
		case UserCookie:
			assert.False(t, c.HttpOnly)
		}
	}
}

func TestCredential_OpaqueTokenAccepted(t *testing.T) {
	m := newManager()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "opaque-token"})

	cred, ok := m.Credential(r)
	require.True(t, ok)
	assert.Equal(t, "opaque-token", cred.AccessToken)
	assert.True(t, cred.ExpiresAt.IsZero())
	assert.Zero(t, cred.User.ID)
}

func TestCredential_ExpiredTokenIsAbsent(t *testing.T) {
	m := newManager()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: TokenCookie, Value: testutil.ExpiredToken("secret", "1")})

	assert.False(t, m.HasCredential(r))
}

func TestSetCredential_RejectsEmptyAndExpired(t *testing.T) {
	m := newManager()
	assert.Error(t, m.SetCredential(httptest.NewRecorder(), &apiclient.LoginResult{}))
	assert.Error(t, m.SetCredential(httptest.NewRecorder(), &apiclient.LoginResult{
		AccessToken: testutil.ExpiredToken("secret", "1"),
	}))
}

func TestClearCredential(t *testing.T) {
	m := newManager()
	w := httptest.NewRecorder()
	m.ClearCredential(w)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Equal(t, -1, c.MaxAge, c.Name)
	}
}

func TestVisitorID_StableAcrossRequests(t *testing.T) {
	m := newManager()

	w := httptest.NewRecorder()
	first, err := m.VisitorID(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := m.VisitorID(httptest.NewRecorder(), replay(w))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFlashes_PoppedOnce(t *testing.T) {
	m := newManager()

	w := httptest.NewRecorder()
	require.NoError(t, m.AddFlash(w, httptest.NewRequest(http.MethodPost, "/login", nil), Flash{Type: FlashError, Message: "Email ou mot de passe incorrect"}))

	w2 := httptest.NewRecorder()
	got := m.Flashes(w2, replay(w))
	assert.Equal(t, []Flash{{Type: FlashError, Message: "Email ou mot de passe incorrect"}}, got)

	assert.Empty(t, m.Flashes(httptest.NewRecorder(), replay(w2)))
}

func TestMiddleware_PopulatesContext(t *testing.T) {
	m := newManager()
	token := testutil.IssueToken("secret", "1", time.Hour)

	var visitor string
	var cred Credential
	var hasCred bool
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visitor = httpx.VisitorIDFrom(r)
		cred, hasCred = CredentialFrom(r.Context())
		require.NoError(t, m.AddFlash(w, r, Flash{Type: FlashInfo, Message: "bienvenue"}))
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.NotEmpty(t, visitor)
	require.True(t, hasCred)
	assert.Equal(t, token, cred.AccessToken)

	// The flash saved by the handler must not lose the visitor id minted by the middleware.
	next := replay(w)
	again, err := m.VisitorID(httptest.NewRecorder(), next)
	require.NoError(t, err)
	assert.Equal(t, visitor, again)
	assert.Len(t, m.Flashes(httptest.NewRecorder(), next), 1)
}
