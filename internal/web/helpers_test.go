package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"dzkitab/internal/announce"
	"dzkitab/internal/book"
	"dzkitab/internal/platform/apiclient"
	"dzkitab/internal/session"
	"dzkitab/internal/testutil"
	"dzkitab/internal/wishlist"
)

type testSite struct {
	backend *testutil.Backend
	server  *Server
	handler http.Handler
	books   *book.Dataset
}

func newTestSite(t *testing.T, opts ...func(*Deps)) *testSite {
	t.Helper()
	be := testutil.NewBackend(t)
	client := be.Client()

	books, err := book.LoadDefault()
	require.NoError(t, err)

	tc := NewTemplateCache()
	require.NoError(t, tc.LoadEmbedded())

	files, err := wishlist.NewFileBackend(t.TempDir())
	require.NoError(t, err)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := Deps{
		API:       client,
		Books:     books,
		Wishlists: wishlist.NewRegistry(files),
		Drafts: announce.NewDraftStore(func() *announce.Wizard {
			return announce.NewWizard(client, announce.WithLogger(quiet))
		}),
		Sessions:  session.NewManager(session.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), false), false),
		Templates: tc,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	srv := New(deps)
	return &testSite{backend: be, server: srv, handler: srv.Handler(), books: books}
}

// browser replays the cookies the site sets, like a real client would.
type browser struct {
	t       *testing.T
	site    *testSite
	cookies map[string]*http.Cookie
}

func (s *testSite) browser(t *testing.T) *browser {
	return &browser{t: t, site: s, cookies: map[string]*http.Cookie{}}
}

// login plants the credential cookies a successful login would have written.
func (b *browser) login() *browser {
	b.t.Helper()
	return b.loginWithToken(b.site.backend.Token())
}

func (b *browser) loginWithToken(token string) *browser {
	user, err := json.Marshal(apiclient.User{ID: 1, Email: testutil.UserEmail, Username: "amina", FirstName: "Amina"})
	require.NoError(b.t, err)
	b.cookies[session.TokenCookie] = &http.Cookie{Name: session.TokenCookie, Value: token}
	b.cookies[session.UserCookie] = &http.Cookie{Name: session.UserCookie, Value: url.QueryEscape(string(user))}
	return b
}

func (b *browser) do(r *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	w := httptest.NewRecorder()
	b.site.handler.ServeHTTP(w, r)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	return b.do(testutil.NewFormRequest(http.MethodPost, path, form))
}

func (b *browser) postJSON(path string, body any) *httptest.ResponseRecorder {
	r := testutil.NewRequest(http.MethodPost, path, body)
	r.Header.Set("Accept", "application/json")
	return b.do(r)
}

// postMultipart sends fields plus one file per entry of files.
func (b *browser) postMultipart(path string, fields url.Values, field string, files map[string][]byte) *httptest.ResponseRecorder {
	b.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(b.t, mw.WriteField(k, v))
		}
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(b.t, err)
		_, err = fw.Write(data)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, path, &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return b.do(r)
}

func (b *browser) hasCookie(name string) bool {
	_, ok := b.cookies[name]
	return ok
}

func bodyOf(w *httptest.ResponseRecorder) string {
	return w.Body.String()
}

func countOf(body, needle string) int {
	return strings.Count(body, needle)
}
