package web

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dzkitab/internal/testutil"
)

func TestRouteGating(t *testing.T) {
	site := newTestSite(t)

	t.Run("anonymous visitor is sent to login", func(t *testing.T) {
		for _, path := range []string{"/addannounce", "/addannounce/3", "/message", "/book/1/contact", "/admin", "/admin/users"} {
			w := site.browser(t).get(path)
			assert.Equal(t, http.StatusSeeOther, w.Code, path)
			assert.Equal(t, "/login", w.Header().Get("Location"), path)
		}
	})

	t.Run("logged in visitor skips login and register", func(t *testing.T) {
		b := site.browser(t).login()
		for _, path := range []string{"/login", "/register"} {
			w := b.get(path)
			assert.Equal(t, http.StatusSeeOther, w.Code, path)
			assert.Equal(t, "/", w.Header().Get("Location"), path)
		}
	})

	t.Run("expired token counts as logged out", func(t *testing.T) {
		b := site.browser(t).loginWithToken(testutil.ExpiredToken(site.backend.Secret, "1"))
		w := b.get("/addannounce")
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})
}

func TestChrome(t *testing.T) {
	site := newTestSite(t)
	b := site.browser(t)

	w := b.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, bodyOf(w), `class="site-header"`)

	w = b.get("/login")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, bodyOf(w), `class="site-header"`)
	assert.Contains(t, bodyOf(w), "Se connecter")
}

func TestNotFound(t *testing.T) {
	site := newTestSite(t)
	b := site.browser(t)

	for _, path := range []string{"/nope", "/book/999", "/book/1/extra"} {
		w := b.get(path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, bodyOf(w), "404", path)
	}
}

func TestHealthz(t *testing.T) {
	site := newTestSite(t)
	w := site.browser(t).get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", bodyOf(w))
}

func TestHomeUnreadBadge(t *testing.T) {
	site := newTestSite(t)
	site.backend.SetUnread(3)

	t.Run("logged in", func(t *testing.T) {
		w := site.browser(t).login().get("/")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, bodyOf(w), `<span class="badge">3</span>`)
		assert.Contains(t, bodyOf(w), "Bonjour, Amina")
	})

	t.Run("rejected token shows no badge", func(t *testing.T) {
		w := site.browser(t).loginWithToken("not-a-jwt").get("/")
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, bodyOf(w), `<span class="badge">3</span>`)
	})

	t.Run("anonymous never asks", func(t *testing.T) {
		before := len(site.backend.Calls())
		w := site.browser(t).get("/")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, site.backend.Calls(), before)
	})
}

func TestCatalog(t *testing.T) {
	site := newTestSite(t)
	b := site.browser(t)

	t.Run("domain filter", func(t *testing.T) {
		w := b.get("/catalog?domain=Physics")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, bodyOf(w), "5 livre(s) trouvé(s)")
		assert.Contains(t, bodyOf(w), "University Physics")
		assert.NotContains(t, bodyOf(w), "Calculus")
	})

	t.Run("page kept without a filter change", func(t *testing.T) {
		w := b.get("/catalog?page=2")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, bodyOf(w), `name="page" value="2"`)
		assert.Contains(t, bodyOf(w), "20 livre(s) trouvé(s)")
	})

	t.Run("new filter resets the page", func(t *testing.T) {
		q := url.Values{"domain": {"Physics"}, "page": {"2"}, "applied": {""}}
		w := b.get("/catalog?" + q.Encode())
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, bodyOf(w), `name="page" value="1"`)
	})

	t.Run("page past the end is clamped", func(t *testing.T) {
		w := b.get("/catalog?page=99")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, bodyOf(w), `name="page" value="3"`)
	})
}

func TestBookDetails(t *testing.T) {
	site := newTestSite(t)
	w := site.browser(t).get("/book/1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, bodyOf(w), "Calculus: Early Transcendentals")
	assert.Contains(t, bodyOf(w), "750 DA")
}

func TestPageViewsDoNotCacheWishlists(t *testing.T) {
	site := newTestSite(t)

	for i := 0; i < 200; i++ {
		for _, path := range []string{"/", "/catalog", "/wishlist", "/book/1"} {
			w := site.browser(t).get(path)
			require.Equal(t, http.StatusOK, w.Code, path)
		}
	}
	assert.Equal(t, 0, site.server.wishlists.Len())

	b := site.browser(t)
	require.Equal(t, http.StatusOK, b.postJSON("/api/wishlist/2/toggle", nil).Code)
	assert.Equal(t, 1, site.server.wishlists.Len())
	assert.Contains(t, bodyOf(b.get("/wishlist")), `data-wishlist-count>1</span>`)
}

func TestWishlistToggle(t *testing.T) {
	site := newTestSite(t)
	b := site.browser(t)

	decode := func(t *testing.T, body []byte) toggleResult {
		t.Helper()
		var env struct {
			Success bool         `json:"success"`
			Data    toggleResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(body, &env))
		require.True(t, env.Success)
		return env.Data
	}

	w := b.postJSON("/api/wishlist/1/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, toggleResult{ID: "1", InWishlist: true, Count: 1}, decode(t, w.Body.Bytes()))

	w = b.get("/wishlist")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, bodyOf(w), "Calculus: Early Transcendentals")
	assert.Contains(t, bodyOf(w), `data-wishlist-count>1</span>`)

	w = b.postJSON("/api/wishlist/1/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, toggleResult{ID: "1", InWishlist: false, Count: 0}, decode(t, w.Body.Bytes()))

	t.Run("unknown book", func(t *testing.T) {
		w := b.postJSON("/api/wishlist/999/toggle", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		res := testutil.RecordHTTPResponse(w)
		assert.Equal(t, false, res.Body["success"])
	})

	t.Run("form post redirects back", func(t *testing.T) {
		w := b.post("/api/wishlist/2/toggle", url.Values{"next": {"/catalog?page=2"}})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/catalog?page=2", w.Header().Get("Location"))

		w = b.post("/api/wishlist/2/toggle", url.Values{"next": {"//evil.example"}})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/wishlist", w.Header().Get("Location"))
	})

	t.Run("wishlists are per visitor", func(t *testing.T) {
		b.post("/api/wishlist/3/toggle", url.Values{})
		w := site.browser(t).get("/wishlist")
		assert.Contains(t, bodyOf(w), `data-wishlist-count>0</span>`)
	})
}

func TestConditionPreview(t *testing.T) {
	site := newTestSite(t)
	b := site.browser(t)

	checks := map[string]map[string]bool{
		"page":        {"no_missing": true, "no_torn": true, "clean": false},
		"binding":     {"no_loose": true, "no_falling": true, "stable": true},
		"cover":       {"no_detachment": true, "clean": true, "no_scratches": true},
		"damages":     {"no_burns": true, "no_smell": true, "no_insects": true},
		"accessories": {"complete": true, "content_intact": true, "extras": false},
	}
	w := b.postJSON("/api/condition/preview", map[string]any{"checks": checks, "market_price": 1000})
	require.Equal(t, http.StatusOK, w.Code)
	res := testutil.RecordHTTPResponse(w)
	data, ok := res.Body["data"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 94, data["score"])
	assert.EqualValues(t, 940, data["price"])
	assert.Equal(t, "Très bon état", data["label"])

	t.Run("unknown check", func(t *testing.T) {
		w := b.postJSON("/api/condition/preview", map[string]any{
			"checks": map[string]map[string]bool{"page": {"shiny": true}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative market price", func(t *testing.T) {
		w := b.postJSON("/api/condition/preview", map[string]any{"checks": checks, "market_price": -5})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMessages(t *testing.T) {
	site := newTestSite(t)
	b := site.browser(t).login()

	w := b.get("/message?c=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, bodyOf(w), "Sarah Mourad")

	w = b.post("/message?c=1", url.Values{"message": {"Toujours disponible ?"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/message?c=1", w.Header().Get("Location"))

	w = b.get("/message?c=1")
	assert.Contains(t, bodyOf(w), "Toujours disponible ?")

	other := site.browser(t).login().get("/message?c=1")
	assert.NotContains(t, bodyOf(other), "Toujours disponible ?")
}

func TestAdminUsersSearch(t *testing.T) {
	site := newTestSite(t)
	b := site.browser(t).login()

	w := b.get("/admin/users?q=SARA")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, bodyOf(w), "Sara Kacem")
	assert.NotContains(t, bodyOf(w), "Yanis Omar")

	w = b.get("/admin/users?q=zzz")
	assert.Contains(t, bodyOf(w), "Aucun utilisateur trouvé.")

	w = b.get("/admin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, bodyOf(w), "1389")
}

func TestFilterUsers(t *testing.T) {
	assert.Len(t, filterUsers(sampleUsers, ""), 3)
	assert.Len(t, filterUsers(sampleUsers, "gmail"), 3)
	got := filterUsers(sampleUsers, " yanis ")
	require.Len(t, got, 1)
	assert.False(t, got[0].Active)
}
