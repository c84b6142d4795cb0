package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dzkitab/internal/config"
	"dzkitab/internal/platform/apiclient"
)

// Backend is an in-process fake of the dz-kitab REST API.
type Backend struct {
	Server *httptest.Server
	Secret string

	mu            sync.Mutex
	calls         []string
	users         map[string]fakeUser
	books         map[string]apiclient.BookInfo
	announcements map[int]apiclient.Announcement
	categories    []string
	unread        int
	failUploads   map[string]bool
	uploads       int
	contacts      []apiclient.ContactRequest
	nextID        int
}

type fakeUser struct {
	password string
	user     apiclient.User
}

// Test fixtures known to every fake backend.
const (
	UserEmail    = "amina@univ-alger.dz"
	UserPassword = "motdepasse1"
	KnownISBN    = "9780132350884"
)

func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		Secret: "test-secret",
		users: map[string]fakeUser{
			UserEmail: {password: UserPassword, user: apiclient.User{
				ID: 1, Email: UserEmail, Username: "amina", FirstName: "Amina", LastName: "B.", University: "USTHB",
			}},
		},
		books: map[string]apiclient.BookInfo{
			KnownISBN: {
				ISBN: KnownISBN, Title: "Clean Code", Authors: []string{"Robert C. Martin"},
				Publisher: "Prentice Hall", PublishedDate: "2008-08-01", PageCount: 464,
				Categories: []string{"Computers"}, CoverImageURL: "https://covers.example/clean-code.jpg",
			},
		},
		announcements: map[int]apiclient.Announcement{},
		categories:    []string{"Informatique", "Mathématiques", "Physique"},
		failUploads:   map[string]bool{},
		nextID:        100,
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// Config is a development configuration pointing at the fake.
func (b *Backend) Config() *config.Config {
	return &config.Config{
		Env:        config.EnvDevelopment,
		APIBaseURL: b.Server.URL,
	}
}

func (b *Backend) Client() *apiclient.Client {
	return apiclient.New(b.Config(), b.Server.Client())
}

// Token issues a valid access token for the fixture user.
func (b *Backend) Token() string {
	return IssueToken(b.Secret, "1", time.Hour)
}

// Calls lists "METHOD /path" for every request received so far.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *Backend) SetUnread(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unread = n
}

// FailUpload makes uploads of filename answer 500.
func (b *Backend) FailUpload(filename string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failUploads[filename] = true
}

func (b *Backend) Uploads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploads
}

func (b *Backend) Contacts() []apiclient.ContactRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]apiclient.ContactRequest(nil), b.contacts...)
}

// Announcement returns a stored announcement.
func (b *Backend) Announcement(id int) (apiclient.Announcement, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.announcements[id]
	return a, ok
}

// PutAnnouncement seeds an announcement and returns its id.
func (b *Backend) PutAnnouncement(a apiclient.Announcement) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if a.ID == 0 {
		b.nextID++
		a.ID = b.nextID
	}
	b.announcements[a.ID] = a
	return a.ID
}

func (b *Backend) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.login)
	mux.HandleFunc("POST /auth/register", b.register)
	mux.HandleFunc("GET /api/notifications/unread-count", b.authed(b.unreadCount))
	mux.HandleFunc("GET /api/books/categories", b.listCategories)
	mux.HandleFunc("GET /api/books/isbn/{isbn}", b.lookupISBN)
	mux.HandleFunc("GET /api/books/announcements/{id}", b.getAnnouncement)
	mux.HandleFunc("POST /api/books/announcements", b.authed(b.createAnnouncement))
	mux.HandleFunc("PUT /api/books/announcements/{id}", b.authed(b.updateAnnouncement))
	mux.HandleFunc("POST /api/images/upload", b.authed(b.upload))
	mux.HandleFunc("POST /api/messages/contact-seller", b.authed(b.contactSeller))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls = append(b.calls, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func (b *Backend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			detail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		_, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return []byte(b.Secret), nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			detail(w, http.StatusUnauthorized, "Token invalide ou expiré")
			return
		}
		next(w, r)
	}
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var in apiclient.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		detail(w, http.StatusBadRequest, "JSON invalide")
		return
	}
	b.mu.Lock()
	u, ok := b.users[strings.ToLower(in.Email)]
	b.mu.Unlock()
	if !ok || u.password != in.Password {
		detail(w, http.StatusUnauthorized, "Email ou mot de passe incorrect")
		return
	}
	writeJSON(w, http.StatusOK, apiclient.LoginResult{
		AccessToken: IssueToken(b.Secret, strconv.Itoa(u.user.ID), time.Hour),
		TokenType:   "bearer",
		User:        u.user,
	})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var in apiclient.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		detail(w, http.StatusBadRequest, "JSON invalide")
		return
	}
	if len(in.Password) < 8 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]any{
			{"loc": []any{"body", "password"}, "msg": "String should have at least 8 characters"},
		}})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	key := strings.ToLower(in.Email)
	if _, taken := b.users[key]; taken {
		detail(w, http.StatusBadRequest, "Cet email est déjà utilisé")
		return
	}
	b.users[key] = fakeUser{password: in.Password, user: apiclient.User{
		ID: len(b.users) + 1, Email: in.Email, Username: in.Username, FirstName: in.FirstName, LastName: in.LastName,
		University: in.University, PhoneNumber: in.PhoneNumber,
	}}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Utilisateur créé"})
}

func (b *Backend) unreadCount(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	n := b.unread
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]int{"unread_count": n})
}

func (b *Backend) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.categories)
}

func (b *Backend) lookupISBN(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")
	b.mu.Lock()
	info, ok := b.books[isbn]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusOK, apiclient.ISBNLookup{Found: false, Message: "Livre non trouvé pour ISBN " + isbn})
		return
	}
	writeJSON(w, http.StatusOK, apiclient.ISBNLookup{Found: true, Book: &info})
}

func (b *Backend) getAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	a, ok := b.Announcement(id)
	if !ok {
		detail(w, http.StatusNotFound, "Annonce non trouvée")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func validatePayload(w http.ResponseWriter, p apiclient.AnnouncementPayload) bool {
	if p.Price <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]any{
			{"loc": []any{"body", "price"}, "msg": "Input should be greater than 0"},
		}})
		return false
	}
	return true
}

func (b *Backend) createAnnouncement(w http.ResponseWriter, r *http.Request) {
	var p apiclient.AnnouncementPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		detail(w, http.StatusBadRequest, "JSON invalide")
		return
	}
	if !validatePayload(w, p) {
		return
	}
	a := announcementFrom(0, p)
	a.ID = b.PutAnnouncement(a)
	writeJSON(w, http.StatusCreated, a)
}

func (b *Backend) updateAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	if _, ok := b.Announcement(id); !ok {
		detail(w, http.StatusNotFound, "Annonce non trouvée")
		return
	}
	var p apiclient.AnnouncementPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		detail(w, http.StatusBadRequest, "JSON invalide")
		return
	}
	if !validatePayload(w, p) {
		return
	}
	a := announcementFrom(id, p)
	b.PutAnnouncement(a)
	writeJSON(w, http.StatusOK, a)
}

func announcementFrom(id int, p apiclient.AnnouncementPayload) apiclient.Announcement {
	return apiclient.Announcement{
		ID:           id,
		UserID:       1,
		Price:        p.Price,
		Condition:    p.Condition,
		Status:       "Active",
		Description:  p.Description,
		Location:     p.Location,
		CustomImages: apiclient.Images(p.CustomImages),
		Book: apiclient.AnnouncedBook{
			ISBN:      p.ISBN,
			PageCount: p.PageCount,
		},
	}
}

func (b *Backend) upload(w http.ResponseWriter, r *http.Request) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		detail(w, http.StatusBadRequest, "Fichier manquant")
		return
	}
	defer f.Close()
	n, _ := io.Copy(io.Discard, f)

	b.mu.Lock()
	fail := b.failUploads[hdr.Filename]
	if !fail {
		b.uploads++
	}
	seq := b.uploads
	b.mu.Unlock()

	if fail {
		detail(w, http.StatusInternalServerError, "Erreur lors de l'upload")
		return
	}
	name := fmt.Sprintf("%d-%s", seq, hdr.Filename)
	writeJSON(w, http.StatusOK, apiclient.UploadedImage{Filename: name, URL: "/uploads/books/" + name, Size: n})
}

func (b *Backend) contactSeller(w http.ResponseWriter, r *http.Request) {
	var in apiclient.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		detail(w, http.StatusBadRequest, "JSON invalide")
		return
	}
	b.mu.Lock()
	b.contacts = append(b.contacts, in)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Message envoyé"})
}
