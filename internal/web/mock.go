package web

import (
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"dzkitab/internal/httpx"
)

// The messaging and admin pages are not backed by the API yet and render
// fixed sample data.

type message struct {
	Text string
	Mine bool
	Time string
}

type conversation struct {
	ID       int
	Name     string
	Last     string
	Time     string
	Online   bool
	Messages []message
}

func sampleConversations() []conversation {
	return []conversation{
		{ID: 0, Name: "Karim Benali", Last: "Oui, il est toujours...", Time: "15:10", Online: true, Messages: []message{
			{Text: "Bonjour, le livre Artificial Intelligence est-il toujours disponible ?", Time: "15:06"},
			{Text: "Oui, il est toujours disponible. Il est en excellent état !", Mine: true, Time: "15:10"},
		}},
		{ID: 1, Name: "Sarah Mourad", Last: "Bonjour, il y a...", Time: "22:43", Messages: []message{
			{Text: "Bonjour, je voulais savoir si le livre est disponible en format numérique ?", Time: "22:43"},
		}},
		{ID: 2, Name: "Sami Kamel", Last: "Désolé je peux pas...", Time: "09:30", Online: true, Messages: []message{
			{Text: "Désolé je ne peux pas vous le vendre pour le moment.", Time: "09:30"},
		}},
	}
}

// inbox keeps each visitor's copy of the sample conversations so sent
// messages show up on reload.
type inbox struct {
	mu    sync.Mutex
	boxes map[string][]conversation
	now   func() time.Time
}

func newInbox() *inbox {
	return &inbox{boxes: make(map[string][]conversation), now: time.Now}
}

func (in *inbox) list(visitor string) []conversation {
	in.mu.Lock()
	defer in.mu.Unlock()
	box, ok := in.boxes[visitor]
	if !ok {
		box = sampleConversations()
		in.boxes[visitor] = box
	}
	out := make([]conversation, len(box))
	for i, c := range box {
		c.Messages = slices.Clone(c.Messages)
		out[i] = c
	}
	return out
}

func (in *inbox) send(visitor string, id int, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	in.list(visitor)

	in.mu.Lock()
	defer in.mu.Unlock()
	box := in.boxes[visitor]
	if id < 0 || id >= len(box) {
		return false
	}
	at := in.now().Format("15:04")
	box[id].Messages = append(box[id].Messages, message{Text: text, Mine: true, Time: at})
	box[id].Last = text
	box[id].Time = at
	return true
}

type messagesData struct {
	Conversations []conversation
	Active        conversation
}

func (s *Server) messages(w http.ResponseWriter, r *http.Request) {
	visitor := httpx.VisitorIDFrom(r)
	active := queryInt(r, "c")

	if r.Method == http.MethodPost {
		s.inbox.send(visitor, active, r.PostFormValue("message"))
		http.Redirect(w, r, r.URL.RequestURI(), http.StatusSeeOther)
		return
	}

	convs := s.inbox.list(visitor)
	if active >= len(convs) {
		active = 0
	}
	s.render(w, r, http.StatusOK, "messages.html", "Messages", messagesData{Conversations: convs, Active: convs[active]})
}

type metric struct {
	Title string
	Value int
	Trend []int
}

type topBook struct {
	Title      string
	Category   string
	Listings   int
	Percentage int
}

type categoryShare struct {
	Name       string
	Value      int
	Color      string
	Percentage int
}

type monthValue struct {
	Month string
	Value int
}

type dashboardData struct {
	Metrics    []metric
	Monthly    []monthValue
	TopBooks   []topBook
	Categories []categoryShare
}

var sampleDashboard = dashboardData{
	Metrics: []metric{
		{Title: "Utilisateurs", Value: 1389, Trend: []int{1050, 1120, 1180, 1247, 1310, 1389}},
		{Title: "Annonces", Value: 4021, Trend: []int{3456, 3598, 3712, 3845, 3892, 4021}},
		{Title: "Annonces actives", Value: 890},
		{Title: "Utilisateurs actifs (30 j)", Value: 1127},
		{Title: "Nouvelles annonces (30 j)", Value: 489},
	},
	Monthly: []monthValue{
		{"Jan", 234}, {"Fév", 267}, {"Mar", 298}, {"Avr", 312}, {"Mai", 345}, {"Juin", 378},
		{"Juil", 402}, {"Août", 389}, {"Sep", 421}, {"Oct", 445}, {"Nov", 467}, {"Déc", 489},
	},
	TopBooks: []topBook{
		{"Python Algorithms", "Informatique", 47, 98},
		{"Mathématiques 1re année", "Académique", 42, 89},
		{"Physique terminale", "Académique", 38, 81},
		{"Introduction à React", "Informatique", 35, 74},
		{"Histoire de l'Algérie", "Histoire", 31, 66},
		{"Chimie organique", "Sciences", 28, 60},
	},
	Categories: []categoryShare{
		{"Informatique", 1247, "#3B82F6", 31},
		{"Académique", 1089, "#10B981", 27},
		{"Sciences", 845, "#F59E0B", 21},
		{"Littérature", 562, "#8B5CF6", 14},
		{"Histoire", 278, "#EF4444", 7},
	},
}

func (s *Server) adminDashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "admin.html", "Tableau de bord", sampleDashboard)
}

type adminUser struct {
	ID     int
	Name   string
	Email  string
	Role   string
	Active bool
}

var sampleUsers = []adminUser{
	{1, "Ahmed Benali", "ahmed@gmail.com", "Utilisateur", true},
	{2, "Sara Kacem", "sara@gmail.com", "Admin", true},
	{3, "Yanis Omar", "yanis@gmail.com", "Utilisateur", false},
}

type adminUsersData struct {
	Query string
	Users []adminUser
}

// filterUsers matches q case-insensitively against name and email.
func filterUsers(users []adminUser, q string) []adminUser {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return users
	}
	var out []adminUser
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, u)
		}
	}
	return out
}

func (s *Server) adminUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	s.render(w, r, http.StatusOK, "admin_users.html", "Gestion des utilisateurs", adminUsersData{
		Query: q,
		Users: filterUsers(sampleUsers, q),
	})
}
