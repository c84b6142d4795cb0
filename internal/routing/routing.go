package routing

import (
	"strings"
)

// Access is the credential requirement of a route.
type Access int

const (
	Public Access = iota
	RequiresCredential
	RequiresNoCredential
)

func (a Access) String() string {
	switch a {
	case RequiresCredential:
		return "requires-credential"
	case RequiresNoCredential:
		return "requires-no-credential"
	default:
		return "public"
	}
}

// Route names.
const (
	Home          = "home"
	Login         = "login"
	Register      = "register"
	Logout        = "logout"
	AddAnnounce   = "addannounce"
	EditAnnounce  = "addannounce-edit"
	Messages      = "message"
	Catalog       = "catalog"
	Wishlist      = "wishlist"
	BookDetails   = "book"
	ContactSeller = "book-contact"
	Admin         = "admin"
	AdminUsers    = "admin-users"
	NotFound      = "notfound"
)

// Route is one row of the routing table. Chrome controls whether the
// header and footer are rendered around the page.
type Route struct {
	Name    string
	Pattern string
	Access  Access
	Chrome  bool
}

// Params holds the values bound to ":name" segments.
type Params map[string]string

// Table resolves paths to routes in declaration order.
type Table struct {
	routes   []Route
	notFound Route
}

func NewTable(routes []Route, notFound Route) *Table {
	return &Table{routes: routes, notFound: notFound}
}

// DefaultTable is the dz-kitab site map.
func DefaultTable() *Table {
	return NewTable([]Route{
		{Name: Home, Pattern: "/", Access: Public, Chrome: true},
		{Name: Login, Pattern: "/login", Access: RequiresNoCredential, Chrome: false},
		{Name: Register, Pattern: "/register", Access: RequiresNoCredential, Chrome: false},
		{Name: Logout, Pattern: "/logout", Access: Public, Chrome: false},
		{Name: AddAnnounce, Pattern: "/addannounce", Access: RequiresCredential, Chrome: true},
		{Name: EditAnnounce, Pattern: "/addannounce/:id", Access: RequiresCredential, Chrome: true},
		{Name: Messages, Pattern: "/message", Access: RequiresCredential, Chrome: true},
		{Name: Catalog, Pattern: "/catalog", Access: Public, Chrome: true},
		{Name: Wishlist, Pattern: "/wishlist", Access: Public, Chrome: true},
		{Name: BookDetails, Pattern: "/book/:id", Access: Public, Chrome: true},
		{Name: ContactSeller, Pattern: "/book/:id/contact", Access: RequiresCredential, Chrome: true},
		{Name: Admin, Pattern: "/admin", Access: RequiresCredential, Chrome: false},
		{Name: AdminUsers, Pattern: "/admin/users", Access: RequiresCredential, Chrome: false},
	}, Route{Name: NotFound, Pattern: "*", Access: Public, Chrome: true})
}

func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Lookup returns the route registered under name.
func (t *Table) Lookup(name string) (Route, bool) {
	for _, r := range t.routes {
		if r.Name == name {
			return r, true
		}
	}
	if name == t.notFound.Name {
		return t.notFound, true
	}
	return Route{}, false
}

// Match resolves path. Unknown paths yield the not-found route and ok=false.
func (t *Table) Match(path string) (Route, Params, bool) {
	segs := split(path)
	for _, r := range t.routes {
		if params, ok := match(split(r.Pattern), segs); ok {
			return r, params, true
		}
	}
	return t.notFound, Params{}, false
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func match(pattern, segs []string) (Params, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	params := Params{}
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if segs[i] == "" {
				return nil, false
			}
			params[name] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}

// Decision is the outcome of gating a route.
type Decision struct {
	Allow    bool
	Redirect string
}

// Decide gates route on whether the visitor holds a credential.
func Decide(route Route, hasCredential bool) Decision {
	switch route.Access {
	case RequiresCredential:
		if !hasCredential {
			return Decision{Redirect: "/login"}
		}
	case RequiresNoCredential:
		if hasCredential {
			return Decision{Redirect: "/"}
		}
	}
	return Decision{Allow: true}
}
