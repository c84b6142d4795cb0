package routing

import (
	"context"
	"log/slog"
	"net/http"
)

type routeKey struct{}

type matched struct {
	route  Route
	params Params
}

// RouteFrom returns the route resolved for the request.
func RouteFrom(ctx context.Context) (Route, bool) {
	m, ok := ctx.Value(routeKey{}).(matched)
	return m.route, ok
}

// Param returns the ":name" value bound for the request.
func Param(r *http.Request, name string) string {
	m, _ := r.Context().Value(routeKey{}).(matched)
	return m.params[name]
}

// WithRoute attaches a resolved route to ctx.
func WithRoute(ctx context.Context, route Route, params Params) context.Context {
	return context.WithValue(ctx, routeKey{}, matched{route: route, params: params})
}

// Router dispatches page requests through a Table, applying access gating
// before handing off to the handler registered for the route name.
type Router struct {
	table         *Table
	hasCredential func(*http.Request) bool
	handlers      map[string]http.Handler
}

func NewRouter(table *Table, hasCredential func(*http.Request) bool) *Router {
	return &Router{
		table:         table,
		hasCredential: hasCredential,
		handlers:      make(map[string]http.Handler),
	}
}

func (rt *Router) Handle(name string, h http.Handler) {
	if _, ok := rt.table.Lookup(name); !ok {
		panic("routing: no route named " + name)
	}
	rt.handlers[name] = h
}

func (rt *Router) HandleFunc(name string, h http.HandlerFunc) {
	rt.Handle(name, h)
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route, params, _ := rt.table.Match(r.URL.Path)

	d := Decide(route, rt.hasCredential(r))
	if !d.Allow {
		slog.DebugContext(r.Context(), "route gated", "route", route.Name, "access", route.Access.String(), "redirect", d.Redirect)
		http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
		return
	}

	h, ok := rt.handlers[route.Name]
	if !ok {
		route, params = rt.table.notFound, Params{}
		h, ok = rt.handlers[route.Name]
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.ServeHTTP(w, r.WithContext(WithRoute(r.Context(), route, params)))
}
