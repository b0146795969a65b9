// Package routes declares handler groups and registers them on a ServeMux.
package routes

import "net/http"

// Route binds a method and path pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group shares a path prefix and middleware across its routes and children.
// Middleware listed first runs outermost.
type Group struct {
	Prefix     string
	Middleware []func(http.Handler) http.Handler
	Routes     []Route
	Children   []Group
}

// Register adds every route in groups to mux as "METHOD prefix+pattern".
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		register(mux, "", nil, group)
	}
}

func register(mux *http.ServeMux, prefix string, inherited []func(http.Handler) http.Handler, group Group) {
	prefix += group.Prefix
	stack := append(append([]func(http.Handler) http.Handler{}, inherited...), group.Middleware...)

	for _, route := range group.Routes {
		var h http.Handler = route.Handler
		for i := len(stack) - 1; i >= 0; i-- {
			h = stack[i](h)
		}
		mux.Handle(route.Method+" "+prefix+route.Pattern, h)
	}

	for _, child := range group.Children {
		register(mux, prefix, stack, child)
	}
}
