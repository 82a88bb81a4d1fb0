// Package route maps URL fragments to view filters.
//
// A Router registers exactly one pattern, "/:filter": a single path segment bound
// to the filter. There are no nested routes and no query parameters.
package route

import (
	"strings"

	"github.com/aretw0/todomvc/pkg/domain"
)

// Pattern is the only route the Router understands.
const Pattern = "/:filter"

// DefaultRoute is used by Init when no fragment is present.
const DefaultRoute = "/all"

// Handler receives the filter of a matched route.
type Handler func(domain.Filter)

// Router resolves fragments and notifies the handler on every match.
type Router struct {
	handler Handler
	current string
}

// New creates a Router bound to handler.
func New(handler Handler) *Router {
	return &Router{handler: handler}
}

// Init navigates to fragment, or to DefaultRoute when fragment is empty.
func (r *Router) Init(fragment string) bool {
	if clean(fragment) == "" {
		fragment = DefaultRoute
	}
	return r.Navigate(fragment)
}

// Navigate resolves fragment and invokes the handler on a match.
// Fragments that do not match Pattern are ignored and report false.
func (r *Router) Navigate(fragment string) bool {
	f, ok := Resolve(fragment)
	if !ok {
		return false
	}
	r.current = "/" + string(f)
	if r.handler != nil {
		r.handler(f)
	}
	return true
}

// Current returns the last matched route, or "" before the first match.
func (r *Router) Current() string {
	return r.current
}

// Resolve matches a fragment against Pattern. Any single segment matches;
// segments that are not a known filter resolve to domain.FilterAll.
func Resolve(fragment string) (domain.Filter, bool) {
	path := clean(fragment)
	if !strings.HasPrefix(path, "/") {
		return "", false
	}
	segment := path[1:]
	if segment == "" || strings.ContainsAny(segment, "/?") {
		return "", false
	}
	f, _ := domain.ParseFilter(segment)
	return f, true
}

// Href returns the route for a filter.
func Href(f domain.Filter) string {
	return "/" + string(f.Normalize())
}

func clean(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	return strings.TrimPrefix(fragment, "#")
}
