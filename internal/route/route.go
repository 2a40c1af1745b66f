// Package route parses location fragments and tracks the current screen.
package route

import (
	"strings"
	"sync"
)

// Kind names the screen a route selects.
type Kind int

const (
	Home Kind = iota
	Detail
)

func (k Kind) String() string {
	if k == Detail {
		return "detail"
	}
	return "home"
}

// Route is a parsed location. ID is set only for Detail routes.
type Route struct {
	Kind Kind
	ID   string
}

// HomeRoute is the route every unrecognized fragment resolves to.
var HomeRoute = Route{Kind: Home}

// Parse resolves a fragment such as "#/recipe/3". A leading "#" is optional
// and empty path segments are ignored. A "recipe" segment followed by an id
// is Detail; segments after the id are ignored. Anything else is Home.
func Parse(fragment string) Route {
	fragment = strings.TrimPrefix(fragment, "#")

	var segments []string
	for _, s := range strings.Split(fragment, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	if len(segments) >= 2 && segments[0] == "recipe" {
		return Route{Kind: Detail, ID: segments[1]}
	}
	return HomeRoute
}

// Fragment renders the canonical fragment for r.
func (r Route) Fragment() string {
	if r.Kind == Detail {
		return "#/recipe/" + r.ID
	}
	return "#/"
}

// Listener is notified with the new route after every change.
type Listener func(Route)

// Router holds the current location and notifies listeners when it changes.
type Router struct {
	mu        sync.Mutex
	fragment  string
	current   Route
	nextID    int
	listeners map[int]Listener
}

// NewRouter starts at fragment. An empty fragment is the home route.
func NewRouter(fragment string) *Router {
	if strings.TrimSpace(fragment) == "" {
		fragment = "#/"
	}
	return &Router{
		fragment:  fragment,
		current:   Parse(fragment),
		listeners: make(map[int]Listener),
	}
}

// Current returns the parsed current route.
func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Fragment returns the current fragment as it was set.
func (r *Router) Fragment() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fragment
}

// Subscribe registers fn for change notifications and returns its release.
func (r *Router) Subscribe(fn Listener) (release func()) {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// Navigate sets the location to fragment. Listeners run only when the
// fragment actually changes. It reports whether a change happened.
func (r *Router) Navigate(fragment string) bool {
	if strings.TrimSpace(fragment) == "" {
		fragment = "#/"
	}

	r.mu.Lock()
	if fragment == r.fragment {
		r.mu.Unlock()
		return false
	}
	r.fragment = fragment
	r.current = Parse(fragment)
	current := r.current
	listeners := make([]Listener, 0, len(r.listeners))
	for i := 1; i <= r.nextID; i++ {
		if fn, ok := r.listeners[i]; ok {
			listeners = append(listeners, fn)
		}
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(current)
	}
	return true
}

// Open navigates to the detail route for id.
func (r *Router) Open(id string) bool {
	return r.Navigate(Route{Kind: Detail, ID: id}.Fragment())
}

// Home navigates to the home route unless it is already current.
func (r *Router) Home() bool {
	if r.Current().Kind == Home {
		return false
	}
	return r.Navigate(HomeRoute.Fragment())
}
