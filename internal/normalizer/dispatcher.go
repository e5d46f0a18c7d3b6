package normalizer

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnknownEndpoint is returned when no route matches an endpoint.
var ErrUnknownEndpoint = errors.New("no adapter registered for endpoint")

// Route binds an endpoint pattern to the adapter kind that understands its responses.
//
// Pattern is either a full URL, matched exactly, or a bare host, matched
// against the endpoint host and its subdomains. Name is an optional logical
// source name that also matches when used as the endpoint identifier.
type Route struct {
	Name    string
	Pattern string
	Kind    Kind
}

func (r Route) matches(endpoint string) bool {
	if r.Pattern != "" && endpoint == r.Pattern {
		return true
	}

	if r.Name != "" && endpoint == r.Name {
		return true
	}

	if r.Pattern == "" || strings.Contains(r.Pattern, "/") {
		return false
	}

	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	pattern := strings.ToLower(r.Pattern)

	return host == pattern || strings.HasSuffix(host, "."+pattern)
}

// Dispatcher resolves endpoints to adapters over a fixed, ordered route table.
type Dispatcher struct {
	routes []Route
}

// DefaultRoutes returns the built-in host table for the four supported APIs.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "randomuser", Pattern: "randomuser.me", Kind: KindResults},
		{Name: "mockaroo", Pattern: "my.api.mockaroo.com", Kind: KindList},
		{Name: "dummyjson", Pattern: "dummyjson.com", Kind: KindUsers},
		{Name: "reqres", Pattern: "reqres.in", Kind: KindData},
	}
}

// NewDispatcher creates a dispatcher. Earlier routes take precedence.
func NewDispatcher(routes ...Route) *Dispatcher {
	table := make([]Route, len(routes))
	copy(table, routes)

	return &Dispatcher{routes: table}
}

// Resolve returns the adapter kind for the endpoint.
func (d *Dispatcher) Resolve(endpoint string) (Kind, error) {
	for _, r := range d.routes {
		if r.matches(endpoint) {
			return r.Kind, nil
		}
	}

	return 0, fmt.Errorf("%w: %s", ErrUnknownEndpoint, endpoint)
}

// Dispatch returns the adapter responsible for the endpoint.
func (d *Dispatcher) Dispatch(endpoint string) (Adapter, Kind, error) {
	kind, err := d.Resolve(endpoint)
	if err != nil {
		return nil, 0, err
	}

	adapter, err := kind.Adapter()
	if err != nil {
		return nil, 0, err
	}

	return adapter, kind, nil
}

// Routes returns a copy of the route table.
func (d *Dispatcher) Routes() []Route {
	out := make([]Route, len(d.routes))
	copy(out, d.routes)

	return out
}
