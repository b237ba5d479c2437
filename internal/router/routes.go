// ABOUTME: Route table and navigation targets for the admin client
// ABOUTME: Parses "/path?query" targets and matches them against nested routes

package router

import (
	"fmt"
	"net/url"
	"strings"
)

// Well-known paths
const (
	RootPath    = "/"
	EpisodePath = "/episode"
	LoginPath   = "/login"
)

// AuthKeyParam is the query parameter carrying a one-time auth key
const AuthKeyParam = "auth_key"

// Route is one entry of the route table. Children inherit RequiresAuth.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
	Children     []Route
}

// Routes is the application's route table
var Routes = []Route{
	{
		Name:         "main",
		Path:         RootPath,
		RequiresAuth: true,
		Children: []Route{
			{Name: "home", Path: ""},
			{Name: "episode", Path: EpisodePath},
		},
	},
	{Name: "login", Path: LoginPath},
}

// Match is the result of resolving a path against the route table
type Match struct {
	// Matched lists the route and its ancestors, outermost first
	Matched []Route
}

// Route returns the innermost matched route
func (m Match) Route() Route {
	return m.Matched[len(m.Matched)-1]
}

// Name returns the innermost matched route name
func (m Match) Name() string {
	return m.Route().Name
}

// RequiresAuth reports whether any matched route requires authentication
func (m Match) RequiresAuth() bool {
	for _, r := range m.Matched {
		if r.RequiresAuth {
			return true
		}
	}
	return false
}

// Lookup resolves path against Routes
func Lookup(path string) (Match, bool) {
	return lookup(Routes, cleanPath(path), nil)
}

func lookup(routes []Route, path string, parents []Route) (Match, bool) {
	for _, r := range routes {
		chain := append(append([]Route(nil), parents...), r)

		if len(r.Children) > 0 {
			if m, ok := lookup(r.Children, path, chain); ok {
				return m, true
			}
			continue
		}

		full := r.Path
		if full == "" && len(parents) > 0 {
			full = parents[len(parents)-1].Path
		}
		if full == path {
			return Match{Matched: chain}, true
		}
	}
	return Match{}, false
}

// Target is a navigation destination
type Target struct {
	Path  string
	Query url.Values
}

// ParseTarget parses "/path?query". An empty string targets the root.
func ParseTarget(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Target{Path: RootPath, Query: url.Values{}}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("invalid navigation target %q: %w", raw, err)
	}
	if u.IsAbs() || u.Host != "" {
		return Target{}, fmt.Errorf("invalid navigation target %q: must be a path", raw)
	}
	return Target{Path: cleanPath(u.Path), Query: u.Query()}, nil
}

// AuthKey returns the one-time auth key carried by the target, if any
func (t Target) AuthKey() string {
	return t.Query.Get(AuthKeyParam)
}

// String renders the target back to "/path?query"
func (t Target) String() string {
	if len(t.Query) == 0 {
		return t.Path
	}
	return t.Path + "?" + t.Query.Encode()
}

func cleanPath(p string) string {
	if p == "" {
		return RootPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = RootPath
		}
	}
	return p
}
