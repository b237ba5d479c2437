// ABOUTME: Router applying the navigation guard until a route is allowed
// ABOUTME: Follows redirects with a hop limit and tracks the current location

package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// MaxRedirects bounds the redirects followed for a single navigation
const MaxRedirects = 5

var (
	// ErrRouteNotFound means the guard allowed a path with no matching route
	ErrRouteNotFound = errors.New("route not found")
	// ErrTooManyRedirects means the guard kept redirecting past MaxRedirects
	ErrTooManyRedirects = errors.New("too many redirects")
)

// Resolution describes where a navigation landed
type Resolution struct {
	Requested string
	Target    Target
	Match     Match
	Redirects []string
}

// Name returns the landed route name
func (r Resolution) Name() string {
	return r.Match.Name()
}

// Redirected reports whether the guard changed the destination
func (r Resolution) Redirected() bool {
	return len(r.Redirects) > 0
}

// Router runs every navigation through a Guard
type Router struct {
	guard  *Guard
	logger *slog.Logger

	mu      sync.RWMutex
	current *Resolution
}

// New creates a Router
func New(guard *Guard, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{guard: guard, logger: logger}
}

// Navigate resolves raw ("/path?query") through the guard and records the result
// as the current location.
func (r *Router) Navigate(ctx context.Context, raw string) (Resolution, error) {
	target, err := ParseTarget(raw)
	if err != nil {
		return Resolution{}, err
	}

	res := Resolution{Requested: raw}
	for {
		if err := ctx.Err(); err != nil {
			return Resolution{}, fmt.Errorf("navigation to %q cancelled: %w", raw, err)
		}

		decision := r.guard.Resolve(ctx, target)
		if decision.Action == Allow {
			break
		}
		if len(res.Redirects) >= MaxRedirects {
			r.logger.Warn("Navigation exceeded redirect limit", "requested", raw, "redirects", res.Redirects)
			return Resolution{}, fmt.Errorf("navigation to %q: %w", raw, ErrTooManyRedirects)
		}
		res.Redirects = append(res.Redirects, decision.Path)
		target = Target{Path: cleanPath(decision.Path)}
	}

	m, ok := Lookup(target.Path)
	if !ok {
		return Resolution{}, fmt.Errorf("%s: %w", target.Path, ErrRouteNotFound)
	}
	res.Target = target
	res.Match = m

	r.mu.Lock()
	r.current = &res
	r.mu.Unlock()

	r.logger.Debug("Navigated", "requested", raw, "route", m.Name(), "redirects", len(res.Redirects))
	return res, nil
}

// Current returns the last successful resolution, if any
func (r *Router) Current() (Resolution, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return Resolution{}, false
	}
	return *r.current, true
}
