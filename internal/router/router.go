package router

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrRedirectLoop is returned when redirects do not settle on a view
var ErrRedirectLoop = errors.New("too many redirects")

const maxRedirects = 4

// Guard decides whether a protected route may render
type Guard struct {
	IsAuthenticated func() bool
}

// Decision is the guard's answer for one route
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Check consults the predicate once, at resolution time. Unprotected routes
// never call it.
func (g Guard) Check(r Route) Decision {
	if !r.Protected {
		return Decision{Allow: true}
	}
	if g.IsAuthenticated != nil && g.IsAuthenticated() {
		return Decision{Allow: true}
	}
	return Decision{RedirectTo: PathSignIn}
}

// Resolution describes where a navigation ended up
type Resolution struct {
	Requested  string
	Path       string
	View       View
	Redirected bool
}

// Router resolves paths against the table, applies the guard and records
// the outcome in the history
type Router struct {
	routes  []Route
	guard   Guard
	history *History
	log     zerolog.Logger
}

// New creates a router with the default route table
func New(guard Guard, log zerolog.Logger) *Router {
	return &Router{
		routes:  DefaultRoutes(),
		guard:   guard,
		history: NewHistory(PathRoot),
		log:     log.With().Str("component", "router").Logger(),
	}
}

// History exposes the navigation stack
func (r *Router) History() *History {
	return r.history
}

// Navigate pushes p and resolves it. Redirects replace the pushed entry so
// the user cannot go back to a view they were turned away from.
func (r *Router) Navigate(p string) (Resolution, error) {
	r.history.Push(p)
	return r.resolve(Clean(p))
}

// Replace is Navigate with replace semantics for the first hop as well
func (r *Router) Replace(p string) (Resolution, error) {
	r.history.Replace(p)
	return r.resolve(Clean(p))
}

// Back returns to the previous entry and resolves it again, so the guard
// re-runs for protected views.
func (r *Router) Back() (Resolution, error) {
	p, ok := r.history.Back()
	if !ok {
		return Resolution{}, errors.New("no previous page")
	}
	return r.resolve(p)
}

func (r *Router) resolve(requested string) (Resolution, error) {
	res := Resolution{Requested: requested}
	p := requested

	for hop := 0; hop <= maxRedirects; hop++ {
		m, ok := match(r.routes, p)
		if !ok {
			r.log.Debug().Str("path", p).Msg("no route, redirecting to 404")
			p = PathNotFound
			r.history.Replace(p)
			res.Redirected = true
			continue
		}

		decision := r.guard.Check(m.Route)
		if !decision.Allow {
			r.log.Info().Str("path", p).Str("redirect", decision.RedirectTo).Msg("protected route denied")
			p = decision.RedirectTo
			r.history.Replace(p)
			res.Redirected = true
			continue
		}

		res.Path = m.Path
		res.View = m.View
		return res, nil
	}

	return res, fmt.Errorf("%w resolving %s", ErrRedirectLoop, requested)
}
