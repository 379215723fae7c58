// Package router resolves console paths to views and gates the protected
// ones behind the session check.
package router

import (
	"path"
	"strings"
)

// Paths the console knows about
const (
	PathRoot      = "/"
	PathSignIn    = "/signin"
	PathSignUp    = "/signup"
	PathDashboard = "/dashboard"
	PathEmployees = "/dashboard/employees"
	PathHelp      = "/dashboard/help"
	PathNotFound  = "/404"
)

// View names a page the console can render
type View string

const (
	ViewSignIn    View = "signin"
	ViewSignUp    View = "signup"
	ViewDashboard View = "dashboard"
	ViewEmployees View = "employees"
	ViewHelp      View = "help"
	ViewNotFound  View = "404"
)

// Route maps a path pattern to a view. A pattern ending in "/*" matches the
// prefix and everything below it.
type Route struct {
	Pattern   string
	View      View
	Protected bool
	// Children resolve the remainder of a "/*" pattern. Unknown children
	// fall back to View.
	Children map[string]View
}

// DefaultRoutes is the console's route table
func DefaultRoutes() []Route {
	return []Route{
		{Pattern: PathRoot, View: ViewSignIn},
		{Pattern: PathSignIn, View: ViewSignIn},
		{Pattern: PathSignUp, View: ViewSignUp},
		{
			Pattern:   PathDashboard + "/*",
			View:      ViewDashboard,
			Protected: true,
			Children: map[string]View{
				"employees": ViewEmployees,
				"help":      ViewHelp,
			},
		},
		{Pattern: PathNotFound, View: ViewNotFound},
	}
}

// Match is the result of matching a path against the table
type Match struct {
	Path  string
	Route Route
	View  View
}

// Clean normalises a user supplied path
func Clean(p string) string {
	if p == "" {
		return PathRoot
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func match(routes []Route, p string) (Match, bool) {
	p = Clean(p)

	for _, r := range routes {
		if prefix, ok := strings.CutSuffix(r.Pattern, "/*"); ok {
			if p != prefix && !strings.HasPrefix(p, prefix+"/") {
				continue
			}
			view := r.View
			rest := strings.Trim(strings.TrimPrefix(p, prefix), "/")
			if child, ok := r.Children[strings.SplitN(rest, "/", 2)[0]]; ok && rest != "" {
				view = child
			}
			return Match{Path: p, Route: r, View: view}, true
		}

		if p == r.Pattern {
			return Match{Path: p, Route: r, View: r.View}, true
		}
	}

	return Match{}, false
}
