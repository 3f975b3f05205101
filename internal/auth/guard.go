package auth

import "strings"

// RouteClass groups paths by how the guard treats them.
type RouteClass int

const (
	// RouteProtected requires a session; anonymous callers are redirected
	// to the login page.
	RouteProtected RouteClass = iota
	// RouteRoot is "/": it only ever redirects.
	RouteRoot
	// RoutePublic pages are for anonymous callers; signed-in callers are
	// sent to the dashboard.
	RoutePublic
	// RouteAPI requires a session; anonymous callers get 401.
	RouteAPI
	// RouteOpen is reachable by everyone.
	RouteOpen
)

func (c RouteClass) String() string {
	switch c {
	case RouteRoot:
		return "root"
	case RoutePublic:
		return "public"
	case RouteAPI:
		return "api"
	case RouteOpen:
		return "open"
	default:
		return "protected"
	}
}

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

var publicPrefixes = []string{"/login", "/register", "/reset-password", "/update-password"}

var openPrefixes = []string{"/health", "/api/auth/"}

// Classify returns the RouteClass of an URL path.
func Classify(path string) RouteClass {
	if path == "" || path == "/" {
		return RouteRoot
	}
	for _, p := range openPrefixes {
		if strings.HasPrefix(path, p) {
			return RouteOpen
		}
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return RoutePublic
		}
	}
	if path == "/api" || strings.HasPrefix(path, "/api/") || path == "/job_offers" || strings.HasPrefix(path, "/job_offers/") {
		return RouteAPI
	}
	return RouteProtected
}

// Action is what the guard does with a request.
type Action int

const (
	Allow Action = iota
	Redirect
	Unauthorized
)

// Decision is the outcome of Decide. Location is set for Redirect.
type Decision struct {
	Action   Action
	Location string
}

// Decide applies the access rules to a path for a caller that is, or is
// not, signed in.
func Decide(path string, authenticated bool) Decision {
	switch Classify(path) {
	case RouteOpen:
		return Decision{Action: Allow}
	case RouteRoot:
		if authenticated {
			return Decision{Action: Redirect, Location: DashboardPath}
		}
		return Decision{Action: Redirect, Location: LoginPath}
	case RoutePublic:
		if authenticated {
			return Decision{Action: Redirect, Location: DashboardPath}
		}
		return Decision{Action: Allow}
	case RouteAPI:
		if !authenticated {
			return Decision{Action: Unauthorized}
		}
		return Decision{Action: Allow}
	default:
		if !authenticated {
			return Decision{Action: Redirect, Location: LoginPath}
		}
		return Decision{Action: Allow}
	}
}
