package auth_test

import (
	"testing"

	"hrhelper/recruiter-service/internal/auth"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		want auth.RouteClass
	}{
		{"/", auth.RouteRoot},
		{"/login", auth.RoutePublic},
		{"/register", auth.RoutePublic},
		{"/reset-password", auth.RoutePublic},
		{"/update-password", auth.RoutePublic},
		{"/login/extra", auth.RoutePublic},
		{"/health", auth.RouteOpen},
		{"/api/auth/sign-in", auth.RouteOpen},
		{"/api/job_offers", auth.RouteAPI},
		{"/api/job_offers/3/cvs", auth.RouteAPI},
		{"/job_offers", auth.RouteAPI},
		{"/dashboard", auth.RouteProtected},
		{"/offers/7", auth.RouteProtected},
	}
	for _, c := range cases {
		if got := auth.Classify(c.path); got != c.want {
			t.Errorf("Classify(%q) = %s, want %s", c.path, got, c.want)
		}
	}
}

func TestDecide(t *testing.T) {
	cases := []struct {
		path          string
		authenticated bool
		want          auth.Decision
	}{
		{"/", true, auth.Decision{Action: auth.Redirect, Location: "/dashboard"}},
		{"/", false, auth.Decision{Action: auth.Redirect, Location: "/login"}},
		{"/login", true, auth.Decision{Action: auth.Redirect, Location: "/dashboard"}},
		{"/login", false, auth.Decision{Action: auth.Allow}},
		{"/dashboard", false, auth.Decision{Action: auth.Redirect, Location: "/login"}},
		{"/dashboard", true, auth.Decision{Action: auth.Allow}},
		{"/api/job_offers", false, auth.Decision{Action: auth.Unauthorized}},
		{"/api/job_offers", true, auth.Decision{Action: auth.Allow}},
		{"/health", false, auth.Decision{Action: auth.Allow}},
		{"/api/auth/sign-up", true, auth.Decision{Action: auth.Allow}},
	}
	for _, c := range cases {
		if got := auth.Decide(c.path, c.authenticated); got != c.want {
			t.Errorf("Decide(%q, %v) = %+v, want %+v", c.path, c.authenticated, got, c.want)
		}
	}
}
