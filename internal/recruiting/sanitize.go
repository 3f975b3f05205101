package recruiting

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// sanitizer rejects markup in free-text fields. Plain text containing
// characters that bluemonday escapes (such as "&" in "R&D") is accepted.
type sanitizer struct {
	policy *bluemonday.Policy
}

func newSanitizer() *sanitizer {
	return &sanitizer{policy: bluemonday.StrictPolicy()}
}

// clean trims s and reports whether it is free of HTML.
func (s *sanitizer) clean(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return v, true
	}
	return v, html.UnescapeString(s.policy.Sanitize(v)) == v
}

func (s *sanitizer) field(name, v string) (string, error) {
	out, ok := s.clean(v)
	if !ok {
		return "", &ValidationError{Msg: name + " contains potentially unsafe HTML"}
	}
	return out, nil
}

func (s *sanitizer) keywords(name string, kws []string) error {
	for _, k := range kws {
		if _, ok := s.clean(k); !ok {
			return &ValidationError{Msg: name + " contain potentially unsafe HTML"}
		}
	}
	return nil
}
