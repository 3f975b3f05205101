// Package secrets resolves secret values from inline configuration or files.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages.
	Name string
	// Value is an inline secret value.
	Value string
	// File points to a file containing the secret. When set it takes
	// precedence over Value.
	File string
	// MinLength rejects secrets shorter than this many bytes after trimming.
	MinLength int
}

// Load returns the trimmed secret from src. An error is returned when
// neither File nor Value contain a usable secret, or the secret is shorter
// than src.MinLength.
func Load(src Source) (string, error) {
	secret, err := load(src)
	if err != nil {
		return "", err
	}
	if len(secret) < src.MinLength {
		return "", fmt.Errorf("%s must be at least %d characters, got %d", displayName(src), src.MinLength, len(secret))
	}
	return secret, nil
}

func displayName(src Source) string {
	if n := strings.TrimSpace(src.Name); n != "" {
		return n
	}
	return "secret"
}

func load(src Source) (string, error) {
	name := displayName(src)

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		return "", fmt.Errorf("%s is not configured", name)
	}
	return secret, nil
}
