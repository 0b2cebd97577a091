// Package auth provides Directus authentication token management.
// It implements a simple interface with multiple providers following the
// "deep modules" principle - simple interface, complex implementation hidden.
package auth

import (
	"errors"
	"os"
	"strings"
)

// TokenProvider defines the interface for obtaining a Directus bearer token.
// Implementations may use different sources (configuration, environment).
type TokenProvider interface {
	GetToken() (string, error)
}

// StaticProvider returns a token injected through configuration
// (BOUNTEER_DIRECTUS_STATIC_TOKEN or a --token flag).
type StaticProvider struct {
	Token string
}

// GetToken returns the configured static token.
// Returns an error if no token was configured.
func (s *StaticProvider) GetToken() (string, error) {
	token := strings.TrimSpace(s.Token)
	if token == "" {
		return "", errors.New("no static token configured")
	}
	return token, nil
}

// EnvProvider obtains tokens from the DIRECTUS_TOKEN environment variable.
// This matches the variable used by the schema tooling around the CMS.
type EnvProvider struct{}

// GetToken reads the DIRECTUS_TOKEN environment variable.
// Returns an error if the variable is not set or is empty.
func (e *EnvProvider) GetToken() (string, error) {
	token := strings.TrimSpace(os.Getenv("DIRECTUS_TOKEN"))
	if token == "" {
		return "", errors.New("DIRECTUS_TOKEN environment variable not set or empty")
	}
	return token, nil
}

// GetToken attempts to obtain a Directus token using the following strategy:
// 1. Static token from configuration (preferred, explicit)
// 2. Fall back to the DIRECTUS_TOKEN environment variable
// 3. Return a clear, actionable error if both fail
//
// This is the main entry point for token retrieval in the application.
func GetToken(staticToken string) (string, error) {
	static := &StaticProvider{Token: staticToken}
	token, err := static.GetToken()
	if err == nil {
		return token, nil
	}

	envProvider := &EnvProvider{}
	token, err = envProvider.GetToken()
	if err == nil {
		return token, nil
	}

	return "", errors.New(
		"failed to obtain Directus token.\n" +
			"Please either:\n" +
			"  1. Set BOUNTEER_DIRECTUS_STATIC_TOKEN (or pass --token), or\n" +
			"  2. Set the DIRECTUS_TOKEN environment variable with an API token")
}
