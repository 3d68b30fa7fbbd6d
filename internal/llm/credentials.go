package llm

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissingKey is returned when no API key is available for a remote provider.
var ErrMissingKey = errors.New("api key not configured")

// KeySource supplies the API key for a remote provider.
type KeySource interface {
	APIKey() (string, error)
}

// EnvKeySource reads the key from an environment variable on every call, so a
// key exported after startup is picked up. Fallback is used when Var is unset.
type EnvKeySource struct {
	Var      string
	Fallback string
}

// APIKey returns the configured key or ErrMissingKey.
func (s EnvKeySource) APIKey() (string, error) {
	if s.Var != "" {
		if v := strings.TrimSpace(os.Getenv(s.Var)); v != "" {
			return v, nil
		}
	}
	if v := strings.TrimSpace(s.Fallback); v != "" {
		return v, nil
	}
	if s.Var != "" {
		return "", fmt.Errorf("%w: %s is not set", ErrMissingKey, s.Var)
	}
	return "", ErrMissingKey
}
