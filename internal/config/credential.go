package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/Yates-Labs/sitcom/internal/narrative"
)

var (
	ErrCredential = errors.New("credential unavailable")
)

// CredentialEnv returns the environment variable holding the key for provider.
func CredentialEnv(provider string) string {
	if strings.EqualFold(provider, narrative.ProviderAnthropic) {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// ReadCredential returns the trimmed contents of path. A missing file falls
// back to the env variable; an empty file is an error.
func ReadCredential(path, env string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // user-provided key path
		switch {
		case err == nil:
			key := strings.TrimSpace(string(data))
			if key == "" {
				return "", fmt.Errorf("%w: %s is empty", ErrCredential, path)
			}
			return key, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("%w: %v", ErrCredential, err)
		}
	}

	if key := strings.TrimSpace(os.Getenv(env)); key != "" {
		return key, nil
	}
	if path == "" {
		return "", fmt.Errorf("%w: no key file given and %s is not set", ErrCredential, env)
	}
	return "", fmt.Errorf("%w: %s not found and %s is not set", ErrCredential, path, env)
}
