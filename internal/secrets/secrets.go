// Package secrets resolves sensitive configuration values. Each key is looked
// up as KEY_FILE first (a path to a mounted secret, the Docker/compose
// convention), then as the plain KEY environment variable.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// GetSecret resolves one secret. File contents are trimmed of surrounding
// whitespace so trailing newlines in mounted secrets are harmless.
func GetSecret(key string, fallback string) (string, error) {
	if path := os.Getenv(key + "_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read secret file %s: %w", path, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return fallback, nil
}

// GetOptionalSecret resolves a secret, falling back to the given value when
// the key is unset or its file is unreadable.
func GetOptionalSecret(key string, fallback string) string {
	value, err := GetSecret(key, fallback)
	if err != nil || value == "" {
		return fallback
	}
	return value
}
