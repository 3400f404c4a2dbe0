package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSecretsDir is the Docker Secrets mount point.
const DefaultSecretsDir = "/run/secrets"

// ReadSecret reads a secret from the standard Docker Secrets path.
func ReadSecret(secretName string) (string, error) {
	return ReadSecretFrom(DefaultSecretsDir, secretName)
}

// ReadSecretFrom reads the secret file dir/secretName and trims surrounding whitespace.
func ReadSecretFrom(dir, secretName string) (string, error) {
	filePath := filepath.Join(dir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// FillFromSecret sets *dst from dir/secretName when *dst is empty.
// A missing secret file is not an error: the value simply stays empty and
// the component that needs it reports the absence.
func FillFromSecret(dst *string, dir, secretName string) error {
	if *dst != "" {
		return nil
	}
	secret, err := ReadSecretFrom(dir, secretName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	*dst = secret
	return nil
}
