package pkg

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateSessionID returns an id for a new table session.
func GenerateSessionID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}

	return id.String(), nil
}

// GenerateProfileID returns an id for a new player profile.
func GenerateProfileID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate profile id: %w", err)
	}

	return id.String(), nil
}

// IsValidID reports whether raw looks like an id produced by this package.
func IsValidID(raw string) bool {
	return uuid.Validate(raw) == nil
}
