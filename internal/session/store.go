// package session manages the Spotify credential lifecycle: the interactive
// grant, scheduled refresh ahead of expiry, and the availability gate that
// consumers block on before every external call.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists the refresh token across restarts. Only the refresh token is
// durable; access tokens live in memory and die with the process.
type Store struct {
	path string
}

// NewStore creates a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file path where the refresh token is stored.
func (s *Store) Path() string {
	return s.path
}

// Load reads the stored refresh token. Returns "" when none has been saved.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read refresh token: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

// Save writes the refresh token, creating the parent directory if needed.
func (s *Store) Save(token string) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write refresh token: %w", err)
	}

	return nil
}
