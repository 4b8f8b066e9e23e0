// Package session saves and restores the open tabs between runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Tab is one saved tab: its current URL plus the back and forward stacks,
// oldest first.
type Tab struct {
	URL     string   `json:"url"`
	Back    []string `json:"back,omitempty"`
	Forward []string `json:"forward,omitempty"`
}

// Session is the complete saved state.
type Session struct {
	Tabs   []Tab `json:"tabs"`
	Active int   `json:"active"`
}

// Path returns the default session file path.
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "webgu", "session.json"), nil
}

// Load reads a session from path. A missing file yields an empty session.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", path, err)
	}
	if s.Active < 0 || s.Active >= len(s.Tabs) {
		s.Active = 0
	}
	return &s, nil
}

// Save writes s to path, creating the directory if needed.
func Save(path string, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	// Write then rename so a crash never leaves a half-written file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Clear removes the session file.
func Clear(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
