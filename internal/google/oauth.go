package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Sentinel errors used for classifying authentication failures at the tool
// boundary.
var (
	// ErrNoClientSecret means the Google client secret file is missing.
	ErrNoClientSecret = errors.New("client secret file not found")

	// ErrAuthTimeout means the interactive authorization flow did not
	// complete within the configured timeout.
	ErrAuthTimeout = errors.New("authorization timed out")
)

// oauthConfigFromFile reads the client secret file and builds the OAuth2
// configuration for the Calendar scopes.
func oauthConfigFromFile(path string) (*oauth2.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoClientSecret, path)
		}
		return nil, fmt.Errorf("failed to read client secret file: %w", err)
	}

	conf, err := google.ConfigFromJSON(b, CalendarScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secret file: %w", err)
	}
	return conf, nil
}

// HasToken reports whether a credential file exists at the given path.
// It does not check validity; a stale credential is still refreshed or
// replaced by the Authenticator.
func HasToken(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// tokenFromFile loads a persisted OAuth token from disk.
func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("malformed token file %s: %w", path, err)
	}
	return tok, nil
}

// saveToken persists an OAuth token as JSON. The file is user-readable only
// since it contains the refresh token.
func saveToken(path string, tok *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
