package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements SessionStore using environment variables
// This is primarily for CI and scripted use
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based session store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(session *Session) error {
	return ErrStoreUnavailable
}

// Retrieve gets the session from environment variables
func (e *EnvironmentStore) Retrieve(handle string) (*Session, error) {
	authToken := os.Getenv("XSCRAPER_AUTH_TOKEN")
	csrfToken := os.Getenv("XSCRAPER_CT0")
	userAgent := os.Getenv("XSCRAPER_USER_AGENT")

	if authToken == "" || csrfToken == "" {
		return nil, ErrSessionNotFound
	}

	// The environment doesn't record a handle, so use "default" or the provided one
	if handle == "" {
		handle = "default"
	}

	return &Session{
		Handle:       handle,
		AuthToken:    authToken,
		CSRFToken:    csrfToken,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}, nil
}

// List returns a single session if environment variables are set
func (e *EnvironmentStore) List() ([]*Session, error) {
	session, err := e.Retrieve("")
	if err != nil {
		return []*Session{}, nil
	}
	return []*Session{session}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(handle string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(handle string) bool {
	authToken := os.Getenv("XSCRAPER_AUTH_TOKEN")
	csrfToken := os.Getenv("XSCRAPER_CT0")
	return authToken != "" && csrfToken != ""
}
