package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Session holds the cookies for a logged-in X account
type Session struct {
	Handle       string    `json:"handle"`
	AuthToken    string    `json:"auth_token"`
	CSRFToken    string    `json:"csrf_token"`
	UserAgent    string    `json:"user_agent,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Cookies returns the session as the cookie map the API client expects
func (s *Session) Cookies() map[string]string {
	return map[string]string{
		"auth_token": s.AuthToken,
		"ct0":        s.CSRFToken,
	}
}

// SessionStore is the interface for storing and retrieving sessions
type SessionStore interface {
	// Store saves the session for an account
	Store(session *Session) error

	// Retrieve gets the session for a specific handle
	Retrieve(handle string) (*Session, error)

	// List returns all stored sessions
	List() ([]*Session, error)

	// Delete removes the session for a specific handle
	Delete(handle string) error

	// Exists checks if a session exists for a handle
	Exists(handle string) bool
}

// Manager handles session storage with fallback mechanisms
type Manager struct {
	stores []SessionStore
}

// NewManager creates a new session manager with appropriate storage backends
func NewManager() (*Manager, error) {
	var stores []SessionStore

	// Try keyring first (system keychain)
	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	// Always add encrypted file store as fallback
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "sessions.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	// Add environment store as last resort
	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// Store saves the session using the first available store
func (m *Manager) Store(session *Session) error {
	if session.Handle == "" {
		return errors.New("handle is required")
	}
	if session.AuthToken == "" {
		return errors.New("auth token is required")
	}
	if session.CSRFToken == "" {
		return errors.New("CSRF token is required")
	}

	session.LastModified = time.Now()

	// Try each store in order
	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(session); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store session: %w", lastErr)
	}
	return errors.New("no available session stores")
}

// Retrieve gets the session from the first store that has it
func (m *Manager) Retrieve(handle string) (*Session, error) {
	for _, store := range m.stores {
		if session, err := store.Retrieve(handle); err == nil && session != nil {
			return session, nil
		}
	}
	return nil, fmt.Errorf("session not found for account: %s", handle)
}

// RetrieveDefault gets the default session or the first available one
func (m *Manager) RetrieveDefault() (*Session, error) {
	// First try the environment (for backward compatibility)
	if envStore, ok := m.stores[len(m.stores)-1].(*EnvironmentStore); ok {
		if session, err := envStore.Retrieve(""); err == nil && session != nil {
			return session, nil
		}
	}

	// Then try the first available session
	sessions, err := m.List()
	if err == nil && len(sessions) > 0 {
		return sessions[0], nil
	}

	return nil, errors.New("no sessions found")
}

// List returns all stored sessions from all stores
func (m *Manager) List() ([]*Session, error) {
	sessionMap := make(map[string]*Session)

	for _, store := range m.stores {
		sessions, err := store.List()
		if err != nil {
			continue
		}
		for _, session := range sessions {
			// Use the most recently modified version
			if existing, ok := sessionMap[session.Handle]; !ok || session.LastModified.After(existing.LastModified) {
				sessionMap[session.Handle] = session
			}
		}
	}

	var result []*Session
	for _, session := range sessionMap {
		result = append(result, session)
	}

	return result, nil
}

// Delete removes the session from all stores
func (m *Manager) Delete(handle string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(handle); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete session: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("session not found for account: %s", handle)
	}

	return nil
}

// DeleteAll removes all stored sessions
func (m *Manager) DeleteAll() error {
	sessions, err := m.List()
	if err != nil {
		return err
	}

	for _, session := range sessions {
		_ = m.Delete(session.Handle) // Ignore individual errors
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "xscraper")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "xscraper")
	default: // Linux and others
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "xscraper")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "xscraper")
		}
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// SanitizeSession creates a copy of the session with sensitive data masked
func SanitizeSession(session *Session) *Session {
	if session == nil {
		return nil
	}

	return &Session{
		Handle:       session.Handle,
		AuthToken:    maskString(session.AuthToken),
		CSRFToken:    maskString(session.CSRFToken),
		UserAgent:    session.UserAgent,
		LastModified: session.LastModified,
	}
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidSession   = errors.New("invalid session")
	ErrStoreUnavailable = errors.New("session store unavailable")
)
