package auth

import (
	"fmt"
	"sync"
)

// MockStore implements SessionStore for testing purposes
type MockStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore creates a new mock session store
func NewMockStore() *MockStore {
	return &MockStore{
		sessions: make(map[string]*Session),
	}
}

// Store saves the session to the mock store
func (m *MockStore) Store(session *Session) error {
	if m.StoreError != nil {
		return m.StoreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if session == nil || session.Handle == "" {
		return ErrInvalidSession
	}

	// Create a copy to avoid external modifications
	sessionCopy := *session
	m.sessions[session.Handle] = &sessionCopy

	return nil
}

// Retrieve gets the session from the mock store
func (m *MockStore) Retrieve(handle string) (*Session, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if handle == "" {
		return nil, ErrInvalidSession
	}

	session, exists := m.sessions[handle]
	if !exists {
		return nil, ErrSessionNotFound
	}

	// Return a copy to avoid external modifications
	sessionCopy := *session
	return &sessionCopy, nil
}

// List returns all stored sessions from the mock store
func (m *MockStore) List() ([]*Session, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var sessions []*Session
	for _, session := range m.sessions {
		sessionCopy := *session
		sessions = append(sessions, &sessionCopy)
	}

	return sessions, nil
}

// Delete removes the session from the mock store
func (m *MockStore) Delete(handle string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if handle == "" {
		return ErrInvalidSession
	}

	if _, exists := m.sessions[handle]; !exists {
		return ErrSessionNotFound
	}

	delete(m.sessions, handle)
	return nil
}

// Exists checks if a session exists in the mock store
func (m *MockStore) Exists(handle string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.sessions[handle]
	return exists
}

// Count returns the number of stored sessions
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// NewMockManager creates a Manager backed by a single mock store, for tests
func NewMockManager() (*Manager, *MockStore) {
	store := NewMockStore()
	return &Manager{stores: []SessionStore{store}}, store
}

// NewMockManagerWithStores creates a Manager over an explicit store list, for tests
func NewMockManagerWithStores(stores ...SessionStore) *Manager {
	return &Manager{stores: stores}
}

// String returns a description of the mock store state
func (m *MockStore) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("MockStore{sessions: %d}", len(m.sessions))
}
