// Package session exposes the gate the cart engine consults to authorize a
// checkout. The persisted on-device session behind it is an external
// collaborator; only the read contract lives here.
package session

import "sync"

// Gate reports the current authenticated user, if any.
type Gate interface {
	CurrentUserID() (int64, bool)
	CurrentRole() (string, bool)
}

// Memory is an in-process Gate used by tests and the demo binary.
type Memory struct {
	mu       sync.Mutex
	userID   int64
	role     string
	signedIn bool
}

var _ Gate = (*Memory)(nil)

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) SignIn(userID int64, role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userID = userID
	m.role = role
	m.signedIn = true
}

func (m *Memory) SignOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userID = 0
	m.role = ""
	m.signedIn = false
}

func (m *Memory) CurrentUserID() (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userID, m.signedIn
}

func (m *Memory) CurrentRole() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.signedIn {
		return "", false
	}
	return m.role, true
}
