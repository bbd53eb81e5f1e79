// Package conversation tracks the per-user text-entry flows:
// creating a category (one step) and adding a contact (two steps).
package conversation

import (
	"context"
	"errors"
	"sync"
)

// State is the step a user's flow is waiting on
type State string

const (
	Idle                 State = "idle"
	AwaitingCategoryName State = "awaiting_category_name"
	AwaitingContactName  State = "awaiting_contact_name"
	AwaitingContactValue State = "awaiting_contact_value"
)

// Session is the transient state of one user's flow.
// Scratch fields are nil until the step that fills them.
type Session struct {
	State       State   `json:"state"`
	CategoryID  *int64  `json:"category_id,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
}

// IsIdle reports whether no flow is in progress
func (s Session) IsIdle() bool {
	return s.State == "" || s.State == Idle
}

// ErrInconsistentSession marks a session whose scratch data does not match its state
var ErrInconsistentSession = errors.New("inconsistent session")

// Store keeps sessions by user id. Get on an unknown user returns an idle session.
type Store interface {
	Get(ctx context.Context, userID int64) (Session, error)
	Put(ctx context.Context, userID int64, s Session) error
	Clear(ctx context.Context, userID int64) error
}

// MemoryStore is a Store backed by a map
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[int64]Session
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]Session)}
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s, nil
	}
	return Session{State: Idle}, nil
}

func (m *MemoryStore) Put(_ context.Context, userID int64, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// Len returns the number of users with a stored session
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
