package state

import (
	"context"
	"sync"
)

// User states constants
const (
	None                  = "none"
	WaitingForLog         = "waiting_for_log"
	WaitingForDescription = "waiting_for_description"
)

// StateManager tracks which reply a chat user is expected to send next.
type StateManager interface {
	SetUserState(ctx context.Context, userID int64, state string)
	GetUserState(ctx context.Context, userID int64) string
	ClearUserState(ctx context.Context, userID int64)
}

// Manager keeps user states in process memory.
type Manager struct {
	userStates map[int64]string
	mu         sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{userStates: make(map[int64]string)}
}

func (m *Manager) SetUserState(_ context.Context, userID int64, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userStates[userID] = state
}

func (m *Manager) GetUserState(_ context.Context, userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, exists := m.userStates[userID]
	if !exists {
		return None
	}
	return state
}

func (m *Manager) ClearUserState(_ context.Context, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.userStates, userID)
}
