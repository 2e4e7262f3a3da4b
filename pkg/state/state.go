package state

import (
	"sync"
	"time"
)

// State represents the state of a chat
type State string

const (
	// StateNormal is the normal state
	StateNormal State = "normal"
	// StateAddingIngredients is entered by /sync_fridge: plain messages are fridge contents
	StateAddingIngredients State = "adding_ingredients"
)

// DefaultTTL is how long a chat stays in a non-normal state without activity
const DefaultTTL = 10 * time.Minute

// ChatState represents the state of a chat
type ChatState struct {
	State     State
	Timestamp time.Time
}

// Manager manages chat states
type Manager struct {
	states map[int64]ChatState
	ttl    time.Duration
	now    func() time.Time
	mu     sync.Mutex
}

// New creates a new state manager. A ttl of zero uses DefaultTTL.
func New(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		states: make(map[int64]ChatState),
		ttl:    ttl,
		now:    time.Now,
	}
}

// SetState sets the state for a chat
func (m *Manager) SetState(chatID int64, state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state == StateNormal {
		delete(m.states, chatID)
		return
	}
	m.states[chatID] = ChatState{
		State:     state,
		Timestamp: m.now(),
	}
}

// Touch extends the expiry of the chat's current state
func (m *Manager) Touch(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.states[chatID]; ok {
		st.Timestamp = m.now()
		m.states[chatID] = st
	}
}

// GetState gets the state for a chat. Expired states read as StateNormal.
func (m *Manager) GetState(chatID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[chatID]
	if !ok {
		return StateNormal
	}
	if m.now().Sub(st.Timestamp) > m.ttl {
		delete(m.states, chatID)
		return StateNormal
	}
	return st.State
}

// ClearState clears the state for a chat
func (m *Manager) ClearState(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, chatID)
}
