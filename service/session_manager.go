package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"wagerbot/games"
	"wagerbot/models"
)

type sessionState int

const (
	sessionActive sessionState = iota
	// the round is terminal but its ledger mutation has not been applied yet
	sessionSettling
	sessionResolved
)

// Session is an in-flight interactive game. Fields below mu are guarded by it.
type Session struct {
	ID        string
	UserID    int64
	Game      models.GameType
	Bet       int64
	CreatedAt time.Time

	mu             sync.Mutex
	round          games.Round
	state          sessionState
	lastActive     time.Time
	balanceAtStart int64
}

type sessionKey struct {
	userID int64
	game   models.GameType
}

type tombstone struct {
	userID     int64
	resolvedAt time.Time
}

// SessionManager tracks interactive sessions and guarantees at most one per
// user and game. Resolved session IDs are remembered for a while so late
// duplicates are reported as already resolved.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byOwner  map[sessionKey]*Session
	resolved map[string]tombstone
	now      func() time.Time
}

func NewSessionManager(now func() time.Time) *SessionManager {
	if now == nil {
		now = time.Now
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		byOwner:  make(map[sessionKey]*Session),
		resolved: make(map[string]tombstone),
		now:      now,
	}
}

// Create registers a new session for round
func (m *SessionManager) Create(userID int64, game models.GameType, bet int64, balance int64, round games.Round) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionKey{userID: userID, game: game}
	if _, exists := m.byOwner[key]; exists {
		return nil, ErrSessionAlreadyActive
	}

	now := m.now()
	s := &Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		Game:           game,
		Bet:            bet,
		CreatedAt:      now,
		round:          round,
		state:          sessionActive,
		lastActive:     now,
		balanceAtStart: balance,
	}
	m.sessions[s.ID] = s
	m.byOwner[key] = s
	return s, nil
}

// Lookup finds the session an actor wants to act on
func (m *SessionManager) Lookup(sessionID string, actorID int64) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.sessions[sessionID]; ok {
		if s.UserID != actorID {
			return nil, ErrUnauthorizedActor
		}
		return s, nil
	}
	if t, ok := m.resolved[sessionID]; ok {
		if t.userID != actorID {
			return nil, ErrUnauthorizedActor
		}
		return nil, ErrSessionAlreadyResolved
	}
	return nil, ErrSessionNotFound
}

// Active returns the open session for a user and game
func (m *SessionManager) Active(userID int64, game models.GameType) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.byOwner[sessionKey{userID: userID, game: game}]
	return s, ok
}

// remove unregisters s and leaves a tombstone. The caller holds s.mu.
func (m *SessionManager) remove(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, s.ID)
	key := sessionKey{userID: s.UserID, game: s.Game}
	if m.byOwner[key] == s {
		delete(m.byOwner, key)
	}
	m.resolved[s.ID] = tombstone{userID: s.UserID, resolvedAt: m.now()}
}

// Snapshot returns the currently registered sessions
func (m *SessionManager) Snapshot() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Count returns the number of registered sessions
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// PruneResolved forgets tombstones older than cutoff and returns how many were dropped
func (m *SessionManager) PruneResolved(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	for id, t := range m.resolved {
		if t.resolvedAt.Before(cutoff) {
			delete(m.resolved, id)
			pruned++
		}
	}
	return pruned
}
