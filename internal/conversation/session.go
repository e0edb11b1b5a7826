package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Joszi2006/pillinfo/internal/staging"
)

const (
	// sessionInactivityTimeout is how long a session may sit idle before
	// cleanup tears it down.
	sessionInactivityTimeout = 2 * time.Hour

	// sessionCleanupInterval is how often stale sessions are swept.
	sessionCleanupInterval = 10 * time.Minute
)

type sessionInfo struct {
	log          *Log
	lastActivity time.Time
}

// Manager tracks per-session conversation logs for the web surface.
// Sessions are isolated: each gets its own log, staging area, and match
// history. Safe for concurrent use.
type Manager struct {
	gateway Gateway

	mu       sync.RWMutex
	sessions map[string]*sessionInfo

	cancelCleanup context.CancelFunc
	cleanupDone   chan struct{}
}

// NewManager creates a session manager and starts its background sweep of
// inactive sessions.
func NewManager(gw Gateway) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		gateway:       gw,
		sessions:      make(map[string]*sessionInfo),
		cancelCleanup: cancel,
		cleanupDone:   make(chan struct{}),
	}
	go m.cleanupLoop(ctx)
	return m
}

// Create starts a new session and returns its ID and log.
func (m *Manager) Create() (string, *Log) {
	id := uuid.NewString()
	log := NewLog(m.gateway, staging.NewArea())

	m.mu.Lock()
	m.sessions[id] = &sessionInfo{log: log, lastActivity: time.Now()}
	m.mu.Unlock()

	return id, log
}

// Get returns the session's log, or false if the session does not exist.
// Touches the session's activity time.
func (m *Manager) Get(id string) (*Log, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	info.lastActivity = time.Now()
	return info.log, true
}

// Delete tears the session down, revoking its staged previews. No-op for
// unknown IDs.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	info, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		info.log.Teardown()
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the cleanup goroutine and tears down every session.
func (m *Manager) Close() {
	m.cancelCleanup()
	<-m.cleanupDone

	m.mu.Lock()
	infos := make([]*sessionInfo, 0, len(m.sessions))
	for id, info := range m.sessions {
		infos = append(infos, info)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, info := range infos {
		info.log.Teardown()
	}
}

func (m *Manager) cleanupLoop(ctx context.Context) {
	defer close(m.cleanupDone)
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(time.Now())
		}
	}
}

func (m *Manager) sweep(now time.Time) {
	m.mu.Lock()
	var stale []*sessionInfo
	for id, info := range m.sessions {
		if now.Sub(info.lastActivity) > sessionInactivityTimeout {
			stale = append(stale, info)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, info := range stale {
		info.log.Teardown()
	}
}
