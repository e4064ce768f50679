package engine

import (
	"strings"
	"sync"
	"time"

	"github.com/nebulasur/ventia/internal/domain"
)

// Session is the per-conversation state: tenant, language, the active
// flow position and the field values collected so far. A session is
// expected to issue messages serially, so access to a single session
// is not locked; concurrent sessions are isolated by the store.
type Session struct {
	Tenant   string
	Lang     string
	Flow     domain.Flow
	fields   map[string]string
	lastSeen time.Time
}

func newSession(tenant, lang string) *Session {
	return &Session{
		Tenant:   tenant,
		Lang:     lang,
		Flow:     domain.FlowNone,
		fields:   map[string]string{},
		lastSeen: time.Now(),
	}
}

// Put stores a collected field value, trimmed.
func (s *Session) Put(key, value string) {
	s.fields[key] = strings.TrimSpace(value)
}

// Get returns a collected field value, or "".
func (s *Session) Get(key string) string { return s.fields[key] }

// Clear resets the flow and wipes collected fields together; the two
// are never reset independently.
func (s *Session) Clear() {
	s.Flow = domain.FlowNone
	s.fields = map[string]string{}
}

// Reset rebinds the session to a tenant/language pair and clears it.
func (s *Session) Reset(tenant, lang string) {
	s.Tenant = tenant
	s.Lang = lang
	s.Clear()
}

// SessionStore keeps sessions keyed by tenant::sessionId. When a TTL
// is configured a janitor evicts sessions idle for longer than that.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessionStore creates the store. ttl <= 0 disables eviction.
func NewSessionStore(ttl time.Duration) *SessionStore {
	store := &SessionStore{
		sessions: map[string]*Session{},
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	if ttl > 0 {
		go store.reap()
	}
	return store
}

// GetOrCreate returns the session for (tenant, sessionID), creating
// it lazily on first use.
func (st *SessionStore) GetOrCreate(tenant, sessionID, lang string) *Session {
	key := tenant + "::" + sessionID
	st.mu.Lock()
	defer st.mu.Unlock()
	session, ok := st.sessions[key]
	if !ok {
		session = newSession(tenant, lang)
		st.sessions[key] = session
	}
	session.lastSeen = time.Now()
	return session
}

// Len reports the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Close stops the janitor, if any.
func (st *SessionStore) Close() {
	st.stopOnce.Do(func() { close(st.stop) })
}

func (st *SessionStore) reap() {
	ticker := time.NewTicker(st.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-st.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-st.ttl)
			st.mu.Lock()
			for key, session := range st.sessions {
				if session.lastSeen.Before(cutoff) {
					delete(st.sessions, key)
				}
			}
			st.mu.Unlock()
		}
	}
}
