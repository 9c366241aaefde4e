package session

import (
	"sync"
	"time"
)

type Manager interface {
	Put(sess *Session)
	Get(token string) *Session
	Delete(token string)
	CleanupExpired(ttl time.Duration) (removed int)
}

var Instance Manager

func InitManager() {
	Instance = NewInstance()
}

func NewInstance() Manager {
	return &managerImpl{
		sessions: map[string]*Session{},
	}
}

type managerImpl struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func (m *managerImpl) Put(sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.Token] = sess
}

func (m *managerImpl) Get(token string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[token]
}

func (m *managerImpl) Delete(token string) {
	m.mu.Lock()
	sess, ok := m.sessions[token]
	if ok {
		delete(m.sessions, token)
	}
	m.mu.Unlock()
	if ok {
		sess.Cancel()
	}
}

func (m *managerImpl) CleanupExpired(ttl time.Duration) (removed int) {
	m.mu.Lock()
	expired := []*Session{}
	for token, sess := range m.sessions {
		if sess.Expired(ttl) {
			expired = append(expired, sess)
			delete(m.sessions, token)
		}
	}
	m.mu.Unlock()
	for _, sess := range expired {
		sess.Cancel()
	}
	return len(expired)
}
