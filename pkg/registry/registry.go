package registry

import (
	"sync"

	"github.com/mynaparrot/speech-relay/pkg/wsconn"
)

const (
	RoleProducer = "speech-recognition"
	RoleConsumer = "obs-speech-overlay"
)

// Registry maps a role to at most one live connection. It only holds
// references: adding or removing an entry never closes a connection.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*wsconn.Conn
}

func New() *Registry {
	return &Registry{
		conns: make(map[string]*wsconn.Conn),
	}
}

// Add registers conn for role, replacing any previous entry.
func (r *Registry) Add(role string, conn *wsconn.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[role] = conn
}

func (r *Registry) Remove(role string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, role)
}

// RemoveIf removes the entry for role only when it still points to conn,
// so a stale session can't drop the entry of the session that replaced it.
func (r *Registry) RemoveIf(role string, conn *wsconn.Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.conns[role]; ok && current == conn {
		delete(r.conns, role)
		return true
	}
	return false
}

// Get returns the connection registered for role, or nil.
func (r *Registry) Get(role string) *wsconn.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conns[role]
}

func (r *Registry) IsConnected(role string) bool {
	conn := r.Get(role)
	return conn != nil && conn.IsOpen()
}

// Lookup returns a function resolving the role at call time.
func (r *Registry) Lookup(role string) func() *wsconn.Conn {
	return func() *wsconn.Conn {
		return r.Get(role)
	}
}
