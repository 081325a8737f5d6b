package presence

import "sync"

// Registry tracks which user owns which realtime connection, process-wide.
// State is in-memory only; a restart discards it and clients re-register on
// reconnect.
type Registry struct {
	mut   sync.RWMutex
	conns map[string]string // userID -> connectionID
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]string),
	}
}

// Register maps the user to the connection, last writer wins. A reconnect
// simply overwrites the previous entry.
func (r *Registry) Register(userID, connectionID string) {
	if userID == "" || connectionID == "" {
		return
	}
	r.mut.Lock()
	r.conns[userID] = connectionID
	r.mut.Unlock()
}

// Unregister removes the user's entry only while it still points at the
// given connection, so a stale disconnect of a superseded connection cannot
// clobber a newer one.
func (r *Registry) Unregister(userID, connectionID string) {
	r.mut.Lock()
	if current, ok := r.conns[userID]; ok && current == connectionID {
		delete(r.conns, userID)
	}
	r.mut.Unlock()
}

// Lookup returns the user's active connection id, if any.
func (r *Registry) Lookup(userID string) (string, bool) {
	r.mut.RLock()
	connectionID, ok := r.conns[userID]
	r.mut.RUnlock()
	return connectionID, ok
}
