package mqbroker

import "sync"

// Registry is the concurrent map from client id to Session. Mutation
// (Take/Add) is exclusive to the Command Loop; Get and Iter may also be
// used by observability hooks such as the metrics gauge.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Take atomically removes and returns the Session keyed by clientID, if
// any. Combined with a subsequent Add inside CONNECT handling, this is the
// only way a Session is replaced; the Command Loop's single-threaded,
// non-yielding dispatch is what makes that two-step sequence atomic.
func (r *Registry) Take(clientID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[clientID]
	if ok {
		delete(r.sessions, clientID)
	}
	return s, ok
}

// Get returns the Session keyed by clientID without removing it.
func (r *Registry) Get(clientID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[clientID]
	return s, ok
}

// Add inserts session, keyed by its client id.
func (r *Registry) Add(session *Session) {
	r.mu.Lock()
	r.sessions[session.ClientID()] = session
	r.mu.Unlock()
}

// Iter calls fn for every Session currently in the registry, stopping early
// if fn returns false. The snapshot is taken under the lock but fn itself
// is called outside it, so fn must not call back into the Registry.
func (r *Registry) Iter(fn func(*Session) bool) {
	r.mu.Lock()
	snapshot := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		snapshot = append(snapshot, s)
	}
	r.mu.Unlock()

	for _, s := range snapshot {
		if !fn(s) {
			return
		}
	}
}

// Len returns the number of sessions currently registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
