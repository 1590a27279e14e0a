package mqbroker

import "sync"

// Session is a durable, in-memory client identity. It survives reconnects
// (unless discarded by a clean_start CONNECT), and owns the client's
// Subscription Table and a reference to whichever Peer currently has it
// bound.
type Session struct {
	id       string
	clientID string

	Subscriptions *SubscriptionTable

	mu   sync.Mutex
	peer *Peer
}

// NewSession constructs a fresh Session with a new session id and an empty
// Subscription Table.
func NewSession(clientID string) *Session {
	return &Session{
		id:            newSessionID(),
		clientID:      clientID,
		Subscriptions: NewSubscriptionTable(),
	}
}

// ID returns the session's stable, wire-invisible identifier.
func (s *Session) ID() string {
	return s.id
}

// ClientID returns the client-chosen or broker-assigned client id this
// session is keyed by in the Registry.
func (s *Session) ClientID() string {
	return s.clientID
}

// BindPeer records peer as the session's current connection, replacing any
// prior one.
func (s *Session) BindPeer(peer *Peer) {
	s.mu.Lock()
	s.peer = peer
	s.mu.Unlock()
}

// Peer returns the session's currently bound Peer, or nil if the session
// has no live connection.
func (s *Session) Peer() *Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peer
}

// LivePeer returns the session's bound Peer if one exists and it has not
// started closing, or nil otherwise. This is the liveness check that
// substitutes for the source implementation's weak-reference "upgrade":
// instead of a pointer that can fail to resolve, we hold an ordinary
// pointer and ask its target whether it is still good for sending.
func (s *Session) LivePeer() *Peer {
	p := s.Peer()
	if p == nil || p.Closing() {
		return nil
	}
	return p
}
