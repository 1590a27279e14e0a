package mqbroker

import "github.com/google/uuid"

// newSessionID returns an opaque, process-unique session identifier. It is
// never exposed on the wire; it only identifies a Session internally (in
// logs and tests).
func newSessionID() string {
	return "session-" + uuid.NewString()
}

// newAssignedClientID returns a client id the CONNACK builder hands out
// when a CONNECT arrives with an empty client id.
func newAssignedClientID() string {
	return "broker-" + uuid.NewString()
}
