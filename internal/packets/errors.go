package packets

import "errors"

// ErrMalformedPacket and ErrProtocolError are the two decode-error kinds a
// broker is expected to distinguish: a malformed packet broke the wire
// encoding itself, a protocol error is well-formed bytes that violate an
// MQTT v5 rule (an empty SUBSCRIBE payload, an oversized packet).
// Every error this package reports about a packet's bytes wraps one of these
// two sentinels so callers can classify it with errors.Is; errors from the
// underlying reader itself (such as io.EOF) are passed through and match
// neither.
var (
	ErrMalformedPacket = errors.New("packets: malformed packet")
	ErrProtocolError   = errors.New("packets: protocol error")
)
