package mqbroker

import "github.com/gonzalop/mqbroker/internal/packets"

// Command is the in-process message a Reader sends to the Command Loop: a
// reference to the peer that produced it, and the decoded packet. No
// ordering guarantee exists between commands from different peers; commands
// from a single peer are delivered FIFO.
type Command struct {
	Peer   *Peer
	Packet packets.Packet
}
