package mqbroker

import "github.com/gonzalop/mqbroker/internal/packets"

// handlePingreq implements §4.10's PINGREQ rule: always answer with a
// PINGRESP. The Command Loop calls it only for a peer with a bound session;
// a PINGREQ before CONNECT goes to handleUnsupported instead.
func handlePingreq(peer *Peer) {
	peer.Send(&packets.PingrespPacket{})
}
