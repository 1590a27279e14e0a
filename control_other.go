package mqbroker

import "github.com/gonzalop/mqbroker/internal/packets"

// handleDisconnect implements the client-initiated half of MQTT's DISCONNECT
// exchange: the broker never acknowledges it, it simply stops treating the
// peer as live so the Reader's next socket read tears the connection down.
func handleDisconnect(peer *Peer) {
	peer.Close()
}

// handleUnsupported implements §4.10's "any other packet" rule: a packet
// type this broker doesn't implement at all (PUBACK/PUBREC/UNSUBSCRIBE/AUTH
// all decode to *packets.UnknownPacket), or a PINGREQ or PUBLISH received on
// a peer that hasn't completed CONNECT yet (CONNECT, SUBSCRIBE and
// DISCONNECT carry their own handling), gets an
// ImplementationSpecificError ConnAck and the connection closes.
func handleUnsupported(peer *Peer) {
	peer.SendClose(&packets.ConnackPacket{ReasonCode: packets.ReasonImplementationSpecific})
}
