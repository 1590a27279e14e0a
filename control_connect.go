package mqbroker

import (
	"log/slog"

	"github.com/gonzalop/mqbroker/internal/packets"
)

// handleConnect implements §4.10's CONNECT rules: compute the CONNACK, bail
// out early on an unsuccessful reason code, then perform session takeover
// or creation under the Command Loop's implicit single-threaded lock.
func handleConnect(registry *Registry, settings *Settings, peer *Peer, connect *packets.ConnectPacket, logger *slog.Logger) {
	connack := BuildConnack(settings, connect)
	if connack.ReasonCode != packets.ReasonSuccess {
		peer.SendClose(connack)
		return
	}

	clientID := effectiveClientID(connect, connack)

	existing, hadExisting := registry.Take(clientID)
	if hadExisting {
		if oldPeer := existing.LivePeer(); oldPeer != nil {
			logger.Info("session taken over", "client_id", clientID, "remote_addr", oldPeer.Addr())
			oldPeer.SendClose(&packets.DisconnectPacket{ReasonCode: packets.ReasonSessionTakenOver})
		}
	}

	var session *Session
	switch {
	case hadExisting && !connect.CleanStart:
		session = existing
		session.BindPeer(peer)
		connack.SessionPresent = true
	default:
		session = NewSession(clientID)
		session.BindPeer(peer)
		connack.SessionPresent = false
	}

	registry.Add(session)
	peer.Bind(session)
	peer.Send(connack)

	logger.Info("connect accepted", "client_id", clientID, "session_id", session.ID(), "remote_addr", peer.Addr(), "session_present", connack.SessionPresent)
}
