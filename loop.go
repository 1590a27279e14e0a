package mqbroker

import (
	"log/slog"

	"github.com/gonzalop/mqbroker/internal/packets"
)

// RunCommandLoop is the single consumer of every Command produced by every
// Reader. It owns the Session Registry exclusively: all registry mutation
// happens on this goroutine, which is what makes the CONNECT takeover
// sequence (Take then Add) atomic without an explicit lock spanning both
// calls. The loop exits when commands closes, which happens once the
// Acceptor and every Reader have dropped their sender.
func RunCommandLoop(settings *Settings, registry *Registry, commands <-chan Command, shutdown Trigger, metrics *Metrics) {
	logger := settings.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if !settings.IsValid() {
		logger.Error("invalid settings at startup, firing shutdown")
		shutdown.Fire()
	}

	for cmd := range commands {
		if shutdown.Fired() {
			cmd.Peer.SendClose(&packets.DisconnectPacket{ReasonCode: packets.ReasonServerShuttingDown})
			continue
		}
		dispatch(settings, registry, cmd, logger, metrics)
	}
	logger.Debug("command loop stopped")
}

func dispatch(settings *Settings, registry *Registry, cmd Command, logger *slog.Logger, metrics *Metrics) {
	peer, pkt := cmd.Peer, cmd.Packet

	switch p := pkt.(type) {
	case *packets.ConnectPacket:
		handleConnect(registry, settings, peer, p, logger)

	case *packets.SubscribePacket:
		handleSubscribe(settings, peer, p)
		if metrics != nil {
			metrics.observeSubscribe(p)
		}

	case *packets.PingreqPacket:
		if peer.Session() == nil {
			handleUnsupported(peer)
			return
		}
		handlePingreq(peer)

	case *packets.PublishPacket:
		if peer.Session() == nil {
			handleUnsupported(peer)
			return
		}
		handlePublish(registry, p)
		if metrics != nil {
			metrics.observePublish()
		}

	case *packets.DisconnectPacket:
		handleDisconnect(peer)

	default:
		handleUnsupported(peer)
	}
}
