package mqbroker

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/gonzalop/mqbroker/internal/packets"
)

// readPollInterval is the fixed read-deadline this broker uses to drive
// keep-alive checking without busy-waiting or a separate timer goroutine
// per connection.
const readPollInterval = 1 * time.Second

// RunReader reads and decodes packets from conn, forwarding each as a
// Command to commands, until the connection closes, the peer starts
// closing, the keep-alive deadline lapses, or shutdown fires. It owns peer
// strongly: when it returns, peer is considered gone and the caller should
// drop its reference (closing the peer's outbound channel once the paired
// Writer also notices).
func RunReader(peer *Peer, conn net.Conn, commands chan<- Command, keepAliveSeconds uint16, maxPacketSize int, shutdown Trigger, logger *slog.Logger, metrics *Metrics) {
	if logger == nil {
		logger = slog.Default()
	}
	addr := peer.Addr()

	var keepAliveDuration time.Duration
	var lastActivity time.Time
	if keepAliveSeconds != 0 {
		keepAliveDuration = time.Duration(float64(keepAliveSeconds) * 1.5 * float64(time.Second))
		lastActivity = time.Now()
	}

	defer logger.Debug("reader task stopped", "remote_addr", addr)

	for !peer.Closing() {
		if shutdown.Fired() {
			peer.SendClose(&packets.DisconnectPacket{ReasonCode: packets.ReasonServerShuttingDown})
			return
		}

		if err := conn.SetReadDeadline(time.Now().Add(readPollInterval)); err != nil {
			logger.Warn("failed to set read deadline", "remote_addr", addr, "error", err)
			peer.Close()
			return
		}

		pkt, err := packets.ReadPacket(conn, maxPacketSize)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if keepAliveDuration > 0 && time.Since(lastActivity) > keepAliveDuration {
					peer.SendClose(&packets.DisconnectPacket{ReasonCode: packets.ReasonKeepAliveTimeout})
					return
				}
				continue
			}

			if metrics != nil && !errors.Is(err, io.EOF) {
				metrics.DecodeErrorsTotal.Inc()
			}
			if peer.Session() != nil {
				reason := packets.ReasonCodeForDecodeError(err)
				peer.SendClose(&packets.DisconnectPacket{ReasonCode: reason})
			} else {
				peer.Close()
			}
			return
		}

		if peer.Closing() {
			return
		}

		// The Command channel is sized generously (Settings.CommandQueueSize)
		// and the Broker closes it only after the Acceptor has joined every
		// Reader, so it cannot be closed out from under this send; a full channel blocks this
		// Reader briefly rather than dropping a client-issued command (see
		// the backpressure policy this design follows).
		commands <- Command{Peer: peer, Packet: pkt}
		lastActivity = time.Now()
	}
}
