package mqbroker

import (
	"bytes"
	"log/slog"
	"net"

	"github.com/gonzalop/mqbroker/internal/packets"
)

// RunWriter drains in, encoding and writing each packet to conn, until in
// closes (the Peer's release closes it once the paired Reader has
// returned). Encode errors drop the offending packet and continue;
// write errors are logged and also continue, since the paired Reader's next
// socket read is what actually observes a broken connection and tears the
// Peer down.
func RunWriter(conn net.Conn, in <-chan packets.Packet, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	addr := conn.RemoteAddr().String()

	var buf bytes.Buffer
	for pkt := range in {
		buf.Reset()
		if _, err := pkt.WriteTo(&buf); err != nil {
			logger.Error("failed to encode outbound packet", "remote_addr", addr, "packet_type", packets.PacketNames[pkt.Type()], "error", err)
			continue
		}
		if _, err := conn.Write(buf.Bytes()); err != nil {
			logger.Warn("failed to write outbound packet", "remote_addr", addr, "packet_type", packets.PacketNames[pkt.Type()], "error", err)
			continue
		}
	}
	logger.Debug("writer task stopped", "remote_addr", addr)
}
