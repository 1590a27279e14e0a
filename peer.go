package mqbroker

import (
	"log/slog"
	"sync"

	"github.com/gonzalop/mqbroker/internal/packets"
)

// Peer is the broker's in-process representation of one TCP connection. It
// owns the outbound packet channel its Writer task drains, shares a
// reference to whatever Session is currently bound to it, and carries a
// closing flag the Reader task uses to decide whether to keep forwarding
// commands for this connection.
//
// "Closing" and "released" are deliberately distinct: Close sets a soft
// flag observed by the Reader and the Command Loop (so SendClose still
// works — the Writer may have queued packets left to drain), while release
// is the one-time, mutex-guarded point where the outbound channel actually
// closes, letting the Writer's range loop end. Only the task that owns this
// Peer's lifecycle (the Reader, once its main loop returns) calls release;
// Send checks the same guard so it can never send on a closed channel.
type Peer struct {
	addr   string
	logger *slog.Logger

	mu       sync.Mutex
	session  *Session
	closing  bool
	released bool

	ch chan packets.Packet
}

// NewPeer constructs a Peer with a fresh outbound channel of the given
// capacity.
func NewPeer(addr string, queueSize int, logger *slog.Logger) *Peer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Peer{addr: addr, ch: make(chan packets.Packet, queueSize), logger: logger}
}

// Outbound returns the receive side of the peer's outbound channel, for the
// Writer task to drain.
func (p *Peer) Outbound() <-chan packets.Packet {
	return p.ch
}

// Addr returns the peer's remote address.
func (p *Peer) Addr() string {
	return p.addr
}

// Bind records session as the peer's currently bound Session, replacing any
// prior binding.
func (p *Peer) Bind(session *Session) {
	p.mu.Lock()
	p.session = session
	p.mu.Unlock()
}

// Session returns the currently bound Session, or nil.
func (p *Peer) Session() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// Closing reports whether Close has been called on this peer.
func (p *Peer) Closing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closing
}

// Close marks the peer as closing. Idempotent. After Close, the Reader task
// must stop forwarding commands for this peer, but Send/SendClose remain
// legal: the Writer may still have queued packets to drain.
func (p *Peer) Close() {
	p.mu.Lock()
	p.closing = true
	p.mu.Unlock()
}

// release closes the outbound channel, letting the Writer's drain loop end.
// It is called exactly once, by the Reader, after its own loop returns; the
// mutex it shares with Send makes this safe even if a command handler calls
// Send concurrently with connection teardown.
func (p *Peer) release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.released {
		p.released = true
		close(p.ch)
	}
}

// Send best-effort enqueues pkt onto the peer's outbound channel. If the
// channel has already been released, or is full under the bounded
// drop-on-full policy, the failure is logged but never surfaced to the
// caller: a slow or dead peer must never stall the Command Loop.
func (p *Peer) Send(pkt packets.Packet) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		p.logger.Warn("dropped outbound packet on released peer", "remote_addr", p.addr, "packet_type", packets.PacketNames[pkt.Type()])
		return
	}
	select {
	case p.ch <- pkt:
	default:
		p.logger.Warn("dropped outbound packet", "remote_addr", p.addr, "packet_type", packets.PacketNames[pkt.Type()])
	}
}

// SendClose enqueues pkt, then marks the peer as closing.
func (p *Peer) SendClose(pkt packets.Packet) {
	p.Send(pkt)
	p.Close()
}
