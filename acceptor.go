package mqbroker

import (
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"
)

const acceptPollInterval = 1 * time.Second

// tcpListener is the subset of net.Listener this Acceptor needs: Accept,
// Close, and a deadline so it can poll for shutdown instead of blocking
// forever on Accept. *net.TCPListener satisfies this.
type tcpListener interface {
	net.Listener
	SetDeadline(time.Time) error
}

// RunAcceptor owns listener and spawns a Reader+Writer pair for every
// accepted connection until shutdown fires, then joins every connection's
// errgroup before returning so no goroutine outlives the Acceptor.
func RunAcceptor(listener tcpListener, commands chan<- Command, settings *Settings, shutdown Trigger, metrics *Metrics) {
	logger := settings.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var groups []*errgroup.Group

	for !shutdown.Fired() {
		if err := listener.SetDeadline(time.Now().Add(acceptPollInterval)); err != nil {
			logger.Error("failed to set accept deadline", "error", err)
			break
		}

		conn, err := listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			logger.Warn("accept failed", "error", err)
			continue
		}

		if metrics != nil {
			metrics.observeAccepted()
		}

		group := spawnConnection(conn, commands, settings, shutdown, logger, metrics)
		groups = append(groups, group)
	}

	for _, g := range groups {
		_ = g.Wait()
	}
	logger.Debug("acceptor task stopped")
}

// spawnConnection sets up the Peer, Writer, and Reader for one accepted
// socket, and returns the errgroup.Group joining both tasks.
func spawnConnection(conn net.Conn, commands chan<- Command, settings *Settings, shutdown Trigger, logger *slog.Logger, metrics *Metrics) *errgroup.Group {
	peer := NewPeer(conn.RemoteAddr().String(), settings.OutboundQueueSize, logger)

	var group errgroup.Group
	group.Go(func() error {
		RunWriter(conn, peer.Outbound(), logger)
		return nil
	})
	group.Go(func() error {
		defer conn.Close()
		defer peer.release()
		RunReader(peer, conn, commands, settings.KeepAlive, int(settings.MaximumPacketSize), shutdown, logger, metrics)
		return nil
	})
	return &group
}
