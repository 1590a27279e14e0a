package mqbroker

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Broker wires together a Settings, a Session Registry, the shared Command
// channel, and a Shutdown Trigger into a runnable MQTT v5 broker core. The
// process entry point (cmd/mqbrokerd) is the only external collaborator;
// everything else needed to run the broker lives in this package.
type Broker struct {
	Settings *Settings
	Registry *Registry
	Shutdown Trigger
	Metrics  *Metrics

	commands chan Command
	logger   *slog.Logger
}

// NewBroker constructs a Broker from settings. If settings.MetricsEnabled,
// metrics are registered on reg (reg may be nil otherwise).
func NewBroker(settings *Settings, reg prometheus.Registerer) *Broker {
	var metrics *Metrics
	if settings.MetricsEnabled && reg != nil {
		metrics = NewMetrics(reg)
	}
	return &Broker{
		Settings: settings,
		Registry: NewRegistry(),
		Shutdown: NewTrigger(),
		Metrics:  metrics,
		commands: make(chan Command, settings.CommandQueueSize),
		logger:   settings.Logger,
	}
}

// Run listens on settings.BindAddress and runs the Acceptor and Command
// Loop until the Broker's Shutdown trigger fires, then blocks until both
// have drained. Run is the single call the reference binary needs to start
// a broker instance.
func (b *Broker) Run() error {
	ln, err := net.Listen("tcp", b.Settings.BindAddress)
	if err != nil {
		return fmt.Errorf("mqbroker: listen on %s: %w", b.Settings.BindAddress, err)
	}
	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		ln.Close()
		return fmt.Errorf("mqbroker: listener for %s does not support deadlines", b.Settings.BindAddress)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		RunAcceptor(tcpLn, b.commands, b.Settings, b.Shutdown, b.Metrics)
		close(b.commands)
	}()

	if b.Metrics != nil {
		go b.refreshMetricsLoop()
	}

	RunCommandLoop(b.Settings, b.Registry, b.commands, b.Shutdown, b.Metrics)
	<-done
	return ln.Close()
}

// Stop fires the Shutdown trigger, starting the graceful-drain sequence
// Run's goroutines observe on their own poll cadence.
func (b *Broker) Stop() {
	b.Shutdown.Fire()
}

func (b *Broker) refreshMetricsLoop() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		if b.Shutdown.Fired() {
			return
		}
		<-ticker.C
		b.Metrics.RefreshSessionGauge(b.Registry)
	}
}
