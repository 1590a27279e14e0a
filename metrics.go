package mqbroker

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gonzalop/mqbroker/internal/packets"
)

// Metrics holds the broker's Prometheus instrumentation. It is owned by the
// Broker and registered on a caller-supplied prometheus.Registerer so the
// reference binary can expose it on /metrics without this package taking a
// dependency on any particular HTTP server.
type Metrics struct {
	Sessions           prometheus.Gauge
	ConnectionsAccepted prometheus.Counter
	PublishesTotal     prometheus.Counter
	Subscriptions      prometheus.Gauge
	DecodeErrorsTotal  prometheus.Counter
}

// NewMetrics constructs a Metrics and registers all of its collectors on
// reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mqbroker_sessions",
			Help: "Number of sessions currently held in the session registry.",
		}),
		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqbroker_connections_accepted_total",
			Help: "Total number of TCP connections accepted.",
		}),
		PublishesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqbroker_publishes_total",
			Help: "Total number of PUBLISH packets processed by the command loop.",
		}),
		Subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mqbroker_subscriptions",
			Help: "Number of topic filters received in SUBSCRIBE packets; rejected and repeated filters are included and entries are never subtracted.",
		}),
		DecodeErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqbroker_decode_errors_total",
			Help: "Total number of packets that failed to decode.",
		}),
	}
	reg.MustRegister(m.Sessions, m.ConnectionsAccepted, m.PublishesTotal, m.Subscriptions, m.DecodeErrorsTotal)
	return m
}

func (m *Metrics) observeAccepted() {
	m.ConnectionsAccepted.Inc()
}

func (m *Metrics) observePublish() {
	m.PublishesTotal.Inc()
}

func (m *Metrics) observeSubscribe(p *packets.SubscribePacket) {
	m.Subscriptions.Add(float64(len(p.Filters)))
}

// RefreshSessionGauge sets the sessions gauge to the registry's current
// size. Called periodically by the Broker, since the Command Loop itself
// should not pay a metrics-update cost on every single command.
func (m *Metrics) RefreshSessionGauge(registry *Registry) {
	m.Sessions.Set(float64(registry.Len()))
}
