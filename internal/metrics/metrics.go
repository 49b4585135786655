package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vovakirdan/pinlive-server/internal/core"
)

const namespace = "pinlive"

// Metrics reports hub activity as Prometheus collectors.
type Metrics struct {
	sessionsOpened     prometheus.Counter
	sessionsClosed     prometheus.Counter
	handshakesRejected *prometheus.CounterVec
	commands           *prometheus.CounterVec
	commandsDropped    *prometheus.CounterVec
	eventsDelivered    *prometheus.CounterVec
	eventsDropped      *prometheus.CounterVec

	reg prometheus.Registerer
}

var _ core.Observer = (*Metrics)(nil)

// PresenceStats is the part of the hub the presence gauges read from.
type PresenceStats interface {
	OnlineUsers() int
	Connections() int
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_opened_total",
			Help:      "Authenticated websocket sessions opened.",
		}),
		sessionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_closed_total",
			Help:      "Websocket sessions torn down.",
		}),
		handshakesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshakes_rejected_total",
			Help:      "Connection attempts refused during the handshake.",
		}, []string{"reason"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Inbound commands routed by the hub.",
		}, []string{"event"}),
		commandsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_dropped_total",
			Help:      "Inbound frames ignored without a reply.",
		}, []string{"reason"}),
		eventsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_delivered_total",
			Help:      "Outbound events queued to a connection.",
		}, []string{"event"}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Outbound events dropped because a connection was too slow.",
		}, []string{"event"}),
		reg: reg,
	}

	reg.MustRegister(
		m.sessionsOpened,
		m.sessionsClosed,
		m.handshakesRejected,
		m.commands,
		m.commandsDropped,
		m.eventsDelivered,
		m.eventsDropped,
	)
	return m
}

// TrackPresence registers gauges that read the current presence counts on scrape.
func (m *Metrics) TrackPresence(stats PresenceStats) {
	m.reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_users",
			Help:      "Users with at least one live connection.",
		}, func() float64 { return float64(stats.OnlineUsers()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Live websocket connections.",
		}, func() float64 { return float64(stats.Connections()) }),
	)
}

func (m *Metrics) SessionOpened() { m.sessionsOpened.Inc() }

func (m *Metrics) SessionClosed() { m.sessionsClosed.Inc() }

func (m *Metrics) ConnectionRejected(reason string) {
	m.handshakesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) CommandHandled(kind core.CommandKind) {
	m.commands.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) CommandDropped(reason string) {
	m.commandsDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) EventsDelivered(kind core.EventKind, delivered, dropped int) {
	if delivered > 0 {
		m.eventsDelivered.WithLabelValues(kind.String()).Add(float64(delivered))
	}
	if dropped > 0 {
		m.eventsDropped.WithLabelValues(kind.String()).Add(float64(dropped))
	}
}
