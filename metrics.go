package ilink3

import "github.com/prometheus/client_golang/prometheus"

// SessionMetricsRecorder is the counter sink a Session reports into.
// Kept as an interface (rather than a concrete Prometheus type) so the
// core doesn't force a metrics backend on a host that doesn't want one;
// Config.Metrics defaults to noopMetrics.
type SessionMetricsRecorder interface {
	IncMessagesSent()
	IncMessagesReceived()
	IncGapsDetected()
	IncRetransmitRequests()
	IncKeepalivesSent()
}

type noopMetrics struct{}

func (noopMetrics) IncMessagesSent()       {}
func (noopMetrics) IncMessagesReceived()   {}
func (noopMetrics) IncGapsDetected()       {}
func (noopMetrics) IncRetransmitRequests() {}
func (noopMetrics) IncKeepalivesSent()     {}

// PrometheusMetrics is a SessionMetricsRecorder backed by five plain
// prometheus.Counter values, each const-labeled with sessionId and
// registered directly with reg, so a host running several sessions gets
// them broken out per session without implementing prometheus.Collector
// itself.
type PrometheusMetrics struct {
	sessionID string

	messagesSent       prometheus.Counter
	messagesReceived   prometheus.Counter
	gapsDetected       prometheus.Counter
	retransmitRequests prometheus.Counter
	keepalivesSent     prometheus.Counter
}

// NewPrometheusMetrics creates counters for sessionID and registers them
// with reg. Passing a fresh prometheus.NewRegistry() per test keeps
// collector registration idempotent across repeated session creation.
func NewPrometheusMetrics(reg prometheus.Registerer, sessionID string) *PrometheusMetrics {
	labels := prometheus.Labels{"session_id": sessionID}
	m := &PrometheusMetrics{
		sessionID: sessionID,
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ilink3",
			Name:        "messages_sent_total",
			Help:        "Application messages sent on this session.",
			ConstLabels: labels,
		}),
		messagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ilink3",
			Name:        "messages_received_total",
			Help:        "In-order application messages accepted on this session.",
			ConstLabels: labels,
		}),
		gapsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ilink3",
			Name:        "gaps_detected_total",
			Help:        "Sequence-number gaps detected on this session.",
			ConstLabels: labels,
		}),
		retransmitRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ilink3",
			Name:        "retransmit_requests_total",
			Help:        "RetransmitRequest messages issued by this session.",
			ConstLabels: labels,
		}),
		keepalivesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ilink3",
			Name:        "keepalives_sent_total",
			Help:        "Sequence keepalive messages sent by this session.",
			ConstLabels: labels,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.messagesSent, m.messagesReceived, m.gapsDetected, m.retransmitRequests, m.keepalivesSent)
	}
	return m
}

func (m *PrometheusMetrics) IncMessagesSent()       { m.messagesSent.Inc() }
func (m *PrometheusMetrics) IncMessagesReceived()   { m.messagesReceived.Inc() }
func (m *PrometheusMetrics) IncGapsDetected()       { m.gapsDetected.Inc() }
func (m *PrometheusMetrics) IncRetransmitRequests() { m.retransmitRequests.Inc() }
func (m *PrometheusMetrics) IncKeepalivesSent()     { m.keepalivesSent.Inc() }
