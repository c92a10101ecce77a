package ilink3

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetrics_CountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg, "S1")

	m.IncMessagesSent()
	m.IncMessagesSent()
	m.IncMessagesReceived()
	m.IncGapsDetected()
	m.IncRetransmitRequests()
	m.IncKeepalivesSent()

	if got := testutil.ToFloat64(m.messagesSent); got != 2 {
		t.Errorf("messagesSent = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.messagesReceived); got != 1 {
		t.Errorf("messagesReceived = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.gapsDetected); got != 1 {
		t.Errorf("gapsDetected = %v, want 1", got)
	}
}

func TestNoopMetrics_NeverPanics(t *testing.T) {
	var m SessionMetricsRecorder = noopMetrics{}
	m.IncMessagesSent()
	m.IncMessagesReceived()
	m.IncGapsDetected()
	m.IncRetransmitRequests()
	m.IncKeepalivesSent()
}
