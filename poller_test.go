package ilink3

import (
	"context"
	"testing"
	"time"
)

func TestPoller_AddRemoveTracksSessionCount(t *testing.T) {
	p := NewPoller(10*time.Millisecond, NullLogger{})
	h := &mockHandler{}
	sess, _, _, _ := newTestSession(t, testConfig(h))

	p.Add(sess)
	if len(p.sessions) != 1 {
		t.Fatalf("sessions after Add = %d, want 1", len(p.sessions))
	}
	p.Remove(sess)
	if len(p.sessions) != 0 {
		t.Fatalf("sessions after Remove = %d, want 0", len(p.sessions))
	}
}

func TestPoller_Run_DrivesSessionToSentNegotiate(t *testing.T) {
	p := NewPoller(2*time.Millisecond, NullLogger{})
	h := &mockHandler{}
	cfg := testConfig(h)
	cfg.RequestedKeepAliveIntervalInMs = 1
	sess, transport, _, _ := newTestSession(t, cfg)
	p.Add(sess)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			cancel()
			<-done
			t.Fatal("poller never drove the session to SentNegotiate")
		default:
		}
		if transport.last() != nil {
			break
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	<-done
}
