package ilink3

import (
	"context"
	"sync"
	"time"

	"github.com/rs/xid"
)

// Poller drives one or more Sessions from a single goroutine on a fixed
// tick, the thin "Poller" component in spec.md §2. All state mutation
// happens inside Session.Poll on this goroutine; adding or removing a
// session is the only operation that crosses goroutines, so it is the
// only thing guarded by a mutex.
type Poller struct {
	id       xid.ID
	interval time.Duration
	logger   Logger

	mu       sync.Mutex
	sessions []*Session
}

// NewPoller creates a Poller that calls Poll on every registered Session
// once per interval. id is a correlation id for logs, minted fresh per
// poller instance.
func NewPoller(interval time.Duration, logger Logger) *Poller {
	if logger == nil {
		logger = NullLogger{}
	}
	return &Poller{
		id:       xid.New(),
		interval: interval,
		logger:   logger,
	}
}

// Add registers a session to be polled. Safe to call concurrently with
// Run.
func (p *Poller) Add(s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions = append(p.sessions, s)
}

// Remove unregisters a session, e.g. once it reaches StateUnbound.
func (p *Poller) Remove(s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, sess := range p.sessions {
		if sess == s {
			p.sessions = append(p.sessions[:i], p.sessions[i+1:]...)
			return
		}
	}
}

// Run blocks, polling every registered session once per tick, until ctx
// is canceled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Debug("ilink3: poller %s started, interval=%s", p.id.String(), p.interval)
	for {
		select {
		case <-ticker.C:
			p.tick()
		case <-ctx.Done():
			p.logger.Debug("ilink3: poller %s stopped", p.id.String())
			return
		}
	}
}

func (p *Poller) tick() {
	now := time.Now().UnixMilli()

	p.mu.Lock()
	sessions := make([]*Session, len(p.sessions))
	copy(sessions, p.sessions)
	p.mu.Unlock()

	for _, s := range sessions {
		s.Poll(now)
		if s.State() == StateUnbound {
			p.Remove(s)
		}
	}
}
