package ilink3

import (
	"encoding/base64"
)

// mockTransport is an in-memory Transport that records every committed
// frame and can be toggled into back-pressure, mirroring the teacher's
// MockSMBBackend operation-tracking style.
type mockTransport struct {
	pressured bool
	closed    bool
	position  int64

	claimed   []byte
	committed [][]byte
}

func newMockTransport() *mockTransport {
	return &mockTransport{}
}

func (m *mockTransport) Claim(length int) ([]byte, ClaimResult) {
	if m.closed {
		return nil, ClaimResult{Err: ErrTransportClosed}
	}
	if m.pressured {
		return nil, ClaimResult{Err: ErrBackPressured}
	}
	m.claimed = make([]byte, length)
	m.position++
	return m.claimed, ClaimResult{Position: m.position}
}

func (m *mockTransport) Commit() {
	cp := make([]byte, len(m.claimed))
	copy(cp, m.claimed)
	m.committed = append(m.committed, cp)
	m.claimed = nil
}

func (m *mockTransport) last() []byte {
	if len(m.committed) == 0 {
		return nil
	}
	return m.committed[len(m.committed)-1]
}

// mockClock is a settable Clock for deterministic nanosecond timestamps.
type mockClock struct {
	nanos int64
}

func (c *mockClock) NowNanos() int64 { return c.nanos }

// mockHandler records every Handler callback invocation.
type mockHandler struct {
	businessMessages []mockBusinessMessage
	notAppliedCalls  []mockNotAppliedCall
	retransmitReject []mockRetransmitReject
	sequences        []mockSequenceCall
	errs             []error
	disconnects      int

	retransmitOnNotApplied bool
}

type mockBusinessMessage struct {
	templateID  uint16
	offset      int
	blockLength int
	version     uint16
	possRetrans bool
}

type mockNotAppliedCall struct {
	fromSeqNo uint64
	msgCount  uint64
}

type mockRetransmitReject struct {
	reason           string
	requestTimestamp int64
	errorCodes       int32
}

type mockSequenceCall struct {
	uuid      uint64
	nextSeqNo uint64
}

func (h *mockHandler) OnBusinessMessage(templateID uint16, buffer []byte, offset, blockLength int, version uint16, possRetrans bool) {
	h.businessMessages = append(h.businessMessages, mockBusinessMessage{templateID, offset, blockLength, version, possRetrans})
}

func (h *mockHandler) OnNotApplied(fromSeqNo uint64, msgCount uint64, resp *NotAppliedResponse) {
	h.notAppliedCalls = append(h.notAppliedCalls, mockNotAppliedCall{fromSeqNo, msgCount})
	resp.Retransmit = h.retransmitOnNotApplied
}

func (h *mockHandler) OnRetransmitReject(reason string, requestTimestamp int64, errorCodes int32) {
	h.retransmitReject = append(h.retransmitReject, mockRetransmitReject{reason, requestTimestamp, errorCodes})
}

func (h *mockHandler) OnSequence(uuid uint64, nextSeqNo uint64) {
	h.sequences = append(h.sequences, mockSequenceCall{uuid, nextSeqNo})
}

func (h *mockHandler) OnError(err error) {
	h.errs = append(h.errs, err)
}

func (h *mockHandler) OnDisconnect() {
	h.disconnects++
}

// mockInitiateReply records the single InitiateResult it is resolved with.
type mockInitiateReply struct {
	results []InitiateResult
}

func (r *mockInitiateReply) Resolve(result InitiateResult) {
	r.results = append(r.results, result)
}

func testUserKey() string {
	return base64.RawURLEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
}

// testConfig returns a valid Config wired to a fresh mockHandler.
func testConfig(h Handler) *Config {
	cfg := NewConfig("S1", "F1", testUserKey())
	cfg.RequestedKeepAliveIntervalInMs = 500
	cfg.Handler = h
	cfg.Logger = NullLogger{}
	return cfg
}

// newTestSession wires a Session over a mockTransport/mockClock/mockHandler
// with business template 600 registered at (seqNum=0, sendingTimeEpoch=8,
// possRetrans=16) over a 17-byte payload.
func newTestSession(t testingTB, cfg *Config) (*Session, *mockTransport, *mockClock, *mockInitiateReply) {
	t.Helper()
	transport := newMockTransport()
	clock := &mockClock{}
	offsets := NewOffsetTable()
	offsets.RegisterOffsets(businessTemplateID, 0, 8, 16)
	reply := &mockInitiateReply{}

	sess, err := NewSession(42, 1, cfg, transport, offsets, clock, reply)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return sess, transport, clock, reply
}

// businessTemplateID is the fake application template id used by tests.
const businessTemplateID uint16 = 600

// testingTB is the subset of *testing.T used by newTestSession, so it can
// be shared by both non-test helper code paths if ever needed.
type testingTB interface {
	Helper()
	Fatalf(format string, args ...interface{})
}
