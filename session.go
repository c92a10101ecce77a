package ilink3

import (
	"fmt"
	"time"
)

// Clock supplies the nanosecond-resolution wall clock used to stamp
// sendingTimeEpoch and request timestamps (spec.md §5 "Time is supplied
// externally"). Poll's own `now` parameter is a separate, millisecond,
// monotonic clock used only for timer comparisons (spec.md §9 "Timer
// type": the two are deliberately not unified).
type Clock interface {
	NowNanos() int64
}

// SystemClock is the default Clock, backed by the real wall clock.
type SystemClock struct{}

// NowNanos implements Clock.
func (SystemClock) NowNanos() int64 { return time.Now().UnixNano() }

// Session is the iLink3 client session state machine (spec.md §3, §4.4).
// All of its fields are touched only from the single poller goroutine;
// it carries no internal locking.
type Session struct {
	uuid         uint64
	connectionID uint64

	sessionID              string
	firmID                 string
	tradingSystemName      string
	tradingSystemVersion   string
	tradingSystemVendor    string
	keepAliveIntervalMs    int32
	retransmitLimit        int32
	terminateOnNAUMismatch bool
	skipNegotiate          bool // resume straight into Establish; see newSkipNegotiate doc.

	state SessionState

	nextSentSeqNo       uint64
	nextRecvSeqNo       uint64
	retransmitFillSeqNo uint64
	retransmitQueue     retransmitQueue

	lastNegotiateRequestTimestamp int64
	lastEstablishRequestTimestamp int64

	resendTime                int64
	nextReceiveMessageTimeInMs int64
	nextSendMessageTimeInMs    int64

	backpressuredNotApplied bool

	resendTerminateReason     string
	resendTerminateErrorCodes int32
	pendingDisconnectReason   DisconnectReason

	initiateReply InitiateReply
	initiateFired bool

	auth           *Authenticator
	framer         *Framer
	offsets        *OffsetTable
	clock          Clock
	store          SequenceStore
	handler        Handler
	logger         Logger
	metrics        SessionMetricsRecorder
	disconnectFunc func(DisconnectReason)
}

// NewSession creates a Session in Connected state for a freshly reported
// transport connection (spec.md §3 "Lifecycle"). Nothing is sent until
// the first Poll call.
func NewSession(uuid, connectionID uint64, cfg *Config, transport Transport, offsets *OffsetTable, clock Clock, reply InitiateReply) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	auth, err := NewAuthenticator(cfg.UserKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if offsets == nil {
		offsets = NewOffsetTable()
	}

	sentSeqNo := resolveInitialSentSeqNo(cfg)
	recvSeqNo := resolveInitialRecvSeqNo(cfg)

	return &Session{
		uuid:         uuid,
		connectionID: connectionID,

		sessionID:              cfg.SessionID,
		firmID:                 cfg.FirmID,
		tradingSystemName:      cfg.TradingSystemName,
		tradingSystemVersion:   cfg.TradingSystemVersion,
		tradingSystemVendor:    cfg.TradingSystemVendor,
		keepAliveIntervalMs:    cfg.RequestedKeepAliveIntervalInMs,
		retransmitLimit:        cfg.RetransmitRequestMessageLimit,
		terminateOnNAUMismatch: cfg.TerminateOnNotAppliedUUIDMismatch,
		skipNegotiate:          newSkipNegotiate(cfg, sentSeqNo, recvSeqNo),

		state: StateConnected,

		nextSentSeqNo: sentSeqNo,
		nextRecvSeqNo: recvSeqNo,

		initiateReply: reply,

		auth:           auth,
		framer:         NewFramer(transport, connectionID),
		offsets:        offsets,
		clock:          clock,
		store:          cfg.SequenceStore,
		handler:        cfg.Handler,
		logger:         WithSession(cfg.Logger, uuid, connectionID),
		metrics:        cfg.Metrics,
		disconnectFunc: cfg.DisconnectFunc,
	}, nil
}

// newSkipNegotiate decides whether a reconnecting session may skip
// straight to Establish. The source's "newlyAllocated" flag names a
// session that has no sequence state to resume; here that is exactly a
// session whose resolved initial sequence numbers are both still 1 even
// though reEstablishLastSession was requested (no prior value existed in
// the SequenceStore).
func newSkipNegotiate(cfg *Config, sentSeqNo, recvSeqNo uint64) bool {
	return cfg.ReEstablishLastSession && (sentSeqNo > 1 || recvSeqNo > 1)
}

// UUID returns the session's 64-bit identifier.
func (s *Session) UUID() uint64 { return s.uuid }

// ConnectionID returns the transport-assigned connection id.
func (s *Session) ConnectionID() uint64 { return s.connectionID }

// State returns the current lifecycle state.
func (s *Session) State() SessionState { return s.state }

// NextSentSeqNo returns the sequence number that will be stamped on the
// next successful TryClaim.
func (s *Session) NextSentSeqNo() uint64 { return s.nextSentSeqNo }

// NextRecvSeqNo returns the sequence number expected on the next
// in-order inbound application message.
func (s *Session) NextRecvSeqNo() uint64 { return s.nextRecvSeqNo }

// RetransmitFillSeqNo returns the last sequence number expected from the
// currently outstanding retransmit, or NotAwaitingRetransmit.
func (s *Session) RetransmitFillSeqNo() uint64 { return s.retransmitFillSeqNo }

// established reports whether tryClaim/terminate are currently legal.
func (s *Session) established() bool {
	return s.state == StateEstablished || s.state == StateAwaitingKeepalive
}

// TryClaim reserves space for an outbound application message (spec.md
// §4.4 "Public contract"). Valid only in Established or AwaitingKeepalive;
// any other state returns ErrInvalidState without mutating the session.
// On a committed claim it stamps seqNum (post-incrementing
// nextSentSeqNo) and sendingTimeEpoch where the template carries them,
// and leaves possRetrans at its zero-initialised false value.
func (s *Session) TryClaim(meta TemplateMetadata, payloadLength int) ([]byte, ClaimResult) {
	if !s.established() {
		return nil, ClaimResult{Err: ErrInvalidState}
	}
	payload, result := s.framer.claim(payloadLength, meta)
	if !result.Committed() {
		return nil, result
	}
	if s.offsets.HasSeqNum(meta.TemplateID) {
		s.offsets.WriteSeqNum(meta.TemplateID, payload, s.nextSentSeqNo)
		if s.store != nil {
			s.store.SaveSent(s.sessionID, s.nextSentSeqNo)
		}
		s.nextSentSeqNo++
	}
	if s.offsets.SendingTimeEpochOffset(meta.TemplateID) != MissingOffset {
		s.offsets.WriteSendingTimeEpoch(meta.TemplateID, payload, s.clock.NowNanos())
	}
	return payload, result
}

// Commit publishes a claim made with TryClaim and renews the send timer
// (spec.md §4.4 "Public contract").
func (s *Session) Commit(nowMs int64) {
	s.framer.commit()
	s.nextSendMessageTimeInMs = nowMs + int64(s.keepAliveIntervalMs)
	s.metrics.IncMessagesSent()
}

// Terminate sends a Terminate message. Valid only in Established or
// AwaitingKeepalive; any other state returns ErrInvalidState without
// mutating the session. On success the session moves to Unbinding; on
// back-pressure the reason/codes are parked and the session moves to
// ResendTerminate for retry on the next poll.
func (s *Session) Terminate(nowMs int64, reason string, errorCodes int32) ClaimResult {
	if !s.established() {
		return ClaimResult{Err: ErrInvalidState}
	}
	return s.terminateInternal(nowMs, reason, errorCodes, ReasonLocalTerminate)
}

func (s *Session) terminateInternal(nowMs int64, reason string, errorCodes int32, disconnectReason DisconnectReason) ClaimResult {
	ts := s.clock.NowNanos()
	result := s.framer.sendTerminate(s.uuid, ts, reason, errorCodes)
	s.pendingDisconnectReason = disconnectReason
	if !result.Committed() {
		s.resendTerminateReason = reason
		s.resendTerminateErrorCodes = errorCodes
		s.resendTime = nowMs
		s.state = StateResendTerminate
		return result
	}
	s.state = StateUnbinding
	s.nextSendMessageTimeInMs = nowMs + int64(s.keepAliveIntervalMs)
	return result
}

// RequestDisconnect asks the owner to drop the transport connection
// (spec.md §4.4 "Public contract"). The core never closes a socket
// itself.
func (s *Session) RequestDisconnect(reason DisconnectReason) {
	s.logger.Info("ilink3: requesting disconnect: %s", reason)
	if s.handler != nil {
		s.handler.OnDisconnect()
	}
	if s.disconnectFunc != nil {
		s.disconnectFunc(reason)
	}
}

// unbind moves the session to its terminal state and notifies the owner.
func (s *Session) unbind(reason DisconnectReason) {
	s.state = StateUnbound
	s.RequestDisconnect(reason)
}

// resolveInitiate fires the one-shot initiator callback exactly once
// (spec.md §9 "Exactly once initiator callback").
func (s *Session) resolveInitiate(result InitiateResult) {
	if s.initiateFired {
		return
	}
	s.initiateFired = true
	if s.initiateReply != nil {
		s.initiateReply.Resolve(result)
	}
}

func (s *Session) failInitiate(err error) {
	s.resolveInitiate(InitiateResult{Err: newSessionError(s.uuid, s.state, err)})
}

// Poll drives the state machine with the current monotonic millisecond
// time (spec.md §4.4 "Poll algorithm"). It is the only place sends are
// initiated outside of inbound event handlers and the public contract.
func (s *Session) Poll(nowMs int64) {
	switch s.state {
	case StateConnected:
		if s.skipNegotiate {
			s.pollSendEstablish(nowMs)
		} else {
			s.pollSendNegotiate(nowMs)
		}

	case StateSentNegotiate:
		if nowMs > s.resendTime {
			s.pollResendNegotiate(nowMs)
		}

	case StateRetryNegotiate:
		if nowMs > s.resendTime {
			s.failInitiate(ErrNegotiateTimeout)
			s.unbind(ReasonNegotiateTimeout)
		}

	case StateNegotiated:
		s.pollSendEstablish(nowMs)

	case StateSentEstablish:
		if nowMs > s.resendTime {
			s.pollResendEstablish(nowMs)
		}

	case StateRetryEstablish:
		if nowMs > s.resendTime {
			s.failInitiate(ErrEstablishTimeout)
			s.unbind(ReasonEstablishTimeout)
		}

	case StateEstablished:
		s.pollEstablished(nowMs)

	case StateAwaitingKeepalive:
		if nowMs > s.nextReceiveMessageTimeInMs {
			reason := fmt.Sprintf("%dms expired without message", 2*s.keepAliveIntervalMs)
			s.terminateInternal(nowMs, reason, 0, ReasonKeepaliveTimeout)
		}

	case StateRetransmitting:
		if s.backpressuredNotApplied {
			s.pollRetryNotAppliedResponse(nowMs)
		}

	case StateResendTerminate:
		if nowMs >= s.resendTime {
			s.pollResendTerminate(nowMs, StateUnbinding)
		}

	case StateResendTerminateAck:
		if nowMs >= s.resendTime {
			s.pollResendTerminate(nowMs, StateUnbound)
		}

	case StateUnbinding:
		if nowMs > s.nextSendMessageTimeInMs {
			s.unbind(s.pendingDisconnectReason)
		}

	case StateUnbound, StateNegotiateRejected, StateEstablishRejected:
		// Terminal; nothing to do.
	}
}

func (s *Session) pollSendNegotiate(nowMs int64) {
	ts := s.clock.NowNanos()
	sig := s.auth.HMAC(NegotiateCanonicalRequest(ts, s.uuid, s.sessionID, s.firmID))
	result := s.framer.sendNegotiate(s.uuid, ts, s.sessionID, s.firmID, sig)
	if !result.Committed() {
		return
	}
	s.lastNegotiateRequestTimestamp = ts
	s.resendTime = nowMs + int64(s.keepAliveIntervalMs)
	s.state = StateSentNegotiate
}

func (s *Session) pollResendNegotiate(nowMs int64) {
	ts := s.clock.NowNanos()
	sig := s.auth.HMAC(NegotiateCanonicalRequest(ts, s.uuid, s.sessionID, s.firmID))
	result := s.framer.sendNegotiate(s.uuid, ts, s.sessionID, s.firmID, sig)
	if !result.Committed() {
		return
	}
	s.lastNegotiateRequestTimestamp = ts
	s.resendTime = nowMs + int64(s.keepAliveIntervalMs)
	s.state = StateRetryNegotiate
}

func (s *Session) pollSendEstablish(nowMs int64) {
	ts := s.clock.NowNanos()
	sig := s.auth.HMAC(EstablishCanonicalRequest(ts, s.uuid, s.sessionID, s.firmID,
		s.tradingSystemName, s.tradingSystemVersion, s.tradingSystemVendor,
		s.nextSentSeqNo, s.keepAliveIntervalMs))
	result := s.framer.sendEstablish(s.uuid, ts, s.sessionID, s.firmID,
		s.tradingSystemName, s.tradingSystemVersion, s.tradingSystemVendor,
		s.nextSentSeqNo, s.keepAliveIntervalMs, sig)
	if !result.Committed() {
		return
	}
	s.lastEstablishRequestTimestamp = ts
	s.resendTime = nowMs + int64(s.keepAliveIntervalMs)
	s.state = StateSentEstablish
}

func (s *Session) pollResendEstablish(nowMs int64) {
	ts := s.clock.NowNanos()
	sig := s.auth.HMAC(EstablishCanonicalRequest(ts, s.uuid, s.sessionID, s.firmID,
		s.tradingSystemName, s.tradingSystemVersion, s.tradingSystemVendor,
		s.nextSentSeqNo, s.keepAliveIntervalMs))
	result := s.framer.sendEstablish(s.uuid, ts, s.sessionID, s.firmID,
		s.tradingSystemName, s.tradingSystemVersion, s.tradingSystemVendor,
		s.nextSentSeqNo, s.keepAliveIntervalMs, sig)
	if !result.Committed() {
		return
	}
	s.lastEstablishRequestTimestamp = ts
	s.resendTime = nowMs + int64(s.keepAliveIntervalMs)
	s.state = StateRetryEstablish
}

func (s *Session) pollEstablished(nowMs int64) {
	if nowMs > s.nextReceiveMessageTimeInMs {
		result := s.framer.sendSequence(s.uuid, s.nextSentSeqNo, FTIPrimary, Lapsed)
		if !result.Committed() {
			return
		}
		s.nextReceiveMessageTimeInMs = nowMs + int64(s.keepAliveIntervalMs)
		s.state = StateAwaitingKeepalive
		s.metrics.IncKeepalivesSent()
		return
	}
	if nowMs > s.nextSendMessageTimeInMs {
		result := s.framer.sendSequence(s.uuid, s.nextSentSeqNo, FTIPrimary, NotLapsed)
		if !result.Committed() {
			return
		}
		s.nextSendMessageTimeInMs = nowMs + int64(s.keepAliveIntervalMs)
		s.metrics.IncKeepalivesSent()
	}
}

func (s *Session) pollRetryNotAppliedResponse(nowMs int64) {
	result := s.framer.sendSequence(s.uuid, s.nextSentSeqNo, FTIPrimary, NotLapsed)
	if !result.Committed() {
		return
	}
	s.backpressuredNotApplied = false
	s.state = StateEstablished
}

func (s *Session) pollResendTerminate(nowMs int64, onSuccess SessionState) {
	ts := s.clock.NowNanos()
	result := s.framer.sendTerminate(s.uuid, ts, s.resendTerminateReason, s.resendTerminateErrorCodes)
	if !result.Committed() {
		s.resendTime = nowMs + int64(s.keepAliveIntervalMs)
		return
	}
	if onSuccess == StateUnbinding {
		s.nextSendMessageTimeInMs = nowMs + int64(s.keepAliveIntervalMs)
		s.state = StateUnbinding
		return
	}
	s.unbind(s.pendingDisconnectReason)
}

// ---- Inbound event handlers (spec.md §4.4 "Inbound event handlers") ----

// OnNegotiationResponse handles an inbound NegotiationResponse501.
func (s *Session) OnNegotiationResponse(nowMs int64, uuid uint64, requestTimestamp int64) {
	if uuid != s.uuid || requestTimestamp != s.lastNegotiateRequestTimestamp {
		s.failInitiate(ErrEchoMismatch)
		s.RequestDisconnect(ReasonFailedAuthentication)
		return
	}
	s.state = StateNegotiated
	s.pollSendEstablish(nowMs)
}

// OnNegotiationReject handles an inbound NegotiationReject502.
func (s *Session) OnNegotiationReject(nowMs int64, reason string, errorCodes int32) {
	s.state = StateNegotiateRejected
	s.failInitiate(fmt.Errorf("%w: %s", ErrNegotiateRejected, reason))
	s.RequestDisconnect(ReasonNegotiateRejected)
}

// OnEstablishmentAck handles an inbound EstablishmentAck504.
func (s *Session) OnEstablishmentAck(nowMs int64, uuid uint64, requestTimestamp int64, nextSeqNo, previousSeqNo, previousUUID uint64) {
	if uuid != s.uuid || requestTimestamp != s.lastEstablishRequestTimestamp {
		s.failInitiate(ErrEchoMismatch)
		s.RequestDisconnect(ReasonFailedAuthentication)
		return
	}
	s.state = StateEstablished
	s.nextReceiveMessageTimeInMs = nowMs + int64(s.keepAliveIntervalMs)
	s.nextSendMessageTimeInMs = nowMs + int64(s.keepAliveIntervalMs)
	s.resolveInitiate(InitiateResult{Session: s})

	if previousUUID == uuid && previousSeqNo+1 > s.nextRecvSeqNo {
		s.openGap(previousSeqNo+1, nowMs)
	}
	s.checkLowSequence(nowMs, nextSeqNo)
}

// OnEstablishmentReject handles an inbound EstablishmentReject505.
func (s *Session) OnEstablishmentReject(nowMs int64, uuid uint64, requestTimestamp int64, nextSeqNo uint64, reason string, errorCodes int32) {
	s.state = StateEstablishRejected
	s.failInitiate(fmt.Errorf("%w: %s", ErrEstablishRejected, reason))
	s.RequestDisconnect(ReasonEstablishRejected)
}

// OnTerminate handles an inbound Terminate507, whether peer-initiated or
// an acknowledgement of a Terminate this session sent.
func (s *Session) OnTerminate(nowMs int64, uuid uint64, requestTimestamp int64, reason string, errorCodes int32) {
	if uuid != s.uuid {
		return
	}
	if s.state == StateUnbinding {
		s.unbind(s.pendingDisconnectReason)
		return
	}
	s.pendingDisconnectReason = ReasonRemoteTerminate
	ts := s.clock.NowNanos()
	result := s.framer.sendTerminate(s.uuid, ts, reason, errorCodes)
	if !result.Committed() {
		s.resendTerminateReason = reason
		s.resendTerminateErrorCodes = errorCodes
		s.resendTime = nowMs
		s.state = StateResendTerminateAck
		return
	}
	s.unbind(ReasonRemoteTerminate)
}

// OnSequence handles an inbound Sequence506 (spec.md §9 "Sequence message
// sequence-number semantics": it jumps nextRecvSeqNo forward without
// triggering the gap workflow, unlike business messages).
func (s *Session) OnSequence(nowMs int64, uuid uint64, nextSeqNo uint64, fti FTI, lapsed KeepAliveLapsed) {
	if uuid != s.uuid {
		return
	}
	s.nextReceiveMessageTimeInMs = nowMs + int64(s.keepAliveIntervalMs)

	if s.checkLowSequence(nowMs, nextSeqNo) {
		return
	}
	s.nextRecvSeqNo = nextSeqNo
	if s.handler != nil {
		s.handler.OnSequence(uuid, nextSeqNo)
	}

	if lapsed == Lapsed {
		s.framer.sendSequence(s.uuid, s.nextSentSeqNo, FTIPrimary, NotLapsed)
	}
}

// checkLowSequence applies the low-sequence-number rule shared by
// OnEstablishmentAck, OnSequence and OnMessage.
func (s *Session) checkLowSequence(nowMs int64, seqNo uint64) bool {
	if seqNo >= s.nextRecvSeqNo {
		return false
	}
	reason := fmt.Sprintf("seqNo=%d,expecting=%d", seqNo, s.nextRecvSeqNo)
	s.terminateInternal(nowMs, reason, 0, ReasonLowSequenceNumber)
	if s.handler != nil {
		s.handler.OnError(newSessionError(s.uuid, s.state, ErrLowSequenceNumber))
	}
	return true
}

// OnNotApplied handles an inbound NotApplied513: the peer could not fill
// a gap in the messages this session sent. The actual resend of
// application-level messages happens outside the core; when the handler
// requests it, the session parks in Retransmitting until the owner
// calls OnReplayComplete.
func (s *Session) OnNotApplied(nowMs int64, uuid uint64, fromSeqNo, msgCount uint64) {
	if uuid != s.uuid {
		if s.terminateOnNAUMismatch {
			s.terminateInternal(nowMs, "NotApplied uuid mismatch", 0, ReasonProtocolViolation)
		} else {
			s.logger.Warn("ilink3: NotApplied from unexpected uuid %d, ignoring", uuid)
		}
		return
	}
	s.state = StateRetransmitting
	resp := NotAppliedResponse{}
	if s.handler != nil {
		s.handler.OnNotApplied(fromSeqNo, msgCount, &resp)
	}
	if resp.Retransmit {
		// Owner performs the out-of-band resend and signals completion
		// via OnReplayComplete.
		return
	}
	result := s.framer.sendSequence(s.uuid, s.nextSentSeqNo, FTIPrimary, NotLapsed)
	if !result.Committed() {
		s.backpressuredNotApplied = true
		return
	}
	s.state = StateEstablished
}

// OnReplayComplete returns the session to Established once the owner
// finishes an out-of-band resend requested via OnNotApplied.
func (s *Session) OnReplayComplete() {
	if s.state == StateRetransmitting {
		s.state = StateEstablished
	}
}

// OnRetransmitReject handles an inbound RetransmitReject510 for a
// RetransmitRequest this session issued.
func (s *Session) OnRetransmitReject(nowMs int64, uuid uint64, requestTimestamp int64, reason string, errorCodes int32) {
	if uuid != s.uuid {
		return
	}
	if s.handler != nil {
		s.handler.OnRetransmitReject(reason, requestTimestamp, errorCodes)
	}
	s.retransmitFilled(nowMs)
}

// OnMessage handles an inbound application (business) message (spec.md
// §4.4 "onMessage"). buffer[offset:offset+blockLength+...] is the
// template's payload region; templateID identifies it for offset lookup
// and handler dispatch.
func (s *Session) OnMessage(nowMs int64, templateID uint16, buffer []byte, offset int, blockLength, version uint16) {
	s.nextReceiveMessageTimeInMs = nowMs + int64(s.keepAliveIntervalMs)

	if s.state != StateEstablished {
		s.logger.Debug("ilink3: discarding message template=%d outside Established", templateID)
		return
	}

	payload := buffer[offset:]
	seqNo, hasSeqNo := s.offsets.ReadSeqNum(templateID, payload)
	if !hasSeqNo {
		// Control message with no independent sequencing; accept silently.
		return
	}
	possRetrans := s.offsets.PossRetrans(templateID, payload)

	if possRetrans && seqNo == s.retransmitFillSeqNo {
		s.dispatchBusiness(templateID, buffer, offset, blockLength, version, true)
		s.retransmitFilled(nowMs)
		return
	}
	if possRetrans {
		s.dispatchBusiness(templateID, buffer, offset, blockLength, version, true)
		return
	}

	if s.checkLowSequence(nowMs, seqNo) {
		return
	}
	if seqNo == s.nextRecvSeqNo {
		s.nextRecvSeqNo++
		if s.store != nil {
			s.store.SaveReceived(s.sessionID, seqNo)
		}
		s.metrics.IncMessagesReceived()
		s.dispatchBusiness(templateID, buffer, offset, blockLength, version, false)
		return
	}
	// seqNo > nextRecvSeqNo: gap.
	s.openGap(seqNo, nowMs)
}

func (s *Session) dispatchBusiness(templateID uint16, buffer []byte, offset int, blockLength, version uint16, possRetrans bool) {
	if s.handler != nil {
		s.handler.OnBusinessMessage(templateID, buffer, offset, int(blockLength), version, possRetrans)
	}
}

// openGap implements the bounded chunked retransmit gap workflow
// (spec.md §4.4 "Gap workflow").
func (s *Session) openGap(seqNo uint64, nowMs int64) {
	totalMsgCount := seqNo - s.nextRecvSeqNo
	if totalMsgCount == 0 {
		return
	}
	s.metrics.IncGapsDetected()
	chunks := chunkGap(s.nextRecvSeqNo, totalMsgCount, uint32(s.retransmitLimit))
	if len(chunks) == 0 {
		return
	}
	head := chunks[0]
	rest := chunks[1:]

	if s.retransmitFillSeqNo != NotAwaitingRetransmit {
		// A retransmit is already in flight: enqueue everything, just
		// advance nextRecvSeqNo past the newly observed gap.
		for _, c := range chunks {
			s.retransmitQueue.push(c.fromSeqNo, c.msgCount)
		}
		s.nextRecvSeqNo = seqNo + 1
		return
	}

	ts := s.clock.NowNanos()
	result := s.framer.sendRetransmitRequest(s.uuid, ts, head.fromSeqNo, uint32(head.msgCount))
	if !result.Committed() {
		// Nothing is recorded and nextRecvSeqNo is unchanged, so the next
		// out-of-order message detects the gap again and re-sends the
		// request. Poll does not retry it on its own.
		return
	}
	s.metrics.IncRetransmitRequests()
	for _, c := range rest {
		s.retransmitQueue.push(c.fromSeqNo, c.msgCount)
	}
	s.nextRecvSeqNo = seqNo + 1
	s.retransmitFillSeqNo = head.fromSeqNo + head.msgCount - 1
}

// retransmitFilled advances the retransmit queue once the in-flight
// chunk has been fully replayed (spec.md §9 "Retransmit queue head").
func (s *Session) retransmitFilled(nowMs int64) {
	next, ok := s.retransmitQueue.pop()
	if !ok {
		s.retransmitFillSeqNo = NotAwaitingRetransmit
		return
	}
	ts := s.clock.NowNanos()
	result := s.framer.sendRetransmitRequest(s.uuid, ts, next.fromSeqNo, uint32(next.msgCount))
	if !result.Committed() {
		// Leave it at the head for the next retransmitFilled call.
		s.retransmitQueue.chunks = append([]retransmitChunk{next}, s.retransmitQueue.chunks...)
		return
	}
	s.metrics.IncRetransmitRequests()
	s.retransmitFillSeqNo = next.fromSeqNo + next.msgCount - 1
}

// Dispatch decodes a session-layer message by templateID and routes it
// to the matching On* handler; any other templateID is forwarded to
// OnMessage as a business message. This is the single entry point a host
// transport loop needs once it has split an inbound frame into
// (templateID, payload).
func (s *Session) Dispatch(nowMs int64, templateID uint16, payload []byte, blockLength, version uint16) {
	switch templateID {
	case TemplateNegotiationResponse:
		d := decodeNegotiationResponse(payload)
		s.OnNegotiationResponse(nowMs, d.UUID, d.RequestTimestamp)
	case TemplateNegotiationReject:
		d := decodeNegotiationReject(payload)
		s.OnNegotiationReject(nowMs, d.Reason, d.ErrorCodes)
	case TemplateEstablishmentAck:
		d := decodeEstablishmentAck(payload)
		s.OnEstablishmentAck(nowMs, d.UUID, d.RequestTimestamp, d.NextSeqNo, d.PreviousSeqNo, d.PreviousUUID)
	case TemplateEstablishmentReject:
		d := decodeEstablishmentReject(payload)
		s.OnEstablishmentReject(nowMs, d.UUID, d.RequestTimestamp, d.NextSeqNo, d.Reason, d.ErrorCodes)
	case TemplateTerminate:
		d := decodeTerminate(payload)
		s.OnTerminate(nowMs, d.UUID, d.RequestTimestamp, d.Reason, d.ErrorCodes)
	case TemplateSequence:
		d := decodeSequence(payload)
		s.OnSequence(nowMs, d.UUID, d.NextSeqNo, d.FTI, d.KeepAliveLapsed)
	case TemplateNotApplied:
		d := decodeNotApplied(payload)
		s.OnNotApplied(nowMs, d.UUID, d.FromSeqNo, uint64(d.MsgCount))
	case TemplateRetransmitReject:
		d := decodeRetransmitReject(payload)
		s.OnRetransmitReject(nowMs, d.UUID, d.RequestTimestamp, d.Reason, d.ErrorCodes)
	default:
		s.OnMessage(nowMs, templateID, payload, 0, blockLength, version)
	}
}
