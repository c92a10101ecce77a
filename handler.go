package ilink3

// Handler is the user callback interface the core dispatches to
// (spec.md §6). All methods execute on the single poller thread and must
// not block; onNotApplied may synchronously set fields on resp but must
// not call tryClaim/terminate re-entrantly (spec.md §5 "Shared
// resources").
type Handler interface {
	// OnBusinessMessage is invoked for every in-order or successfully
	// retransmitted application message.
	OnBusinessMessage(templateID uint16, buffer []byte, offset, blockLength int, version uint16, possRetrans bool)

	// OnNotApplied is invoked when the peer reports a gap it cannot fill
	// from its own retransmission buffer. If the handler sets
	// resp.Retransmit=true, the session sends nothing and stays in
	// Retransmitting; the owner resends the range itself and then calls
	// Session.OnReplayComplete. Otherwise the session answers with a
	// Sequence and returns to Established.
	OnNotApplied(fromSeqNo uint64, msgCount uint64, resp *NotAppliedResponse)

	// OnRetransmitReject is invoked when a RetransmitRequest this session
	// issued was rejected by the peer.
	OnRetransmitReject(reason string, requestTimestamp int64, errorCodes int32)

	// OnSequence is invoked for every accepted Sequence message.
	OnSequence(uuid uint64, nextSeqNo uint64)

	// OnError is invoked for protocol violations and fatal conditions
	// observed after Established has been signaled to the initiator.
	OnError(err error)

	// OnDisconnect is invoked once the transport connection is asked to
	// close. The reason is reported separately to Config.DisconnectFunc,
	// which is responsible for actually dropping the transport.
	OnDisconnect()
}

// NotAppliedResponse is the mutable response record passed to
// OnNotApplied. The handler may only set Retransmit; it must not send.
type NotAppliedResponse struct {
	Retransmit bool
}

// InitiateResult is the one-shot outcome delivered to the initiator that
// created the session: exactly one of Session (success) or Err (failure)
// is set (spec.md §3 invariants, §9 "Exactly once initiator callback").
type InitiateResult struct {
	Session *Session
	Err     error
}

// InitiateReply is a one-shot completion callback, resolved exactly once
// on Established or on a Negotiate/Establish failure.
type InitiateReply interface {
	// Resolve delivers the result. Only called from the single poller
	// goroutine, and only once per session: the core guards delivery
	// with an internal fired flag, so a second Resolve from the core is
	// silently dropped rather than delivered twice.
	Resolve(result InitiateResult)
}

// InitiateReplyFunc adapts a plain function to InitiateReply.
type InitiateReplyFunc func(InitiateResult)

// Resolve implements InitiateReply.
func (f InitiateReplyFunc) Resolve(result InitiateResult) { f(result) }
