package ilink3

// DisconnectReason is a typed enumeration of why requestDisconnect was
// invoked, so a host application can branch on the reason instead of
// string-matching a free-form message (mirrors the teacher's typed
// NTStatus-with-String() pattern for server error codes).
type DisconnectReason string

const (
	// ReasonFailedAuthentication marks an echo mismatch on a
	// NegotiationResponse or EstablishmentAck.
	ReasonFailedAuthentication DisconnectReason = "FAILED_AUTHENTICATION"

	// ReasonLowSequenceNumber marks a peer Sequence or business message
	// with a sequence number below nextRecvSeqNo.
	ReasonLowSequenceNumber DisconnectReason = "LOW_SEQUENCE_NUMBER"

	// ReasonNegotiateTimeout marks a Negotiate resend/retry timeout.
	ReasonNegotiateTimeout DisconnectReason = "NEGOTIATE_TIMEOUT"

	// ReasonEstablishTimeout marks an Establish resend/retry timeout.
	ReasonEstablishTimeout DisconnectReason = "ESTABLISH_TIMEOUT"

	// ReasonKeepaliveTimeout marks a two-interval keepalive expiry.
	ReasonKeepaliveTimeout DisconnectReason = "KEEPALIVE_TIMEOUT"

	// ReasonRemoteTerminate marks a Terminate received from the peer.
	ReasonRemoteTerminate DisconnectReason = "REMOTE_TERMINATE"

	// ReasonLocalTerminate marks a Terminate initiated locally and
	// completed (Unbinding -> Unbound).
	ReasonLocalTerminate DisconnectReason = "LOCAL_TERMINATE"

	// ReasonNegotiateRejected marks a NegotiationReject from the peer.
	ReasonNegotiateRejected DisconnectReason = "NEGOTIATE_REJECTED"

	// ReasonEstablishRejected marks an EstablishmentReject from the peer.
	ReasonEstablishRejected DisconnectReason = "ESTABLISH_REJECTED"

	// ReasonProtocolViolation marks a NotApplied that echoed an unexpected
	// uuid, when Config.TerminateOnNotAppliedUUIDMismatch is set. Other
	// session-layer messages with a wrong uuid are ignored.
	ReasonProtocolViolation DisconnectReason = "PROTOCOL_VIOLATION"
)

func (r DisconnectReason) String() string { return string(r) }
