package ilink3

// Wire-layout constants for the gateway envelope, SOFH and SBE header.
//
// Framing layout (bit-exact): gateway-header || SOFH || SBE-header || payload.
const (
	// GatewayHeaderLen is the size in bytes of the fixed gateway envelope
	// that precedes every outbound message. It carries the connection id
	// assigned by the transport.
	GatewayHeaderLen = 8

	// SOFHLen is the size of the Simple Open Framing Header: a 4-byte
	// big-endian length followed by a 2-byte encoding type.
	SOFHLen = 6

	// SOFHEncodingType is the SBE-over-SOFH encoding type identifier.
	SOFHEncodingType uint16 = 0xEB50

	// SBEHeaderLen is the size of the SBE message header: blockLength,
	// templateId, schemaId and version, each a little-endian uint16.
	SBEHeaderLen = 8
)

// MissingOffset is the sentinel returned by the offset table when a
// template does not carry the given field.
const MissingOffset = -1

// BooleanFlagTrue is the single-byte encoding of a true possRetrans flag;
// any other byte value (typically 0x00) means false.
const BooleanFlagTrue byte = 0x01

// NotAwaitingRetransmit is the sentinel value of retransmitFillSeqNo when
// no retransmit request is currently outstanding.
const NotAwaitingRetransmit uint64 = 0

// AutomaticSequenceNumber is the configuration sentinel meaning "derive
// the initial sequence number from the last-seen value".
const AutomaticSequenceNumber int64 = -1

// SessionState enumerates the lifecycle states of an iLink3 client
// session, per spec.md §3.
type SessionState int

const (
	StateConnected SessionState = iota
	StateSentNegotiate
	StateRetryNegotiate
	StateNegotiated
	StateNegotiateRejected
	StateSentEstablish
	StateRetryEstablish
	StateEstablished
	StateAwaitingKeepalive
	StateRetransmitting
	StateResendTerminate
	StateResendTerminateAck
	StateUnbinding
	StateUnbound
	StateEstablishRejected
)

var sessionStateNames = [...]string{
	"Connected",
	"SentNegotiate",
	"RetryNegotiate",
	"Negotiated",
	"NegotiateRejected",
	"SentEstablish",
	"RetryEstablish",
	"Established",
	"AwaitingKeepalive",
	"Retransmitting",
	"ResendTerminate",
	"ResendTerminateAck",
	"Unbinding",
	"Unbound",
	"EstablishRejected",
}

func (s SessionState) String() string {
	if int(s) < 0 || int(s) >= len(sessionStateNames) {
		return "Unknown"
	}
	return sessionStateNames[s]
}

// FTI is the Failover Trading Indicator carried on Sequence messages.
type FTI uint8

const (
	FTIPrimary FTI = iota
	FTIBackup
)

// KeepAliveLapsed indicates, on a Sequence message, whether the sender's
// keepalive interval has elapsed since its last transmission.
type KeepAliveLapsed uint8

const (
	NotLapsed KeepAliveLapsed = iota
	Lapsed
)

// SBE template ids for the session-layer messages the core frames or
// parses directly. Application (business) templates are opaque to the
// core beyond the (seqNum, sendingTimeEpoch, possRetrans) field triplet.
const (
	TemplateNegotiate           uint16 = 500
	TemplateNegotiationResponse uint16 = 501
	TemplateNegotiationReject   uint16 = 502
	TemplateEstablish           uint16 = 503
	TemplateEstablishmentAck    uint16 = 504
	TemplateEstablishmentReject uint16 = 505
	TemplateSequence            uint16 = 506
	TemplateTerminate           uint16 = 507
	TemplateRetransmitRequest   uint16 = 508
	TemplateRetransmission      uint16 = 509
	TemplateRetransmitReject    uint16 = 510
	TemplateNotApplied          uint16 = 513
	TemplateBusinessReject      uint16 = 521
)

// SchemaID and SchemaVersion are the fixed SBE schema identifiers stamped
// into every SBE header this core emits. They are not protocol-specific
// beyond the single schema the core was generated against.
const (
	SchemaID      uint16 = 1
	SchemaVersion uint16 = 0
)
