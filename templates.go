package ilink3

// Fixed-width field lengths for the session-layer SBE templates. These
// are block-length constants, not protocol-mandated values from any
// particular exchange schema; a host gateway wires its generated SBE
// codec's real constants in where it replaces these encode/decode
// helpers with generated code.
const (
	sessionIDFieldLen          = 20
	firmIDFieldLen             = 10
	tradingSystemNameLen       = 20
	tradingSystemVersionLen    = 10
	tradingSystemVendorLen     = 20
	reasonFieldLen             = 32
	hmacSignatureLen           = 32
)

// Block lengths (payload size in bytes) for each session-layer template.
const (
	negotiateBlockLength           = 8 + 8 + sessionIDFieldLen + firmIDFieldLen + hmacSignatureLen
	negotiationResponseBlockLength = 8 + 8
	negotiationRejectBlockLength   = 8 + 8 + reasonFieldLen + 4
	establishBlockLength           = 8 + 8 + sessionIDFieldLen + firmIDFieldLen + tradingSystemNameLen + tradingSystemVersionLen + tradingSystemVendorLen + 8 + 4 + hmacSignatureLen
	establishmentAckBlockLength    = 8 + 8 + 8 + 8 + 8 + 4
	establishmentRejectBlockLength = 8 + 8 + 8 + reasonFieldLen + 4
	terminateBlockLength           = 8 + 8 + reasonFieldLen + 4
	sequenceBlockLength            = 8 + 8 + 1 + 1
	retransmitRequestBlockLength   = 8 + 8 + 8 + 4
	retransmitRejectBlockLength    = 8 + 8 + reasonFieldLen + 4
	notAppliedBlockLength          = 8 + 8 + 4
)

// writeFixedString writes s into an n-byte field, truncating if too long
// and zero-padding the remainder.
func writeFixedString(w *ByteWriter, s string, n int) {
	b := []byte(s)
	if len(b) > n {
		b = b[:n]
	}
	w.WriteBytes(b)
	w.WriteZeros(n - len(b))
}

// readFixedString reads an n-byte field and trims trailing zero padding.
func readFixedString(r *ByteReader, n int) string {
	b := r.ReadBytes(n)
	i := len(b)
	for i > 0 && b[i-1] == 0 {
		i--
	}
	return string(b[:i])
}

// negotiatePayload encodes a Negotiate500 payload.
func negotiatePayload(uuid uint64, requestTimestamp int64, sessionID, firmID string, hmacSignature []byte) []byte {
	w := NewByteWriter(negotiateBlockLength)
	w.WriteUint64(uuid)
	w.WriteInt64(requestTimestamp)
	writeFixedString(w, sessionID, sessionIDFieldLen)
	writeFixedString(w, firmID, firmIDFieldLen)
	sig := make([]byte, hmacSignatureLen)
	copy(sig, hmacSignature)
	w.WriteBytes(sig)
	return w.Bytes()
}

// establishPayload encodes an Establish503 payload.
func establishPayload(
	uuid uint64, requestTimestamp int64, sessionID, firmID string,
	tradingSystemName, tradingSystemVersion, tradingSystemVendor string,
	nextSentSeqNo uint64, keepAliveIntervalMs int32, hmacSignature []byte,
) []byte {
	w := NewByteWriter(establishBlockLength)
	w.WriteUint64(uuid)
	w.WriteInt64(requestTimestamp)
	writeFixedString(w, sessionID, sessionIDFieldLen)
	writeFixedString(w, firmID, firmIDFieldLen)
	writeFixedString(w, tradingSystemName, tradingSystemNameLen)
	writeFixedString(w, tradingSystemVersion, tradingSystemVersionLen)
	writeFixedString(w, tradingSystemVendor, tradingSystemVendorLen)
	w.WriteUint64(nextSentSeqNo)
	w.WriteUint32(uint32(keepAliveIntervalMs))
	sig := make([]byte, hmacSignatureLen)
	copy(sig, hmacSignature)
	w.WriteBytes(sig)
	return w.Bytes()
}

// terminatePayload encodes a Terminate507 payload.
func terminatePayload(uuid uint64, requestTimestamp int64, reason string, errorCodes int32) []byte {
	w := NewByteWriter(terminateBlockLength)
	w.WriteUint64(uuid)
	w.WriteInt64(requestTimestamp)
	writeFixedString(w, reason, reasonFieldLen)
	w.WriteUint32(uint32(errorCodes))
	return w.Bytes()
}

// sequencePayload encodes a Sequence506 payload.
func sequencePayload(uuid uint64, nextSeqNo uint64, fti FTI, lapsed KeepAliveLapsed) []byte {
	w := NewByteWriter(sequenceBlockLength)
	w.WriteUint64(uuid)
	w.WriteUint64(nextSeqNo)
	w.WriteOneByte(byte(fti))
	w.WriteOneByte(byte(lapsed))
	return w.Bytes()
}

// retransmitRequestPayload encodes a RetransmitRequest508 payload.
func retransmitRequestPayload(uuid uint64, requestTimestamp int64, fromSeqNo uint64, msgCount uint32) []byte {
	w := NewByteWriter(retransmitRequestBlockLength)
	w.WriteUint64(uuid)
	w.WriteInt64(requestTimestamp)
	w.WriteUint64(fromSeqNo)
	w.WriteUint32(msgCount)
	return w.Bytes()
}

// decodedNegotiationResponse is the parsed form of a NegotiationResponse501.
type decodedNegotiationResponse struct {
	UUID             uint64
	RequestTimestamp int64
}

func decodeNegotiationResponse(payload []byte) decodedNegotiationResponse {
	r := NewByteReader(payload)
	return decodedNegotiationResponse{
		UUID:             r.ReadUint64(),
		RequestTimestamp: r.ReadInt64(),
	}
}

// decodedNegotiationReject is the parsed form of a NegotiationReject502.
type decodedNegotiationReject struct {
	UUID             uint64
	RequestTimestamp int64
	Reason           string
	ErrorCodes       int32
}

func decodeNegotiationReject(payload []byte) decodedNegotiationReject {
	r := NewByteReader(payload)
	uuid := r.ReadUint64()
	ts := r.ReadInt64()
	reason := readFixedString(r, reasonFieldLen)
	codes := int32(r.ReadUint32())
	return decodedNegotiationReject{uuid, ts, reason, codes}
}

// decodedEstablishmentAck is the parsed form of an EstablishmentAck504.
type decodedEstablishmentAck struct {
	UUID             uint64
	RequestTimestamp int64
	NextSeqNo        uint64
	PreviousSeqNo    uint64
	PreviousUUID     uint64
}

func decodeEstablishmentAck(payload []byte) decodedEstablishmentAck {
	r := NewByteReader(payload)
	return decodedEstablishmentAck{
		UUID:             r.ReadUint64(),
		RequestTimestamp: r.ReadInt64(),
		NextSeqNo:        r.ReadUint64(),
		PreviousSeqNo:    r.ReadUint64(),
		PreviousUUID:     r.ReadUint64(),
	}
}

// decodedEstablishmentReject is the parsed form of an EstablishmentReject505.
type decodedEstablishmentReject struct {
	UUID             uint64
	RequestTimestamp int64
	NextSeqNo        uint64
	Reason           string
	ErrorCodes       int32
}

func decodeEstablishmentReject(payload []byte) decodedEstablishmentReject {
	r := NewByteReader(payload)
	uuid := r.ReadUint64()
	ts := r.ReadInt64()
	nextSeqNo := r.ReadUint64()
	reason := readFixedString(r, reasonFieldLen)
	codes := int32(r.ReadUint32())
	return decodedEstablishmentReject{uuid, ts, nextSeqNo, reason, codes}
}

// decodedTerminate is the parsed form of a Terminate507.
type decodedTerminate struct {
	UUID             uint64
	RequestTimestamp int64
	Reason           string
	ErrorCodes       int32
}

func decodeTerminate(payload []byte) decodedTerminate {
	r := NewByteReader(payload)
	uuid := r.ReadUint64()
	ts := r.ReadInt64()
	reason := readFixedString(r, reasonFieldLen)
	codes := int32(r.ReadUint32())
	return decodedTerminate{uuid, ts, reason, codes}
}

// decodedSequence is the parsed form of a Sequence506.
type decodedSequence struct {
	UUID            uint64
	NextSeqNo       uint64
	FTI             FTI
	KeepAliveLapsed KeepAliveLapsed
}

func decodeSequence(payload []byte) decodedSequence {
	r := NewByteReader(payload)
	uuid := r.ReadUint64()
	nextSeqNo := r.ReadUint64()
	fti := FTI(r.ReadOneByte())
	lapsed := KeepAliveLapsed(r.ReadOneByte())
	return decodedSequence{uuid, nextSeqNo, fti, lapsed}
}

// decodedNotApplied is the parsed form of a NotApplied513.
type decodedNotApplied struct {
	UUID      uint64
	FromSeqNo uint64
	MsgCount  uint32
}

func decodeNotApplied(payload []byte) decodedNotApplied {
	r := NewByteReader(payload)
	uuid := r.ReadUint64()
	fromSeqNo := r.ReadUint64()
	msgCount := r.ReadUint32()
	return decodedNotApplied{uuid, fromSeqNo, msgCount}
}

// decodedRetransmitReject is the parsed form of a RetransmitReject510.
type decodedRetransmitReject struct {
	UUID             uint64
	RequestTimestamp int64
	Reason           string
	ErrorCodes       int32
}

func decodeRetransmitReject(payload []byte) decodedRetransmitReject {
	r := NewByteReader(payload)
	uuid := r.ReadUint64()
	ts := r.ReadInt64()
	reason := readFixedString(r, reasonFieldLen)
	codes := int32(r.ReadUint32())
	return decodedRetransmitReject{uuid, ts, reason, codes}
}
