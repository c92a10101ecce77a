package ilink3

// TemplateMetadata is the fixed SBE header content for one message
// template: its block length, template id, schema id and version
// (spec.md §4.1).
type TemplateMetadata struct {
	BlockLength uint16
	TemplateID  uint16
	SchemaID    uint16
	Version     uint16
}

// Framer composes the on-wire layout for an outbound iLink3 message:
// gateway header || SOFH || SBE header || payload, claimed as one
// contiguous region of the transport's outbound buffer (spec.md §4.1).
type Framer struct {
	transport    Transport
	connectionID uint64

	claimedBuf []byte
	payloadOff int
}

// NewFramer creates a Framer that claims/commits through transport on
// behalf of the session identified by connectionID.
func NewFramer(transport Transport, connectionID uint64) *Framer {
	return &Framer{transport: transport, connectionID: connectionID}
}

// claim reserves GatewayHeaderLen+SOFHLen+SBEHeaderLen+payloadLength
// contiguous bytes, writes the three fixed headers, and returns the
// payload region for the caller to fill plus the claim result. On
// back-pressure the returned payload slice is nil and result.Pressured()
// is true; the Framer does not mutate any session state itself.
func (f *Framer) claim(payloadLength int, meta TemplateMetadata) ([]byte, ClaimResult) {
	total := GatewayHeaderLen + SOFHLen + SBEHeaderLen + payloadLength
	buf, result := f.transport.Claim(total)
	if !result.Committed() {
		return nil, result
	}

	w := ByteWriter{data: buf[:0]}
	// Gateway header: connection id.
	w.WriteUint64(f.connectionID)
	// SOFH: total SBE length (SOFH + SBE header + payload), then encoding type.
	// The length field does NOT include the gateway envelope (spec.md §4.1 invariant).
	w.WriteUint32BE(uint32(SOFHLen + SBEHeaderLen + payloadLength))
	w.WriteUint16(SOFHEncodingType)
	// SBE header.
	w.WriteUint16(meta.BlockLength)
	w.WriteUint16(meta.TemplateID)
	w.WriteUint16(meta.SchemaID)
	w.WriteUint16(meta.Version)

	f.claimedBuf = buf
	f.payloadOff = w.Len()
	return buf[w.Len() : w.Len()+payloadLength], result
}

// commit publishes the previously claimed region.
func (f *Framer) commit() {
	f.transport.Commit()
	f.claimedBuf = nil
}

// sendFramed claims, copies payload into place, and commits in one step.
// Used by every sendXxx helper below.
func (f *Framer) sendFramed(payload []byte, meta TemplateMetadata) ClaimResult {
	dst, result := f.claim(len(payload), meta)
	if !result.Committed() {
		return result
	}
	copy(dst, payload)
	f.commit()
	return result
}

func (f *Framer) sendNegotiate(uuid uint64, requestTimestamp int64, sessionID, firmID string, hmacSignature []byte) ClaimResult {
	payload := negotiatePayload(uuid, requestTimestamp, sessionID, firmID, hmacSignature)
	return f.sendFramed(payload, TemplateMetadata{
		BlockLength: negotiateBlockLength, TemplateID: TemplateNegotiate, SchemaID: SchemaID, Version: SchemaVersion,
	})
}

func (f *Framer) sendEstablish(
	uuid uint64, requestTimestamp int64, sessionID, firmID string,
	tradingSystemName, tradingSystemVersion, tradingSystemVendor string,
	nextSentSeqNo uint64, keepAliveIntervalMs int32, hmacSignature []byte,
) ClaimResult {
	payload := establishPayload(uuid, requestTimestamp, sessionID, firmID,
		tradingSystemName, tradingSystemVersion, tradingSystemVendor,
		nextSentSeqNo, keepAliveIntervalMs, hmacSignature)
	return f.sendFramed(payload, TemplateMetadata{
		BlockLength: establishBlockLength, TemplateID: TemplateEstablish, SchemaID: SchemaID, Version: SchemaVersion,
	})
}

func (f *Framer) sendTerminate(uuid uint64, requestTimestamp int64, reason string, errorCodes int32) ClaimResult {
	payload := terminatePayload(uuid, requestTimestamp, reason, errorCodes)
	return f.sendFramed(payload, TemplateMetadata{
		BlockLength: terminateBlockLength, TemplateID: TemplateTerminate, SchemaID: SchemaID, Version: SchemaVersion,
	})
}

func (f *Framer) sendSequence(uuid uint64, nextSeqNo uint64, fti FTI, lapsed KeepAliveLapsed) ClaimResult {
	payload := sequencePayload(uuid, nextSeqNo, fti, lapsed)
	return f.sendFramed(payload, TemplateMetadata{
		BlockLength: sequenceBlockLength, TemplateID: TemplateSequence, SchemaID: SchemaID, Version: SchemaVersion,
	})
}

func (f *Framer) sendRetransmitRequest(uuid uint64, requestTimestamp int64, fromSeqNo uint64, msgCount uint32) ClaimResult {
	payload := retransmitRequestPayload(uuid, requestTimestamp, fromSeqNo, msgCount)
	return f.sendFramed(payload, TemplateMetadata{
		BlockLength: retransmitRequestBlockLength, TemplateID: TemplateRetransmitRequest, SchemaID: SchemaID, Version: SchemaVersion,
	})
}
