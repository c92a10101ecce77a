package ilink3

// offsetEntry holds the byte offsets, within a template's payload, of the
// seqNum and sendingTimeEpoch fields, plus the offset of the single-byte
// possRetrans flag. MissingOffset means the template does not carry that
// field.
type offsetEntry struct {
	seqNumOffset           int
	sendingTimeEpochOffset int
	possRetransOffset      int
}

// maxTemplateID bounds the dense offset table. iLink3 template ids used
// by this core top out in the low thousands for business templates;
// hosts register application templates via RegisterOffsets.
const maxTemplateID = 4096

// OffsetTable is a dense, array-indexed lookup of per-template field
// offsets (spec.md §4.3, DESIGN NOTES "Polymorphism": a static table, not
// dynamic dispatch). Create it with NewOffsetTable, which marks every
// template absent (all offsets MissingOffset) until registered; in the
// zero value every offset reads as 0, not MissingOffset.
type OffsetTable struct {
	entries [maxTemplateID]offsetEntry
}

// NewOffsetTable returns an OffsetTable with every template marked
// absent. The session-layer templates the core frames and parses
// directly are left absent as well; see the note below.
func NewOffsetTable() *OffsetTable {
	t := &OffsetTable{}
	for i := range t.entries {
		t.entries[i] = offsetEntry{MissingOffset, MissingOffset, MissingOffset}
	}
	// Sequence506: uuid(8) nextSeqNo(8) faultToleranceIndicator(1) keepAliveIntervalLapsed(1)
	// Sequence carries no independent seqNum/sendingTimeEpoch/possRetrans
	// triplet in the sense §4.3 means for business messages: it is a
	// control message handled by its own decoder in templates.go.
	return t
}

// RegisterOffsets records the field offsets for a business (application)
// template id. Called once per template id at startup by the host gateway
// as it wires in the SBE schema's generated layout.
func (t *OffsetTable) RegisterOffsets(templateID uint16, seqNumOffset, sendingTimeEpochOffset, possRetransOffset int) {
	if int(templateID) >= len(t.entries) {
		return
	}
	t.entries[templateID] = offsetEntry{seqNumOffset, sendingTimeEpochOffset, possRetransOffset}
}

// SeqNumOffset returns the byte offset of seqNum within the template's
// payload, or MissingOffset if the template carries no seqNum.
func (t *OffsetTable) SeqNumOffset(templateID uint16) int {
	if int(templateID) >= len(t.entries) {
		return MissingOffset
	}
	return t.entries[templateID].seqNumOffset
}

// SendingTimeEpochOffset returns the byte offset of sendingTimeEpoch
// within the template's payload, or MissingOffset if absent.
func (t *OffsetTable) SendingTimeEpochOffset(templateID uint16) int {
	if int(templateID) >= len(t.entries) {
		return MissingOffset
	}
	return t.entries[templateID].sendingTimeEpochOffset
}

// PossRetrans reads the possRetrans flag byte for templateID out of
// payload, returning false if the template has no possRetrans offset or
// the buffer is too short.
func (t *OffsetTable) PossRetrans(templateID uint16, payload []byte) bool {
	if int(templateID) >= len(t.entries) {
		return false
	}
	off := t.entries[templateID].possRetransOffset
	if off == MissingOffset || off < 0 || off >= len(payload) {
		return false
	}
	return payload[off] == BooleanFlagTrue
}

// HasSeqNum reports whether templateID carries a seqNum field, i.e.
// whether it is a business message per spec.md §3 invariants.
func (t *OffsetTable) HasSeqNum(templateID uint16) bool {
	return t.SeqNumOffset(templateID) != MissingOffset
}

// WriteSeqNum stamps seqNum into payload at templateID's seqNum offset,
// if present. No-op otherwise.
func (t *OffsetTable) WriteSeqNum(templateID uint16, payload []byte, seqNum uint64) {
	off := t.SeqNumOffset(templateID)
	if off == MissingOffset || off < 0 || off+8 > len(payload) {
		return
	}
	le.PutUint64(payload[off:], seqNum)
}

// ReadSeqNum reads the seqNum field out of payload for templateID.
func (t *OffsetTable) ReadSeqNum(templateID uint16, payload []byte) (uint64, bool) {
	off := t.SeqNumOffset(templateID)
	if off == MissingOffset || off < 0 || off+8 > len(payload) {
		return 0, false
	}
	return le.Uint64(payload[off:]), true
}

// WriteSendingTimeEpoch stamps sendingTimeEpoch (nanoseconds) into
// payload at templateID's offset, if present.
func (t *OffsetTable) WriteSendingTimeEpoch(templateID uint16, payload []byte, nanos int64) {
	off := t.SendingTimeEpochOffset(templateID)
	if off == MissingOffset || off < 0 || off+8 > len(payload) {
		return
	}
	le.PutUint64(payload[off:], uint64(nanos))
}
