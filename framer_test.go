package ilink3

import "testing"

// decodedFrame is the parsed form of one outbound wire frame, used by
// tests to assert bit-exact framing (spec.md §8 property 9).
type decodedFrame struct {
	connectionID uint64
	sofhLength   uint32
	encodingType uint16
	blockLength  uint16
	templateID   uint16
	schemaID     uint16
	version      uint16
	payload      []byte
}

func parseFrame(t *testing.T, frame []byte) decodedFrame {
	t.Helper()
	r := NewByteReader(frame)
	d := decodedFrame{}
	d.connectionID = r.ReadUint64()
	d.sofhLength = r.ReadUint32BE()
	d.encodingType = r.ReadUint16()
	d.blockLength = r.ReadUint16()
	d.templateID = r.ReadUint16()
	d.schemaID = r.ReadUint16()
	d.version = r.ReadUint16()
	d.payload = r.ReadBytes(r.Remaining())
	return d
}

func TestFramer_SendNegotiate_BitExactFraming(t *testing.T) {
	transport := newMockTransport()
	framer := NewFramer(transport, 7)

	sig := make([]byte, hmacSignatureLen)
	result := framer.sendNegotiate(42, 1000, "S1", "F1", sig)
	if !result.Committed() {
		t.Fatalf("sendNegotiate() not committed: %v", result.Err)
	}

	frame := transport.last()
	d := parseFrame(t, frame)

	if d.connectionID != 7 {
		t.Errorf("connectionID = %d, want 7", d.connectionID)
	}
	if d.encodingType != SOFHEncodingType {
		t.Errorf("encodingType = %#x, want %#x", d.encodingType, SOFHEncodingType)
	}
	wantSOFHLen := uint32(SOFHLen + SBEHeaderLen + negotiateBlockLength)
	if d.sofhLength != wantSOFHLen {
		t.Errorf("sofhLength = %d, want %d", d.sofhLength, wantSOFHLen)
	}
	if d.blockLength != negotiateBlockLength {
		t.Errorf("blockLength = %d, want %d", d.blockLength, negotiateBlockLength)
	}
	if d.templateID != TemplateNegotiate {
		t.Errorf("templateID = %d, want %d", d.templateID, TemplateNegotiate)
	}
	if d.schemaID != SchemaID || d.version != SchemaVersion {
		t.Errorf("schemaID/version = %d/%d, want %d/%d", d.schemaID, d.version, SchemaID, SchemaVersion)
	}
	if len(d.payload) != negotiateBlockLength {
		t.Errorf("payload length = %d, want %d", len(d.payload), negotiateBlockLength)
	}

	wantTotal := GatewayHeaderLen + SOFHLen + SBEHeaderLen + negotiateBlockLength
	if len(frame) != wantTotal {
		t.Errorf("frame length = %d, want %d", len(frame), wantTotal)
	}
}

func TestFramer_AllSendHelpers_FrameCorrectly(t *testing.T) {
	transport := newMockTransport()
	framer := NewFramer(transport, 1)

	tests := []struct {
		name        string
		send        func() ClaimResult
		templateID  uint16
		blockLength uint16
	}{
		{"negotiate", func() ClaimResult {
			return framer.sendNegotiate(1, 1, "s", "f", make([]byte, hmacSignatureLen))
		}, TemplateNegotiate, negotiateBlockLength},
		{"establish", func() ClaimResult {
			return framer.sendEstablish(1, 1, "s", "f", "t", "v", "vendor", 1, 500, make([]byte, hmacSignatureLen))
		}, TemplateEstablish, establishBlockLength},
		{"terminate", func() ClaimResult {
			return framer.sendTerminate(1, 1, "bye", 0)
		}, TemplateTerminate, terminateBlockLength},
		{"sequence", func() ClaimResult {
			return framer.sendSequence(1, 1, FTIPrimary, NotLapsed)
		}, TemplateSequence, sequenceBlockLength},
		{"retransmitRequest", func() ClaimResult {
			return framer.sendRetransmitRequest(1, 1, 5, 3)
		}, TemplateRetransmitRequest, retransmitRequestBlockLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.send()
			if !result.Committed() {
				t.Fatalf("%s: not committed: %v", tt.name, result.Err)
			}
			d := parseFrame(t, transport.last())
			if d.templateID != tt.templateID {
				t.Errorf("templateID = %d, want %d", d.templateID, tt.templateID)
			}
			if d.blockLength != tt.blockLength {
				t.Errorf("blockLength = %d, want %d", d.blockLength, tt.blockLength)
			}
			wantSOFHLen := uint32(SOFHLen + SBEHeaderLen + int(tt.blockLength))
			if d.sofhLength != wantSOFHLen {
				t.Errorf("sofhLength = %d, want %d", d.sofhLength, wantSOFHLen)
			}
		})
	}
}

func TestFramer_BackPressure_NoCommit(t *testing.T) {
	transport := newMockTransport()
	transport.pressured = true
	framer := NewFramer(transport, 1)

	result := framer.sendTerminate(1, 1, "bye", 0)
	if result.Committed() {
		t.Fatal("sendTerminate() committed under back-pressure")
	}
	if !result.Pressured() {
		t.Errorf("result.Pressured() = false, want true")
	}
	if len(transport.committed) != 0 {
		t.Errorf("committed frames = %d, want 0", len(transport.committed))
	}
}
