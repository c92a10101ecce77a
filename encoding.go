package ilink3

import "encoding/binary"

// le is the byte order used by every SBE field and by the gateway header.
// Only the SOFH length prefix is big-endian; see WriteUint32BE below.
var le = binary.LittleEndian
var be = binary.BigEndian

// ByteReader provides sequential little-endian reads over a fixed buffer.
type ByteReader struct {
	data []byte
	pos  int
}

// NewByteReader creates a new ByteReader over data.
func NewByteReader(data []byte) *ByteReader {
	return &ByteReader{data: data, pos: 0}
}

// Remaining returns the number of unread bytes.
func (r *ByteReader) Remaining() int {
	return len(r.data) - r.pos
}

// Skip advances the position by n bytes.
func (r *ByteReader) Skip(n int) {
	r.pos += n
}

// Position returns the current read offset.
func (r *ByteReader) Position() int {
	return r.pos
}

// ReadBytes reads n bytes and advances the position. Returns nil if n
// exceeds the remaining buffer.
func (r *ByteReader) ReadBytes(n int) []byte {
	if r.pos+n > len(r.data) || n < 0 {
		return nil
	}
	result := r.data[r.pos : r.pos+n]
	r.pos += n
	return result
}

// ReadOneByte reads a single byte.
func (r *ByteReader) ReadOneByte() byte {
	if r.pos >= len(r.data) {
		return 0
	}
	b := r.data[r.pos]
	r.pos++
	return b
}

// ReadUint16 reads a little-endian uint16.
func (r *ByteReader) ReadUint16() uint16 {
	if r.pos+2 > len(r.data) {
		return 0
	}
	v := le.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

// ReadUint32 reads a little-endian uint32.
func (r *ByteReader) ReadUint32() uint32 {
	if r.pos+4 > len(r.data) {
		return 0
	}
	v := le.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

// ReadUint32BE reads a big-endian uint32 (used only for the SOFH length
// prefix).
func (r *ByteReader) ReadUint32BE() uint32 {
	if r.pos+4 > len(r.data) {
		return 0
	}
	v := be.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

// ReadUint64 reads a little-endian uint64.
func (r *ByteReader) ReadUint64() uint64 {
	if r.pos+8 > len(r.data) {
		return 0
	}
	v := le.Uint64(r.data[r.pos:])
	r.pos += 8
	return v
}

// ReadInt64 reads a little-endian int64.
func (r *ByteReader) ReadInt64() int64 {
	return int64(r.ReadUint64())
}

// ByteWriter provides append-only little-endian writes into a growable
// buffer, plus little-endian back-patch helpers for fields that are only
// known after the rest of the message has been written.
type ByteWriter struct {
	data []byte
}

// NewByteWriter creates a new ByteWriter with the given initial capacity.
func NewByteWriter(capacity int) *ByteWriter {
	return &ByteWriter{data: make([]byte, 0, capacity)}
}

// Bytes returns the bytes written so far.
func (w *ByteWriter) Bytes() []byte {
	return w.data
}

// Len returns the number of bytes written so far.
func (w *ByteWriter) Len() int {
	return len(w.data)
}

// WriteBytes appends raw bytes.
func (w *ByteWriter) WriteBytes(b []byte) {
	w.data = append(w.data, b...)
}

// WriteOneByte appends a single byte.
func (w *ByteWriter) WriteOneByte(b byte) {
	w.data = append(w.data, b)
}

// WriteUint16 appends a little-endian uint16.
func (w *ByteWriter) WriteUint16(v uint16) {
	var buf [2]byte
	le.PutUint16(buf[:], v)
	w.data = append(w.data, buf[:]...)
}

// WriteUint32 appends a little-endian uint32.
func (w *ByteWriter) WriteUint32(v uint32) {
	var buf [4]byte
	le.PutUint32(buf[:], v)
	w.data = append(w.data, buf[:]...)
}

// WriteUint32BE appends a big-endian uint32 (used only for the SOFH
// length prefix).
func (w *ByteWriter) WriteUint32BE(v uint32) {
	var buf [4]byte
	be.PutUint32(buf[:], v)
	w.data = append(w.data, buf[:]...)
}

// WriteUint64 appends a little-endian uint64.
func (w *ByteWriter) WriteUint64(v uint64) {
	var buf [8]byte
	le.PutUint64(buf[:], v)
	w.data = append(w.data, buf[:]...)
}

// WriteInt64 appends a little-endian int64.
func (w *ByteWriter) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

// WriteZeros appends n zero bytes.
func (w *ByteWriter) WriteZeros(n int) {
	for i := 0; i < n; i++ {
		w.data = append(w.data, 0)
	}
}

// SetUint16At overwrites a little-endian uint16 at a previously written
// position, for back-patching fixed-field headers.
func (w *ByteWriter) SetUint16At(pos int, v uint16) {
	if pos >= 0 && pos+2 <= len(w.data) {
		le.PutUint16(w.data[pos:], v)
	}
}

// SetUint32At overwrites a little-endian uint32 at a previously written
// position.
func (w *ByteWriter) SetUint32At(pos int, v uint32) {
	if pos >= 0 && pos+4 <= len(w.data) {
		le.PutUint32(w.data[pos:], v)
	}
}

// SetUint64At overwrites a little-endian uint64 at a previously written
// position.
func (w *ByteWriter) SetUint64At(pos int, v uint64) {
	if pos >= 0 && pos+8 <= len(w.data) {
		le.PutUint64(w.data[pos:], v)
	}
}
