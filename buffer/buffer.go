package buffer

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
)

// DefaultCapacity is the capacity used by New: one standard I/O block.
const DefaultCapacity = 8192

// Buffer is a fixed-capacity byte region with a shared read/write cursor.
//
// The zero value is not usable; create buffers with New or NewSize.
// A Buffer is not safe for concurrent use.
type Buffer struct {
	data   []byte
	offset int
	limit  int
}

// New returns a Buffer with DefaultCapacity.
func New() *Buffer {
	return NewSize(DefaultCapacity)
}

// NewSize returns a Buffer with the given capacity.
func NewSize(capacity int) *Buffer {
	if capacity <= 0 {
		panic("buffer capacity must be positive")
	}
	return &Buffer{data: make([]byte, capacity)}
}

// Reset rewinds the cursor and forgets the received length.
// Capacity and contents are left untouched.
func (b *Buffer) Reset() {
	b.offset = 0
	b.limit = 0
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int { return len(b.data) }

// Offset returns the cursor position.
func (b *Buffer) Offset() int { return b.offset }

// Len returns the number of bytes populated by the most recent Receive.
func (b *Buffer) Len() int { return b.limit }

// Remaining returns the number of received bytes not yet consumed.
func (b *Buffer) Remaining() int {
	if b.offset >= b.limit {
		return 0
	}
	return b.limit - b.offset
}

// Bytes returns the bytes written so far, i.e. the staged outgoing frame.
// The slice aliases the buffer and is only valid until the next write or Receive.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.offset]
}

// Received returns the bytes populated by the most recent Receive.
func (b *Buffer) Received() []byte {
	return b.data[:b.limit]
}

// Receive resets the buffer and performs a single Read of up to Cap() bytes
// from r, recording the number of bytes read as the valid length.
func (b *Buffer) Receive(r io.Reader) (int, error) {
	b.Reset()
	n, err := r.Read(b.data)
	if n < 0 || n > len(b.data) {
		return 0, fmt.Errorf("buffer: reader returned invalid count %d", n)
	}
	b.limit = n
	return n, err
}

// CheckExhausted succeeds only if every received byte has been consumed.
func (b *Buffer) CheckExhausted() error {
	if b.offset != b.limit {
		return fmt.Errorf("%w: offset %d, received %d", ErrTrailingBytes, b.offset, b.limit)
	}
	return nil
}

// Dump returns a hex dump of the received bytes, or of the staged frame if
// nothing has been received since the last reset.
func (b *Buffer) Dump() string {
	if b.limit > 0 {
		return hex.EncodeToString(b.data[:b.limit])
	}
	return hex.EncodeToString(b.data[:b.offset])
}

// check reports whether size more bytes can be accessed at the cursor.
func (b *Buffer) check(op string, size int) error {
	if size < 0 {
		return fmt.Errorf("%w: %s of %d bytes", ErrNegativeLength, op, size)
	}
	if b.offset+size >= len(b.data) {
		return &BoundsError{Op: op, Offset: b.offset, Size: size, Capacity: len(b.data)}
	}
	return nil
}

// ReadByte consumes one byte.
func (b *Buffer) ReadByte() (byte, error) {
	if err := b.check("read byte", 1); err != nil {
		return 0, err
	}
	v := b.data[b.offset]
	b.offset++
	return v, nil
}

// ReadUint16 consumes a little-endian 16-bit value.
func (b *Buffer) ReadUint16() (uint16, error) {
	if err := b.check("read uint16", 2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(b.data[b.offset:])
	b.offset += 2
	return v, nil
}

// ReadUint32 consumes a little-endian 32-bit value.
func (b *Buffer) ReadUint32() (uint32, error) {
	if err := b.check("read uint32", 4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(b.data[b.offset:])
	b.offset += 4
	return v, nil
}

// ReadFixedString consumes an n-byte string field. The result holds the
// bytes up to the first NUL (or all n bytes) followed by zero padding to n.
// The cursor always advances by exactly n.
func (b *Buffer) ReadFixedString(n int) ([]byte, error) {
	if err := b.check("read string", n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	field := b.data[b.offset : b.offset+n]
	for i, c := range field {
		if c == 0 {
			break
		}
		out[i] = c
	}
	b.offset += n
	return out, nil
}

// ReadString consumes an n-byte string field and returns it without padding.
func (b *Buffer) ReadString(n int) (string, error) {
	field, err := b.ReadFixedString(n)
	if err != nil {
		return "", err
	}
	return trimNUL(field), nil
}

// ReadBlock copies exactly len(p) bytes into p.
func (b *Buffer) ReadBlock(p []byte) error {
	if err := b.check("read block", len(p)); err != nil {
		return err
	}
	b.offset += copy(p, b.data[b.offset:b.offset+len(p)])
	return nil
}

// Skip advances the cursor by n bytes without copying.
func (b *Buffer) Skip(n int) error {
	if err := b.check("skip", n); err != nil {
		return err
	}
	b.offset += n
	return nil
}

// WriteByte appends one byte.
func (b *Buffer) WriteByte(v byte) error {
	if err := b.check("write byte", 1); err != nil {
		return err
	}
	b.data[b.offset] = v
	b.offset++
	return nil
}

// WriteUint16 appends a 16-bit value, least significant byte first.
func (b *Buffer) WriteUint16(v uint16) error {
	if err := b.check("write uint16", 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b.data[b.offset:], v)
	b.offset += 2
	return nil
}

// WriteUint32 appends a 32-bit value, least significant byte first.
func (b *Buffer) WriteUint32(v uint32) error {
	if err := b.check("write uint32", 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b.data[b.offset:], v)
	b.offset += 4
	return nil
}

// WriteFixedString appends s as an n-byte field: the string, a NUL
// terminator and zero padding. It fails if n is zero or if len(s) >= n-1.
func (b *Buffer) WriteFixedString(s string, n int) error {
	if n <= 0 || len(s) >= n-1 {
		return fmt.Errorf("%w: %d bytes into %d-byte field", ErrStringTooLong, len(s), n)
	}
	if err := b.check("write string", n); err != nil {
		return err
	}
	field := b.data[b.offset : b.offset+n]
	i := copy(field, s)
	for ; i < n; i++ {
		field[i] = 0
	}
	b.offset += n
	return nil
}

// WriteBlock appends p verbatim.
func (b *Buffer) WriteBlock(p []byte) error {
	if err := b.check("write block", len(p)); err != nil {
		return err
	}
	b.offset += copy(b.data[b.offset:], p)
	return nil
}

func trimNUL(field []byte) string {
	for i, c := range field {
		if c == 0 {
			return string(field[:i])
		}
	}
	return string(field)
}
