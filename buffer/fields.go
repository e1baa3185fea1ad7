package buffer

import "fmt"

type fieldKind uint8

const (
	kindInvalid fieldKind = iota
	kindByte
	kindUint16
	kindUint32
	kindString
	kindBlock
	kindSkip
)

func (k fieldKind) String() string {
	switch k {
	case kindByte:
		return "byte"
	case kindUint16:
		return "uint16"
	case kindUint32:
		return "uint32"
	case kindString:
		return "string"
	case kindBlock:
		return "block"
	case kindSkip:
		return "skip"
	default:
		return "invalid"
	}
}

// Field is an outgoing field descriptor for Pack.
// Construct fields with Byte, Uint16, Uint32, String and Block.
type Field struct {
	kind fieldKind
	num  uint32
	str  string
	size int
	data []byte
}

// Byte packs a single byte.
func Byte(v byte) Field { return Field{kind: kindByte, num: uint32(v)} }

// Uint16 packs a little-endian 16-bit value.
func Uint16(v uint16) Field { return Field{kind: kindUint16, num: uint32(v)} }

// Uint32 packs a little-endian 32-bit value.
func Uint32(v uint32) Field { return Field{kind: kindUint32, num: v} }

// String packs s as a NUL-terminated, zero-padded field of size bytes.
func String(s string, size int) Field { return Field{kind: kindString, str: s, size: size} }

// Block packs p verbatim.
func Block(p []byte) Field { return Field{kind: kindBlock, data: p} }

// Target is an incoming field descriptor for Unpack.
// Construct targets with ByteInto, Uint16Into, Uint32Into, StringInto,
// BlockInto and Skip.
type Target struct {
	kind fieldKind
	u8   *byte
	u16  *uint16
	u32  *uint32
	str  *string
	size int
	data []byte
}

// ByteInto decodes one byte into v.
func ByteInto(v *byte) Target { return Target{kind: kindByte, u8: v} }

// Uint16Into decodes a little-endian 16-bit value into v.
func Uint16Into(v *uint16) Target { return Target{kind: kindUint16, u16: v} }

// Uint32Into decodes a little-endian 32-bit value into v.
func Uint32Into(v *uint32) Target { return Target{kind: kindUint32, u32: v} }

// StringInto decodes a size-byte string field into s, without padding.
func StringInto(s *string, size int) Target { return Target{kind: kindString, str: s, size: size} }

// BlockInto decodes exactly len(p) raw bytes into p.
func BlockInto(p []byte) Target { return Target{kind: kindBlock, data: p} }

// Skip discards n bytes.
func Skip(n int) Target { return Target{kind: kindSkip, size: n} }

// Pack writes fields in order. It stops at the first failing field and
// returns the number of bytes written before it together with the error.
// On success it returns the total number of bytes written.
func (b *Buffer) Pack(fields ...Field) (int, error) {
	start := b.offset
	for i, f := range fields {
		var err error
		switch f.kind {
		case kindByte:
			err = b.WriteByte(byte(f.num))
		case kindUint16:
			err = b.WriteUint16(uint16(f.num))
		case kindUint32:
			err = b.WriteUint32(f.num)
		case kindString:
			err = b.WriteFixedString(f.str, f.size)
		case kindBlock:
			err = b.WriteBlock(f.data)
		default:
			err = ErrUnknownField
		}
		if err != nil {
			return b.offset - start, fmt.Errorf("pack field %d (%s): %w", i, f.kind, err)
		}
	}
	return b.offset - start, nil
}

// Unpack decodes targets in order. It stops at the first failing target and
// returns the number of bytes consumed before it together with the error.
// On success it returns the total number of bytes consumed.
func (b *Buffer) Unpack(targets ...Target) (int, error) {
	start := b.offset
	for i, t := range targets {
		var err error
		switch t.kind {
		case kindByte:
			var v byte
			if v, err = b.ReadByte(); err == nil && t.u8 != nil {
				*t.u8 = v
			}
		case kindUint16:
			var v uint16
			if v, err = b.ReadUint16(); err == nil && t.u16 != nil {
				*t.u16 = v
			}
		case kindUint32:
			var v uint32
			if v, err = b.ReadUint32(); err == nil && t.u32 != nil {
				*t.u32 = v
			}
		case kindString:
			var v string
			if v, err = b.ReadString(t.size); err == nil && t.str != nil {
				*t.str = v
			}
		case kindBlock:
			err = b.ReadBlock(t.data)
		case kindSkip:
			err = b.Skip(t.size)
		default:
			err = ErrUnknownField
		}
		if err != nil {
			return b.offset - start, fmt.Errorf("unpack field %d (%s): %w", i, t.kind, err)
		}
	}
	return b.offset - start, nil
}
