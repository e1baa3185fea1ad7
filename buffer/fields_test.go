package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	buf := NewSize(64)
	n, err := buf.Pack(Byte(7), Uint16(300), Uint32(70000))
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	buf.Reset()
	var (
		b   byte
		h   uint16
		u32 uint32
	)
	n, err = buf.Unpack(ByteInto(&b), Uint16Into(&h), Uint32Into(&u32))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, byte(7), b)
	assert.Equal(t, uint16(300), h)
	assert.Equal(t, uint32(70000), u32)
}

func TestPackStringAndBlock(t *testing.T) {
	buf := NewSize(64)
	n, err := buf.Pack(Byte(0x01), Byte(0x80), String("game.rxe", 20), Block([]byte{9, 8, 7}))
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	buf.Reset()
	var (
		class, op byte
		name      string
	)
	data := make([]byte, 3)
	n, err = buf.Unpack(ByteInto(&class), ByteInto(&op), StringInto(&name, 20), BlockInto(data))
	require.NoError(t, err)
	assert.Equal(t, 25, n)
	assert.Equal(t, "game.rxe", name)
	assert.Equal(t, []byte{9, 8, 7}, data)
}

func TestPackStopsAtFirstFailure(t *testing.T) {
	buf := NewSize(64)
	n, err := buf.Pack(Byte(1), String("this name is far too long", 20), Byte(2))
	require.ErrorIs(t, err, ErrStringTooLong)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, buf.Offset(), "fields after the failure must not be written")
}

func TestPackUnknownField(t *testing.T) {
	buf := NewSize(64)
	n, err := buf.Pack(Byte(1), Field{})
	require.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, 1, n)

	buf.Reset()
	_, err = buf.Unpack(Target{})
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestUnpackStopsAtBounds(t *testing.T) {
	buf := NewSize(6)
	var (
		a byte
		b uint32
		c uint32
	)
	n, err := buf.Unpack(ByteInto(&a), Uint32Into(&b), Uint32Into(&c))
	require.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, buf.Offset())
}

func TestUnpackSkip(t *testing.T) {
	buf := NewSize(64)
	_, err := buf.Pack(Byte(1), String("skipped", 20), Uint32(42))
	require.NoError(t, err)

	buf.Reset()
	var (
		h    byte
		size uint32
	)
	n, err := buf.Unpack(ByteInto(&h), Skip(20), Uint32Into(&size))
	require.NoError(t, err)
	assert.Equal(t, 25, n)
	assert.Equal(t, uint32(42), size)
}

func TestUnpackNilTargetsDiscard(t *testing.T) {
	buf := NewSize(16)
	_, err := buf.Pack(Byte(1), Uint16(2))
	require.NoError(t, err)

	buf.Reset()
	n, err := buf.Unpack(ByteInto(nil), Uint16Into(nil))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
