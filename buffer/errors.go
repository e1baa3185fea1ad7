package buffer

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when an accessor would reach the end of the buffer.
	ErrOutOfBounds = errors.New("buffer: out of bounds")

	// ErrStringTooLong is returned when a string plus its terminator does not fit its field.
	ErrStringTooLong = errors.New("buffer: string too long for field")

	// ErrUnknownField is returned by Pack and Unpack for a zero-value field descriptor.
	ErrUnknownField = errors.New("buffer: unknown field type")

	// ErrTrailingBytes is returned by CheckExhausted when received bytes remain unread.
	ErrTrailingBytes = errors.New("buffer: unconsumed trailing bytes")

	// ErrNegativeLength is returned for negative field or skip lengths.
	ErrNegativeLength = errors.New("buffer: negative length")
)

// BoundsError describes a rejected access. It matches ErrOutOfBounds with errors.Is.
type BoundsError struct {
	// Op is the accessor that was rejected (e.g. "read uint16")
	Op string

	// Offset is the cursor position at the time of the access
	Offset int

	// Size is the number of bytes the access needed
	Size int

	// Capacity is the buffer capacity
	Capacity int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("buffer: %s of %d bytes at offset %d exceeds capacity %d",
		e.Op, e.Size, e.Offset, e.Capacity)
}

// Is reports whether target is ErrOutOfBounds.
func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}
