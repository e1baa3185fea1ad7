// Package buffer implements a fixed-capacity frame buffer with a single
// cursor for sequential little-endian encoding and decoding.
//
// One Buffer is meant to be allocated per session and reused for every
// request/reply transaction: a request is written from offset 0, handed to the
// transport with Bytes, and the reply is landed in the same storage with
// Receive, which rewinds the cursor and records how many bytes arrived.
//
// # Bounds
//
// Every accessor checks offset+size < Cap() before touching the buffer. The
// comparison is strict, so the final byte of capacity is never used. A failing
// accessor leaves the cursor where it was and returns an error wrapping
// ErrOutOfBounds.
//
// # Fields
//
// Pack and Unpack process an ordered list of typed field descriptors and stop
// at the first field that fails:
//
//	n, err := buf.Pack(
//	    buffer.Byte(0x01),
//	    buffer.Byte(0x80),
//	    buffer.String("game.rxe", 20),
//	)
//
//	var handle byte
//	var size uint32
//	n, err := buf.Unpack(buffer.ByteInto(&handle), buffer.Uint32Into(&size))
//
// After a reply has been fully decoded, CheckExhausted reports whether any
// received bytes were left unconsumed.
package buffer
