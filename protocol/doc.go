// Package protocol implements the LEGO Mindstorms NXT direct and system
// command protocol as spoken over USB.
//
// This package provides functions to stage request frames into a
// buffer.Buffer and to parse reply frames received into one.
//
// # Protocol Overview
//
// Every request starts with a class byte and an opcode; every reply starts
// with the reply class, the echoed opcode and a status byte:
//
//	Request: [CLASS][OPCODE][FIELDS...]
//	Reply:   [0x02][OPCODE][STATUS][FIELDS...]
//
// Where:
//   - CLASS = 0x00 (direct command) or 0x01 (system command)
//   - Integers are little-endian
//   - Names are 20-byte NUL-terminated, zero-padded fields
//
// A USB packet carries at most 64 bytes, so a single Read moves at most
// MaxReadChunk bytes and a single Write at most MaxWriteChunk bytes.
//
// # Command Builders
//
// Use the Build* functions to stage a request:
//
//	buf := buffer.New()
//	err := protocol.BuildOpenReadCmd(buf, "prog.rxe")
//	_, err = device.Write(buf.Bytes())
//
// # Reply Parsers
//
// Receive the reply into the same buffer, then validate the header and
// parse the command-specific fields:
//
//	_, err = buf.Receive(device)
//	status, err := protocol.ParseHeader(buf, "open read", protocol.CmdOpenRead)
//	if err := protocol.CheckStatus("open read", status); err != nil {
//	    return err
//	}
//	handle, size, err := protocol.ParseOpenReadReply(buf)
//
// Every parser rejects replies that carry bytes beyond the expected fields.
//
// # Error Handling
//
// Non-success status bytes become a ProtocolError:
//
//	// err.Error() returns: "open read failed: file not found (0x87)"
//	if protocol.IsNotFound(err) { ... }
//
// Replies whose echoed fields disagree with the request produce an
// EchoMismatchError even when the status reported success.
package protocol
