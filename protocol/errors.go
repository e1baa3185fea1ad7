package protocol

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrShortReply is returned when a reply is too short to hold its header.
	ErrShortReply = errors.New("protocol: reply shorter than header")

	// ErrEmptyName is returned for an empty file name or pattern.
	ErrEmptyName = errors.New("protocol: empty file name")

	// ErrNameTooLong is returned for names that do not fit a name field.
	ErrNameTooLong = errors.New("protocol: file name too long")

	// ErrWildcardName is returned when a plain file name contains a wildcard.
	ErrWildcardName = errors.New("protocol: wildcard in file name")
)

// ProtocolError represents an error status returned by the brick.
type ProtocolError struct {
	// Operation is the command that failed
	Operation string

	// StatusCode is the status byte from the reply
	StatusCode Status

	// Detail optionally refines the status for this operation
	Detail string
}

func (e *ProtocolError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s failed: %s (%s, 0x%02X)", e.Operation, e.Detail, getStatusName(e.StatusCode), byte(e.StatusCode))
	}
	return fmt.Sprintf("%s failed: %s (0x%02X)", e.Operation, getStatusName(e.StatusCode), byte(e.StatusCode))
}

// IsProtocolError returns true if the error is a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// StatusOf returns the status carried by a ProtocolError in err's chain.
func StatusOf(err error) (Status, bool) {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.StatusCode, true
	}
	return StatusSuccess, false
}

// IsNotFound reports whether err carries StatusFileNotFound.
func IsNotFound(err error) bool {
	s, ok := StatusOf(err)
	return ok && s == StatusFileNotFound
}

// EchoMismatchError reports a reply whose echoed field disagrees with the
// request even though the status byte reported success.
type EchoMismatchError struct {
	// Operation is the command whose reply was rejected
	Operation string

	// Field names the echoed field ("reply type", "opcode", "handle", "size", "name")
	Field string

	// Expected is the value sent in the request
	Expected any

	// Actual is the value found in the reply
	Actual any
}

func (e *EchoMismatchError) Error() string {
	return fmt.Sprintf("%s: reply %s mismatch: expected %v, got %v",
		e.Operation, e.Field, e.Expected, e.Actual)
}

// ValidateName checks that name is a plain file name that fits a
// FileNameSize field. Wildcards are only valid in find patterns.
func ValidateName(name string) error {
	if err := ValidatePattern(name); err != nil {
		return err
	}
	if strings.ContainsAny(name, Wildcards) {
		return fmt.Errorf("%w: %q", ErrWildcardName, name)
	}
	return nil
}

// ValidatePattern checks that a find pattern fits a FileNameSize field.
func ValidatePattern(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxFileNameLength {
		return fmt.Errorf("%w: %q is %d bytes, maximum is %d", ErrNameTooLong, name, len(name), MaxFileNameLength)
	}
	return nil
}

// getStatusName returns a human-readable name for a status code.
func getStatusName(code Status) string {
	switch code {
	case StatusSuccess:
		return "success"
	case StatusPendingTransaction:
		return "pending communication transaction in progress"
	case StatusQueueEmpty:
		return "specified mailbox queue is empty"
	case StatusNoMoreHandles:
		return "no more handles"
	case StatusNoSpace:
		return "no space"
	case StatusNoMoreFiles:
		return "no more files"
	case StatusEndOfFileExpected:
		return "end of file expected"
	case StatusEndOfFile:
		return "end of file"
	case StatusNotALinearFile:
		return "not a linear file"
	case StatusFileNotFound:
		return "file not found"
	case StatusHandleAlreadyClosed:
		return "handle already closed"
	case StatusNoLinearSpace:
		return "no linear space"
	case StatusUndefinedError:
		return "undefined error"
	case StatusFileIsBusy:
		return "file is busy"
	case StatusNoWriteBuffers:
		return "no write buffers"
	case StatusAppendNotPossible:
		return "append not possible"
	case StatusFileIsFull:
		return "file is full"
	case StatusFileExists:
		return "file exists"
	case StatusModuleNotFound:
		return "module not found"
	case StatusOutOfBoundary:
		return "out of boundary"
	case StatusIllegalFileName:
		return "illegal file name"
	case StatusIllegalHandle:
		return "illegal handle"
	case StatusRequestFailed:
		return "request failed"
	case StatusUnknownCommandOpcode:
		return "unknown command opcode"
	case StatusInsanePacket:
		return "insane packet"
	case StatusOutOfRange:
		return "data contains out-of-range values"
	case StatusBusError:
		return "communication bus error"
	case StatusCommOutOfMemory:
		return "no free memory in communication buffer"
	case StatusChannelInvalid:
		return "specified channel/connection is not valid"
	case StatusChannelBusy:
		return "specified channel/connection not configured or busy"
	case StatusNoActiveProgram:
		return "no active program"
	case StatusIllegalSize:
		return "illegal size specified"
	case StatusIllegalMailboxQueue:
		return "illegal mailbox queue ID specified"
	case StatusInvalidField:
		return "attempted to access invalid field of a structure"
	case StatusBadInputOutput:
		return "bad input or output specified"
	case StatusInsufficientMemory:
		return "insufficient memory available"
	case StatusBadArguments:
		return "bad arguments"
	default:
		return fmt.Sprintf("unknown status code 0x%02X", byte(code))
	}
}

// ChunkSizeError reports a chunk that exceeds the per-transaction limit.
// It is detected before the request is sent.
type ChunkSizeError struct {
	Operation string
	Size      int
	Max       int
}

func (e *ChunkSizeError) Error() string {
	return fmt.Sprintf("%s: chunk of %d bytes exceeds maximum %d", e.Operation, e.Size, e.Max)
}
