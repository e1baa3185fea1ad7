package brick

import (
	"fmt"
)

// TransportError indicates that the device failed to send a request or
// deliver a reply.
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// LocalReadError indicates that the local source ended before the declared
// upload size was read.
type LocalReadError struct {
	File     string
	Offset   int64
	Expected int
	Got      int
	Err      error
}

func (e *LocalReadError) Error() string {
	return fmt.Sprintf("upload %s: local read at offset %d returned %d of %d bytes: %v",
		e.File, e.Offset, e.Got, e.Expected, e.Err)
}

func (e *LocalReadError) Unwrap() error {
	return e.Err
}

// IncompleteTransferError indicates that a transfer stopped before all
// declared bytes were moved. Err is the failure that stopped it.
type IncompleteTransferError struct {
	Operation   string
	File        string
	Transferred int64
	Total       int64
	Err         error
}

func (e *IncompleteTransferError) Error() string {
	return fmt.Sprintf("%s %s: transferred %d of %d bytes: %v",
		e.Operation, e.File, e.Transferred, e.Total, e.Err)
}

func (e *IncompleteTransferError) Unwrap() error {
	return e.Err
}
