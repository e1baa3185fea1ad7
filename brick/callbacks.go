package brick

import (
	"time"

	"github.com/moffa90/go-nxt/protocol"
)

// Transfer phases reported in Progress.Phase.
const (
	// PhaseProbing is checking whether the target file already exists
	PhaseProbing = "probing"

	// PhaseOpening is opening the remote file
	PhaseOpening = "opening"

	// PhaseTransferring is moving data chunks
	PhaseTransferring = "transferring"

	// PhaseClosing is closing the remote handle
	PhaseClosing = "closing"

	// PhaseComplete is reported once after a successful transfer
	PhaseComplete = "complete"
)

// Progress contains information about a file transfer.
// Passed to ProgressCallback during Download and Upload.
type Progress struct {
	// Phase describes the current transfer phase (see the Phase constants)
	Phase string

	// File is the remote file name
	File string

	// Transferred is the number of bytes moved so far
	Transferred int64

	// Total is the file size declared by the brick (download) or the caller (upload)
	Total int64

	// Chunks is the number of data transactions completed
	Chunks int

	// Elapsed is the time elapsed since the transfer started
	Elapsed time.Duration
}

// Percentage returns the completion percentage (0.0 to 100.0).
// Empty files are reported complete.
func (p Progress) Percentage() float64 {
	if p.Total <= 0 {
		return 100
	}
	return float64(p.Transferred) / float64(p.Total) * 100
}

// ProgressCallback is called during transfers to report progress.
// Implementations should return quickly to avoid stalling the transfer.
//
// Example:
//
//	c := brick.New(device,
//	    brick.WithProgressCallback(func(p brick.Progress) {
//	        fmt.Printf("[%s] %.1f%%\n", p.Phase, p.Percentage())
//	    }),
//	)
type ProgressCallback func(Progress)

// Transaction describes one completed request/reply round trip.
type Transaction struct {
	// Operation is the command name, e.g. "open read"
	Operation string

	// Opcode is the request opcode
	Opcode byte

	// Status is the reply status; zero when no valid reply header was received
	Status protocol.Status

	// Duration covers the request write and reply read
	Duration time.Duration

	// Err is the error the round trip ended with, if any
	Err error
}

// TransactionHook is called after every round trip.
type TransactionHook func(Transaction)

// Logger is an optional logging interface that can be provided to the client.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	c := brick.New(device, brick.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
