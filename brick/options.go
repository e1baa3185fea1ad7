package brick

import (
	"github.com/moffa90/go-nxt/buffer"
	"github.com/moffa90/go-nxt/protocol"
)

// Config holds the client configuration.
type Config struct {
	// ProgressCallback is called during transfers to report progress (optional)
	ProgressCallback ProgressCallback

	// TransactionHook is called after every request/reply round trip (optional)
	TransactionHook TransactionHook

	// Logger is used for logging operations (optional)
	Logger Logger

	// Verbosity controls transaction tracing through Logger:
	// 0 is quiet, 1 logs one line per transaction, 2 adds frame hex dumps
	Verbosity int

	// ReadChunkSize is the number of bytes requested per Read command.
	// Default is 57 bytes (the reply must fit a 64-byte USB packet)
	ReadChunkSize int

	// WriteChunkSize is the number of bytes sent per Write command.
	// Default is 60 bytes (the request must fit a 64-byte USB packet)
	WriteChunkSize int

	// BufferSize is the capacity of the session frame buffer
	BufferSize int
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ReadChunkSize:  protocol.MaxReadChunk,
		WriteChunkSize: protocol.MaxWriteChunk,
		BufferSize:     buffer.DefaultCapacity,
	}
}

// Option is a functional option for configuring the Client.
type Option func(*Config)

// WithProgressCallback sets a callback function to track transfer progress.
//
// Example:
//
//	c := brick.New(device,
//	    brick.WithProgressCallback(func(p brick.Progress) {
//	        fmt.Printf("%s: %d/%d bytes\n", p.File, p.Transferred, p.Total)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithTransactionHook sets a hook called once per round trip, e.g. to feed metrics.
func WithTransactionHook(hook TransactionHook) Option {
	return func(c *Config) {
		c.TransactionHook = hook
	}
}

// WithLogger sets a logger for the client operations.
//
// Example:
//
//	c := brick.New(device, brick.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithVerbosity sets the transaction tracing level. Negative values are ignored.
//
// Example:
//
//	c := brick.New(device, brick.WithLogger(myLogger), brick.WithVerbosity(2))
func WithVerbosity(level int) Option {
	return func(c *Config) {
		if level >= 0 {
			c.Verbosity = level
		}
	}
}

// WithReadChunkSize sets the number of bytes requested per Read command.
// Values outside 1..protocol.MaxReadChunk are ignored.
//
// Example:
//
//	c := brick.New(device, brick.WithReadChunkSize(32))
func WithReadChunkSize(size int) Option {
	return func(c *Config) {
		if size > 0 && size <= protocol.MaxReadChunk {
			c.ReadChunkSize = size
		}
	}
}

// WithWriteChunkSize sets the number of bytes sent per Write command.
// Values outside 1..protocol.MaxWriteChunk are ignored.
func WithWriteChunkSize(size int) Option {
	return func(c *Config) {
		if size > 0 && size <= protocol.MaxWriteChunk {
			c.WriteChunkSize = size
		}
	}
}

// WithBufferSize sets the capacity of the session frame buffer.
// Sizes that cannot hold a full USB packet plus the guard byte are ignored.
func WithBufferSize(size int) Option {
	return func(c *Config) {
		if size > protocol.MaxPacketSize {
			c.BufferSize = size
		}
	}
}
