package brick

import (
	"context"

	"github.com/moffa90/go-nxt/buffer"
	"github.com/moffa90/go-nxt/protocol"
)

// FindKind classifies the outcome of a directory iteration step.
type FindKind int

const (
	// FindFailed means the step failed; Err holds the cause
	FindFailed FindKind = iota

	// FindFound means a matching file was reported
	FindFound

	// FindNotFound means no (further) file matches; this is not an error
	FindNotFound
)

func (k FindKind) String() string {
	switch k {
	case FindFound:
		return "found"
	case FindNotFound:
		return "not found"
	default:
		return "failed"
	}
}

// FindResult is the outcome of FindFirst or FindNext.
// Handle and Entry are valid only for FindFound; Err only for FindFailed.
type FindResult struct {
	Kind   FindKind
	Handle protocol.Handle
	Entry  protocol.FileEntry
	Err    error
}

// Found reports whether a file was found.
func (r FindResult) Found() bool { return r.Kind == FindFound }

// NotFound reports whether the iteration is exhausted.
func (r FindResult) NotFound() bool { return r.Kind == FindNotFound }

// FindFirst starts a directory iteration for pattern.
// A "file not found" reply yields FindNotFound rather than FindFailed.
func (c *Client) FindFirst(ctx context.Context, pattern string) FindResult {
	if err := protocol.BuildFindFirstCmd(c.buf, pattern); err != nil {
		return FindResult{Kind: FindFailed, Err: err}
	}
	return c.find(ctx, "find first", protocol.CmdFindFirst)
}

// FindNext continues the iteration identified by handle.
func (c *Client) FindNext(ctx context.Context, handle protocol.Handle) FindResult {
	if err := protocol.BuildFindNextCmd(c.buf, handle); err != nil {
		return FindResult{Kind: FindFailed, Err: err}
	}
	return c.find(ctx, "find next", protocol.CmdFindNext)
}

func (c *Client) find(ctx context.Context, operation string, opcode byte) FindResult {
	var (
		handle protocol.Handle
		entry  protocol.FileEntry
	)
	err := c.roundTrip(ctx, operation, opcode, func(b *buffer.Buffer) error {
		var err error
		handle, entry, err = protocol.ParseFindReply(b)
		return err
	})

	switch {
	case err == nil:
		return FindResult{Kind: FindFound, Handle: handle, Entry: entry}
	case protocol.IsNotFound(err):
		return FindResult{Kind: FindNotFound}
	default:
		return FindResult{Kind: FindFailed, Err: err}
	}
}
