package brick

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/moffa90/go-nxt/protocol"
)

// Download copies the named file from the brick to w and returns the number
// of bytes written. The sequence is:
//  1. Open the file for reading, learning its size
//  2. Read it in chunks of at most ReadChunkSize bytes
//  3. Close the handle, also when a read failed
//
// A zero-length file is opened and closed without any Read command.
//
// Example:
//
//	f, _ := os.Create("prog.rxe")
//	n, err := c.Download(ctx, "prog.rxe", f)
func (c *Client) Download(ctx context.Context, name string, w io.Writer) (int64, error) {
	start := time.Now()

	c.reportProgress(Progress{Phase: PhaseOpening, File: name})
	handle, size, err := c.OpenRead(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", name, err)
	}
	total := int64(size)

	c.logDebug("opened for read", "file", name, "handle", handle, "size", size)

	n, err := c.readAll(ctx, name, handle, total, w, start)
	err = c.closeAfter(ctx, "download", name, handle, total, n, err, start)
	if err != nil {
		return n, err
	}

	c.logInfo("download complete",
		"file", name,
		"bytes", n,
		"elapsed", time.Since(start).String(),
	)
	return n, nil
}

// readAll drives the read phase of Download until total bytes have been
// copied or a step fails.
func (c *Client) readAll(ctx context.Context, name string, handle protocol.Handle, total int64, w io.Writer, start time.Time) (int64, error) {
	var (
		transferred int64
		chunks      int
	)
	chunk := make([]byte, c.config.ReadChunkSize)

	for remaining := total; remaining > 0; {
		p := chunk[:min(remaining, int64(len(chunk)))]

		if err := c.ReadChunk(ctx, handle, p); err != nil {
			return transferred, c.incomplete("download", name, transferred, total, err)
		}
		if _, err := w.Write(p); err != nil {
			return transferred, c.incomplete("download", name, transferred, total, fmt.Errorf("write local: %w", err))
		}

		transferred += int64(len(p))
		remaining -= int64(len(p))
		chunks++

		c.reportProgress(Progress{
			Phase:       PhaseTransferring,
			File:        name,
			Transferred: transferred,
			Total:       total,
			Chunks:      chunks,
			Elapsed:     time.Since(start),
		})
	}

	return transferred, nil
}

// Upload copies size bytes from r to the named file on the brick and returns
// the number of bytes written. The sequence is:
//  1. Probe for an existing file; if found, close the probe handle and delete it
//  2. Open the file for writing with the declared size
//  3. Write it in chunks of at most WriteChunkSize bytes
//  4. Close the handle, also when a write failed
//
// r must supply at least size bytes; a short local read aborts the upload
// with a LocalReadError.
//
// Example:
//
//	f, _ := os.Open("prog.rxe")
//	st, _ := f.Stat()
//	n, err := c.Upload(ctx, "prog.rxe", f, st.Size())
func (c *Client) Upload(ctx context.Context, name string, r io.Reader, size int64) (int64, error) {
	if err := protocol.ValidateName(name); err != nil {
		return 0, fmt.Errorf("upload: %w", err)
	}
	if size < 0 || size > math.MaxUint32 {
		return 0, fmt.Errorf("upload %s: size %d out of range", name, size)
	}

	start := time.Now()

	c.reportProgress(Progress{Phase: PhaseProbing, File: name, Total: size})
	if err := c.removeExisting(ctx, name); err != nil {
		return 0, fmt.Errorf("upload %s: %w", name, err)
	}

	c.reportProgress(Progress{Phase: PhaseOpening, File: name, Total: size})
	handle, err := c.OpenWrite(ctx, name, uint32(size))
	if err != nil {
		return 0, fmt.Errorf("upload %s: %w", name, err)
	}

	c.logDebug("opened for write", "file", name, "handle", handle, "size", size)

	n, err := c.writeAll(ctx, name, handle, size, r, start)
	err = c.closeAfter(ctx, "upload", name, handle, size, n, err, start)
	if err != nil {
		return n, err
	}

	c.logInfo("upload complete",
		"file", name,
		"bytes", n,
		"elapsed", time.Since(start).String(),
	)
	return n, nil
}

// removeExisting deletes name if a probe finds it. A probe that fails for
// any reason other than "file not found" aborts the upload, and so does a
// probe that reports some other file.
func (c *Client) removeExisting(ctx context.Context, name string) error {
	probe := c.FindFirst(ctx, name)
	switch probe.Kind {
	case FindNotFound:
		return nil
	case FindFailed:
		return fmt.Errorf("probe: %w", probe.Err)
	}

	if probe.Entry.Name != name {
		mismatch := &protocol.EchoMismatchError{Operation: "find first", Field: "name", Expected: name, Actual: probe.Entry.Name}
		if err := c.Close(ctx, probe.Handle); err != nil {
			c.logError("close after failed probe", "file", name, "handle", probe.Handle, "error", err.Error())
		}
		return fmt.Errorf("probe: %w", mismatch)
	}

	c.logDebug("replacing existing file", "file", name, "size", probe.Entry.Size)

	if err := c.Close(ctx, probe.Handle); err != nil {
		return fmt.Errorf("close probe: %w", err)
	}
	if err := c.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete existing: %w", err)
	}
	return nil
}

// writeAll drives the write phase of Upload until size bytes have been sent
// or a step fails.
func (c *Client) writeAll(ctx context.Context, name string, handle protocol.Handle, size int64, r io.Reader, start time.Time) (int64, error) {
	var (
		transferred int64
		chunks      int
	)
	chunk := make([]byte, c.config.WriteChunkSize)

	for remaining := size; remaining > 0; {
		p := chunk[:min(remaining, int64(len(chunk)))]

		if got, err := io.ReadFull(r, p); err != nil {
			return transferred, c.incomplete("upload", name, transferred, size, &LocalReadError{
				File:     name,
				Offset:   transferred,
				Expected: len(p),
				Got:      got,
				Err:      err,
			})
		}
		if err := c.WriteChunk(ctx, handle, p); err != nil {
			return transferred, c.incomplete("upload", name, transferred, size, err)
		}

		transferred += int64(len(p))
		remaining -= int64(len(p))
		chunks++

		c.reportProgress(Progress{
			Phase:       PhaseTransferring,
			File:        name,
			Transferred: transferred,
			Total:       size,
			Chunks:      chunks,
			Elapsed:     time.Since(start),
		})
	}

	return transferred, nil
}

// closeAfter closes a transfer handle and merges the outcome with the
// transfer error. The close runs even if ctx is already cancelled, and a
// close failure never replaces an earlier error.
func (c *Client) closeAfter(ctx context.Context, operation, name string, handle protocol.Handle, total, transferred int64, transferErr error, start time.Time) error {
	c.reportProgress(Progress{
		Phase:       PhaseClosing,
		File:        name,
		Transferred: transferred,
		Total:       total,
		Elapsed:     time.Since(start),
	})

	closeErr := c.Close(context.WithoutCancel(ctx), handle)
	switch {
	case transferErr != nil:
		if closeErr != nil {
			c.logError("close after failed transfer", "op", operation, "file", name, "handle", handle, "error", closeErr.Error())
		}
		return transferErr
	case closeErr != nil:
		return fmt.Errorf("%s %s: %w", operation, name, closeErr)
	}

	c.reportProgress(Progress{
		Phase:       PhaseComplete,
		File:        name,
		Transferred: transferred,
		Total:       total,
		Elapsed:     time.Since(start),
	})
	return nil
}

func (c *Client) incomplete(operation, name string, transferred, total int64, err error) error {
	c.logError(operation+" failed", "file", name, "transferred", transferred, "total", total, "error", err.Error())
	return &IncompleteTransferError{
		Operation:   operation,
		File:        name,
		Transferred: transferred,
		Total:       total,
		Err:         err,
	}
}

// ListFiles returns every file matching pattern. An empty pattern lists all
// files. No match is an empty result, not an error.
func (c *Client) ListFiles(ctx context.Context, pattern string) ([]protocol.FileEntry, error) {
	var entries []protocol.FileEntry
	err := c.WalkFiles(ctx, pattern, func(e protocol.FileEntry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return entries, err
	}
	return entries, nil
}

// WalkFiles calls fn for each file matching pattern, in brick order. An
// error from fn stops the walk and is returned. The iteration handle is
// closed whenever one was obtained.
func (c *Client) WalkFiles(ctx context.Context, pattern string, fn func(protocol.FileEntry) error) error {
	if pattern == "" {
		pattern = protocol.AllFilesPattern
	}

	var (
		handle     protocol.Handle
		haveHandle bool
		walkErr    error
	)

	res := c.FindFirst(ctx, pattern)
walk:
	for {
		switch res.Kind {
		case FindNotFound:
			break walk
		case FindFailed:
			walkErr = fmt.Errorf("list %s: %w", pattern, res.Err)
			break walk
		}

		handle = res.Handle
		haveHandle = true

		if err := fn(res.Entry); err != nil {
			walkErr = err
			break
		}
		res = c.FindNext(ctx, handle)
	}

	if !haveHandle {
		return walkErr
	}

	closeErr := c.Close(context.WithoutCancel(ctx), handle)
	switch {
	case walkErr != nil:
		if closeErr != nil {
			c.logError("close after failed listing", "pattern", pattern, "handle", handle, "error", closeErr.Error())
		}
		return walkErr
	case closeErr != nil:
		return fmt.Errorf("list %s: %w", pattern, closeErr)
	}
	return nil
}
