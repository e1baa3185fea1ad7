package brick

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/moffa90/go-nxt/buffer"
	"github.com/moffa90/go-nxt/protocol"
)

// Client speaks the NXT command protocol to a single brick.
// Every command is one request write followed by one reply read,
// staged in a frame buffer owned by the client.
//
// Client is not safe for concurrent use.
type Client struct {
	device io.ReadWriter
	config Config
	buf    *buffer.Buffer
}

// New creates a new Client with the given device and options.
// The device must implement io.ReadWriter: Write sends one request frame and
// Read returns one reply frame.
//
// Example:
//
//	dev, err := usbdev.Open(usbdev.DefaultConfig())
//	c := brick.New(dev,
//	    brick.WithLogger(myLogger),
//	    brick.WithVerbosity(1),
//	)
func New(device io.ReadWriter, opts ...Option) *Client {
	if device == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		device: device,
		config: cfg,
		buf:    buffer.NewSize(cfg.BufferSize),
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// BatteryLevel returns the battery voltage in millivolts.
func (c *Client) BatteryLevel(ctx context.Context) (uint16, error) {
	if err := protocol.BuildGetBatteryLevelCmd(c.buf); err != nil {
		return 0, err
	}

	var mv uint16
	err := c.roundTrip(ctx, "get battery level", protocol.CmdGetBatteryLevel, func(b *buffer.Buffer) error {
		var err error
		mv, err = protocol.ParseBatteryLevelReply(b)
		return err
	})
	if err != nil {
		return 0, err
	}
	return mv, nil
}

// FirmwareVersion returns the protocol and firmware versions.
func (c *Client) FirmwareVersion(ctx context.Context) (*protocol.FirmwareVersion, error) {
	if err := protocol.BuildGetFirmwareVersionCmd(c.buf); err != nil {
		return nil, err
	}

	var v *protocol.FirmwareVersion
	err := c.roundTrip(ctx, "get firmware version", protocol.CmdGetFirmwareVersion, func(b *buffer.Buffer) error {
		var err error
		v, err = protocol.ParseFirmwareVersionReply(b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// DeviceInfo returns the brick name, Bluetooth address, signal strength and free flash.
func (c *Client) DeviceInfo(ctx context.Context) (*protocol.DeviceInfo, error) {
	if err := protocol.BuildGetDeviceInfoCmd(c.buf); err != nil {
		return nil, err
	}

	var info *protocol.DeviceInfo
	err := c.roundTrip(ctx, "get device info", protocol.CmdGetDeviceInfo, func(b *buffer.Buffer) error {
		var err error
		info, err = protocol.ParseDeviceInfoReply(b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// StartProgram starts the named executable. The brick reports a missing
// program with status 0xC0, which is surfaced as "program not found".
func (c *Client) StartProgram(ctx context.Context, name string) error {
	if err := protocol.BuildStartProgramCmd(c.buf, name); err != nil {
		return err
	}

	err := c.roundTrip(ctx, "start program", protocol.CmdStartProgram, nil)
	var pe *protocol.ProtocolError
	if errors.As(err, &pe) && pe.StatusCode == protocol.StatusOutOfRange {
		pe.Detail = "program not found"
	}
	return err
}

// StopProgram stops the running program.
func (c *Client) StopProgram(ctx context.Context) error {
	if err := protocol.BuildStopProgramCmd(c.buf); err != nil {
		return err
	}
	return c.roundTrip(ctx, "stop program", protocol.CmdStopProgram, nil)
}

// Delete removes the named file.
func (c *Client) Delete(ctx context.Context, name string) error {
	if err := protocol.BuildDeleteCmd(c.buf, name); err != nil {
		return err
	}
	return c.roundTrip(ctx, "delete", protocol.CmdDelete, func(b *buffer.Buffer) error {
		return protocol.ParseDeleteReply(b, name)
	})
}

// OpenRead opens the named file for reading and returns its handle and size.
func (c *Client) OpenRead(ctx context.Context, name string) (protocol.Handle, uint32, error) {
	if err := protocol.BuildOpenReadCmd(c.buf, name); err != nil {
		return 0, 0, err
	}

	var (
		handle protocol.Handle
		size   uint32
	)
	err := c.roundTrip(ctx, "open read", protocol.CmdOpenRead, func(b *buffer.Buffer) error {
		var err error
		handle, size, err = protocol.ParseOpenReadReply(b)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return handle, size, nil
}

// OpenWrite creates the named file with the declared size and returns its handle.
func (c *Client) OpenWrite(ctx context.Context, name string, size uint32) (protocol.Handle, error) {
	if err := protocol.BuildOpenWriteCmd(c.buf, name, size); err != nil {
		return 0, err
	}

	var handle protocol.Handle
	err := c.roundTrip(ctx, "open write", protocol.CmdOpenWrite, func(b *buffer.Buffer) error {
		var err error
		handle, err = protocol.ParseOpenWriteReply(b)
		return err
	})
	if err != nil {
		return 0, err
	}
	return handle, nil
}

// ReadChunk fills p from the open handle with a single Read command.
// len(p) must not exceed protocol.MaxReadChunk.
func (c *Client) ReadChunk(ctx context.Context, handle protocol.Handle, p []byte) error {
	if err := protocol.BuildReadCmd(c.buf, handle, len(p)); err != nil {
		return err
	}
	return c.roundTrip(ctx, "read", protocol.CmdRead, func(b *buffer.Buffer) error {
		return protocol.ParseReadReply(b, handle, p)
	})
}

// WriteChunk sends p to the open handle with a single Write command.
// len(p) must not exceed protocol.MaxWriteChunk.
func (c *Client) WriteChunk(ctx context.Context, handle protocol.Handle, p []byte) error {
	if err := protocol.BuildWriteCmd(c.buf, handle, p); err != nil {
		return err
	}
	return c.roundTrip(ctx, "write", protocol.CmdWrite, func(b *buffer.Buffer) error {
		return protocol.ParseWriteReply(b, handle, len(p))
	})
}

// Close releases a file or iteration handle.
func (c *Client) Close(ctx context.Context, handle protocol.Handle) error {
	if err := protocol.BuildCloseCmd(c.buf, handle); err != nil {
		return err
	}
	return c.roundTrip(ctx, "close", protocol.CmdClose, func(b *buffer.Buffer) error {
		return protocol.ParseCloseReply(b, handle)
	})
}

// Boot switches the brick into SAM-BA firmware update mode. The brick
// disconnects after replying; the client must not be used afterwards.
func (c *Client) Boot(ctx context.Context) error {
	if err := protocol.BuildBootCmd(c.buf); err != nil {
		return err
	}
	return c.roundTrip(ctx, "boot", protocol.CmdBoot, protocol.ParseBootReply)
}

// roundTrip sends the request staged in c.buf, receives the reply into the
// same buffer and validates its header and status. parse consumes the reply
// fields; a nil parse expects an empty reply.
func (c *Client) roundTrip(ctx context.Context, operation string, opcode byte, parse func(*buffer.Buffer) error) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	start := time.Now()
	var status protocol.Status
	defer func() {
		c.observe(Transaction{
			Operation: operation,
			Opcode:    opcode,
			Status:    status,
			Duration:  time.Since(start),
			Err:       err,
		})
	}()

	frame := c.buf.Bytes()
	c.trace("send", operation)
	n, err := c.device.Write(frame)
	if err == nil && n != len(frame) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &TransportError{Operation: operation, Err: fmt.Errorf("write request: %w", err)}
	}

	if _, err := c.buf.Receive(c.device); err != nil {
		return &TransportError{Operation: operation, Err: fmt.Errorf("read reply: %w", err)}
	}
	c.trace("recv", operation)

	if status, err = protocol.ParseHeader(c.buf, operation, opcode); err != nil {
		return err
	}
	if err = protocol.CheckStatus(operation, status); err != nil {
		return err
	}
	if parse == nil {
		return protocol.ParseEmptyReply(c.buf, operation)
	}
	return parse(c.buf)
}

// observe reports a finished round trip to the logger and the transaction hook.
func (c *Client) observe(tx Transaction) {
	if c.config.Verbosity >= 1 {
		kv := []interface{}{
			"op", tx.Operation,
			"opcode", fmt.Sprintf("0x%02X", tx.Opcode),
			"status", tx.Status.String(),
			"duration", tx.Duration.String(),
		}
		if tx.Err != nil {
			kv = append(kv, "error", tx.Err.Error())
		}
		c.logDebug("transaction", kv...)
	}
	if c.config.TransactionHook != nil {
		c.config.TransactionHook(tx)
	}
}

// trace dumps the current frame at verbosity 2 and above.
func (c *Client) trace(direction, operation string) {
	if c.config.Verbosity >= 2 {
		c.logDebug(direction, "op", operation, "frame", c.buf.Dump())
	}
}

// reportProgress calls the progress callback if configured.
func (c *Client) reportProgress(progress Progress) {
	if c.config.ProgressCallback != nil {
		c.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (c *Client) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (c *Client) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (c *Client) logError(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, keysAndValues...)
	}
}
