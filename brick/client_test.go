package brick

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-nxt/buffer"
	"github.com/moffa90/go-nxt/protocol"
)

// MockDevice replays scripted reply frames and records every request frame.
type MockDevice struct {
	writes    [][]byte
	responses [][]byte
	respIdx   int
	readErr   error
	writeErr  error
}

func NewMockDevice() *MockDevice {
	return &MockDevice{}
}

func (m *MockDevice) Read(p []byte) (int, error) {
	if m.readErr != nil {
		return 0, m.readErr
	}
	if m.respIdx >= len(m.responses) {
		return 0, errors.New("mock: no scripted reply")
	}
	resp := m.responses[m.respIdx]
	m.respIdx++
	return copy(p, resp), nil
}

func (m *MockDevice) Write(p []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.writes = append(m.writes, append([]byte(nil), p...))
	return len(p), nil
}

// AddReply queues a reply frame: reply class, opcode, status and fields.
func (m *MockDevice) AddReply(opcode byte, status protocol.Status, fields ...[]byte) {
	frame := []byte{protocol.ReplyCommand, opcode, byte(status)}
	for _, f := range fields {
		frame = append(frame, f...)
	}
	m.responses = append(m.responses, frame)
}

// AddRaw queues an arbitrary reply frame.
func (m *MockDevice) AddRaw(frame []byte) {
	m.responses = append(m.responses, frame)
}

func (m *MockDevice) SetReadError(err error) {
	m.readErr = err
}

func (m *MockDevice) SetWriteError(err error) {
	m.writeErr = err
}

// MockLogger records messages per level.
type MockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *MockLogger) Debug(msg string, kv ...interface{}) {
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *MockLogger) Info(msg string, kv ...interface{}) {
	l.infoMsgs = append(l.infoMsgs, msg)
}

func (l *MockLogger) Error(msg string, kv ...interface{}) {
	l.errorMsgs = append(l.errorMsgs, msg)
}

func name20(s string) []byte {
	field := make([]byte, protocol.FileNameSize)
	copy(field, s)
	return field
}

func TestNew(t *testing.T) {
	t.Run("panics on nil device", func(t *testing.T) {
		assert.Panics(t, func() { New(nil) })
	})

	t.Run("defaults", func(t *testing.T) {
		cfg := New(NewMockDevice()).Config()
		assert.Equal(t, protocol.MaxReadChunk, cfg.ReadChunkSize)
		assert.Equal(t, protocol.MaxWriteChunk, cfg.WriteChunkSize)
		assert.Equal(t, buffer.DefaultCapacity, cfg.BufferSize)
		assert.Equal(t, 0, cfg.Verbosity)
		assert.Nil(t, cfg.Logger)
	})
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		check func(t *testing.T, cfg Config)
	}{
		{
			name: "chunk sizes in range",
			opts: []Option{WithReadChunkSize(16), WithWriteChunkSize(32)},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, 16, cfg.ReadChunkSize)
				assert.Equal(t, 32, cfg.WriteChunkSize)
			},
		},
		{
			name: "chunk sizes above packet limit ignored",
			opts: []Option{WithReadChunkSize(58), WithWriteChunkSize(61)},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, protocol.MaxReadChunk, cfg.ReadChunkSize)
				assert.Equal(t, protocol.MaxWriteChunk, cfg.WriteChunkSize)
			},
		},
		{
			name: "zero chunk sizes ignored",
			opts: []Option{WithReadChunkSize(0), WithWriteChunkSize(-1)},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, protocol.MaxReadChunk, cfg.ReadChunkSize)
				assert.Equal(t, protocol.MaxWriteChunk, cfg.WriteChunkSize)
			},
		},
		{
			name: "verbosity",
			opts: []Option{WithVerbosity(2), WithVerbosity(-1)},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, 2, cfg.Verbosity)
			},
		},
		{
			name: "buffer size",
			opts: []Option{WithBufferSize(protocol.MaxPacketSize), WithBufferSize(128)},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, 128, cfg.BufferSize)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, New(NewMockDevice(), tt.opts...).Config())
		})
	}
}

func TestBatteryLevel(t *testing.T) {
	dev := NewMockDevice()
	dev.AddReply(protocol.CmdGetBatteryLevel, protocol.StatusSuccess, []byte{0xB8, 0x1F})

	mv, err := New(dev).BatteryLevel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint16(8120), mv)
	require.Len(t, dev.writes, 1)
	assert.Equal(t, []byte{0x00, 0x0B}, dev.writes[0])
}

func TestRoundTripFailures(t *testing.T) {
	boom := errors.New("usb: pipe error")

	tests := []struct {
		name  string
		setup func(*MockDevice)
		check func(t *testing.T, err error)
	}{
		{
			name:  "write error",
			setup: func(m *MockDevice) { m.SetWriteError(boom) },
			check: func(t *testing.T, err error) {
				var te *TransportError
				require.True(t, errors.As(err, &te))
				assert.Equal(t, "get firmware version", te.Operation)
				assert.ErrorIs(t, err, boom)
			},
		},
		{
			name:  "read error",
			setup: func(m *MockDevice) { m.SetReadError(boom) },
			check: func(t *testing.T, err error) {
				var te *TransportError
				require.True(t, errors.As(err, &te))
				assert.ErrorIs(t, err, boom)
			},
		},
		{
			name:  "short reply",
			setup: func(m *MockDevice) { m.AddRaw([]byte{0x02, 0x88}) },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, protocol.ErrShortReply)
			},
		},
		{
			name:  "opcode echo mismatch",
			setup: func(m *MockDevice) { m.AddReply(protocol.CmdGetDeviceInfo, protocol.StatusSuccess, []byte{1, 2, 3, 4}) },
			check: func(t *testing.T, err error) {
				var eme *protocol.EchoMismatchError
				require.True(t, errors.As(err, &eme))
				assert.Equal(t, "opcode", eme.Field)
			},
		},
		{
			name:  "error status",
			setup: func(m *MockDevice) { m.AddReply(protocol.CmdGetFirmwareVersion, protocol.StatusBusError) },
			check: func(t *testing.T, err error) {
				s, ok := protocol.StatusOf(err)
				require.True(t, ok)
				assert.Equal(t, protocol.StatusBusError, s)
			},
		},
		{
			name:  "trailing bytes",
			setup: func(m *MockDevice) { m.AddReply(protocol.CmdGetFirmwareVersion, protocol.StatusSuccess, []byte{1, 2, 3, 4, 5}) },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, buffer.ErrTrailingBytes)
			},
		},
		{
			name:  "truncated fields",
			setup: func(m *MockDevice) { m.AddReply(protocol.CmdGetFirmwareVersion, protocol.StatusSuccess, []byte{1, 2}) },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, buffer.ErrTrailingBytes)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := NewMockDevice()
			tt.setup(dev)
			v, err := New(dev).FirmwareVersion(context.Background())
			require.Error(t, err)
			assert.Nil(t, v)
			tt.check(t, err)
		})
	}
}

func TestStartProgramNotFound(t *testing.T) {
	dev := NewMockDevice()
	dev.AddReply(protocol.CmdStartProgram, protocol.StatusOutOfRange)

	err := New(dev).StartProgram(context.Background(), "ghost.rxe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "program not found")
}

func TestNameValidatedBeforeTransport(t *testing.T) {
	dev := NewMockDevice()
	c := New(dev)

	err := c.Delete(context.Background(), "a-name-that-is-far-too-long.rxe")
	assert.ErrorIs(t, err, protocol.ErrNameTooLong)

	_, _, err = c.OpenRead(context.Background(), "")
	assert.ErrorIs(t, err, protocol.ErrEmptyName)

	assert.Empty(t, dev.writes)
}

func TestChunkSizeRejectedBeforeTransport(t *testing.T) {
	dev := NewMockDevice()
	c := New(dev)

	err := c.ReadChunk(context.Background(), 1, make([]byte, protocol.MaxReadChunk+1))
	var cse *protocol.ChunkSizeError
	assert.True(t, errors.As(err, &cse))

	err = c.WriteChunk(context.Background(), 1, make([]byte, protocol.MaxWriteChunk+1))
	assert.True(t, errors.As(err, &cse))

	assert.Empty(t, dev.writes)
}

func TestReadChunkEchoMismatch(t *testing.T) {
	dev := NewMockDevice()
	dev.AddReply(protocol.CmdRead, protocol.StatusSuccess, []byte{0x01, 0x02, 0x00, 'a', 'b'})

	err := New(dev).ReadChunk(context.Background(), 1, make([]byte, 3))
	var eme *protocol.EchoMismatchError
	require.True(t, errors.As(err, &eme))
	assert.Equal(t, "size", eme.Field)
}

func TestDeleteEchoChecked(t *testing.T) {
	dev := NewMockDevice()
	dev.AddReply(protocol.CmdDelete, protocol.StatusSuccess, name20("a.rxe"))
	dev.AddReply(protocol.CmdDelete, protocol.StatusSuccess, name20("b.rxe"))
	c := New(dev)

	require.NoError(t, c.Delete(context.Background(), "a.rxe"))

	var eme *protocol.EchoMismatchError
	assert.True(t, errors.As(c.Delete(context.Background(), "a.rxe"), &eme))
}

func TestFindClassification(t *testing.T) {
	dev := NewMockDevice()
	dev.AddReply(protocol.CmdFindFirst, protocol.StatusSuccess, []byte{0x03}, name20("x.rxe"), []byte{0x40, 0, 0, 0})
	dev.AddReply(protocol.CmdFindNext, protocol.StatusFileNotFound)
	dev.AddReply(protocol.CmdFindNext, protocol.StatusIllegalHandle)
	c := New(dev)
	ctx := context.Background()

	res := c.FindFirst(ctx, "*.rxe")
	require.True(t, res.Found())
	assert.Equal(t, protocol.Handle(3), res.Handle)
	assert.Equal(t, protocol.FileEntry{Name: "x.rxe", Size: 64}, res.Entry)

	res = c.FindNext(ctx, res.Handle)
	assert.True(t, res.NotFound())
	assert.NoError(t, res.Err)

	res = c.FindNext(ctx, 3)
	assert.Equal(t, FindFailed, res.Kind)
	s, _ := protocol.StatusOf(res.Err)
	assert.Equal(t, protocol.StatusIllegalHandle, s)
}

func TestCancelledContextSendsNothing(t *testing.T) {
	dev := NewMockDevice()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(dev).BatteryLevel(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dev.writes)
}

func TestVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		wantDebug int
	}{
		{verbosity: 0, wantDebug: 0},
		{verbosity: 1, wantDebug: 1},
		{verbosity: 2, wantDebug: 3},
	}

	for _, tt := range tests {
		dev := NewMockDevice()
		dev.AddReply(protocol.CmdStopProgram, protocol.StatusSuccess)
		logger := &MockLogger{}

		err := New(dev, WithLogger(logger), WithVerbosity(tt.verbosity)).StopProgram(context.Background())
		require.NoError(t, err)
		assert.Len(t, logger.debugMsgs, tt.wantDebug, "verbosity %d", tt.verbosity)
	}
}

func TestTransactionHook(t *testing.T) {
	dev := NewMockDevice()
	dev.AddReply(protocol.CmdStopProgram, protocol.StatusSuccess)
	dev.AddReply(protocol.CmdStopProgram, protocol.StatusNoActiveProgram)

	var txs []Transaction
	c := New(dev, WithTransactionHook(func(tx Transaction) { txs = append(txs, tx) }))

	require.NoError(t, c.StopProgram(context.Background()))
	require.Error(t, c.StopProgram(context.Background()))

	require.Len(t, txs, 2)
	assert.Equal(t, "stop program", txs[0].Operation)
	assert.Equal(t, byte(protocol.CmdStopProgram), txs[0].Opcode)
	assert.NoError(t, txs[0].Err)
	assert.Equal(t, protocol.StatusNoActiveProgram, txs[1].Status)
	assert.Error(t, txs[1].Err)
}

func TestBufferReusedAcrossCommands(t *testing.T) {
	dev := NewMockDevice()
	dev.AddReply(protocol.CmdOpenRead, protocol.StatusSuccess, []byte{0x01, 0x05, 0, 0, 0})
	dev.AddReply(protocol.CmdClose, protocol.StatusSuccess, []byte{0x01})
	c := New(dev)

	h, size, err := c.OpenRead(context.Background(), "long-file-name.rxe")
	require.NoError(t, err)
	require.NoError(t, c.Close(context.Background(), h))
	assert.Equal(t, uint32(5), size)

	require.Len(t, dev.writes, 2)
	assert.True(t, bytes.Equal([]byte{0x01, 0x84, 0x01}, dev.writes[1]))
}
