package simulator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-nxt/buffer"
	"github.com/moffa90/go-nxt/protocol"
)

// exchange stages a request with build, sends it and returns the reply buffer
// positioned after a successful header.
func exchange(t *testing.T, sim *Brick, opcode byte, build func(*buffer.Buffer) error) (*buffer.Buffer, protocol.Status) {
	t.Helper()
	buf := buffer.New()
	require.NoError(t, build(buf))
	_, err := sim.Write(buf.Bytes())
	require.NoError(t, err)
	_, err = buf.Receive(sim)
	require.NoError(t, err)
	status, err := protocol.ParseHeader(buf, "test", opcode)
	require.NoError(t, err)
	return buf, status
}

func TestReadWithoutRequest(t *testing.T) {
	sim := New()
	_, err := sim.Read(make([]byte, 64))
	assert.ErrorIs(t, err, ErrNoReply)
}

func TestIdentityCommands(t *testing.T) {
	sim := New()

	buf, status := exchange(t, sim, protocol.CmdGetBatteryLevel, protocol.BuildGetBatteryLevelCmd)
	require.True(t, status.OK())
	mv, err := protocol.ParseBatteryLevelReply(buf)
	require.NoError(t, err)
	assert.Equal(t, sim.Battery, mv)

	buf, status = exchange(t, sim, protocol.CmdGetFirmwareVersion, protocol.BuildGetFirmwareVersionCmd)
	require.True(t, status.OK())
	v, err := protocol.ParseFirmwareVersionReply(buf)
	require.NoError(t, err)
	assert.Equal(t, sim.Firmware, *v)

	buf, status = exchange(t, sim, protocol.CmdGetDeviceInfo, protocol.BuildGetDeviceInfoCmd)
	require.True(t, status.OK())
	info, err := protocol.ParseDeviceInfoReply(buf)
	require.NoError(t, err)
	assert.Equal(t, "NXT", info.Name)
	assert.Equal(t, sim.Address, info.Address)
}

func TestOpenReadMissingFile(t *testing.T) {
	sim := New()
	_, status := exchange(t, sim, protocol.CmdOpenRead, func(b *buffer.Buffer) error {
		return protocol.BuildOpenReadCmd(b, "missing.rxe")
	})
	assert.Equal(t, protocol.StatusFileNotFound, status)
	assert.Equal(t, 0, sim.OpenHandles())
}

func TestWriteThenReadBack(t *testing.T) {
	sim := New()

	buf, status := exchange(t, sim, protocol.CmdOpenWrite, func(b *buffer.Buffer) error {
		return protocol.BuildOpenWriteCmd(b, "data.txt", 5)
	})
	require.True(t, status.OK())
	h, err := protocol.ParseOpenWriteReply(buf)
	require.NoError(t, err)

	buf, status = exchange(t, sim, protocol.CmdWrite, func(b *buffer.Buffer) error {
		return protocol.BuildWriteCmd(b, h, []byte("hello"))
	})
	require.True(t, status.OK())
	require.NoError(t, protocol.ParseWriteReply(buf, h, 5))

	_, status = exchange(t, sim, protocol.CmdClose, func(b *buffer.Buffer) error {
		return protocol.BuildCloseCmd(b, h)
	})
	require.True(t, status.OK())

	data, ok := sim.File("data.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, 0, sim.OpenHandles())
}

func TestWriteBeyondDeclaredSize(t *testing.T) {
	sim := New()
	buf, _ := exchange(t, sim, protocol.CmdOpenWrite, func(b *buffer.Buffer) error {
		return protocol.BuildOpenWriteCmd(b, "small.txt", 2)
	})
	h, err := protocol.ParseOpenWriteReply(buf)
	require.NoError(t, err)

	_, status := exchange(t, sim, protocol.CmdWrite, func(b *buffer.Buffer) error {
		return protocol.BuildWriteCmd(b, h, []byte("abc"))
	})
	assert.Equal(t, protocol.StatusFileIsFull, status)
}

func TestFindIteration(t *testing.T) {
	sim := New()
	sim.AddFile("b.rxe", make([]byte, 10))
	sim.AddFile("a.rxe", make([]byte, 20))
	sim.AddFile("c.rso", make([]byte, 30))

	buf, status := exchange(t, sim, protocol.CmdFindFirst, func(b *buffer.Buffer) error {
		return protocol.BuildFindFirstCmd(b, "*.rxe")
	})
	require.True(t, status.OK())
	h, entry, err := protocol.ParseFindReply(buf)
	require.NoError(t, err)
	assert.Equal(t, protocol.FileEntry{Name: "a.rxe", Size: 20}, entry)

	buf, status = exchange(t, sim, protocol.CmdFindNext, func(b *buffer.Buffer) error {
		return protocol.BuildFindNextCmd(b, h)
	})
	require.True(t, status.OK())
	_, entry, err = protocol.ParseFindReply(buf)
	require.NoError(t, err)
	assert.Equal(t, "b.rxe", entry.Name)

	_, status = exchange(t, sim, protocol.CmdFindNext, func(b *buffer.Buffer) error {
		return protocol.BuildFindNextCmd(b, h)
	})
	assert.Equal(t, protocol.StatusFileNotFound, status)
	assert.Equal(t, 1, sim.OpenHandles())
}

func TestFaultInjection(t *testing.T) {
	sim := New()
	sim.FailOnce(protocol.CmdGetBatteryLevel, protocol.StatusBusError)

	_, status := exchange(t, sim, protocol.CmdGetBatteryLevel, protocol.BuildGetBatteryLevelCmd)
	assert.Equal(t, protocol.StatusBusError, status)

	_, status = exchange(t, sim, protocol.CmdGetBatteryLevel, protocol.BuildGetBatteryLevelCmd)
	assert.True(t, status.OK())

	boom := errors.New("usb gone")
	sim.SetWriteError(boom)
	_, err := sim.Write([]byte{0x00, 0x0B})
	assert.ErrorIs(t, err, boom)

	sim.ClearFaults()
	assert.Equal(t, []byte{protocol.CmdGetBatteryLevel, protocol.CmdGetBatteryLevel}, sim.Opcodes())
	assert.Equal(t, 2, sim.Count(protocol.CmdGetBatteryLevel))
}

func TestStartStopProgram(t *testing.T) {
	sim := New()
	sim.AddFile("run.rxe", []byte{1})

	_, status := exchange(t, sim, protocol.CmdStartProgram, func(b *buffer.Buffer) error {
		return protocol.BuildStartProgramCmd(b, "nope.rxe")
	})
	assert.Equal(t, protocol.StatusOutOfRange, status)

	_, status = exchange(t, sim, protocol.CmdStartProgram, func(b *buffer.Buffer) error {
		return protocol.BuildStartProgramCmd(b, "run.rxe")
	})
	require.True(t, status.OK())
	assert.Equal(t, "run.rxe", sim.Running())

	_, status = exchange(t, sim, protocol.CmdStopProgram, protocol.BuildStopProgramCmd)
	require.True(t, status.OK())
	assert.Empty(t, sim.Running())

	_, status = exchange(t, sim, protocol.CmdStopProgram, protocol.BuildStopProgramCmd)
	assert.Equal(t, protocol.StatusNoActiveProgram, status)
}

func TestBoot(t *testing.T) {
	sim := New()
	buf, status := exchange(t, sim, protocol.CmdBoot, protocol.BuildBootCmd)
	require.True(t, status.OK())
	require.NoError(t, protocol.ParseBootReply(buf))
	assert.True(t, sim.Booted())
}
