package protocol

import (
	"fmt"

	"github.com/moffa90/go-nxt/buffer"
)

// ParseHeader consumes the 3-byte reply header from a received frame and
// returns the status byte. The reply class must be ReplyCommand and the
// echoed opcode must equal opcode; the status itself is not interpreted.
//
// Reply header structure:
//
//	[0x02][OPCODE][STATUS]
func ParseHeader(buf *buffer.Buffer, operation string, opcode byte) (Status, error) {
	if buf.Len() < HeaderSize {
		return 0, fmt.Errorf("%s: %w: got %d bytes", operation, ErrShortReply, buf.Len())
	}

	var class, echoed, status byte
	if _, err := buf.Unpack(buffer.ByteInto(&class), buffer.ByteInto(&echoed), buffer.ByteInto(&status)); err != nil {
		return 0, fmt.Errorf("%s: %w", operation, err)
	}

	if class != ReplyCommand {
		return 0, &EchoMismatchError{
			Operation: operation,
			Field:     "reply type",
			Expected:  fmt.Sprintf("0x%02X", ReplyCommand),
			Actual:    fmt.Sprintf("0x%02X", class),
		}
	}
	if echoed != opcode {
		return 0, &EchoMismatchError{
			Operation: operation,
			Field:     "opcode",
			Expected:  fmt.Sprintf("0x%02X", opcode),
			Actual:    fmt.Sprintf("0x%02X", echoed),
		}
	}

	return Status(status), nil
}

// CheckStatus converts a non-success status into a ProtocolError.
func CheckStatus(operation string, status Status) error {
	if status.OK() {
		return nil
	}
	return &ProtocolError{Operation: operation, StatusCode: status}
}

// finish asserts that the reply has been consumed completely.
func finish(buf *buffer.Buffer, operation string) error {
	if err := buf.CheckExhausted(); err != nil {
		return fmt.Errorf("%s reply: %w", operation, err)
	}
	return nil
}

// ParseEmptyReply validates a reply that carries no fields after the header
// (Start Program, Stop Program).
func ParseEmptyReply(buf *buffer.Buffer, operation string) error {
	return finish(buf, operation)
}

// ParseBatteryLevelReply parses the Get Battery Level reply.
//
// Data format (2 bytes):
//
//	[MILLIVOLTS(2)]
func ParseBatteryLevelReply(buf *buffer.Buffer) (uint16, error) {
	var mv uint16
	if _, err := buf.Unpack(buffer.Uint16Into(&mv)); err != nil {
		return 0, fmt.Errorf("get battery level reply: %w", err)
	}
	return mv, finish(buf, "get battery level")
}

// ParseFirmwareVersionReply parses the Get Firmware Version reply.
//
// Data format (4 bytes):
//
//	[PROTO_MINOR][PROTO_MAJOR][FW_MINOR][FW_MAJOR]
func ParseFirmwareVersionReply(buf *buffer.Buffer) (*FirmwareVersion, error) {
	v := &FirmwareVersion{}
	if _, err := buf.Unpack(
		buffer.ByteInto(&v.ProtocolMinor),
		buffer.ByteInto(&v.ProtocolMajor),
		buffer.ByteInto(&v.FirmwareMinor),
		buffer.ByteInto(&v.FirmwareMajor),
	); err != nil {
		return nil, fmt.Errorf("get firmware version reply: %w", err)
	}
	return v, finish(buf, "get firmware version")
}

// ParseDeviceInfoReply parses the Get Device Info reply.
//
// Data format (30 bytes):
//
//	[NAME(15)][BT_ADDR(7)][SIGNAL(4)][FREE_FLASH(4)]
func ParseDeviceInfoReply(buf *buffer.Buffer) (*DeviceInfo, error) {
	info := &DeviceInfo{}
	if _, err := buf.Unpack(
		buffer.StringInto(&info.Name, DeviceNameSize),
		buffer.BlockInto(info.Address[:]),
		buffer.Uint32Into(&info.SignalStrength),
		buffer.Uint32Into(&info.FreeFlash),
	); err != nil {
		return nil, fmt.Errorf("get device info reply: %w", err)
	}
	return info, finish(buf, "get device info")
}

// ParseOpenReadReply parses the Open Read reply.
//
// Data format (5 bytes):
//
//	[HANDLE][FILE_SIZE(4)]
func ParseOpenReadReply(buf *buffer.Buffer) (Handle, uint32, error) {
	var (
		handle byte
		size   uint32
	)
	if _, err := buf.Unpack(buffer.ByteInto(&handle), buffer.Uint32Into(&size)); err != nil {
		return 0, 0, fmt.Errorf("open read reply: %w", err)
	}
	return Handle(handle), size, finish(buf, "open read")
}

// ParseOpenWriteReply parses the Open Write reply, which carries only the handle.
//
// Data format (1 byte):
//
//	[HANDLE]
func ParseOpenWriteReply(buf *buffer.Buffer) (Handle, error) {
	handle, err := buf.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("open write reply: %w", err)
	}
	return Handle(handle), finish(buf, "open write")
}

// ParseReadReply parses the Read reply into dst. The echoed handle must equal
// handle and the echoed size must equal len(dst).
//
// Data format (3 + N bytes):
//
//	[HANDLE][SIZE_L][SIZE_H][DATA(N)]
func ParseReadReply(buf *buffer.Buffer, handle Handle, dst []byte) error {
	var (
		echoed byte
		size   uint16
	)
	if _, err := buf.Unpack(buffer.ByteInto(&echoed), buffer.Uint16Into(&size)); err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	if Handle(echoed) != handle {
		return &EchoMismatchError{Operation: "read", Field: "handle", Expected: byte(handle), Actual: echoed}
	}
	if int(size) != len(dst) {
		return &EchoMismatchError{Operation: "read", Field: "size", Expected: len(dst), Actual: int(size)}
	}
	if err := buf.ReadBlock(dst); err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	return finish(buf, "read")
}

// ParseWriteReply parses the Write reply. The echoed handle must equal handle
// and the echoed size must equal size.
//
// Data format (3 bytes):
//
//	[HANDLE][SIZE_L][SIZE_H]
func ParseWriteReply(buf *buffer.Buffer, handle Handle, size int) error {
	var (
		echoed  byte
		written uint16
	)
	if _, err := buf.Unpack(buffer.ByteInto(&echoed), buffer.Uint16Into(&written)); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	if int(written) != size {
		return &EchoMismatchError{Operation: "write", Field: "size", Expected: size, Actual: int(written)}
	}
	if Handle(echoed) != handle {
		return &EchoMismatchError{Operation: "write", Field: "handle", Expected: byte(handle), Actual: echoed}
	}
	return finish(buf, "write")
}

// ParseCloseReply parses the Close reply, which echoes the closed handle.
//
// Data format (1 byte):
//
//	[HANDLE]
func ParseCloseReply(buf *buffer.Buffer, handle Handle) error {
	echoed, err := buf.ReadByte()
	if err != nil {
		return fmt.Errorf("close reply: %w", err)
	}
	if Handle(echoed) != handle {
		return &EchoMismatchError{Operation: "close", Field: "handle", Expected: byte(handle), Actual: echoed}
	}
	return finish(buf, "close")
}

// ParseDeleteReply parses the Delete reply, which echoes the deleted name.
//
// Data format (20 bytes):
//
//	[NAME(20)]
func ParseDeleteReply(buf *buffer.Buffer, name string) error {
	echoed, err := buf.ReadString(FileNameSize)
	if err != nil {
		return fmt.Errorf("delete reply: %w", err)
	}
	if echoed != name {
		return &EchoMismatchError{Operation: "delete", Field: "name", Expected: name, Actual: echoed}
	}
	return finish(buf, "delete")
}

// ParseFindReply parses a Find First or Find Next reply.
//
// Data format (25 bytes):
//
//	[HANDLE][NAME(20)][FILE_SIZE(4)]
func ParseFindReply(buf *buffer.Buffer) (Handle, FileEntry, error) {
	var (
		handle byte
		entry  FileEntry
	)
	if _, err := buf.Unpack(
		buffer.ByteInto(&handle),
		buffer.StringInto(&entry.Name, FileNameSize),
		buffer.Uint32Into(&entry.Size),
	); err != nil {
		return 0, FileEntry{}, fmt.Errorf("find reply: %w", err)
	}
	return Handle(handle), entry, finish(buf, "find")
}

// ParseBootReply parses the Boot reply.
//
// Data format (4 bytes):
//
//	["Yes\0"]
func ParseBootReply(buf *buffer.Buffer) error {
	ack, err := buf.ReadString(BootReplySize)
	if err != nil {
		return fmt.Errorf("boot reply: %w", err)
	}
	if ack != BootAck {
		return &EchoMismatchError{Operation: "boot", Field: "acknowledgement", Expected: BootAck, Actual: ack}
	}
	return finish(buf, "boot")
}
