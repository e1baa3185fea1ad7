package protocol

import (
	"fmt"

	"github.com/moffa90/go-nxt/buffer"
)

// build resets buf and packs a request: class, opcode, then fields.
func build(buf *buffer.Buffer, class, opcode byte, fields ...buffer.Field) error {
	buf.Reset()
	all := make([]buffer.Field, 0, 2+len(fields))
	all = append(all, buffer.Byte(class), buffer.Byte(opcode))
	all = append(all, fields...)
	if _, err := buf.Pack(all...); err != nil {
		return fmt.Errorf("build request 0x%02X: %w", opcode, err)
	}
	return nil
}

// BuildGetBatteryLevelCmd stages a Get Battery Level direct command.
//
// Frame structure:
//
//	[0x00][0x0B]
func BuildGetBatteryLevelCmd(buf *buffer.Buffer) error {
	return build(buf, DirectCommand, CmdGetBatteryLevel)
}

// BuildStartProgramCmd stages a Start Program direct command.
//
// Frame structure:
//
//	[0x00][0x00][NAME(20)]
func BuildStartProgramCmd(buf *buffer.Buffer, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return build(buf, DirectCommand, CmdStartProgram, buffer.String(name, FileNameSize))
}

// BuildStopProgramCmd stages a Stop Program direct command.
//
// Frame structure:
//
//	[0x00][0x01]
func BuildStopProgramCmd(buf *buffer.Buffer) error {
	return build(buf, DirectCommand, CmdStopProgram)
}

// BuildOpenReadCmd stages an Open Read system command.
//
// Frame structure:
//
//	[0x01][0x80][NAME(20)]
func BuildOpenReadCmd(buf *buffer.Buffer, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return build(buf, SystemCommand, CmdOpenRead, buffer.String(name, FileNameSize))
}

// BuildOpenWriteCmd stages an Open Write system command declaring the full file size.
//
// Frame structure:
//
//	[0x01][0x81][NAME(20)][SIZE(4)]
func BuildOpenWriteCmd(buf *buffer.Buffer, name string, size uint32) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return build(buf, SystemCommand, CmdOpenWrite, buffer.String(name, FileNameSize), buffer.Uint32(size))
}

// BuildReadCmd stages a Read system command for size bytes.
// Sizes above MaxReadChunk are rejected with a ChunkSizeError.
//
// Frame structure:
//
//	[0x01][0x82][HANDLE][SIZE_L][SIZE_H]
func BuildReadCmd(buf *buffer.Buffer, handle Handle, size int) error {
	if size < 0 || size > MaxReadChunk {
		return &ChunkSizeError{Operation: "read", Size: size, Max: MaxReadChunk}
	}
	return build(buf, SystemCommand, CmdRead, buffer.Byte(byte(handle)), buffer.Uint16(uint16(size)))
}

// BuildWriteCmd stages a Write system command carrying data.
// Chunks above MaxWriteChunk are rejected with a ChunkSizeError.
//
// Frame structure:
//
//	[0x01][0x83][HANDLE][DATA...]
func BuildWriteCmd(buf *buffer.Buffer, handle Handle, data []byte) error {
	if len(data) > MaxWriteChunk {
		return &ChunkSizeError{Operation: "write", Size: len(data), Max: MaxWriteChunk}
	}
	return build(buf, SystemCommand, CmdWrite, buffer.Byte(byte(handle)), buffer.Block(data))
}

// BuildCloseCmd stages a Close system command.
//
// Frame structure:
//
//	[0x01][0x84][HANDLE]
func BuildCloseCmd(buf *buffer.Buffer, handle Handle) error {
	return build(buf, SystemCommand, CmdClose, buffer.Byte(byte(handle)))
}

// BuildDeleteCmd stages a Delete system command.
//
// Frame structure:
//
//	[0x01][0x85][NAME(20)]
func BuildDeleteCmd(buf *buffer.Buffer, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return build(buf, SystemCommand, CmdDelete, buffer.String(name, FileNameSize))
}

// BuildFindFirstCmd stages a Find First system command for a name pattern
// such as "*.rxe" or "*.*".
//
// Frame structure:
//
//	[0x01][0x86][PATTERN(20)]
func BuildFindFirstCmd(buf *buffer.Buffer, pattern string) error {
	if err := ValidatePattern(pattern); err != nil {
		return err
	}
	return build(buf, SystemCommand, CmdFindFirst, buffer.String(pattern, FileNameSize))
}

// BuildFindNextCmd stages a Find Next system command on an iteration handle.
//
// Frame structure:
//
//	[0x01][0x87][HANDLE]
func BuildFindNextCmd(buf *buffer.Buffer, handle Handle) error {
	return build(buf, SystemCommand, CmdFindNext, buffer.Byte(byte(handle)))
}

// BuildGetFirmwareVersionCmd stages a Get Firmware Version system command.
//
// Frame structure:
//
//	[0x01][0x88]
func BuildGetFirmwareVersionCmd(buf *buffer.Buffer) error {
	return build(buf, SystemCommand, CmdGetFirmwareVersion)
}

// BuildGetDeviceInfoCmd stages a Get Device Info system command.
//
// Frame structure:
//
//	[0x01][0x9B]
func BuildGetDeviceInfoCmd(buf *buffer.Buffer) error {
	return build(buf, SystemCommand, CmdGetDeviceInfo)
}

// BuildBootCmd stages the Boot system command. The brick only honours it
// when the payload is BootMagic including its terminator; after a successful
// reply the brick resets into SAM-BA firmware update mode.
//
// Frame structure:
//
//	[0x01][0x97]["Let's dance: SAMBA\0"]
func BuildBootCmd(buf *buffer.Buffer) error {
	magic := append([]byte(BootMagic), 0)
	return build(buf, SystemCommand, CmdBoot, buffer.Block(magic))
}
