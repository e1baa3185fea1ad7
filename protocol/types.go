package protocol

import (
	"fmt"
	"strings"
)

// Status is the device-reported outcome of a command.
type Status byte

// String returns the human-readable description of the status.
func (s Status) String() string {
	return getStatusName(s)
}

// OK reports whether s is StatusSuccess.
func (s Status) OK() bool { return s == StatusSuccess }

// Handle identifies an open file or directory iteration on the brick.
type Handle byte

// FirmwareVersion contains the protocol and firmware versions.
// Returned by the Get Firmware Version command.
type FirmwareVersion struct {
	ProtocolMajor byte
	ProtocolMinor byte
	FirmwareMajor byte
	FirmwareMinor byte
}

// Protocol returns the protocol version as "major.minor".
func (v FirmwareVersion) Protocol() string {
	return fmt.Sprintf("%d.%d", v.ProtocolMajor, v.ProtocolMinor)
}

// Firmware returns the firmware version as "major.minor".
func (v FirmwareVersion) Firmware() string {
	return fmt.Sprintf("%d.%d", v.FirmwareMajor, v.FirmwareMinor)
}

// DeviceInfo contains brick identification information.
// Returned by the Get Device Info command.
type DeviceInfo struct {
	// Name is the brick name (up to 14 characters)
	Name string

	// Address is the Bluetooth address; the last byte is reserved
	Address [BluetoothAddressSize]byte

	// SignalStrength is the Bluetooth signal strength
	SignalStrength uint32

	// FreeFlash is the free user flash in bytes
	FreeFlash uint32
}

// AddressString formats the Bluetooth address as colon-separated hex bytes.
func (d DeviceInfo) AddressString() string {
	parts := make([]string, len(d.Address))
	for i, b := range d.Address {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, ":")
}

// FileEntry is one file reported by a directory iteration.
type FileEntry struct {
	Name string
	Size uint32
}
