package protocol

// Command classes (first request byte) per the LEGO MINDSTORMS NXT
// Bluetooth Developer Kit, Appendix 1.
const (
	// DirectCommand requests a reply to a direct command
	DirectCommand = 0x00

	// SystemCommand requests a reply to a system command
	SystemCommand = 0x01

	// ReplyCommand is the class byte of every reply frame
	ReplyCommand = 0x02

	// DirectCommandNoReply sends a direct command without a reply
	DirectCommandNoReply = 0x80

	// SystemCommandNoReply sends a system command without a reply
	SystemCommandNoReply = 0x81
)

// Direct command opcodes.
const (
	// CmdStartProgram starts an executable file on the brick
	CmdStartProgram = 0x00

	// CmdStopProgram stops the running program
	CmdStopProgram = 0x01

	// CmdGetBatteryLevel reports the battery voltage in millivolts
	CmdGetBatteryLevel = 0x0B
)

// System command opcodes.
const (
	// CmdOpenRead opens a file for reading and reports its size
	CmdOpenRead = 0x80

	// CmdOpenWrite creates a file of a declared size for writing
	CmdOpenWrite = 0x81

	// CmdRead reads a chunk from an open handle
	CmdRead = 0x82

	// CmdWrite writes a chunk to an open handle
	CmdWrite = 0x83

	// CmdClose closes a file or iteration handle
	CmdClose = 0x84

	// CmdDelete deletes a file by name
	CmdDelete = 0x85

	// CmdFindFirst starts a directory iteration from a name pattern
	CmdFindFirst = 0x86

	// CmdFindNext advances a directory iteration
	CmdFindNext = 0x87

	// CmdGetFirmwareVersion reports protocol and firmware versions
	CmdGetFirmwareVersion = 0x88

	// CmdBoot switches the brick into firmware update (SAM-BA) mode
	CmdBoot = 0x97

	// CmdGetDeviceInfo reports name, Bluetooth address, signal strength and free flash
	CmdGetDeviceInfo = 0x9B
)

// Status codes reported in the third reply byte.
const (
	StatusSuccess              Status = 0x00
	StatusPendingTransaction   Status = 0x20
	StatusQueueEmpty           Status = 0x40
	StatusNoMoreHandles        Status = 0x81
	StatusNoSpace              Status = 0x82
	StatusNoMoreFiles          Status = 0x83
	StatusEndOfFileExpected    Status = 0x84
	StatusEndOfFile            Status = 0x85
	StatusNotALinearFile       Status = 0x86
	StatusFileNotFound         Status = 0x87
	StatusHandleAlreadyClosed  Status = 0x88
	StatusNoLinearSpace        Status = 0x89
	StatusUndefinedError       Status = 0x8A
	StatusFileIsBusy           Status = 0x8B
	StatusNoWriteBuffers       Status = 0x8C
	StatusAppendNotPossible    Status = 0x8D
	StatusFileIsFull           Status = 0x8E
	StatusFileExists           Status = 0x8F
	StatusModuleNotFound       Status = 0x90
	StatusOutOfBoundary        Status = 0x91
	StatusIllegalFileName      Status = 0x92
	StatusIllegalHandle        Status = 0x93
	StatusRequestFailed        Status = 0xBD
	StatusUnknownCommandOpcode Status = 0xBE
	StatusInsanePacket         Status = 0xBF
	StatusOutOfRange           Status = 0xC0
	StatusBusError             Status = 0xDD
	StatusCommOutOfMemory      Status = 0xDE
	StatusChannelInvalid       Status = 0xDF
	StatusChannelBusy          Status = 0xE0
	StatusNoActiveProgram      Status = 0xEC
	StatusIllegalSize          Status = 0xED
	StatusIllegalMailboxQueue  Status = 0xEE
	StatusInvalidField         Status = 0xEF
	StatusBadInputOutput       Status = 0xF0
	StatusInsufficientMemory   Status = 0xFB
	StatusBadArguments         Status = 0xFF
)

// Field sizes.
const (
	// HeaderSize is the size of every reply header: class, opcode, status
	HeaderSize = 3

	// FileNameSize is the size of every file name field on the wire
	FileNameSize = 20

	// MaxFileNameLength is the longest name that fits a FileNameSize field
	MaxFileNameLength = FileNameSize - 2

	// DeviceNameSize is the size of the brick name field in Get Device Info
	DeviceNameSize = 15

	// BluetoothAddressSize is the size of the Bluetooth address field
	BluetoothAddressSize = 7
)

// Transfer sizing. USB bulk packets are 64 bytes; the chunk limits keep every
// request and reply inside one packet with one spare byte.
const (
	// MaxPacketSize is the USB bulk packet size of the brick
	MaxPacketSize = 64

	// ReadReplyOverhead is header(3) + handle(1) + size(2) in a Read reply
	ReadReplyOverhead = HeaderSize + 3

	// WriteRequestOverhead is class(1) + opcode(1) + handle(1) in a Write request
	WriteRequestOverhead = 3

	// MaxReadChunk is the largest chunk requested by a single Read
	MaxReadChunk = MaxPacketSize - ReadReplyOverhead - 1

	// MaxWriteChunk is the largest chunk sent by a single Write
	MaxWriteChunk = MaxPacketSize - WriteRequestOverhead - 1
)

// Reply payload sizes (after the 3-byte header).
const (
	BatteryLevelReplySize    = 2
	FirmwareVersionReplySize = 4
	DeviceInfoReplySize      = DeviceNameSize + BluetoothAddressSize + 4 + 4
	OpenReadReplySize        = 1 + 4
	OpenWriteReplySize       = 1
	CloseReplySize           = 1
	DeleteReplySize          = FileNameSize
	FindReplySize            = 1 + FileNameSize + 4
	WriteReplySize           = 1 + 2
	BootReplySize            = 4
)

// Wildcards are the characters the brick expands in find patterns.
const Wildcards = "*?"

// DefaultListPattern is the pattern the CLI lists when none is given.
const DefaultListPattern = "*.rxe"

// AllFilesPattern matches every file on the brick.
const AllFilesPattern = "*.*"

// BootMagic is the payload that unlocks CmdBoot, sent with its NUL terminator.
const BootMagic = "Let's dance: SAMBA"

// BootAck is the acknowledgement the brick returns before rebooting.
const BootAck = "Yes"
