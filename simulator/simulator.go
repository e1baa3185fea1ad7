// Package simulator provides an in-memory NXT brick that answers protocol
// requests written to it, for tests and examples that have no hardware.
//
// A Brick implements io.ReadWriter the way a USB transport does: each Write
// delivers one request frame and the following Read returns its reply.
package simulator

import (
	"bytes"
	"errors"
	"path"
	"sort"
	"sync"

	"github.com/moffa90/go-nxt/buffer"
	"github.com/moffa90/go-nxt/protocol"
)

// MaxHandles is the number of handles the simulated brick can have open.
const MaxHandles = 16

// ErrNoReply is returned by Read when no request is awaiting its reply.
var ErrNoReply = errors.New("simulator: no reply pending")

// Request records one request handled by the simulator.
type Request struct {
	Class  byte
	Opcode byte
	Status protocol.Status
}

type handleKind int

const (
	readHandle handleKind = iota + 1
	writeHandle
	findHandle
)

type openHandle struct {
	kind    handleKind
	name    string
	pos     int
	size    int
	data    []byte
	matches []string
}

// Brick is a simulated NXT brick. The exported fields describe the device
// and may be changed before use. The zero value is not usable; call New.
type Brick struct {
	Name      string
	Address   [protocol.BluetoothAddressSize]byte
	Battery   uint16
	Firmware  protocol.FirmwareVersion
	FreeFlash uint32

	mu       sync.Mutex
	files    map[string][]byte
	handles  map[protocol.Handle]*openHandle
	running  string
	booted   bool
	pending  []byte
	in       *buffer.Buffer
	out      *buffer.Buffer
	log      []Request
	faults   map[byte][]fault
	ackSkew  int
	readErr  error
	writeErr error
}

type fault struct {
	status protocol.Status
	once   bool
}

// New returns a simulated brick with typical identity values and no files.
func New() *Brick {
	return &Brick{
		Name:      "NXT",
		Address:   [protocol.BluetoothAddressSize]byte{0x00, 0x16, 0x53, 0x0a, 0x0b, 0x0c, 0x00},
		Battery:   8120,
		Firmware:  protocol.FirmwareVersion{ProtocolMajor: 1, ProtocolMinor: 124, FirmwareMajor: 1, FirmwareMinor: 29},
		FreeFlash: 120 * 1024,
		files:     make(map[string][]byte),
		handles:   make(map[protocol.Handle]*openHandle),
		in:        buffer.New(),
		out:       buffer.New(),
		faults:    make(map[byte][]fault),
	}
}

// AddFile stores a file on the brick, replacing any existing content.
func (s *Brick) AddFile(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = append([]byte(nil), data...)
}

// File returns a copy of a stored file.
func (s *Brick) File(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Files returns the stored file names in sorted order.
func (s *Brick) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedNames()
}

// Running returns the name of the running program, or "".
func (s *Brick) Running() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Booted reports whether a valid Boot command has been received.
func (s *Brick) Booted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.booted
}

// OpenHandles returns the number of handles currently open.
func (s *Brick) OpenHandles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Requests returns every request handled so far, in order.
func (s *Brick) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.log...)
}

// Count returns how many requests with opcode have been handled.
func (s *Brick) Count(opcode byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.log {
		if r.Opcode == opcode {
			n++
		}
	}
	return n
}

// Opcodes returns the opcode of every request handled so far, in order.
func (s *Brick) Opcodes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := make([]byte, len(s.log))
	for i, r := range s.log {
		ops[i] = r.Opcode
	}
	return ops
}

// FailOn makes every request with opcode fail with status.
func (s *Brick) FailOn(opcode byte, status protocol.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[opcode] = append(s.faults[opcode], fault{status: status})
}

// FailOnce makes the next request with opcode fail with status.
// Several calls queue up in order.
func (s *Brick) FailOnce(opcode byte, status protocol.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[opcode] = append(s.faults[opcode], fault{status: status, once: true})
}

// SetWriteAckSkew makes Write replies report delta bytes fewer than received.
func (s *Brick) SetWriteAckSkew(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ackSkew = delta
}

// SetReadError makes Read fail with err until cleared with nil.
func (s *Brick) SetReadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// SetWriteError makes Write fail with err until cleared with nil.
func (s *Brick) SetWriteError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// ClearFaults removes all injected faults.
func (s *Brick) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[byte][]fault)
	s.ackSkew = 0
	s.readErr = nil
	s.writeErr = nil
}

// Write accepts one request frame and prepares its reply.
func (s *Brick) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return 0, s.writeErr
	}

	if _, err := s.in.Receive(bytes.NewReader(p)); err != nil {
		return 0, err
	}

	var class, opcode byte
	if _, err := s.in.Unpack(buffer.ByteInto(&class), buffer.ByteInto(&opcode)); err != nil {
		s.pending = nil
		return len(p), nil
	}

	s.out.Reset()
	status := s.injected(opcode)
	if status.OK() {
		status = s.dispatch(class, opcode)
	}
	if !status.OK() {
		// Error replies carry the header only.
		s.out.Reset()
		_, _ = s.out.Pack(buffer.Byte(protocol.ReplyCommand), buffer.Byte(opcode), buffer.Byte(byte(status)))
	}

	s.log = append(s.log, Request{Class: class, Opcode: opcode, Status: status})
	s.pending = append([]byte(nil), s.out.Bytes()...)
	return len(p), nil
}

// Read returns the reply to the last request.
func (s *Brick) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readErr != nil {
		return 0, s.readErr
	}
	if s.pending == nil {
		return 0, ErrNoReply
	}
	n := copy(p, s.pending)
	s.pending = nil
	return n, nil
}

func (s *Brick) injected(opcode byte) protocol.Status {
	queue := s.faults[opcode]
	if len(queue) == 0 {
		return protocol.StatusSuccess
	}
	f := queue[0]
	if f.once {
		s.faults[opcode] = queue[1:]
	}
	return f.status
}

// dispatch executes the request in s.in and packs a success reply into s.out.
// A non-success return discards whatever was packed.
func (s *Brick) dispatch(class, opcode byte) protocol.Status {
	if class != protocol.DirectCommand && class != protocol.SystemCommand {
		return protocol.StatusUnknownCommandOpcode
	}
	s.header(opcode)

	if class == protocol.DirectCommand {
		switch opcode {
		case protocol.CmdStartProgram:
			return s.startProgram()
		case protocol.CmdStopProgram:
			return s.stopProgram()
		case protocol.CmdGetBatteryLevel:
			return s.reply(buffer.Uint16(s.Battery))
		}
		return protocol.StatusUnknownCommandOpcode
	}

	switch opcode {
	case protocol.CmdOpenRead:
		return s.openRead()
	case protocol.CmdOpenWrite:
		return s.openWrite()
	case protocol.CmdRead:
		return s.read()
	case protocol.CmdWrite:
		return s.write()
	case protocol.CmdClose:
		return s.close()
	case protocol.CmdDelete:
		return s.delete()
	case protocol.CmdFindFirst:
		return s.findFirst()
	case protocol.CmdFindNext:
		return s.findNext()
	case protocol.CmdGetFirmwareVersion:
		return s.reply(
			buffer.Byte(s.Firmware.ProtocolMinor),
			buffer.Byte(s.Firmware.ProtocolMajor),
			buffer.Byte(s.Firmware.FirmwareMinor),
			buffer.Byte(s.Firmware.FirmwareMajor),
		)
	case protocol.CmdGetDeviceInfo:
		return s.reply(
			buffer.String(s.Name, protocol.DeviceNameSize),
			buffer.Block(s.Address[:]),
			buffer.Uint32(0),
			buffer.Uint32(s.FreeFlash),
		)
	case protocol.CmdBoot:
		return s.boot()
	}
	return protocol.StatusUnknownCommandOpcode
}

func (s *Brick) header(opcode byte) {
	_, _ = s.out.Pack(buffer.Byte(protocol.ReplyCommand), buffer.Byte(opcode), buffer.Byte(byte(protocol.StatusSuccess)))
}

func (s *Brick) reply(fields ...buffer.Field) protocol.Status {
	if _, err := s.out.Pack(fields...); err != nil {
		return protocol.StatusInsanePacket
	}
	return protocol.StatusSuccess
}

// name reads a name field and requires the request to end there unless more
// fields follow.
func (s *Brick) name(last bool) (string, bool) {
	name, err := s.in.ReadString(protocol.FileNameSize)
	if err != nil || name == "" {
		return "", false
	}
	if last && s.in.CheckExhausted() != nil {
		return "", false
	}
	return name, true
}

func (s *Brick) handleArg(kind handleKind) (protocol.Handle, *openHandle, protocol.Status) {
	b, err := s.in.ReadByte()
	if err != nil {
		return 0, nil, protocol.StatusInsanePacket
	}
	h := protocol.Handle(b)
	oh, ok := s.handles[h]
	if !ok {
		return h, nil, protocol.StatusHandleAlreadyClosed
	}
	if oh.kind != kind && kind != 0 {
		return h, nil, protocol.StatusIllegalHandle
	}
	return h, oh, protocol.StatusSuccess
}

func (s *Brick) allocate(oh *openHandle) (protocol.Handle, bool) {
	for i := 0; i < MaxHandles; i++ {
		h := protocol.Handle(i)
		if _, used := s.handles[h]; !used {
			s.handles[h] = oh
			return h, true
		}
	}
	return 0, false
}

func (s *Brick) startProgram() protocol.Status {
	name, ok := s.name(true)
	if !ok {
		return protocol.StatusIllegalFileName
	}
	if _, exists := s.files[name]; !exists {
		return protocol.StatusOutOfRange
	}
	s.running = name
	return protocol.StatusSuccess
}

func (s *Brick) stopProgram() protocol.Status {
	if s.running == "" {
		return protocol.StatusNoActiveProgram
	}
	s.running = ""
	return protocol.StatusSuccess
}

func (s *Brick) openRead() protocol.Status {
	name, ok := s.name(true)
	if !ok {
		return protocol.StatusIllegalFileName
	}
	data, exists := s.files[name]
	if !exists {
		return protocol.StatusFileNotFound
	}
	h, ok := s.allocate(&openHandle{kind: readHandle, name: name, data: data})
	if !ok {
		return protocol.StatusNoMoreHandles
	}
	return s.reply(buffer.Byte(byte(h)), buffer.Uint32(uint32(len(data))))
}

func (s *Brick) openWrite() protocol.Status {
	name, ok := s.name(false)
	if !ok {
		return protocol.StatusIllegalFileName
	}
	size, err := s.in.ReadUint32()
	if err != nil || s.in.CheckExhausted() != nil {
		return protocol.StatusInsanePacket
	}
	if _, exists := s.files[name]; exists {
		return protocol.StatusFileExists
	}
	if size > s.FreeFlash {
		return protocol.StatusNoSpace
	}
	h, ok := s.allocate(&openHandle{kind: writeHandle, name: name, size: int(size), data: make([]byte, 0, size)})
	if !ok {
		return protocol.StatusNoMoreHandles
	}
	return s.reply(buffer.Byte(byte(h)))
}

func (s *Brick) read() protocol.Status {
	h, oh, status := s.handleArg(readHandle)
	if !status.OK() {
		return status
	}
	n, err := s.in.ReadUint16()
	if err != nil || s.in.CheckExhausted() != nil {
		return protocol.StatusInsanePacket
	}
	if oh.pos+int(n) > len(oh.data) {
		return protocol.StatusEndOfFile
	}
	chunk := oh.data[oh.pos : oh.pos+int(n)]
	oh.pos += int(n)
	return s.reply(buffer.Byte(byte(h)), buffer.Uint16(n), buffer.Block(chunk))
}

func (s *Brick) write() protocol.Status {
	h, oh, status := s.handleArg(writeHandle)
	if !status.OK() {
		return status
	}
	data := make([]byte, s.in.Remaining())
	if err := s.in.ReadBlock(data); err != nil {
		return protocol.StatusInsanePacket
	}
	if len(oh.data)+len(data) > oh.size {
		return protocol.StatusFileIsFull
	}
	oh.data = append(oh.data, data...)
	return s.reply(buffer.Byte(byte(h)), buffer.Uint16(uint16(len(data)-s.ackSkew)))
}

func (s *Brick) close() protocol.Status {
	h, oh, status := s.handleArg(0)
	if !status.OK() {
		return status
	}
	if s.in.CheckExhausted() != nil {
		return protocol.StatusInsanePacket
	}
	if oh.kind == writeHandle {
		s.files[oh.name] = oh.data
	}
	delete(s.handles, h)
	return s.reply(buffer.Byte(byte(h)))
}

func (s *Brick) delete() protocol.Status {
	name, ok := s.name(true)
	if !ok {
		return protocol.StatusIllegalFileName
	}
	if _, exists := s.files[name]; !exists {
		return protocol.StatusFileNotFound
	}
	for _, oh := range s.handles {
		if oh.kind != findHandle && oh.name == name {
			return protocol.StatusFileIsBusy
		}
	}
	delete(s.files, name)
	return s.reply(buffer.String(name, protocol.FileNameSize))
}

func (s *Brick) findFirst() protocol.Status {
	pattern, ok := s.name(true)
	if !ok {
		return protocol.StatusIllegalFileName
	}
	var matches []string
	for _, name := range s.sortedNames() {
		if ok, _ := path.Match(pattern, name); ok {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return protocol.StatusFileNotFound
	}
	oh := &openHandle{kind: findHandle, name: pattern, matches: matches}
	h, ok := s.allocate(oh)
	if !ok {
		return protocol.StatusNoMoreHandles
	}
	return s.found(h, oh)
}

func (s *Brick) findNext() protocol.Status {
	h, oh, status := s.handleArg(findHandle)
	if !status.OK() {
		return status
	}
	if s.in.CheckExhausted() != nil {
		return protocol.StatusInsanePacket
	}
	if oh.pos >= len(oh.matches) {
		return protocol.StatusFileNotFound
	}
	return s.found(h, oh)
}

func (s *Brick) found(h protocol.Handle, oh *openHandle) protocol.Status {
	name := oh.matches[oh.pos]
	oh.pos++
	return s.reply(
		buffer.Byte(byte(h)),
		buffer.String(name, protocol.FileNameSize),
		buffer.Uint32(uint32(len(s.files[name]))),
	)
}

func (s *Brick) boot() protocol.Status {
	payload := make([]byte, s.in.Remaining())
	if err := s.in.ReadBlock(payload); err != nil {
		return protocol.StatusInsanePacket
	}
	if string(payload) != protocol.BootMagic+"\x00" {
		return protocol.StatusBadArguments
	}
	s.booted = true
	return s.reply(buffer.Block([]byte(protocol.BootAck + "\x00")))
}

func (s *Brick) sortedNames() []string {
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
