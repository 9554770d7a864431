package simulator

import (
	"bytes"
	"errors"
	"strings"
	"sync"

	"github.com/TurbineJesse/go-cfa835/display"
	"github.com/TurbineJesse/go-cfa835/protocol"
)

const (
	// Columns and Rows give the text grid size.
	Columns = protocol.MaxColumn + 1
	Rows    = protocol.MaxRow + 1

	// DefaultContrast and DefaultBacklight are the power-on levels.
	DefaultContrast  = 127
	DefaultBacklight = 100

	// LEDCount is the number of addressable LED channels (indices 5-12).
	LEDCount = protocol.MaxLEDIndex - protocol.MinLEDIndex + 1
)

// ErrNoData is returned by ReadByte when no reply is waiting.
var ErrNoData = errors.New("no reply waiting")

// Device is an in-memory CFA835. It implements display.Transport.
//
// Frames written to it are decoded and applied to its state; replies are
// queued for the host to read. Faults can be injected into upcoming replies
// to exercise the retry path.
type Device struct {
	mu sync.Mutex

	rx  []byte // bytes written by the host, not yet framed
	out []byte // replies waiting to be read

	frames   []protocol.Packet
	rejected int

	acks   bool
	logger display.Logger

	corruptNext   int
	wrongCodeNext int
	dropNext      int

	state State
}

// State is a snapshot of the simulated module.
type State struct {
	Contrast         byte
	DisplayBacklight byte
	KeypadBacklight  byte
	CursorColumn     byte
	CursorRow        byte
	CursorStyle      byte
	LEDs             [LEDCount]byte
	Screen           [Rows][Columns]byte
	GraphicsOps      int
	Restarts         int

	// Keypad bitmasks, as reported by a keypad poll
	KeysPressed       byte
	KeysPressedSince  byte
	KeysReleasedSince byte
}

// Option configures a Device.
type Option func(*Device)

// WithAcks controls whether set commands are acknowledged (cmd|0x40, no
// payload) as the real module does. Enabled by default.
func WithAcks(enabled bool) Option {
	return func(d *Device) {
		d.acks = enabled
	}
}

// WithLogger sets a logger for simulator events.
func WithLogger(logger display.Logger) Option {
	return func(d *Device) {
		d.logger = logger
	}
}

// New creates a simulated module in its power-on state.
func New(opts ...Option) *Device {
	d := &Device{acks: true}
	d.state = powerOnState()
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func powerOnState() State {
	s := State{
		Contrast:         DefaultContrast,
		DisplayBacklight: DefaultBacklight,
		KeypadBacklight:  DefaultBacklight,
		CursorStyle:      protocol.CursorNone,
	}
	clearScreen(&s)
	return s
}

func clearScreen(s *State) {
	for r := range s.Screen {
		for c := range s.Screen[r] {
			s.Screen[r][c] = ' '
		}
	}
	s.CursorColumn, s.CursorRow = 0, 0
}

// Write receives bytes from the host. Complete frames are processed
// immediately; a partial frame waits for the rest.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.rx = append(d.rx, p...)
	d.processLocked()
	return len(p), nil
}

// Flush is a no-op; writes are processed synchronously.
func (d *Device) Flush() error {
	return nil
}

// Available reports whether a reply byte is waiting.
func (d *Device) Available() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.out) > 0
}

// ReadByte returns the next reply byte, or an error if none is waiting.
func (d *Device) ReadByte() (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.out) == 0 {
		return 0, ErrNoData
	}
	b := d.out[0]
	d.out = d.out[1:]
	return b, nil
}

func (d *Device) processLocked() {
	for {
		size := protocol.FrameSize(d.rx)
		if size > protocol.MaxFrameSize {
			// Impossible length; resynchronise on the next byte.
			d.rejected++
			d.rx = d.rx[1:]
			continue
		}
		if size == 0 || len(d.rx) < size {
			return
		}

		pkt, err := protocol.Decode(d.rx[:size])
		if err != nil {
			d.rejected++
			d.logDebug("simulator rejected frame", "error", err)
			d.rx = d.rx[1:]
			continue
		}
		d.rx = d.rx[size:]
		d.frames = append(d.frames, *pkt)
		d.handleLocked(*pkt)
	}
}

func (d *Device) handleLocked(pkt protocol.Packet) {
	s := &d.state

	switch pkt.Command {
	case protocol.CmdClearScreen:
		clearScreen(s)
		d.ackLocked(pkt.Command)

	case protocol.CmdRestart:
		if !bytes.Equal(pkt.Data, protocol.RestartKey[:]) {
			d.rejectLocked(pkt.Command)
			return
		}
		restarts := s.Restarts + 1
		d.state = powerOnState()
		d.state.Restarts = restarts
		d.ackLocked(pkt.Command)

	case protocol.CmdContrast:
		switch len(pkt.Data) {
		case 0:
			d.replyLocked(protocol.ResponseContrast, []byte{s.Contrast})
		case 1:
			s.Contrast = pkt.Data[0]
			d.ackLocked(pkt.Command)
		default:
			d.rejectLocked(pkt.Command)
		}

	case protocol.CmdBacklight:
		switch len(pkt.Data) {
		case 0:
			d.replyLocked(protocol.ResponseBacklight, []byte{s.DisplayBacklight, s.KeypadBacklight})
		case 2:
			if pkt.Data[0] > protocol.MaxBacklight || pkt.Data[1] > protocol.MaxBacklight {
				d.rejectLocked(pkt.Command)
				return
			}
			s.DisplayBacklight, s.KeypadBacklight = pkt.Data[0], pkt.Data[1]
			d.ackLocked(pkt.Command)
		default:
			d.rejectLocked(pkt.Command)
		}

	case protocol.CmdReadKeypad:
		d.replyLocked(protocol.ResponseReadKeypad, []byte{s.KeysPressed, s.KeysPressedSince, s.KeysReleasedSince})
		s.KeysPressedSince, s.KeysReleasedSince = 0, 0

	case protocol.CmdWriteText:
		if len(pkt.Data) < 3 || pkt.Data[0] > protocol.MaxColumn || pkt.Data[1] > protocol.MaxRow {
			d.rejectLocked(pkt.Command)
			return
		}
		col, row := int(pkt.Data[0]), int(pkt.Data[1])
		for i, ch := range pkt.Data[2:] {
			if col+i >= Columns {
				break
			}
			s.Screen[row][col+i] = ch
		}
		d.ackLocked(pkt.Command)

	case protocol.CmdSetLED:
		if len(pkt.Data) != 2 || pkt.Data[0] < protocol.MinLEDIndex || pkt.Data[0] > protocol.MaxLEDIndex ||
			pkt.Data[1] > protocol.MaxLEDState {
			d.rejectLocked(pkt.Command)
			return
		}
		s.LEDs[pkt.Data[0]-protocol.MinLEDIndex] = pkt.Data[1]
		d.ackLocked(pkt.Command)

	case protocol.CmdSetCursorPosition:
		if len(pkt.Data) != 2 || pkt.Data[0] > protocol.MaxColumn || pkt.Data[1] > protocol.MaxRow {
			d.rejectLocked(pkt.Command)
			return
		}
		s.CursorColumn, s.CursorRow = pkt.Data[0], pkt.Data[1]
		d.ackLocked(pkt.Command)

	case protocol.CmdSetCursorStyle:
		if len(pkt.Data) != 1 || pkt.Data[0] > protocol.MaxCursorStyle {
			d.rejectLocked(pkt.Command)
			return
		}
		s.CursorStyle = pkt.Data[0]
		d.ackLocked(pkt.Command)

	case protocol.CmdGraphics:
		if len(pkt.Data) == 0 {
			d.rejectLocked(pkt.Command)
			return
		}
		switch pkt.Data[0] {
		case protocol.GfxDrawPixel, protocol.GfxDrawLine, protocol.GfxDrawRectangle, protocol.GfxDrawCircle:
			s.GraphicsOps++
			d.ackLocked(pkt.Command)
		default:
			d.rejectLocked(pkt.Command)
		}

	default:
		d.rejectLocked(pkt.Command)
	}
}

func (d *Device) ackLocked(cmd byte) {
	if d.acks {
		d.replyLocked(protocol.ResponseCode(cmd), nil)
	}
}

func (d *Device) rejectLocked(cmd byte) {
	d.logDebug("simulator rejected command", "cmd", cmd)
	d.replyLocked(protocol.ErrorCode(cmd), nil)
}

// replyLocked queues a reply, applying any pending fault.
func (d *Device) replyLocked(code byte, data []byte) {
	if d.dropNext > 0 {
		d.dropNext--
		d.logDebug("simulator dropped reply", "code", code)
		return
	}
	if d.wrongCodeNext > 0 {
		d.wrongCodeNext--
		code ^= 0x01
		d.logDebug("simulator altered reply code", "code", code)
	}

	frame, err := protocol.Encode(code, data)
	if err != nil {
		d.logError("simulator could not encode reply", "code", code, "error", err)
		return
	}

	if d.corruptNext > 0 {
		d.corruptNext--
		frame[len(frame)-1] ^= 0xFF
		d.logDebug("simulator corrupted reply checksum", "code", code)
	}

	d.out = append(d.out, frame...)
}

// CorruptNext corrupts the checksum of the next n replies.
func (d *Device) CorruptNext(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.corruptNext = n
}

// WrongCodeNext alters the response code of the next n replies.
func (d *Device) WrongCodeNext(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wrongCodeNext = n
}

// DropNext suppresses the next n replies.
func (d *Device) DropNext(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dropNext = n
}

// PressKey marks the keys in mask as held and queues a key activity
// report for each.
func (d *Device) PressKey(mask byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, k := range keyCodes {
		if mask&k.bit == 0 {
			continue
		}
		d.state.KeysPressed |= k.bit
		d.state.KeysPressedSince |= k.bit
		d.replyLocked(protocol.ResponseKeyActivity, []byte{k.press})
	}
}

// ReleaseKey clears the keys in mask and queues a key activity report
// for each.
func (d *Device) ReleaseKey(mask byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, k := range keyCodes {
		if mask&k.bit == 0 || d.state.KeysPressed&k.bit == 0 {
			continue
		}
		d.state.KeysPressed &^= k.bit
		d.state.KeysReleasedSince |= k.bit
		d.replyLocked(protocol.ResponseKeyActivity, []byte{k.release})
	}
}

var keyCodes = []struct {
	bit     byte
	press   byte
	release byte
}{
	{protocol.KeyUp, protocol.KeyActivityUpPress, protocol.KeyActivityUpRelease},
	{protocol.KeyDown, protocol.KeyActivityDownPress, protocol.KeyActivityDownRelease},
	{protocol.KeyLeft, protocol.KeyActivityLeftPress, protocol.KeyActivityLeftRelease},
	{protocol.KeyRight, protocol.KeyActivityRightPress, protocol.KeyActivityRightRelease},
	{protocol.KeyEnter, protocol.KeyActivityEnterPress, protocol.KeyActivityEnterRelease},
	{protocol.KeyCancel, protocol.KeyActivityExitPress, protocol.KeyActivityExitRelease},
}

// Inject queues raw bytes for the host to read, bypassing fault injection.
func (d *Device) Inject(raw []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.out = append(d.out, raw...)
}

// Frames returns every valid frame received, in order.
func (d *Device) Frames() []protocol.Packet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]protocol.Packet(nil), d.frames...)
}

// Rejected returns how many received frames failed validation.
func (d *Device) Rejected() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rejected
}

// State returns a snapshot of the simulated module.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// ScreenText returns the text grid as one string per row, right-trimmed.
func (d *Device) ScreenText() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	rows := make([]string, Rows)
	for r := range d.state.Screen {
		rows[r] = strings.TrimRight(string(d.state.Screen[r][:]), " ")
	}
	return rows
}

func (d *Device) logDebug(msg string, keysAndValues ...interface{}) {
	if d.logger != nil {
		d.logger.Debug(msg, keysAndValues...)
	}
}

func (d *Device) logError(msg string, keysAndValues ...interface{}) {
	if d.logger != nil {
		d.logger.Error(msg, keysAndValues...)
	}
}

var _ display.Transport = (*Device)(nil)
