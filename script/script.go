package script

import (
	"fmt"
	"time"

	"github.com/TurbineJesse/go-cfa835/protocol"
)

// Step operation names, as written in a script.
const (
	OpClear       = "clear"
	OpRestart     = "restart"
	OpText        = "text"
	OpContrast    = "contrast"
	OpBacklight   = "backlight"
	OpCursor      = "cursor"
	OpCursorStyle = "cursor_style"
	OpLED         = "led"
	OpPixel       = "pixel"
	OpLine        = "line"
	OpRectangle   = "rectangle"
	OpCircle      = "circle"
	OpPause       = "pause"
)

// Script is a parsed screen script.
type Script struct {
	// Name is the optional script name
	Name string

	// Steps run in order
	Steps []Step
}

// Step is one validated script instruction.
type Step struct {
	// Op is the operation name (OpClear, OpText, ...)
	Op string

	// Line is the line in the source the step was read from
	Line int

	// Packet is the command to send. Unused for OpPause.
	Packet protocol.Packet

	// Pause is how long an OpPause step waits
	Pause time.Duration
}

// IsPause reports whether the step waits instead of sending.
func (s Step) IsPause() bool {
	return s.Op == OpPause
}

func (s Step) String() string {
	if s.IsPause() {
		return fmt.Sprintf("line %d: pause %s", s.Line, s.Pause)
	}
	return fmt.Sprintf("line %d: %s %s", s.Line, s.Op, s.Packet)
}

// Packets returns the number of steps that send a packet.
func (s *Script) Packets() int {
	n := 0
	for _, step := range s.Steps {
		if !step.IsPause() {
			n++
		}
	}
	return n
}

// Duration returns the total time spent in pauses.
func (s *Script) Duration() time.Duration {
	var d time.Duration
	for _, step := range s.Steps {
		if step.IsPause() {
			d += step.Pause
		}
	}
	return d
}
