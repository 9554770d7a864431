package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TurbineJesse/go-cfa835/protocol"
)

const welcomeScript = `name: welcome
steps:
  - clear
  - backlight: {display: 80, keypad: 40}
  - text: {col: 4, row: 1, text: "Hello"}
  - pause: 250ms
  - contrast: 120
  - circle:
      x: 120
      y: 33
      radius: 20
      line: 100
      fill: 0
`

func TestParseReader(t *testing.T) {
	sc, err := ParseReader(strings.NewReader(welcomeScript))
	require.NoError(t, err)

	assert.Equal(t, "welcome", sc.Name)
	require.Len(t, sc.Steps, 6)

	wantOps := []string{OpClear, OpBacklight, OpText, OpPause, OpContrast, OpCircle}
	wantLines := []int{3, 4, 5, 6, 7, 8}
	for i, step := range sc.Steps {
		assert.Equal(t, wantOps[i], step.Op, "step %d", i)
		assert.Equal(t, wantLines[i], step.Line, "step %d", i)
	}

	assert.Equal(t, protocol.Packet{Command: protocol.CmdClearScreen}, sc.Steps[0].Packet)
	assert.Equal(t, []byte{80, 40}, sc.Steps[1].Packet.Data)
	assert.Equal(t, append([]byte{4, 1}, "Hello"...), sc.Steps[2].Packet.Data)
	assert.Equal(t, 250*time.Millisecond, sc.Steps[3].Pause)
	assert.Equal(t, []byte{protocol.GfxDrawCircle, 120, 33, 20, 100, 0}, sc.Steps[5].Packet.Data)

	assert.Equal(t, 5, sc.Packets())
	assert.Equal(t, 250*time.Millisecond, sc.Duration())
}

func TestParseReaderAllOperations(t *testing.T) {
	input := `steps:
  - restart
  - clear:
  - cursor: {col: 19, row: 3}
  - cursor_style: 4
  - led: {index: 5, state: 50}
  - pixel: {x: 243, y: 67, shade: 100}
  - line: {x1: 0, y1: 0, x2: 243, y2: 67, shade: 100}
  - rectangle: {x: 0, y: 0, width: 244, height: 68, line: 100, fill: 10}
`
	sc, err := ParseReader(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, sc.Steps, 8)

	want := []byte{
		protocol.CmdRestart,
		protocol.CmdClearScreen,
		protocol.CmdSetCursorPosition,
		protocol.CmdSetCursorStyle,
		protocol.CmdSetLED,
		protocol.CmdGraphics,
		protocol.CmdGraphics,
		protocol.CmdGraphics,
	}
	for i, step := range sc.Steps {
		assert.Equal(t, want[i], step.Packet.Command, "step %d (%s)", i, step.Op)
	}
	assert.Equal(t, protocol.RestartKey[:], sc.Steps[0].Packet.Data)
}

func TestParseReaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{
			name:   "empty",
			input:  "",
			errMsg: "empty script",
		},
		{
			name:   "no steps",
			input:  "name: nothing\n",
			errMsg: "no steps found",
		},
		{
			name:   "unknown top-level field",
			input:  "name: x\nsteps:\n  - clear\ncolour: red\n",
			errMsg: "invalid script",
		},
		{
			name:   "unknown operation",
			input:  "steps:\n  - clear\n  - blink\n",
			errMsg: `line 3: unknown operation "blink"`,
		},
		{
			name:   "two operations in one step",
			input:  "steps:\n  - {contrast: 1, clear: }\n",
			errMsg: "exactly one operation",
		},
		{
			name:   "clear with arguments",
			input:  "steps:\n  - clear: 5\n",
			errMsg: "clear: takes no arguments",
		},
		{
			name:   "text too long",
			input:  "steps:\n  - text: {col: 0, row: 0, text: \"" + strings.Repeat("x", 23) + "\"}\n",
			errMsg: "text length 23 is out of range",
		},
		{
			name:   "row out of range",
			input:  "steps:\n  - cursor: {col: 0, row: 4}\n",
			errMsg: "row 4 is out of range",
		},
		{
			name:   "missing field",
			input:  "steps:\n  - backlight: {display: 10}\n",
			errMsg: `missing field "keypad"`,
		},
		{
			name:   "unknown field",
			input:  "steps:\n  - backlight: {display: 10, keypad: 10, extra: 1}\n",
			errMsg: "unknown field(s) extra",
		},
		{
			name:   "value above byte",
			input:  "steps:\n  - contrast: 256\n",
			errMsg: "contrast 256 is out of range",
		},
		{
			name:   "not a number",
			input:  "steps:\n  - led: {index: five, state: 1}\n",
			errMsg: "index: expected a number",
		},
		{
			name:   "bad pause",
			input:  "steps:\n  - pause: soon\n",
			errMsg: "pause:",
		},
		{
			name:   "negative pause",
			input:  "steps:\n  - pause: -1s\n",
			errMsg: "cannot be negative",
		},
		{
			name:   "graphics out of range",
			input:  "steps:\n  - pixel: {x: 244, y: 0, shade: 1}\n",
			errMsg: "x 244 is out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReader(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "welcome.yaml")
	require.NoError(t, os.WriteFile(path, []byte(welcomeScript), 0o600))

	sc, err := Parse(path)
	require.NoError(t, err)
	assert.Len(t, sc.Steps, 6)

	_, err = Parse(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to open script")
}

func TestStepString(t *testing.T) {
	pause := Step{Op: OpPause, Line: 4, Pause: time.Second}
	assert.Equal(t, "line 4: pause 1s", pause.String())

	cls := Step{Op: OpClear, Line: 2, Packet: protocol.Packet{Command: protocol.CmdClearScreen}}
	assert.Contains(t, cls.String(), "line 2: clear packet{cmd=6")
}
