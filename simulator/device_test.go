package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TurbineJesse/go-cfa835/display"
	"github.com/TurbineJesse/go-cfa835/protocol"
)

func newTestDisplay(sim *Device) *display.Display {
	return display.New(sim,
		display.WithSettleDelay(0),
		display.WithDrainDelay(0),
		display.WithKeypadTiming(0, 0),
		display.WithResponseTimeout(50*time.Millisecond),
		display.WithPollDelay(5*time.Millisecond),
	)
}

func writeFrame(t *testing.T, d *Device, cmd byte, data []byte) {
	t.Helper()
	frame, err := protocol.Encode(cmd, data)
	require.NoError(t, err)
	_, err = d.Write(frame)
	require.NoError(t, err)
}

func readReply(t *testing.T, d *Device) *protocol.Packet {
	t.Helper()
	var buf []byte
	for d.Available() {
		b, err := d.ReadByte()
		require.NoError(t, err)
		buf = append(buf, b)
	}
	pkt, err := protocol.Decode(buf)
	require.NoError(t, err)
	return pkt
}

func TestPowerOnState(t *testing.T) {
	d := New()
	s := d.State()

	assert.Equal(t, byte(DefaultContrast), s.Contrast)
	assert.Equal(t, byte(DefaultBacklight), s.DisplayBacklight)
	assert.Equal(t, byte(DefaultBacklight), s.KeypadBacklight)
	assert.Equal(t, []string{"", "", "", ""}, d.ScreenText())
	assert.False(t, d.Available())

	_, err := d.ReadByte()
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCommandHandling(t *testing.T) {
	tests := []struct {
		name  string
		cmd   byte
		data  []byte
		reply byte
		check func(t *testing.T, s State)
	}{
		{
			name:  "set contrast",
			cmd:   protocol.CmdContrast,
			data:  []byte{90},
			reply: protocol.ResponseCode(protocol.CmdContrast),
			check: func(t *testing.T, s State) { assert.Equal(t, byte(90), s.Contrast) },
		},
		{
			name:  "set backlights",
			cmd:   protocol.CmdBacklight,
			data:  []byte{10, 20},
			reply: protocol.ResponseCode(protocol.CmdBacklight),
			check: func(t *testing.T, s State) {
				assert.Equal(t, byte(10), s.DisplayBacklight)
				assert.Equal(t, byte(20), s.KeypadBacklight)
			},
		},
		{
			name:  "backlight out of range",
			cmd:   protocol.CmdBacklight,
			data:  []byte{101, 0},
			reply: protocol.ErrorCode(protocol.CmdBacklight),
			check: func(t *testing.T, s State) { assert.Equal(t, byte(DefaultBacklight), s.DisplayBacklight) },
		},
		{
			name:  "set LED",
			cmd:   protocol.CmdSetLED,
			data:  []byte{12, 100},
			reply: protocol.ResponseCode(protocol.CmdSetLED),
			check: func(t *testing.T, s State) { assert.Equal(t, byte(100), s.LEDs[LEDCount-1]) },
		},
		{
			name:  "LED index below range",
			cmd:   protocol.CmdSetLED,
			data:  []byte{4, 100},
			reply: protocol.ErrorCode(protocol.CmdSetLED),
		},
		{
			name:  "cursor position",
			cmd:   protocol.CmdSetCursorPosition,
			data:  []byte{19, 3},
			reply: protocol.ResponseCode(protocol.CmdSetCursorPosition),
			check: func(t *testing.T, s State) {
				assert.Equal(t, byte(19), s.CursorColumn)
				assert.Equal(t, byte(3), s.CursorRow)
			},
		},
		{
			name:  "cursor style",
			cmd:   protocol.CmdSetCursorStyle,
			data:  []byte{protocol.CursorUnderscore},
			reply: protocol.ResponseCode(protocol.CmdSetCursorStyle),
			check: func(t *testing.T, s State) { assert.Equal(t, byte(protocol.CursorUnderscore), s.CursorStyle) },
		},
		{
			name:  "graphics circle",
			cmd:   protocol.CmdGraphics,
			data:  []byte{protocol.GfxDrawCircle, 10, 10, 5, 1, 0},
			reply: protocol.ResponseCode(protocol.CmdGraphics),
			check: func(t *testing.T, s State) { assert.Equal(t, 1, s.GraphicsOps) },
		},
		{
			name:  "unknown graphics op",
			cmd:   protocol.CmdGraphics,
			data:  []byte{99},
			reply: protocol.ErrorCode(protocol.CmdGraphics),
		},
		{
			name:  "restart without key",
			cmd:   protocol.CmdRestart,
			data:  []byte{1, 2, 3},
			reply: protocol.ErrorCode(protocol.CmdRestart),
			check: func(t *testing.T, s State) { assert.Equal(t, 0, s.Restarts) },
		},
		{
			name:  "unknown command",
			cmd:   63,
			reply: protocol.ErrorCode(63),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			writeFrame(t, d, tt.cmd, tt.data)

			reply := readReply(t, d)
			assert.Equal(t, tt.reply, reply.Command)
			if tt.check != nil {
				tt.check(t, d.State())
			}
		})
	}
}

func TestReadReplies(t *testing.T) {
	d := New()

	writeFrame(t, d, protocol.CmdContrast, nil)
	contrast, err := protocol.ParseContrast(readReply(t, d))
	require.NoError(t, err)
	assert.Equal(t, byte(DefaultContrast), contrast)

	writeFrame(t, d, protocol.CmdBacklight, nil)
	bl, err := protocol.ParseBacklights(readReply(t, d))
	require.NoError(t, err)
	assert.Equal(t, protocol.Backlights{Display: DefaultBacklight, Keypad: DefaultBacklight}, bl)
}

func TestWriteText(t *testing.T) {
	d := New(WithAcks(false))

	writeFrame(t, d, protocol.CmdWriteText, append([]byte{2, 1}, "Hello"...))
	writeFrame(t, d, protocol.CmdWriteText, append([]byte{17, 3}, "overflow"...))

	assert.Equal(t, []string{"", "  Hello", "", "                 ove"}, d.ScreenText())
	assert.False(t, d.Available())

	writeFrame(t, d, protocol.CmdClearScreen, nil)
	assert.Equal(t, []string{"", "", "", ""}, d.ScreenText())
}

func TestRestartResetsState(t *testing.T) {
	d := New(WithAcks(false))

	writeFrame(t, d, protocol.CmdContrast, []byte{10})
	writeFrame(t, d, protocol.CmdRestart, protocol.RestartKey[:])

	s := d.State()
	assert.Equal(t, byte(DefaultContrast), s.Contrast)
	assert.Equal(t, 1, s.Restarts)
}

func TestPartialAndCorruptFrames(t *testing.T) {
	d := New()

	frame, err := protocol.Encode(protocol.CmdSetLED, []byte{5, 50})
	require.NoError(t, err)

	// noise with impossible lengths, then a frame split across two writes
	_, _ = d.Write([]byte{0xFF, 0xFF})
	_, _ = d.Write(frame[:2])
	assert.False(t, d.Available())
	_, _ = d.Write(frame[2:])

	reply := readReply(t, d)
	assert.Equal(t, protocol.ResponseCode(protocol.CmdSetLED), reply.Command)
	assert.Equal(t, 2, d.Rejected())
	require.Len(t, d.Frames(), 1)
	assert.Equal(t, byte(50), d.State().LEDs[0])
}

func TestFaultInjection(t *testing.T) {
	d := New()
	d.CorruptNext(1)
	d.WrongCodeNext(1)
	d.DropNext(1)

	// dropped
	writeFrame(t, d, protocol.CmdContrast, nil)
	assert.False(t, d.Available())

	// wrong code and corrupt checksum on the same reply
	writeFrame(t, d, protocol.CmdContrast, nil)
	var buf []byte
	for d.Available() {
		b, _ := d.ReadByte()
		buf = append(buf, b)
	}
	_, err := protocol.Decode(buf)
	assert.ErrorIs(t, err, protocol.ErrChecksumMismatch)

	// clean again
	writeFrame(t, d, protocol.CmdContrast, nil)
	assert.Equal(t, byte(protocol.ResponseContrast), readReply(t, d).Command)
}

func TestKeyActivity(t *testing.T) {
	d := New()

	d.PressKey(protocol.KeyEnter)
	key, err := protocol.ParseKeyActivity(readReply(t, d))
	require.NoError(t, err)
	assert.Equal(t, byte(protocol.KeyActivityEnterPress), key)

	writeFrame(t, d, protocol.CmdReadKeypad, nil)
	state, err := protocol.ParseKeypad(readReply(t, d))
	require.NoError(t, err)
	assert.Equal(t, byte(protocol.KeyEnter), state.Pressed)
	assert.Equal(t, byte(protocol.KeyEnter), state.PressedSinceLast)

	d.ReleaseKey(protocol.KeyEnter | protocol.KeyUp)
	key, err = protocol.ParseKeyActivity(readReply(t, d))
	require.NoError(t, err)
	assert.Equal(t, byte(protocol.KeyActivityEnterRelease), key)

	writeFrame(t, d, protocol.CmdReadKeypad, nil)
	state, err = protocol.ParseKeypad(readReply(t, d))
	require.NoError(t, err)
	assert.Equal(t, protocol.KeypadState{ReleasedSinceLast: protocol.KeyEnter}, state)
}

func TestDrivesDisplay(t *testing.T) {
	ctx := context.Background()
	sim := New()
	lcd := newTestDisplay(sim)

	require.NoError(t, lcd.SetContrast(ctx, 42))
	require.NoError(t, lcd.SetBacklights(ctx, 30, 60))
	require.NoError(t, lcd.WriteText(ctx, 0, 0, "CFA835"))

	contrast, err := lcd.ReadContrast(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(42), contrast)

	bl, err := lcd.ReadBacklights(ctx)
	require.NoError(t, err)
	assert.Equal(t, protocol.Backlights{Display: 30, Keypad: 60}, bl)

	assert.Equal(t, "CFA835", sim.ScreenText()[0])

	settings := lcd.Settings()
	assert.True(t, settings.ContrastValid)
	assert.True(t, settings.BacklightsValid)
}

func TestDisplayRetriesInjectedFaults(t *testing.T) {
	ctx := context.Background()
	sim := New()

	var attempts []display.Attempt
	lcd := display.New(sim,
		display.WithSettleDelay(0),
		display.WithDrainDelay(0),
		display.WithResponseTimeout(20*time.Millisecond),
		display.WithAttemptCallback(func(a display.Attempt) { attempts = append(attempts, a) }),
	)

	sim.CorruptNext(1)
	sim.WrongCodeNext(1)
	contrast, err := lcd.ReadContrast(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(DefaultContrast), contrast)
	require.Len(t, attempts, 2)
	assert.Equal(t, display.OutcomeChecksumMismatch, attempts[0].Outcome)
	assert.Equal(t, display.OutcomeSuccess, attempts[1].Outcome)

	sim.DropNext(3)
	_, err = lcd.ReadBacklights(ctx)
	assert.ErrorIs(t, err, display.ErrRetriesExhausted)
}

func TestDisplayWaitKeypress(t *testing.T) {
	sim := New()
	lcd := newTestDisplay(sim)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go func() {
		time.Sleep(20 * time.Millisecond)
		sim.PressKey(protocol.KeyDown)
	}()

	key, err := lcd.WaitKeypress(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(protocol.KeyActivityDownPress), key)
}

func TestDisplayMonitorKeypress(t *testing.T) {
	ctx := context.Background()
	sim := New()
	lcd := newTestDisplay(sim)

	sim.PressKey(protocol.KeyLeft)
	state, err := lcd.MonitorKeypress(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(protocol.KeyLeft), state.Pressed)
}
