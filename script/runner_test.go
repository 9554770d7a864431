package script

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TurbineJesse/go-cfa835/display"
	"github.com/TurbineJesse/go-cfa835/protocol"
	"github.com/TurbineJesse/go-cfa835/simulator"
)

// recordingSender records packets and can fail on a given call.
type recordingSender struct {
	sent   []protocol.Packet
	failAt int
	err    error
}

func (s *recordingSender) Send(_ context.Context, pkt protocol.Packet) error {
	if s.failAt > 0 && len(s.sent)+1 == s.failAt {
		return s.err
	}
	s.sent = append(s.sent, pkt)
	return nil
}

func mustParse(t *testing.T, input string) *Script {
	t.Helper()
	sc, err := ParseReader(strings.NewReader(input))
	require.NoError(t, err)
	return sc
}

func TestRun(t *testing.T) {
	sc := mustParse(t, "steps:\n  - clear\n  - pause: 1ms\n  - contrast: 5\n")
	sender := &recordingSender{}

	var progress []Progress
	err := Run(context.Background(), sender, sc, WithProgress(func(p Progress) {
		progress = append(progress, p)
	}))
	require.NoError(t, err)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, byte(protocol.CmdClearScreen), sender.sent[0].Command)
	assert.Equal(t, byte(protocol.CmdContrast), sender.sent[1].Command)

	require.Len(t, progress, 3)
	assert.Equal(t, OpPause, progress[1].Op)
	assert.Equal(t, 3, progress[2].Step)
	assert.Equal(t, 3, progress[2].Total)
	assert.InDelta(t, 100.0, progress[2].Percentage, 0.001)
	assert.GreaterOrEqual(t, progress[2].Elapsed, time.Millisecond)
}

func TestRunStopsOnError(t *testing.T) {
	sc := mustParse(t, "steps:\n  - clear\n  - contrast: 5\n  - clear\n")
	sendErr := errors.New("link down")
	sender := &recordingSender{failAt: 2, err: sendErr}

	err := Run(context.Background(), sender, sc)
	require.ErrorIs(t, err, sendErr)
	assert.Contains(t, err.Error(), "step 2 (contrast, line 3)")
	assert.Len(t, sender.sent, 1)
}

func TestRunCancelledDuringPause(t *testing.T) {
	sc := mustParse(t, "steps:\n  - pause: 1h\n  - clear\n")
	sender := &recordingSender{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := Run(ctx, sender, sc)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, sender.sent)
}

func TestRunNilScript(t *testing.T) {
	assert.Error(t, Run(context.Background(), &recordingSender{}, nil))
}

func TestRunOnSimulator(t *testing.T) {
	sc := mustParse(t, `steps:
  - clear
  - text: {col: 0, row: 0, text: "Line one"}
  - text: {col: 2, row: 2, text: "Line three"}
  - led: {index: 6, state: 100}
  - contrast: 99
`)
	sim := simulator.New()
	lcd := display.New(sim)

	require.NoError(t, Run(context.Background(), lcd, sc))

	assert.Equal(t, []string{"Line one", "", "  Line three", ""}, sim.ScreenText())
	state := sim.State()
	assert.Equal(t, byte(100), state.LEDs[1])
	assert.Equal(t, byte(99), state.Contrast)
	assert.Len(t, sim.Frames(), 5)
}
