package display

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TurbineJesse/go-cfa835/protocol"
)

// Display drives a CFA835 module over a Transport.
// It handles framing, the request/response timing discipline and retries
// for the read operations.
//
// Display is safe for concurrent use; calls are serialised so exchanges
// never overlap on the wire.
type Display struct {
	mu        sync.Mutex
	transport Transport
	config    Config
	settings  Settings
}

// New creates a new Display on the given transport.
//
// Example:
//
//	port, _ := serialport.Open(serialport.Config{Name: "/dev/ttyUSB0"})
//	lcd := display.New(port,
//	    display.WithRetries(5),
//	    display.WithLogger(logger),
//	)
func New(t Transport, opts ...Option) *Display {
	if t == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Display{
		transport: t,
		config:    cfg,
		settings:  Settings{Retries: cfg.Retries},
	}
}

// Settings returns a copy of the cached device settings.
func (d *Display) Settings() Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settings
}

// SetRetries changes the number of attempts a read makes.
// Values below 1 are ignored.
func (d *Display) SetRetries(n int) {
	if n < 1 {
		return
	}
	d.mu.Lock()
	d.settings.Retries = n
	d.mu.Unlock()
}

// Send encodes a packet and writes it. No reply is read.
// Transport failures are returned as *TransportError and are not retried.
func (d *Display) Send(ctx context.Context, pkt protocol.Packet) error {
	frame, err := protocol.EncodePacket(pkt)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := d.transport.Write(frame); err != nil {
		d.logError("write failed", "cmd", pkt.Command, "error", err)
		return &TransportError{Op: "write", Err: err}
	}

	d.logDebug("sent packet", "cmd", pkt.Command, "len", pkt.Length())
	return nil
}

func (d *Display) send(ctx context.Context, pkt protocol.Packet, err error) error {
	if err != nil {
		return err
	}
	return d.Send(ctx, pkt)
}

// ClearScreen clears the display.
func (d *Display) ClearScreen(ctx context.Context) error {
	pkt, err := protocol.BuildClearScreen()
	return d.send(ctx, pkt, err)
}

// Restart reboots the module. It may take up to 3 seconds before the
// module responds to further commands.
func (d *Display) Restart(ctx context.Context) error {
	pkt, err := protocol.BuildRestart()
	return d.send(ctx, pkt, err)
}

// SetContrast sets the LCD contrast (0-255; around 127 suits most panels).
func (d *Display) SetContrast(ctx context.Context, contrast byte) error {
	pkt, err := protocol.BuildSetContrast(contrast)
	return d.send(ctx, pkt, err)
}

// SetBacklights sets the display and keypad backlights (0-100 each).
func (d *Display) SetBacklights(ctx context.Context, display, keypad byte) error {
	pkt, err := protocol.BuildSetBacklights(display, keypad)
	return d.send(ctx, pkt, err)
}

// WriteText writes text starting at the given column and row.
func (d *Display) WriteText(ctx context.Context, col, row byte, text string) error {
	pkt, err := protocol.BuildWriteText(col, row, text)
	return d.send(ctx, pkt, err)
}

// SetLED sets one LED (index 5-12) to a state (0=off, 1-99 PWM, 100=on).
func (d *Display) SetLED(ctx context.Context, led, state byte) error {
	pkt, err := protocol.BuildSetLED(led, state)
	return d.send(ctx, pkt, err)
}

// SetCursorPosition moves the text cursor.
func (d *Display) SetCursorPosition(ctx context.Context, col, row byte) error {
	pkt, err := protocol.BuildSetCursorPosition(col, row)
	return d.send(ctx, pkt, err)
}

// SetCursorStyle selects the cursor style.
func (d *Display) SetCursorStyle(ctx context.Context, style byte) error {
	pkt, err := protocol.BuildSetCursorStyle(style)
	return d.send(ctx, pkt, err)
}

// DrawPixel sets one pixel.
func (d *Display) DrawPixel(ctx context.Context, x, y, shade byte) error {
	pkt, err := protocol.BuildDrawPixel(x, y, shade)
	return d.send(ctx, pkt, err)
}

// DrawLine draws a line from (x1, y1) to (x2, y2).
func (d *Display) DrawLine(ctx context.Context, x1, y1, x2, y2, shade byte) error {
	pkt, err := protocol.BuildDrawLine(x1, y1, x2, y2, shade)
	return d.send(ctx, pkt, err)
}

// DrawRectangle draws a rectangle with its top-left corner at (x, y).
func (d *Display) DrawRectangle(ctx context.Context, x, y, width, height, line, fill byte) error {
	pkt, err := protocol.BuildDrawRectangle(x, y, width, height, line, fill)
	return d.send(ctx, pkt, err)
}

// DrawCircle draws a circle centred on (x, y).
func (d *Display) DrawCircle(ctx context.Context, x, y, radius, line, fill byte) error {
	pkt, err := protocol.BuildDrawCircle(x, y, radius, line, fill)
	return d.send(ctx, pkt, err)
}

// ReadBacklights queries both backlight levels and caches them in Settings.
// If every attempt fails it returns zero levels and an error matching
// ErrRetriesExhausted.
func (d *Display) ReadBacklights(ctx context.Context) (protocol.Backlights, error) {
	req, err := protocol.BuildReadBacklights()
	if err != nil {
		return protocol.Backlights{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	pkt, err := d.exchange(ctx, exchange{
		op:      OpReadBacklights,
		request: &req,
		expect:  protocol.SignatureBacklights,
		settle:  d.config.SettleDelay,
		drain:   d.config.DrainDelay,
		timeout: d.config.ResponseTimeout,
	})
	if err != nil {
		return protocol.Backlights{}, err
	}

	levels, err := protocol.ParseBacklights(pkt)
	if err != nil {
		return protocol.Backlights{}, err
	}

	d.settings.DisplayBacklight = levels.Display
	d.settings.KeypadBacklight = levels.Keypad
	d.settings.BacklightsValid = true

	return levels, nil
}

// ReadContrast queries the contrast and caches it in Settings.
// If every attempt fails it returns 0 and an error matching ErrRetriesExhausted.
func (d *Display) ReadContrast(ctx context.Context) (byte, error) {
	req, err := protocol.BuildReadContrast()
	if err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	pkt, err := d.exchange(ctx, exchange{
		op:      OpReadContrast,
		request: &req,
		expect:  protocol.SignatureContrast,
		settle:  d.config.SettleDelay,
		drain:   d.config.DrainDelay,
		timeout: d.config.ResponseTimeout,
	})
	if err != nil {
		return 0, err
	}

	contrast, err := protocol.ParseContrast(pkt)
	if err != nil {
		return 0, err
	}

	d.settings.Contrast = contrast
	d.settings.ContrastValid = true

	return contrast, nil
}

// MonitorKeypress polls the keypad without waiting for a key.
//
// If the device does not answer within PollDelay the keypad is treated as
// idle: the zero state is returned with a nil error and no further attempts
// are made. Corrupt or unexpected replies are retried.
func (d *Display) MonitorKeypress(ctx context.Context) (protocol.KeypadState, error) {
	req, err := protocol.BuildReadKeypad()
	if err != nil {
		return protocol.KeypadState{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	pkt, err := d.exchange(ctx, exchange{
		op:      OpMonitorKeypress,
		request: &req,
		expect:  protocol.SignatureKeypad,
		settle:  d.config.KeypadSettleDelay,
		drain:   d.config.KeypadDrainDelay,
		timeout: d.config.PollDelay,
		idleOK:  true,
	})
	if err != nil || pkt == nil {
		return protocol.KeypadState{}, err
	}

	return protocol.ParseKeypad(pkt)
}

// WaitKeypress blocks until the module reports key activity and returns the
// key code. Nothing is sent. The wait ends early only when ctx is done, so
// pass a context with a deadline to bound it.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
//	defer cancel()
//	key, err := lcd.WaitKeypress(ctx)
func (d *Display) WaitKeypress(ctx context.Context) (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pkt, err := d.exchange(ctx, exchange{
		op:     OpWaitKeypress,
		expect: protocol.SignatureKeyActivity,
		settle: d.config.KeypadSettleDelay,
		drain:  d.config.KeypadDrainDelay,
	})
	if err != nil {
		return 0, err
	}

	return protocol.ParseKeyActivity(pkt)
}

// exchange describes one request/response interaction.
type exchange struct {
	op string

	// request is nil for receive-only exchanges, which skip the flush and write
	request *protocol.Packet
	expect  protocol.Signature

	settle time.Duration
	drain  time.Duration

	// timeout bounds the wait for the first reply byte; zero waits on ctx only
	timeout time.Duration

	// idleOK ends the exchange with a nil packet and nil error when no
	// reply arrives
	idleOK bool
}

// exchangeSeq numbers exchanges for Attempt.Exchange.
var exchangeSeq atomic.Uint64

// exchange runs up to Settings.Retries attempts. The caller holds d.mu.
func (d *Display) exchange(ctx context.Context, ex exchange) (*protocol.Packet, error) {
	var frame []byte
	if ex.request != nil {
		f, err := protocol.EncodePacket(*ex.request)
		if err != nil {
			return nil, err
		}
		frame = f
	}

	retries := d.settings.Retries
	id := exchangeSeq.Add(1)
	var lastErr error

	for n := 1; n <= retries; n++ {
		start := time.Now()
		pkt, state, err := d.attempt(ctx, ex, frame)
		report := Attempt{
			Op:       ex.op,
			Number:   n,
			Err:      err,
			Elapsed:  time.Since(start),
			Exchange: id,
		}

		switch {
		case err == nil && pkt == nil:
			report.Outcome = OutcomeNoResponse
			report.State = StateSuccess
			report.Final = true
			d.reportAttempt(report)
			return nil, nil

		case err == nil:
			report.Outcome = OutcomeSuccess
			report.State = StateSuccess
			report.Final = true
			d.reportAttempt(report)
			if n > 1 {
				d.logInfo("exchange recovered", "op", ex.op, "attempt", n)
			}
			return pkt, nil

		case isAbort(err):
			report.Outcome = outcomeOf(err)
			report.State = state
			report.Final = true
			d.reportAttempt(report)
			d.logError("exchange aborted", "op", ex.op, "attempt", n, "state", state.String(), "error", err)
			return nil, err
		}

		lastErr = err
		report.Outcome = outcomeOf(err)
		report.State = StateRetry
		if n == retries {
			report.State = StateExhaustedFailure
			report.Final = true
		}
		d.reportAttempt(report)
		d.logDebug("attempt failed",
			"op", ex.op,
			"attempt", n,
			"outcome", string(report.Outcome),
			"error", err,
		)
	}

	d.logError("retries exhausted", "op", ex.op, "attempts", retries, "error", lastErr)
	return nil, &RetriesExhaustedError{Op: ex.op, Attempts: retries, Last: lastErr}
}

// attempt performs one pass of the state machine. It returns the state the
// attempt was in when it stopped, which is StateSuccess for a valid reply.
func (d *Display) attempt(ctx context.Context, ex exchange, frame []byte) (*protocol.Packet, State, error) {
	state := StateIdle

	if frame != nil {
		if err := d.transport.Flush(); err != nil {
			return nil, state, &TransportError{Op: "flush", Err: err}
		}
	}

	if err := sleep(ctx, ex.settle); err != nil {
		return nil, state, err
	}

	stale, err := discardInput(d.transport)
	if err != nil {
		return nil, state, &TransportError{Op: "read", Err: err}
	}
	if stale > 0 {
		d.logDebug("discarded stale input", "op", ex.op, "bytes", stale)
	}

	if frame != nil {
		if _, err := d.transport.Write(frame); err != nil {
			return nil, state, &TransportError{Op: "write", Err: err}
		}
		d.logDebug("sent request", "op", ex.op, "state", StateSent.String())
	}

	state = StateAwaitingFirstByte
	ok, err := waitForData(ctx, d.transport, ex.timeout, d.config.PollInterval)
	if err != nil {
		return nil, state, err
	}
	if !ok {
		if ex.idleOK {
			return nil, state, nil
		}
		return nil, state, errNoResponse
	}

	state = StateDraining
	if err := sleep(ctx, ex.drain); err != nil {
		return nil, state, err
	}

	buf, dropped, err := drainInput(d.transport, d.config.ReceiveBufferSize)
	if err != nil {
		return nil, state, &TransportError{Op: "read", Err: err}
	}
	if dropped > 0 {
		d.logDebug("receive buffer full, discarded bytes", "op", ex.op, "bytes", dropped)
	}

	state = StateValidating
	pkt, err := protocol.Decode(buf)
	if err != nil {
		return nil, state, err
	}
	if err := pkt.Expect(ex.expect); err != nil {
		return nil, state, err
	}

	return pkt, StateSuccess, nil
}

func isAbort(err error) bool {
	var te *TransportError
	return errors.As(err, &te) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func outcomeOf(err error) Outcome {
	var te *TransportError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &te):
		return OutcomeTransportError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	case errors.Is(err, protocol.ErrChecksumMismatch):
		return OutcomeChecksumMismatch
	case errors.Is(err, protocol.ErrMalformed):
		return OutcomeMalformed
	case errors.Is(err, protocol.ErrUnexpectedResponse):
		return OutcomeUnexpectedResponse
	case errors.Is(err, errNoResponse):
		return OutcomeNoResponse
	default:
		return OutcomeError
	}
}

// reportAttempt calls the attempt callback if configured.
func (d *Display) reportAttempt(a Attempt) {
	if d.config.AttemptCallback != nil {
		d.config.AttemptCallback(a)
	}
}

// logDebug logs a debug message if a logger is configured.
func (d *Display) logDebug(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (d *Display) logInfo(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (d *Display) logError(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Error(msg, keysAndValues...)
	}
}
