package display

import (
	"time"

	"github.com/TurbineJesse/go-cfa835/protocol"
)

// Config holds the display driver configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// AttemptCallback is called after every exchange attempt (optional)
	AttemptCallback AttemptCallback

	// Retries is the number of attempts a read makes before giving up
	Retries int

	// SettleDelay is the pause after flushing, before stale input is
	// discarded, that lets late replies to earlier commands arrive
	SettleDelay time.Duration

	// DrainDelay is the pause after the first reply byte arrives that lets
	// the rest of the frame come in
	DrainDelay time.Duration

	// KeypadSettleDelay and KeypadDrainDelay replace SettleDelay and
	// DrainDelay for keypad operations
	KeypadSettleDelay time.Duration
	KeypadDrainDelay  time.Duration

	// ResponseTimeout bounds the wait for the first reply byte of a read
	ResponseTimeout time.Duration

	// PollDelay bounds the wait for the first reply byte of a keypad poll.
	// No byte within PollDelay means no key is pressed.
	PollDelay time.Duration

	// PollInterval is how often the transport is checked while waiting
	PollInterval time.Duration

	// ReceiveBufferSize caps the bytes collected for one reply; the rest is
	// read and discarded
	ReceiveBufferSize int
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Retries:           3,
		SettleDelay:       50 * time.Millisecond,
		DrainDelay:        50 * time.Millisecond,
		KeypadSettleDelay: 20 * time.Millisecond,
		KeypadDrainDelay:  20 * time.Millisecond,
		ResponseTimeout:   500 * time.Millisecond,
		PollDelay:         20 * time.Millisecond,
		PollInterval:      time.Millisecond,
		ReceiveBufferSize: protocol.ReceiveBufferSize,
	}
}

// Option is a functional option for configuring the Display.
type Option func(*Config)

// WithLogger sets a logger for display operations.
//
// Example:
//
//	lcd := display.New(port, display.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithAttemptCallback sets a callback that observes every exchange attempt.
func WithAttemptCallback(callback AttemptCallback) Option {
	return func(c *Config) {
		c.AttemptCallback = callback
	}
}

// WithRetries sets the number of attempts a read makes. Values below 1 are ignored.
//
// Example:
//
//	lcd := display.New(port, display.WithRetries(5))
func WithRetries(retries int) Option {
	return func(c *Config) {
		if retries >= 1 {
			c.Retries = retries
		}
	}
}

// WithSettleDelay sets the pause between flushing and discarding stale input.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.SettleDelay = d
		}
	}
}

// WithDrainDelay sets the pause between the first reply byte and draining the reply.
func WithDrainDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.DrainDelay = d
		}
	}
}

// WithKeypadTiming sets the settle and drain delays used by keypad operations.
//
// Example:
//
//	lcd := display.New(port, display.WithKeypadTiming(10*time.Millisecond, 10*time.Millisecond))
func WithKeypadTiming(settle, drain time.Duration) Option {
	return func(c *Config) {
		if settle >= 0 {
			c.KeypadSettleDelay = settle
		}
		if drain >= 0 {
			c.KeypadDrainDelay = drain
		}
	}
}

// WithResponseTimeout sets how long a read waits for the first reply byte.
func WithResponseTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.ResponseTimeout = d
		}
	}
}

// WithPollDelay sets how long a keypad poll waits for the first reply byte.
func WithPollDelay(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.PollDelay = d
		}
	}
}

// WithPollInterval sets how often the transport is checked for input while waiting.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.PollInterval = d
		}
	}
}

// WithReceiveBufferSize sets the reply buffer capacity. It is never set
// below protocol.MaxFrameSize so a full frame always fits.
func WithReceiveBufferSize(size int) Option {
	return func(c *Config) {
		if size >= protocol.MaxFrameSize {
			c.ReceiveBufferSize = size
		}
	}
}
