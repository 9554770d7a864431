package serialport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/TurbineJesse/go-cfa835/display"
)

// Baud rates the CFA835 can be configured for.
const (
	Baud9600   = 9600
	Baud19200  = 19200
	Baud115200 = 115200

	// DefaultBaudRate is the module's factory setting.
	DefaultBaudRate = Baud115200
)

const (
	defaultReadTimeout = 10 * time.Millisecond
	defaultQueueSize   = 1024
	readChunkSize      = 64
)

var (
	// ErrNoData is returned by ReadByte when nothing has been received.
	ErrNoData = errors.New("no data available")

	// ErrClosed is returned by operations on a closed port.
	ErrClosed = errors.New("port closed")
)

// Config describes the serial link to the module.
// The line is always 8N1.
type Config struct {
	// Name is the device path (e.g. /dev/ttyUSB0 or COM3)
	Name string

	// BaudRate is 9600, 19200 or 115200 (default 115200)
	BaudRate int

	// ReadTimeout bounds each blocking read in the receive goroutine and
	// therefore how quickly Close returns (default 10ms)
	ReadTimeout time.Duration

	// QueueSize caps the bytes held between the port and ReadByte.
	// Bytes arriving while the queue is full are dropped (default 1024)
	QueueSize int
}

func (c Config) withDefaults() Config {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = defaultReadTimeout
	}
	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}
	return c
}

// Validate checks the port name and baud rate.
func (c Config) Validate() error {
	if c.Name == "" {
		return errors.New("port name is required")
	}
	switch c.BaudRate {
	case Baud9600, Baud19200, Baud115200:
		return nil
	default:
		return fmt.Errorf("unsupported baud rate %d: use 9600, 19200 or 115200", c.BaudRate)
	}
}

// rawPort is the subset of serial.Port the Port needs.
type rawPort interface {
	io.ReadWriteCloser
	Drain() error
}

// Port is a CFA835 serial link. It implements display.Transport.
//
// A goroutine moves received bytes into a bounded queue so Available can
// answer without blocking, the way a UART receive buffer does.
type Port struct {
	raw    rawPort
	name   string
	logger display.Logger

	mu       sync.Mutex
	queue    []byte
	limit    int
	dropped  int
	readErr  error
	closed   bool
	done     chan struct{}
	stopped  chan struct{}
	closeErr error
	once     sync.Once
}

// Option configures a Port.
type Option func(*Port)

// WithLogger sets a logger for port events.
func WithLogger(logger display.Logger) Option {
	return func(p *Port) {
		p.logger = logger
	}
}

// Open opens and configures the serial port and starts receiving.
//
// Example:
//
//	port, err := serialport.Open(serialport.Config{Name: "/dev/ttyUSB0"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	lcd := display.New(port)
func Open(cfg Config, opts ...Option) (*Port, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sp, err := serial.Open(cfg.Name, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Name, err)
	}

	if err := sp.SetReadTimeout(cfg.ReadTimeout); err != nil {
		_ = sp.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", cfg.Name, err)
	}

	if err := sp.ResetInputBuffer(); err != nil {
		_ = sp.Close()
		return nil, fmt.Errorf("reset input buffer on %s: %w", cfg.Name, err)
	}

	p := newPort(sp, cfg, opts...)
	p.logInfo("serial port opened", "port", cfg.Name, "baud", cfg.BaudRate)
	return p, nil
}

func newPort(raw rawPort, cfg Config, opts ...Option) *Port {
	cfg = cfg.withDefaults()
	p := &Port{
		raw:     raw,
		name:    cfg.Name,
		limit:   cfg.QueueSize,
		queue:   make([]byte, 0, cfg.QueueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	go p.receive()
	return p
}

// receive copies bytes from the port into the queue until Close.
func (p *Port) receive() {
	defer close(p.stopped)

	buf := make([]byte, readChunkSize)
	for {
		select {
		case <-p.done:
			return
		default:
		}

		n, err := p.raw.Read(buf)
		if n > 0 {
			p.enqueue(buf[:n])
		}
		if err != nil {
			select {
			case <-p.done:
				return
			default:
			}
			p.mu.Lock()
			p.readErr = err
			p.mu.Unlock()
			p.logError("serial read failed", "port", p.name, "error", err)
			return
		}
	}
}

func (p *Port) enqueue(b []byte) {
	p.mu.Lock()
	room := p.limit - len(p.queue)
	if room < 0 {
		room = 0
	}
	keep := b
	lost := 0
	if len(keep) > room {
		lost = len(keep) - room
		keep = keep[:room]
	}
	p.queue = append(p.queue, keep...)
	p.dropped += lost
	p.mu.Unlock()

	if lost > 0 {
		p.logDebug("receive queue full, dropped bytes", "port", p.name, "bytes", lost)
	}
}

// Name returns the device path.
func (p *Port) Name() string {
	return p.name
}

// Write sends bytes to the module.
func (p *Port) Write(b []byte) (int, error) {
	if p.isClosed() {
		return 0, ErrClosed
	}
	return p.raw.Write(b)
}

// Flush blocks until every written byte has left the UART.
func (p *Port) Flush() error {
	if p.isClosed() {
		return ErrClosed
	}
	return p.raw.Drain()
}

// Available reports whether ReadByte has something to return: a received
// byte, or the error that stopped the receiver once the queue is empty.
func (p *Port) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue) > 0 || p.readErr != nil || p.closed
}

// ReadByte returns the next received byte. It never blocks; it returns
// ErrNoData when the queue is empty, or the error that stopped the
// receive goroutine.
func (p *Port) ReadByte() (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.queue) == 0 {
		if p.readErr != nil {
			return 0, p.readErr
		}
		if p.closed {
			return 0, ErrClosed
		}
		return 0, ErrNoData
	}

	b := p.queue[0]
	p.queue = p.queue[1:]
	return b, nil
}

// Dropped returns the number of received bytes lost to a full queue.
func (p *Port) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Close stops the receive goroutine and closes the port.
// It is safe to call more than once.
func (p *Port) Close() error {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		close(p.done)
		p.closeErr = p.raw.Close()
		<-p.stopped
		p.logInfo("serial port closed", "port", p.name)
	})
	return p.closeErr
}

func (p *Port) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Port) logDebug(msg string, keysAndValues ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, keysAndValues...)
	}
}

func (p *Port) logInfo(msg string, keysAndValues ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, keysAndValues...)
	}
}

func (p *Port) logError(msg string, keysAndValues ...interface{}) {
	if p.logger != nil {
		p.logger.Error(msg, keysAndValues...)
	}
}

var _ display.Transport = (*Port)(nil)
