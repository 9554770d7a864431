package display

import (
	"context"
	"time"
)

// Transport is the byte link to the display module.
//
// A serial port satisfies it through serialport.Port; simulator.Device
// satisfies it in memory.
type Transport interface {
	// Write sends bytes to the device
	Write(p []byte) (int, error)

	// Flush blocks until all written bytes have been transmitted
	Flush() error

	// Available reports whether at least one received byte can be read
	// without blocking
	Available() bool

	// ReadByte returns the next received byte
	ReadByte() (byte, error)
}

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// waitForData polls t every interval until a byte is available, timeout
// elapses or ctx is done. A timeout of zero waits until ctx is done.
// Reports whether data is available.
func waitForData(ctx context.Context, t Transport, timeout, interval time.Duration) (bool, error) {
	if t.Available() {
		return true, nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline:
			return t.Available(), nil
		case <-ticker.C:
			if t.Available() {
				return true, nil
			}
		}
	}
}

// discardInput reads and drops everything currently buffered.
func discardInput(t Transport) (int, error) {
	n := 0
	for t.Available() {
		if _, err := t.ReadByte(); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// drainInput reads everything currently buffered, keeping at most limit
// bytes. Returns the kept bytes and the number discarded.
func drainInput(t Transport, limit int) ([]byte, int, error) {
	buf := make([]byte, 0, limit)
	dropped := 0
	for t.Available() {
		b, err := t.ReadByte()
		if err != nil {
			return buf, dropped, err
		}
		if len(buf) < limit {
			buf = append(buf, b)
		} else {
			dropped++
		}
	}
	return buf, dropped, nil
}
