// Package display provides a high-level API for driving Crystalfontz CFA835
// display modules.
//
// # Overview
//
// This package handles the two kinds of interaction the module supports:
//   - Fire-and-forget commands (text, graphics, LEDs, backlights, contrast)
//   - Request/response reads with retries (backlights, contrast, keypad)
//
// # Basic Usage
//
//	port, err := serialport.Open(serialport.Config{Name: "/dev/ttyUSB0"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	lcd := display.New(port)
//
//	ctx := context.Background()
//	lcd.ClearScreen(ctx)
//	lcd.WriteText(ctx, 0, 0, "Hello, World")
//
//	levels, err := lcd.ReadBacklights(ctx)
//	if errors.Is(err, display.ErrRetriesExhausted) {
//	    // no valid reply; levels is the zero value
//	}
//
// # Exchange Timing
//
// The module gives no length prefix beyond its header and no link-level
// acknowledgement, so each read attempt follows a fixed discipline:
//
//  1. Flush outbound bytes and wait SettleDelay for late replies
//  2. Discard everything buffered
//  3. Send the request
//  4. Wait for the first reply byte (ResponseTimeout, PollDelay, or ctx)
//  5. Wait DrainDelay, then drain up to ReceiveBufferSize bytes
//  6. Validate the CRC, code and length; retry on failure
//
// Keypad operations use the shorter keypad delays.
//
// # Configuration Options
//
//	lcd := display.New(port,
//	    display.WithRetries(5),
//	    display.WithLogger(myLogger),
//	    display.WithResponseTimeout(time.Second),
//	    display.WithKeypadTiming(10*time.Millisecond, 10*time.Millisecond),
//	    display.WithAttemptCallback(func(a display.Attempt) {
//	        fmt.Printf("%s #%d %s\n", a.Op, a.Number, a.Outcome)
//	    }),
//	)
//
// # Error Handling
//
// The package provides structured error types:
//   - TransportError: the transport failed; never retried
//   - RetriesExhaustedError: every attempt failed (matches ErrRetriesExhausted)
//   - protocol.ValueRangeError: an argument the device would reject
//
// Frame errors from individual attempts are not returned on their own;
// they are retried, reported through AttemptCallback and wrapped by
// RetriesExhaustedError once the budget runs out.
//
// # Hardware Independence
//
// Any Transport works: serialport.Port for a real UART, simulator.Device
// for tests and demos, or your own implementation.
package display
