// Package serialport connects a display.Display to a CFA835 over a UART.
//
// The port is opened 8N1 at 9600, 19200 or 115200 baud using
// go.bug.st/serial. Received bytes are queued by a background goroutine so
// the display can poll for input without blocking, and Flush waits for the
// transmit buffer to drain.
//
//	port, err := serialport.Open(serialport.Config{
//	    Name:     "/dev/ttyACM0",
//	    BaudRate: serialport.Baud115200,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
// Changing the module's own baud rate is not handled here; the host must
// match whatever the module is configured for.
package serialport
