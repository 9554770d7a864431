package display

import "time"

// State is a step of the exchange attempt state machine:
//
//	Idle -> Sent -> AwaitingFirstByte -> Draining -> Validating
//	     -> Success | Retry (back to Idle) | ExhaustedFailure
type State int

const (
	StateIdle State = iota
	StateSent
	StateAwaitingFirstByte
	StateDraining
	StateValidating
	StateSuccess
	StateRetry
	StateExhaustedFailure
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSent:
		return "sent"
	case StateAwaitingFirstByte:
		return "awaiting_first_byte"
	case StateDraining:
		return "draining"
	case StateValidating:
		return "validating"
	case StateSuccess:
		return "success"
	case StateRetry:
		return "retry"
	case StateExhaustedFailure:
		return "exhausted_failure"
	default:
		return "unknown"
	}
}

// Outcome classifies how a single attempt ended.
type Outcome string

const (
	OutcomeSuccess            Outcome = "success"
	OutcomeChecksumMismatch   Outcome = "checksum_mismatch"
	OutcomeMalformed          Outcome = "malformed"
	OutcomeUnexpectedResponse Outcome = "unexpected_response"
	OutcomeNoResponse         Outcome = "no_response"
	OutcomeTransportError     Outcome = "transport_error"
	OutcomeCancelled          Outcome = "cancelled"
	OutcomeError              Outcome = "error"
)

// Operation names reported in Attempt.Op.
const (
	OpReadBacklights  = "read_backlights"
	OpReadContrast    = "read_contrast"
	OpMonitorKeypress = "monitor_keypress"
	OpWaitKeypress    = "wait_keypress"
)

// Attempt describes one attempt of a request/response exchange.
// Passed to AttemptCallback after every attempt, including the last.
type Attempt struct {
	// Op is the operation name (one of the Op* constants)
	Op string

	// Number is the 1-based attempt number within the exchange
	Number int

	// Outcome is how this attempt ended
	Outcome Outcome

	// State is where the state machine moved after this attempt:
	// StateSuccess, StateRetry or StateExhaustedFailure. An attempt aborted
	// by a transport error or cancellation carries the state it was in.
	State State

	// Final is true for the last attempt of the exchange
	Final bool

	// Err is the error that failed the attempt (nil on success)
	Err error

	// Elapsed is the time spent on this attempt
	Elapsed time.Duration

	// Exchange identifies the exchange this attempt belongs to. It is
	// unique across every Display in the process.
	Exchange uint64
}

// Result summarises the exchange a final attempt ended: "success",
// "idle", "exhausted" or "aborted". A keypad poll that got no reply is
// "idle". Empty for non-final attempts.
func (a Attempt) Result() string {
	if !a.Final {
		return ""
	}
	switch a.State {
	case StateSuccess:
		if a.Outcome == OutcomeNoResponse {
			return "idle"
		}
		return "success"
	case StateExhaustedFailure:
		return "exhausted"
	default:
		return "aborted"
	}
}

// AttemptCallback is called after each exchange attempt.
// Implementations should return quickly; the display is locked while it runs.
//
// Example:
//
//	lcd := display.New(port,
//	    display.WithAttemptCallback(func(a display.Attempt) {
//	        fmt.Printf("%s attempt %d: %s\n", a.Op, a.Number, a.Outcome)
//	    }),
//	)
type AttemptCallback func(Attempt)

// Logger is an optional logging interface that can be provided to the display.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	lcd := display.New(port, display.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
