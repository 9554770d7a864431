package script

import (
	"context"
	"fmt"
	"time"

	"github.com/TurbineJesse/go-cfa835/display"
	"github.com/TurbineJesse/go-cfa835/protocol"
)

// Sender sends one packet to the display. *display.Display implements it.
type Sender interface {
	Send(ctx context.Context, pkt protocol.Packet) error
}

// Progress contains information about a running script.
// Passed to ProgressCallback after each step.
type Progress struct {
	// Step is the number of steps completed (1-based)
	Step int

	// Total is the number of steps in the script
	Total int

	// Op is the operation of the step just completed
	Op string

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// Elapsed is the time since the script started
	Elapsed time.Duration
}

// ProgressCallback is called after each step.
// Implementations should return quickly to avoid delaying the script.
//
// Example:
//
//	err := script.Run(ctx, lcd, sc,
//	    script.WithProgress(func(p script.Progress) {
//	        fmt.Printf("[%s] %.0f%% - step %d/%d\n", p.Op, p.Percentage, p.Step, p.Total)
//	    }),
//	)
type ProgressCallback func(Progress)

type runConfig struct {
	progress ProgressCallback
	logger   display.Logger
}

// RunOption configures Run.
type RunOption func(*runConfig)

// WithProgress sets a callback for step progress.
func WithProgress(cb ProgressCallback) RunOption {
	return func(c *runConfig) {
		c.progress = cb
	}
}

// WithLogger sets a logger for script execution.
func WithLogger(logger display.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// Run executes the script's steps in order, sending each packet through s
// and honouring pauses. It stops at the first failing step or when ctx is
// done.
func Run(ctx context.Context, s Sender, sc *Script, opts ...RunOption) error {
	if sc == nil {
		return fmt.Errorf("script cannot be nil")
	}

	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()
	total := len(sc.Steps)
	cfg.logInfo("script started", "name", sc.Name, "steps", total)

	for i, step := range sc.Steps {
		if step.IsPause() {
			if err := pause(ctx, step.Pause); err != nil {
				return fmt.Errorf("step %d (line %d): %w", i+1, step.Line, err)
			}
		} else {
			if err := s.Send(ctx, step.Packet); err != nil {
				cfg.logError("script step failed", "step", i+1, "op", step.Op, "line", step.Line, "error", err)
				return fmt.Errorf("step %d (%s, line %d): %w", i+1, step.Op, step.Line, err)
			}
		}
		cfg.logDebug("script step done", "step", i+1, "op", step.Op)

		if cfg.progress != nil {
			cfg.progress(Progress{
				Step:       i + 1,
				Total:      total,
				Op:         step.Op,
				Percentage: float64(i+1) / float64(total) * 100,
				Elapsed:    time.Since(start),
			})
		}
	}

	cfg.logInfo("script finished", "name", sc.Name, "elapsed", time.Since(start))
	return nil
}

func pause(ctx context.Context, d time.Duration) error {
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

func (c *runConfig) logDebug(msg string, keysAndValues ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, keysAndValues...)
	}
}

func (c *runConfig) logInfo(msg string, keysAndValues ...interface{}) {
	if c.logger != nil {
		c.logger.Info(msg, keysAndValues...)
	}
}

func (c *runConfig) logError(msg string, keysAndValues ...interface{}) {
	if c.logger != nil {
		c.logger.Error(msg, keysAndValues...)
	}
}
