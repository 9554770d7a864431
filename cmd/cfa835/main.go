// Command cfa835 drives a Crystalfontz CFA835 display from the shell.
//
// Usage:
//
//	cfa835 [flags] <command> [args]
//
// Commands:
//
//	ports                       list serial ports
//	clear                       clear the screen
//	restart                     restart the module
//	text COL ROW TEXT...        write text
//	contrast [N]                read or set the contrast
//	backlight [DISPLAY KEYPAD]  read or set the backlights
//	settings                    read contrast and backlights, print as YAML
//	keys                        print keypad activity until interrupted
//	wait-key                    wait for one key activity report
//	run SCRIPT.yaml             run a screen script
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/TurbineJesse/go-cfa835/config"
	"github.com/TurbineJesse/go-cfa835/display"
	"github.com/TurbineJesse/go-cfa835/logging"
	"github.com/TurbineJesse/go-cfa835/metrics"
	"github.com/TurbineJesse/go-cfa835/serialport"
	"github.com/TurbineJesse/go-cfa835/simulator"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "cfa835: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

// options holds the flags that are not configuration keys.
type options struct {
	configPath string
	timeout    time.Duration
	interval   time.Duration
}

func newFlagSet(opts *options, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("cfa835", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: cfa835 [flags] <command> [args]\n\n")
		fmt.Fprintf(stderr, "commands: ports, clear, restart, text, contrast, backlight, settings, keys, wait-key, run\n\n")
		fs.PrintDefaults()
	}

	fs.StringVarP(&opts.configPath, "config", "c", "", "configuration file (default ./cfa835.yaml)")
	fs.StringP("port", "p", "", "serial port, e.g. /dev/ttyUSB0 or COM3")
	fs.Int("baud", serialport.DefaultBaudRate, "baud rate (9600, 19200 or 115200)")
	fs.Int("retries", 3, "attempts per read")
	fs.Bool("simulate", false, "use an in-memory display instead of a serial port")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", "console", "log format (console or json)")
	fs.String("log-file", "", "also log to this file, rotated")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
	fs.DurationVar(&opts.timeout, "timeout", 0, "wait-key: give up after this long (0 waits until interrupted)")
	fs.DurationVar(&opts.interval, "interval", 100*time.Millisecond, "keys: keypad poll interval")
	return fs
}

// run parses args and executes one command.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options
	fs := newFlagSet(&opts, stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no command given")
	}
	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]

	if cmd == "ports" {
		return listPorts(stdout)
	}

	cfg, err := config.Load(opts.configPath, fs)
	if err != nil {
		return err
	}
	if fs.Changed("metrics-addr") {
		cfg.Metrics.Enable = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	reg := metrics.NewRegistry()
	collector := metrics.NewCollector(reg)
	if cfg.Metrics.Enable {
		srv := serveMetrics(cfg.Metrics, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	transport, closeTransport, err := openTransport(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeTransport() }()

	displayOpts := append(cfg.Protocol.Options(),
		display.WithLogger(logging.Display(logger)),
		display.WithAttemptCallback(collector.ObserveAttempt),
	)
	lcd := display.New(transport, displayOpts...)

	c := &cli{lcd: lcd, out: stdout, logger: logger, opts: opts}
	return c.dispatch(ctx, cmd, cmdArgs)
}

// openTransport opens the serial port, or a simulator when configured.
func openTransport(cfg *config.Config, logger *zap.Logger) (display.Transport, func() error, error) {
	if cfg.Serial.Simulate {
		logger.Info("using simulated display")
		sim := simulator.New(simulator.WithLogger(logging.Display(logger)))
		return sim, func() error { return nil }, nil
	}

	port, err := serialport.Open(cfg.Serial.PortConfig(), serialport.WithLogger(logging.Display(logger)))
	if err != nil {
		return nil, nil, err
	}
	return port, port.Close, nil
}

// serveMetrics starts the Prometheus endpoint in the background.
func serveMetrics(cfg config.MetricsConfig, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, metrics.Handler(reg))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", zap.String("addr", cfg.Addr), zap.String("path", cfg.Path))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()
	return srv
}
