package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/TurbineJesse/go-cfa835/display"
	"github.com/TurbineJesse/go-cfa835/logging"
	"github.com/TurbineJesse/go-cfa835/protocol"
	"github.com/TurbineJesse/go-cfa835/script"
	"github.com/TurbineJesse/go-cfa835/serialport"
)

type cli struct {
	lcd    *display.Display
	out    io.Writer
	logger *zap.Logger
	opts   options
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "clear":
		if err := wantArgs(args, 0, 0); err != nil {
			return err
		}
		return c.lcd.ClearScreen(ctx)
	case "restart":
		if err := wantArgs(args, 0, 0); err != nil {
			return err
		}
		return c.lcd.Restart(ctx)
	case "text":
		return c.text(ctx, args)
	case "contrast":
		return c.contrast(ctx, args)
	case "backlight":
		return c.backlight(ctx, args)
	case "settings":
		if err := wantArgs(args, 0, 0); err != nil {
			return err
		}
		return c.settings(ctx)
	case "keys":
		if err := wantArgs(args, 0, 0); err != nil {
			return err
		}
		return c.keys(ctx)
	case "wait-key":
		if err := wantArgs(args, 0, 0); err != nil {
			return err
		}
		return c.waitKey(ctx)
	case "run":
		if err := wantArgs(args, 1, 1); err != nil {
			return err
		}
		return c.runScript(ctx, args[0])
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func wantArgs(args []string, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return fmt.Errorf("expected %d argument(s), got %d", lo, len(args))
		}
		return fmt.Errorf("expected %d to %d arguments, got %d", lo, hi, len(args))
	}
	return nil
}

func parseByte(name, s string) (byte, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expected 0-255", name, s)
	}
	return byte(v), nil
}

func (c *cli) text(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: text COL ROW TEXT...")
	}
	col, err := parseByte("column", args[0])
	if err != nil {
		return err
	}
	row, err := parseByte("row", args[1])
	if err != nil {
		return err
	}
	return c.lcd.WriteText(ctx, col, row, strings.Join(args[2:], " "))
}

func (c *cli) contrast(ctx context.Context, args []string) error {
	if err := wantArgs(args, 0, 1); err != nil {
		return err
	}
	if len(args) == 1 {
		v, err := parseByte("contrast", args[0])
		if err != nil {
			return err
		}
		return c.lcd.SetContrast(ctx, v)
	}

	v, err := c.lcd.ReadContrast(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, v)
	return nil
}

func (c *cli) backlight(ctx context.Context, args []string) error {
	switch len(args) {
	case 0:
		bl, err := c.lcd.ReadBacklights(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "display %d\nkeypad %d\n", bl.Display, bl.Keypad)
		return nil
	case 2:
		d, err := parseByte("display level", args[0])
		if err != nil {
			return err
		}
		k, err := parseByte("keypad level", args[1])
		if err != nil {
			return err
		}
		return c.lcd.SetBacklights(ctx, d, k)
	default:
		return errors.New("usage: backlight [DISPLAY KEYPAD]")
	}
}

// settingsReport is the YAML shape printed by the settings command.
type settingsReport struct {
	Contrast         byte `yaml:"contrast"`
	DisplayBacklight byte `yaml:"display_backlight"`
	KeypadBacklight  byte `yaml:"keypad_backlight"`
	Retries          int  `yaml:"retries"`
}

func (c *cli) settings(ctx context.Context) error {
	if _, err := c.lcd.ReadContrast(ctx); err != nil {
		return err
	}
	if _, err := c.lcd.ReadBacklights(ctx); err != nil {
		return err
	}

	s := c.lcd.Settings()
	return printYAML(c.out, settingsReport{
		Contrast:         s.Contrast,
		DisplayBacklight: s.DisplayBacklight,
		KeypadBacklight:  s.KeypadBacklight,
		Retries:          s.Retries,
	})
}

// keys polls the keypad until ctx is done, printing every change.
func (c *cli) keys(ctx context.Context) error {
	ticker := time.NewTicker(c.opts.interval)
	defer ticker.Stop()

	for {
		state, err := c.lcd.MonitorKeypress(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if state.PressedSinceLast != 0 {
			fmt.Fprintf(c.out, "pressed: %s\n", strings.Join(protocol.KeyNames(state.PressedSinceLast), ", "))
		}
		if state.ReleasedSinceLast != 0 {
			fmt.Fprintf(c.out, "released: %s\n", strings.Join(protocol.KeyNames(state.ReleasedSinceLast), ", "))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (c *cli) waitKey(ctx context.Context) error {
	if c.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.timeout)
		defer cancel()
	}

	key, err := c.lcd.WaitKeypress(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("no key activity within %s", c.opts.timeout)
		}
		return err
	}
	fmt.Fprintln(c.out, protocol.KeyActivityName(key))
	return nil
}

func (c *cli) runScript(ctx context.Context, path string) error {
	sc, err := script.Parse(path)
	if err != nil {
		return err
	}

	return script.Run(ctx, c.lcd, sc,
		script.WithLogger(logging.Display(c.logger)),
		script.WithProgress(func(p script.Progress) {
			c.logger.Info("script progress",
				zap.Int("step", p.Step),
				zap.Int("total", p.Total),
				zap.String("op", p.Op),
				zap.Float64("percent", p.Percentage),
			)
		}),
	)
}

func listPorts(out io.Writer) error {
	ports, err := serialport.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(out, "no serial ports found")
		return nil
	}
	return printYAML(out, ports)
}

func printYAML(out io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
