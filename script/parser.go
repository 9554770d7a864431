package script

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/TurbineJesse/go-cfa835/protocol"
)

// Parse parses a script file from the given path.
//
// Example:
//
//	sc, err := script.Parse("welcome.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d steps\n", len(sc.Steps))
func Parse(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader parses a script from any io.Reader.
//
// A script is a YAML document with an optional name and a list of steps.
// Each step is either a bare operation name or a one-key mapping from the
// operation to its arguments:
//
//	name: welcome
//	steps:
//	  - clear
//	  - backlight: {display: 80, keypad: 40}
//	  - text: {col: 0, row: 0, text: "Hello"}
//	  - pause: 2s
//	  - circle: {x: 120, y: 33, radius: 20, line: 100, fill: 0}
//
// Every step is checked against the device limits here, so a script that
// parses will only fail at run time on transport errors.
func ParseReader(r io.Reader) (*Script, error) {
	var doc struct {
		Name  string      `yaml:"name"`
		Steps []yaml.Node `yaml:"steps"`
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty script")
		}
		return nil, fmt.Errorf("invalid script: %w", err)
	}

	if len(doc.Steps) == 0 {
		return nil, fmt.Errorf("no steps found in script")
	}

	sc := &Script{
		Name:  doc.Name,
		Steps: make([]Step, 0, len(doc.Steps)),
	}

	for i := range doc.Steps {
		node := &doc.Steps[i]
		step, err := parseStep(node)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		sc.Steps = append(sc.Steps, step)
	}

	return sc, nil
}

// parseStep turns one entry of the steps list into a Step.
func parseStep(node *yaml.Node) (Step, error) {
	var op string
	var args *yaml.Node

	switch node.Kind {
	case yaml.ScalarNode:
		op = node.Value
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return Step{}, fmt.Errorf("step must have exactly one operation, got %d", len(node.Content)/2)
		}
		op = node.Content[0].Value
		args = node.Content[1]
	default:
		return Step{}, fmt.Errorf("step must be an operation name or a mapping")
	}

	step := Step{Op: op, Line: node.Line}

	build, ok := builders[op]
	if !ok {
		return Step{}, fmt.Errorf("unknown operation %q", op)
	}

	if op == OpPause {
		d, err := parsePause(args)
		if err != nil {
			return Step{}, err
		}
		step.Pause = d
		return step, nil
	}

	pkt, err := build(args)
	if err != nil {
		return Step{}, fmt.Errorf("%s: %w", op, err)
	}
	step.Packet = pkt
	return step, nil
}

type buildFunc func(args *yaml.Node) (protocol.Packet, error)

var builders = map[string]buildFunc{
	OpClear: func(args *yaml.Node) (protocol.Packet, error) {
		if err := noArgs(args); err != nil {
			return protocol.Packet{}, err
		}
		return protocol.BuildClearScreen()
	},
	OpRestart: func(args *yaml.Node) (protocol.Packet, error) {
		if err := noArgs(args); err != nil {
			return protocol.Packet{}, err
		}
		return protocol.BuildRestart()
	},
	OpText: func(args *yaml.Node) (protocol.Packet, error) {
		f, err := fields(args, "col", "row", "text")
		if err != nil {
			return protocol.Packet{}, err
		}
		var text string
		if err := f["text"].Decode(&text); err != nil {
			return protocol.Packet{}, fmt.Errorf("text: %w", err)
		}
		b, err := f.bytes("col", "row")
		if err != nil {
			return protocol.Packet{}, err
		}
		return protocol.BuildWriteText(b[0], b[1], text)
	},
	OpContrast: func(args *yaml.Node) (protocol.Packet, error) {
		v, err := byteValue("contrast", args)
		if err != nil {
			return protocol.Packet{}, err
		}
		return protocol.BuildSetContrast(v)
	},
	OpBacklight: func(args *yaml.Node) (protocol.Packet, error) {
		b, err := fieldBytes(args, "display", "keypad")
		if err != nil {
			return protocol.Packet{}, err
		}
		return protocol.BuildSetBacklights(b[0], b[1])
	},
	OpCursor: func(args *yaml.Node) (protocol.Packet, error) {
		b, err := fieldBytes(args, "col", "row")
		if err != nil {
			return protocol.Packet{}, err
		}
		return protocol.BuildSetCursorPosition(b[0], b[1])
	},
	OpCursorStyle: func(args *yaml.Node) (protocol.Packet, error) {
		v, err := byteValue("cursor style", args)
		if err != nil {
			return protocol.Packet{}, err
		}
		return protocol.BuildSetCursorStyle(v)
	},
	OpLED: func(args *yaml.Node) (protocol.Packet, error) {
		b, err := fieldBytes(args, "index", "state")
		if err != nil {
			return protocol.Packet{}, err
		}
		return protocol.BuildSetLED(b[0], b[1])
	},
	OpPixel: func(args *yaml.Node) (protocol.Packet, error) {
		b, err := fieldBytes(args, "x", "y", "shade")
		if err != nil {
			return protocol.Packet{}, err
		}
		return protocol.BuildDrawPixel(b[0], b[1], b[2])
	},
	OpLine: func(args *yaml.Node) (protocol.Packet, error) {
		b, err := fieldBytes(args, "x1", "y1", "x2", "y2", "shade")
		if err != nil {
			return protocol.Packet{}, err
		}
		return protocol.BuildDrawLine(b[0], b[1], b[2], b[3], b[4])
	},
	OpRectangle: func(args *yaml.Node) (protocol.Packet, error) {
		b, err := fieldBytes(args, "x", "y", "width", "height", "line", "fill")
		if err != nil {
			return protocol.Packet{}, err
		}
		return protocol.BuildDrawRectangle(b[0], b[1], b[2], b[3], b[4], b[5])
	},
	OpCircle: func(args *yaml.Node) (protocol.Packet, error) {
		b, err := fieldBytes(args, "x", "y", "radius", "line", "fill")
		if err != nil {
			return protocol.Packet{}, err
		}
		return protocol.BuildDrawCircle(b[0], b[1], b[2], b[3], b[4])
	},
	OpPause: nil, // handled by parsePause
}

func noArgs(args *yaml.Node) error {
	if args == nil || args.Tag == "!!null" {
		return nil
	}
	return fmt.Errorf("takes no arguments")
}

func parsePause(args *yaml.Node) (time.Duration, error) {
	if args == nil || args.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("pause: expected a duration such as 500ms")
	}
	d, err := time.ParseDuration(args.Value)
	if err != nil {
		return 0, fmt.Errorf("pause: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("pause: duration cannot be negative")
	}
	return d, nil
}

// argMap holds the value nodes of a step's argument mapping by key.
type argMap map[string]*yaml.Node

// fields checks that args is a mapping holding exactly the named keys.
func fields(args *yaml.Node, names ...string) (argMap, error) {
	if args == nil || args.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping with %s", strings.Join(names, ", "))
	}

	m := make(argMap, len(args.Content)/2)
	for i := 0; i+1 < len(args.Content); i += 2 {
		m[args.Content[i].Value] = args.Content[i+1]
	}

	var unknown []string
	for key := range m {
		if !contains(names, key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown field(s) %s", strings.Join(unknown, ", "))
	}

	for _, name := range names {
		if _, ok := m[name]; !ok {
			return nil, fmt.Errorf("missing field %q", name)
		}
	}
	return m, nil
}

// bytes decodes the named fields as 0-255 integers.
func (m argMap) bytes(names ...string) ([]byte, error) {
	out := make([]byte, len(names))
	for i, name := range names {
		v, err := byteValue(name, m[name])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func fieldBytes(args *yaml.Node, names ...string) ([]byte, error) {
	m, err := fields(args, names...)
	if err != nil {
		return nil, err
	}
	return m.bytes(names...)
}

func byteValue(name string, node *yaml.Node) (byte, error) {
	if node == nil || node.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("%s: expected a number", name)
	}
	var v int
	if err := node.Decode(&v); err != nil {
		return 0, fmt.Errorf("%s: expected a number, got %q", name, node.Value)
	}
	if v < 0 || v > 255 {
		return 0, &protocol.ValueRangeError{Field: name, Value: v, Min: 0, Max: 255}
	}
	return byte(v), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
