// Package script parses and runs YAML screen scripts for the CFA835.
//
// # Script Format
//
// A script is a YAML document with an optional name and a list of steps.
// Each step is a bare operation name or a one-key mapping from the
// operation to its arguments:
//
//	name: welcome
//	steps:
//	  - clear
//	  - backlight: {display: 80, keypad: 40}
//	  - text: {col: 4, row: 1, text: "Hello"}
//	  - led: {index: 12, state: 100}
//	  - pause: 1s
//	  - rectangle: {x: 0, y: 0, width: 244, height: 68, line: 100, fill: 0}
//
// Operations:
//
//	clear                                   clear the screen
//	restart                                 restart the module
//	text: {col, row, text}                  write text (1-22 characters)
//	contrast: N                             set contrast
//	backlight: {display, keypad}            set backlights (0-100)
//	cursor: {col, row}                      move the cursor
//	cursor_style: N                         cursor style (0-4)
//	led: {index, state}                     set an LED (index 5-12, state 0-100)
//	pixel: {x, y, shade}                    draw a pixel
//	line: {x1, y1, x2, y2, shade}           draw a line
//	rectangle: {x, y, width, height, line, fill}
//	circle: {x, y, radius, line, fill}
//	pause: DURATION                         wait, e.g. 500ms or 2s
//
// Arguments are validated against the device limits at parse time and
// errors name the offending line.
//
// # Usage
//
//	sc, err := script.Parse("welcome.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := script.Run(ctx, lcd, sc); err != nil {
//	    log.Fatal(err)
//	}
package script
