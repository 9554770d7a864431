package protocol

// BuildClearScreen constructs a Clear Screen packet.
// Clears the text and graphics layers and homes the cursor.
func BuildClearScreen() (Packet, error) {
	return Packet{Command: CmdClearScreen}, nil
}

// BuildRestart constructs a Restart packet carrying RestartKey.
// The module ignores a restart without the key.
func BuildRestart() (Packet, error) {
	key := RestartKey
	return Packet{Command: CmdRestart, Data: key[:]}, nil
}

// BuildSetContrast constructs a Set Contrast packet.
func BuildSetContrast(contrast byte) (Packet, error) {
	return Packet{Command: CmdContrast, Data: []byte{contrast}}, nil
}

// BuildReadContrast constructs a contrast query. The device answers with
// SignatureContrast.
func BuildReadContrast() (Packet, error) {
	return Packet{Command: CmdContrast}, nil
}

// BuildSetBacklights constructs a Set Backlights packet.
// Both levels are 0-100 (0=off, 100=full brightness).
func BuildSetBacklights(display, keypad byte) (Packet, error) {
	if err := checkRange("display backlight", int(display), 0, MaxBacklight); err != nil {
		return Packet{}, err
	}
	if err := checkRange("keypad backlight", int(keypad), 0, MaxBacklight); err != nil {
		return Packet{}, err
	}
	return Packet{Command: CmdBacklight, Data: []byte{display, keypad}}, nil
}

// BuildReadBacklights constructs a backlight query. The device answers with
// SignatureBacklights.
func BuildReadBacklights() (Packet, error) {
	return Packet{Command: CmdBacklight}, nil
}

// BuildReadKeypad constructs a keypad poll. The device answers with
// SignatureKeypad.
func BuildReadKeypad() (Packet, error) {
	return Packet{Command: CmdReadKeypad}, nil
}

// BuildWriteText constructs a Write Text packet.
//
// Data structure:
//
//	[COL][ROW][TEXT...]
//
// The text must be 1 to MaxTextLength bytes. It is sent as-is; the display
// maps bytes through its own character ROM.
func BuildWriteText(col, row byte, text string) (Packet, error) {
	if err := checkRange("column", int(col), 0, MaxColumn); err != nil {
		return Packet{}, err
	}
	if err := checkRange("row", int(row), 0, MaxRow); err != nil {
		return Packet{}, err
	}
	if err := checkRange("text length", len(text), 1, MaxTextLength); err != nil {
		return Packet{}, err
	}

	data := make([]byte, 0, 2+len(text))
	data = append(data, col, row)
	data = append(data, text...)

	return Packet{Command: CmdWriteText, Data: data}, nil
}

// BuildSetLED constructs a Set LED packet.
//
// LED indices 5-12 select one colour of one of the four bicolour LEDs:
//
//	5/6   LED 3 (bottom) green/red
//	7/8   LED 2 green/red
//	9/10  LED 1 green/red
//	11/12 LED 0 (top) green/red
//
// State 0 is off, 1-99 a PWM duty cycle and 100 fully on.
func BuildSetLED(led, state byte) (Packet, error) {
	if err := checkRange("LED index", int(led), MinLEDIndex, MaxLEDIndex); err != nil {
		return Packet{}, err
	}
	if err := checkRange("LED state", int(state), 0, MaxLEDState); err != nil {
		return Packet{}, err
	}
	return Packet{Command: CmdSetLED, Data: []byte{led, state}}, nil
}

// BuildSetCursorPosition constructs a Set Cursor Position packet.
func BuildSetCursorPosition(col, row byte) (Packet, error) {
	if err := checkRange("column", int(col), 0, MaxColumn); err != nil {
		return Packet{}, err
	}
	if err := checkRange("row", int(row), 0, MaxRow); err != nil {
		return Packet{}, err
	}
	return Packet{Command: CmdSetCursorPosition, Data: []byte{col, row}}, nil
}

// BuildSetCursorStyle constructs a Set Cursor Style packet (CursorNone to
// CursorInvertingBlock).
func BuildSetCursorStyle(style byte) (Packet, error) {
	if err := checkRange("cursor style", int(style), CursorNone, MaxCursorStyle); err != nil {
		return Packet{}, err
	}
	return Packet{Command: CmdSetCursorStyle, Data: []byte{style}}, nil
}

// BuildDrawPixel constructs a graphics packet that sets one pixel.
//
// Data structure:
//
//	[GFX_PIXEL][X][Y][SHADE]
func BuildDrawPixel(x, y, shade byte) (Packet, error) {
	if err := checkPoint("", x, y); err != nil {
		return Packet{}, err
	}
	return graphics(GfxDrawPixel, x, y, shade), nil
}

// BuildDrawLine constructs a graphics packet that draws a line.
//
// Data structure:
//
//	[GFX_LINE][X1][Y1][X2][Y2][SHADE]
func BuildDrawLine(x1, y1, x2, y2, shade byte) (Packet, error) {
	if err := checkPoint("start ", x1, y1); err != nil {
		return Packet{}, err
	}
	if err := checkPoint("end ", x2, y2); err != nil {
		return Packet{}, err
	}
	return graphics(GfxDrawLine, x1, y1, x2, y2, shade), nil
}

// BuildDrawRectangle constructs a graphics packet that draws a rectangle
// with its top-left corner at (x, y). A fill shade of 0 leaves it transparent.
//
// Data structure:
//
//	[GFX_RECT][X][Y][WIDTH][HEIGHT][LINE][FILL]
func BuildDrawRectangle(x, y, width, height, line, fill byte) (Packet, error) {
	if err := checkPoint("", x, y); err != nil {
		return Packet{}, err
	}
	return graphics(GfxDrawRectangle, x, y, width, height, line, fill), nil
}

// BuildDrawCircle constructs a graphics packet that draws a circle centred
// on (x, y). A fill shade of 0 leaves it transparent.
//
// Data structure:
//
//	[GFX_CIRCLE][X][Y][RADIUS][LINE][FILL]
func BuildDrawCircle(x, y, radius, line, fill byte) (Packet, error) {
	if err := checkPoint("", x, y); err != nil {
		return Packet{}, err
	}
	return graphics(GfxDrawCircle, x, y, radius, line, fill), nil
}

func graphics(sub byte, args ...byte) Packet {
	data := make([]byte, 0, 1+len(args))
	data = append(data, sub)
	data = append(data, args...)
	return Packet{Command: CmdGraphics, Data: data}
}

func checkPoint(prefix string, x, y byte) error {
	if err := checkRange(prefix+"x", int(x), 0, MaxGraphicsX); err != nil {
		return err
	}
	return checkRange(prefix+"y", int(y), 0, MaxGraphicsY)
}
