package protocol

import "fmt"

// ParseBacklights parses a backlight read response.
//
// Response structure:
//
//	[78][2][DISPLAY][KEYPAD][CRC_L][CRC_H]
func ParseBacklights(p *Packet) (Backlights, error) {
	if err := expect(p, SignatureBacklights); err != nil {
		return Backlights{}, err
	}
	return Backlights{Display: p.Data[0], Keypad: p.Data[1]}, nil
}

// ParseContrast parses a contrast read response.
//
// Response structure:
//
//	[77][1][CONTRAST][CRC_L][CRC_H]
func ParseContrast(p *Packet) (byte, error) {
	if err := expect(p, SignatureContrast); err != nil {
		return 0, err
	}
	return p.Data[0], nil
}

// ParseKeypad parses a keypad poll response.
//
// Response structure:
//
//	[88][3][PRESSED][PRESSED_SINCE][RELEASED_SINCE][CRC_L][CRC_H]
func ParseKeypad(p *Packet) (KeypadState, error) {
	if err := expect(p, SignatureKeypad); err != nil {
		return KeypadState{}, err
	}
	return KeypadState{
		Pressed:           p.Data[0],
		PressedSinceLast:  p.Data[1],
		ReleasedSinceLast: p.Data[2],
	}, nil
}

// ParseKeyActivity parses an unsolicited key activity report and returns
// the key code it carries.
//
// Response structure:
//
//	[128][1][KEY][CRC_L][CRC_H]
func ParseKeyActivity(p *Packet) (byte, error) {
	if err := expect(p, SignatureKeyActivity); err != nil {
		return 0, err
	}
	return p.Data[0], nil
}

func expect(p *Packet, sig Signature) error {
	if p == nil {
		return &UnexpectedResponseError{Want: sig}
	}
	return p.Expect(sig)
}

var keyActivityNames = map[byte]string{
	KeyActivityUpPress:      "up pressed",
	KeyActivityDownPress:    "down pressed",
	KeyActivityLeftPress:    "left pressed",
	KeyActivityRightPress:   "right pressed",
	KeyActivityEnterPress:   "enter pressed",
	KeyActivityExitPress:    "exit pressed",
	KeyActivityUpRelease:    "up released",
	KeyActivityDownRelease:  "down released",
	KeyActivityLeftRelease:  "left released",
	KeyActivityRightRelease: "right released",
	KeyActivityEnterRelease: "enter released",
	KeyActivityExitRelease:  "exit released",
}

// KeyActivityName returns a readable name for a key activity code.
func KeyActivityName(code byte) string {
	if name, ok := keyActivityNames[code]; ok {
		return name
	}
	return fmt.Sprintf("unknown key activity %d", code)
}

// KeyNames lists the keys set in a keypad bitmask.
func KeyNames(mask byte) []string {
	var names []string
	for _, k := range []struct {
		bit  byte
		name string
	}{
		{KeyUp, "up"},
		{KeyEnter, "enter"},
		{KeyCancel, "cancel"},
		{KeyLeft, "left"},
		{KeyRight, "right"},
		{KeyDown, "down"},
	} {
		if mask&k.bit != 0 {
			names = append(names, k.name)
		}
	}
	return names
}
