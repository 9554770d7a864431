package protocol

import "fmt"

// Packet is one command or response frame without its CRC.
// The CRC is computed by Encode and checked by Decode; callers never set it.
type Packet struct {
	// Command is the command code for outbound packets, or the
	// response code for packets received from the device
	Command byte

	// Data is the payload (0 to MaxDataSize bytes)
	Data []byte
}

// Length returns the payload length as carried in the length byte.
func (p Packet) Length() int {
	return len(p.Data)
}

// Signature returns the (code, length) pair identifying the packet type.
func (p Packet) Signature() Signature {
	return Signature{Code: p.Command, Length: byte(len(p.Data))}
}

// Expect checks that the packet matches the signature the issued command
// should produce. Returns an *UnexpectedResponseError otherwise.
func (p Packet) Expect(want Signature) error {
	got := p.Signature()
	if len(p.Data) > MaxDataSize || got != want {
		return &UnexpectedResponseError{Want: want, Got: got}
	}
	return nil
}

// IsError reports whether the packet is the device rejecting a command.
func (p Packet) IsError() bool {
	return p.Command&ErrorFlag == ErrorFlag
}

func (p Packet) String() string {
	return fmt.Sprintf("packet{cmd=%d len=%d data=% X}", p.Command, len(p.Data), p.Data)
}

// Signature identifies a response by its code and payload length.
type Signature struct {
	Code   byte
	Length byte
}

func (s Signature) String() string {
	return fmt.Sprintf("(%d, %d)", s.Code, s.Length)
}

// Backlights contains the backlight levels read back from the module.
// Returned by the backlight read (response 78).
type Backlights struct {
	// Display is the LCD backlight level (0-100, 0=off)
	Display byte

	// Keypad is the keypad backlight level (0-100, 0=off)
	Keypad byte
}

// KeypadState is the reply to a keypad poll (response 88).
// Each field is a bitmask of the Key* constants.
type KeypadState struct {
	// Pressed holds the keys currently held down
	Pressed byte

	// PressedSinceLast holds keys pressed since the previous poll
	PressedSinceLast byte

	// ReleasedSinceLast holds keys released since the previous poll
	ReleasedSinceLast byte
}

// Any reports whether any key is currently held down.
func (k KeypadState) Any() bool {
	return k.Pressed != 0
}
