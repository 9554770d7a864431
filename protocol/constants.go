package protocol

// Frame structure constants.
const (
	// HeaderSize is the command byte plus the length byte
	HeaderSize = 2

	// ChecksumSize is the size of the trailing CRC field (little-endian)
	ChecksumSize = 2

	// MinFrameSize is the size of a frame with an empty payload:
	// CMD(1) + LEN(1) + CRC(2)
	MinFrameSize = HeaderSize + ChecksumSize

	// MaxDataSize is the largest payload the display accepts in one packet.
	MaxDataSize = 24

	// MaxFrameSize is the size of a frame carrying MaxDataSize bytes of payload.
	MaxFrameSize = MinFrameSize + MaxDataSize

	// ReceiveBufferSize is the default capacity used to collect a response.
	// Anything the device sends past this is discarded.
	ReceiveBufferSize = 30
)

// Command codes understood by the CFA835.
const (
	// CmdRestart reboots the module (requires the RestartKey payload)
	CmdRestart = 5

	// CmdClearScreen clears the text and graphics layers
	CmdClearScreen = 6

	// CmdSetCursorPosition moves the text cursor
	CmdSetCursorPosition = 11

	// CmdSetCursorStyle selects one of the cursor styles
	CmdSetCursorStyle = 12

	// CmdContrast sets the contrast (1 byte payload) or reads it (empty payload)
	CmdContrast = 13

	// CmdBacklight sets the backlights (2 byte payload) or reads them (empty payload)
	CmdBacklight = 14

	// CmdReadKeypad polls the current keypad state
	CmdReadKeypad = 24

	// CmdWriteText writes text at a column/row
	CmdWriteText = 31

	// CmdSetLED sets one of the GPIO driven LEDs
	CmdSetLED = 34

	// CmdGraphics carries one of the Gfx* drawing sub-commands
	CmdGraphics = 40
)

// Graphics sub-commands, sent as the first payload byte of CmdGraphics.
const (
	GfxDrawPixel     = 5
	GfxDrawLine      = 6
	GfxDrawRectangle = 7
	GfxDrawCircle    = 8
)

// Response codes.
const (
	// ResponseFlag is OR-ed into the command code for a normal reply
	ResponseFlag = 0x40

	// ErrorFlag is OR-ed into the command code when the device rejects a packet
	ErrorFlag = 0xC0

	// ResponseKeyActivity is sent unsolicited whenever a key is pressed or released
	ResponseKeyActivity = 0x80

	// ResponseBacklight is the reply to a backlight read (78)
	ResponseBacklight = CmdBacklight | ResponseFlag

	// ResponseContrast is the reply to a contrast read (77)
	ResponseContrast = CmdContrast | ResponseFlag

	// ResponseReadKeypad is the reply to a keypad poll (88)
	ResponseReadKeypad = CmdReadKeypad | ResponseFlag
)

// Expected response payload lengths.
const (
	BacklightResponseSize   = 2
	ContrastResponseSize    = 1
	KeypadResponseSize      = 3
	KeyActivityResponseSize = 1
)

// Expected response signatures for the read operations.
var (
	SignatureBacklights  = Signature{Code: ResponseBacklight, Length: BacklightResponseSize}
	SignatureContrast    = Signature{Code: ResponseContrast, Length: ContrastResponseSize}
	SignatureKeypad      = Signature{Code: ResponseReadKeypad, Length: KeypadResponseSize}
	SignatureKeyActivity = Signature{Code: ResponseKeyActivity, Length: KeyActivityResponseSize}
)

// RestartKey is the payload CmdRestart requires before the module reboots.
var RestartKey = [3]byte{8, 25, 48}

// Argument limits.
const (
	MaxBacklight   = 100
	MaxLEDState    = 100
	MinLEDIndex    = 5
	MaxLEDIndex    = 12
	MaxCursorStyle = 4
	MaxColumn      = 19
	MaxRow         = 3
	MaxTextLength  = MaxDataSize - 2
	MaxGraphicsX   = 243
	MaxGraphicsY   = 67
)

// Cursor styles.
const (
	CursorNone = iota
	CursorBlinkingBlock
	CursorUnderscore
	CursorBlinkingBlockUnderscore
	CursorInvertingBlock
)

// Keypad bitmask values reported by CmdReadKeypad.
const (
	KeyUp     = 0x01
	KeyEnter  = 0x02
	KeyCancel = 0x04
	KeyLeft   = 0x08
	KeyRight  = 0x10
	KeyDown   = 0x20
)

// Key activity codes carried by ResponseKeyActivity reports.
const (
	KeyActivityUpPress = iota + 1
	KeyActivityDownPress
	KeyActivityLeftPress
	KeyActivityRightPress
	KeyActivityEnterPress
	KeyActivityExitPress
	KeyActivityUpRelease
	KeyActivityDownRelease
	KeyActivityLeftRelease
	KeyActivityRightRelease
	KeyActivityEnterRelease
	KeyActivityExitRelease
)

// ResponseCode returns the reply code the device uses for a successful cmd.
func ResponseCode(cmd byte) byte {
	return cmd | ResponseFlag
}

// ErrorCode returns the reply code the device uses when it rejects cmd.
func ErrorCode(cmd byte) byte {
	return cmd | ErrorFlag
}
