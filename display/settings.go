package display

// Settings mirrors the last known device configuration.
//
// The cached levels are only updated by the read operations. They go stale
// as soon as the device is changed by other means; read again to refresh.
type Settings struct {
	// DisplayBacklight is the LCD backlight level (0-100)
	DisplayBacklight byte

	// KeypadBacklight is the keypad backlight level (0-100)
	KeypadBacklight byte

	// Contrast is the LCD contrast (0-255)
	Contrast byte

	// Retries is the number of attempts a read makes
	Retries int

	// BacklightsValid is set once ReadBacklights has succeeded
	BacklightsValid bool

	// ContrastValid is set once ReadContrast has succeeded
	ContrastValid bool
}
