// Package simulator provides an in-memory CFA835 for tests, demos and the
// CLI's --simulate mode.
//
// A Device decodes the frames it is sent, keeps the module state (text
// grid, contrast, backlights, LEDs, cursor, keypad) and queues replies the
// way the hardware does. Faults can be injected into upcoming replies:
//
//	sim := simulator.New()
//	sim.CorruptNext(2) // next two replies fail CRC validation
//
//	lcd := display.New(sim)
//	contrast, err := lcd.ReadContrast(ctx) // succeeds on the third attempt
//
// Key presses are queued as unsolicited key activity reports with
// PressKey and ReleaseKey.
package simulator
