// Package logging builds the zap logger used by the cfa835 tool and adapts
// it to the driver's Logger interface.
package logging
