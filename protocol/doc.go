// Package protocol implements the Crystalfontz CFA835 packet protocol.
//
// This package provides functions to encode command packets, decode and
// validate response frames, and build the individual commands the module
// understands.
//
// # Protocol Overview
//
// Every packet in either direction has the same layout:
//
//	[CMD][LEN][DATA...][CRC_L][CRC_H]
//
// Where:
//   - CMD = command code (host to device) or response code (device to host)
//   - LEN = payload length, 0 to 24
//   - CRC = CRC-16/X-25 over CMD, LEN and DATA (little-endian)
//
// A normal reply carries the command code with bit 6 set (CMD|0x40); an
// error reply sets both top bits (CMD|0xC0). Key activity is reported
// unsolicited with code 0x80.
//
// # Command Builders
//
// Use the Build* functions to create packets, then Encode them:
//
//	pkt, err := protocol.BuildWriteText(0, 1, "Hello")
//	frame, err := protocol.EncodePacket(pkt)
//
// Builders validate their arguments and return a *ValueRangeError for
// values the device would reject.
//
// # Response Parsers
//
// Use Decode to validate a receive buffer and extract the frame at its start:
//
//	pkt, err := protocol.Decode(buf)
//	if errors.Is(err, protocol.ErrChecksumMismatch) {
//	    // retry
//	}
//
// Then use the Parse* functions for command-specific data:
//
//	levels, err := protocol.ParseBacklights(pkt)
//	keys, err := protocol.ParseKeypad(pkt)
//
// # Error Handling
//
// Decode and the parsers return typed errors that match the package
// sentinels with errors.Is. IsFrameError groups the receive-side failures a
// retry can recover from.
package protocol
