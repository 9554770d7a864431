package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// crcCCITTUpdate is the byte-at-a-time update the module firmware uses
// (avr-libc _crc_ccitt_update), kept here as an independent reference.
func crcCCITTUpdate(crc uint16, data byte) uint16 {
	data ^= byte(crc & 0xFF)
	data ^= data << 4
	return ((uint16(data) << 8) | (crc >> 8)) ^ uint16(data>>4) ^ (uint16(data) << 3)
}

func referenceChecksum(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc = crcCCITTUpdate(crc, b)
	}
	return ^crc
}

func TestChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: 0x0000,
		},
		{
			name:     "check value",
			data:     []byte("123456789"),
			expected: 0x906E,
		},
		{
			name:     "clear screen header",
			data:     []byte{CmdClearScreen, 0},
			expected: 0x5B97,
		},
		{
			name:     "read backlights header",
			data:     []byte{CmdBacklight, 0},
			expected: 0x9557,
		},
		{
			name:     "restart with key",
			data:     []byte{CmdRestart, 3, 8, 25, 48},
			expected: 0x7926,
		},
		{
			name:     "backlight response",
			data:     []byte{ResponseBacklight, 2, 50, 75},
			expected: 0x8856,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Checksum(tt.data), "Checksum() = 0x%04X", Checksum(tt.data))
		})
	}
}

func TestChecksumMatchesFirmwareUpdate(t *testing.T) {
	inputs := [][]byte{
		nil,
		{0x00},
		{0xFF},
		[]byte("123456789"),
		{CmdWriteText, 7, 0, 1, 'H', 'e', 'l', 'l', 'o'},
	}

	// Every length up to a full frame, with a varying fill pattern.
	for n := 1; n <= MaxFrameSize; n++ {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte(i*37 + n)
		}
		inputs = append(inputs, buf)
	}

	for _, in := range inputs {
		assert.Equal(t, referenceChecksum(in), Checksum(in), "input % X", in)
	}
}

func BenchmarkChecksum(b *testing.B) {
	data := make([]byte, HeaderSize+MaxDataSize)
	for i := range data {
		data[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Checksum(data)
	}
}
