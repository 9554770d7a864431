package protocol

import "github.com/sigurn/crc16"

// crcTable holds the CRC-16/X-25 parameters used by the CFA835:
// polynomial 0x1021 (reflected), initial value 0xFFFF, reflected input and
// output, final XOR 0xFFFF. This is avr-libc's _crc_ccitt_update folded from
// 0xFFFF and complemented, which the module firmware uses.
var crcTable = crc16.MakeTable(crc16.CRC16_X_25)

// Checksum computes the packet CRC over data.
// For a frame this is everything up to, but excluding, the CRC field.
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}

