package protocol

import "encoding/binary"

// Encode builds the wire frame for a command.
//
// Frame structure:
//
//	[CMD][LEN][DATA...][CRC_L][CRC_H]
//
// The CRC covers CMD, LEN and DATA. Returns a *PayloadTooLargeError if data
// is longer than MaxDataSize; the payload is never truncated.
func Encode(command byte, data []byte) ([]byte, error) {
	if len(data) > MaxDataSize {
		return nil, &PayloadTooLargeError{Size: len(data), Max: MaxDataSize}
	}

	frame := make([]byte, 0, MinFrameSize+len(data))
	frame = append(frame, command, byte(len(data)))
	frame = append(frame, data...)

	return binary.LittleEndian.AppendUint16(frame, Checksum(frame)), nil
}

// EncodePacket builds the wire frame for p. See Encode.
func EncodePacket(p Packet) ([]byte, error) {
	return Encode(p.Command, p.Data)
}

// Decode validates a raw receive buffer and extracts the frame at its start.
//
// The declared length is bounded against both MaxDataSize and the buffer
// size before any payload or CRC byte is indexed, so a corrupt or truncated
// buffer yields a *MalformedError rather than an out-of-range read. Bytes
// past the end of the declared frame are ignored.
//
// Returns a *ChecksumError when the CRC over [CMD][LEN][DATA] does not match
// the little-endian CRC that follows it.
func Decode(buf []byte) (*Packet, error) {
	if len(buf) < HeaderSize {
		return nil, &MalformedError{Declared: -1, Received: len(buf)}
	}

	dataLen := int(buf[1])
	if dataLen > MaxDataSize || len(buf) < dataLen+MinFrameSize {
		return nil, &MalformedError{Declared: dataLen, Received: len(buf)}
	}

	end := HeaderSize + dataLen
	received := binary.LittleEndian.Uint16(buf[end : end+ChecksumSize])
	computed := Checksum(buf[:end])
	if received != computed {
		return nil, &ChecksumError{Computed: computed, Received: received}
	}

	p := &Packet{
		Command: buf[0],
		Data:    make([]byte, dataLen),
	}
	copy(p.Data, buf[HeaderSize:end])

	return p, nil
}

// FrameSize returns the number of bytes the frame at the start of buf
// occupies according to its header, or 0 if the header is incomplete.
// It does not validate the frame.
func FrameSize(buf []byte) int {
	if len(buf) < HeaderSize {
		return 0
	}
	return MinFrameSize + int(buf[1])
}
