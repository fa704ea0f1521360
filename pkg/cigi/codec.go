package cigi

import (
	"encoding/binary"
)

// magicOffset is where every CIGI 3 message-leading packet carries the byte-swap magic.
const magicOffset = 6

// DetectByteOrder inspects the leading IG Control or Start-Of-Frame packet
// of msg and returns the byte order the sender used.
func DetectByteOrder(msg []byte) (binary.ByteOrder, error) {
	if len(msg) < HeaderSize {
		return nil, malformed("message of %d bytes", len(msg))
	}
	switch PacketID(msg[0]) {
	case PacketIGControl, PacketStartOfFrame:
	default:
		return nil, malformed("message starts with packet %d, want IG Control or Start-Of-Frame", msg[0])
	}
	if len(msg) < magicOffset+2 {
		return nil, malformed("leading packet truncated at %d bytes", len(msg))
	}
	switch binary.BigEndian.Uint16(msg[magicOffset:]) {
	case byteSwapMagic:
		return binary.BigEndian, nil
	case byteSwapMagic >> 8:
		return binary.LittleEndian, nil
	default:
		return nil, malformed("bad byte-swap magic %#04x", binary.BigEndian.Uint16(msg[magicOffset:]))
	}
}

// Decode splits msg into packets. The whole message is validated before any
// packet is returned, so a malformed message yields no packets at all.
func Decode(msg []byte) ([]Packet, error) {
	order, err := DetectByteOrder(msg)
	if err != nil {
		return nil, err
	}

	// Framing pass: sizes must tile the buffer exactly.
	count := 0
	for off := 0; off < len(msg); {
		if len(msg)-off < HeaderSize {
			return nil, malformed("trailing %d bytes at offset %d", len(msg)-off, off)
		}
		size := int(msg[off+1])
		if size < HeaderSize {
			return nil, malformed("packet %d at offset %d declares size %d", msg[off], off, size)
		}
		if off+size > len(msg) {
			return nil, malformed("packet %d at offset %d overruns message (%d > %d)", msg[off], off, off+size, len(msg))
		}
		off += size
		count++
	}

	packets := make([]Packet, 0, count)
	for off := 0; off < len(msg); {
		size := int(msg[off+1])
		p, err := decodePacket(msg[off:off+size], order)
		if err != nil {
			return nil, err
		}
		packets = append(packets, p)
		off += size
	}
	return packets, nil
}

func decodePacket(b []byte, order binary.ByteOrder) (Packet, error) {
	switch id := PacketID(b[0]); id {
	case PacketIGControl:
		return decodeIGControl(b, order)
	case PacketStartOfFrame:
		return decodeStartOfFrame(b, order)
	default:
		body := make([]byte, len(b)-HeaderSize)
		copy(body, b[HeaderSize:])
		return RawPacket{ID: id, Body: body}, nil
	}
}

// Encode serializes packets in order into one message.
func Encode(order binary.ByteOrder, packets ...Packet) []byte {
	size := 0
	for _, p := range packets {
		size += p.Size()
	}
	b := make([]byte, 0, size)
	for _, p := range packets {
		b = p.AppendTo(b, order)
	}
	return b
}
