package cigi

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// PacketID is the CIGI packet type tag (byte 0 of every packet).
type PacketID uint8

const (
	PacketIGControl    PacketID = 1
	PacketEntityCtrl   PacketID = 2
	PacketViewCtrl     PacketID = 16
	PacketStartOfFrame PacketID = 101
)

const (
	// HeaderSize covers the packet ID and packet size bytes.
	HeaderSize = 2

	// MaxPacketSize is the largest size the one-byte size field can express.
	MaxPacketSize = 255

	// MajorVersion and MinorVersion identify CIGI 3.3.
	MajorVersion = 3
	MinorVersion = 2

	// byteSwapMagic is written in native order by the sender; reading it back
	// swapped tells the receiver to flip the byte order.
	byteSwapMagic uint16 = 0x8000
)

var (
	// ErrMalformed is returned for any framing or field-level decode failure.
	ErrMalformed = errors.New("malformed CIGI message")
	// ErrMessageFull is returned when a packet does not fit in the outgoing message.
	ErrMessageFull = errors.New("outgoing CIGI message full")
	// ErrMessageLocked is returned when packing into a locked outgoing message.
	ErrMessageLocked = errors.New("outgoing CIGI message locked")
)

// Packet is a single CIGI packet, decoded or ready to encode.
type Packet interface {
	// PacketID returns the type tag.
	PacketID() PacketID
	// Size returns the encoded size in bytes, header included.
	Size() int
	// AppendTo appends the encoded packet to b using order.
	AppendTo(b []byte, order binary.ByteOrder) []byte
}

// RawPacket carries a packet type the codec does not decode field by field.
// Body excludes the two header bytes.
type RawPacket struct {
	ID   PacketID
	Body []byte
}

// PacketID implements Packet.
func (p RawPacket) PacketID() PacketID { return p.ID }

// Size implements Packet.
func (p RawPacket) Size() int { return HeaderSize + len(p.Body) }

// AppendTo implements Packet. Raw bodies are written verbatim.
func (p RawPacket) AppendTo(b []byte, _ binary.ByteOrder) []byte {
	b = append(b, byte(p.ID), byte(p.Size()))
	return append(b, p.Body...)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
