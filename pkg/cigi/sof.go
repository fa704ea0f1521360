package cigi

import (
	"encoding/binary"

	"github.com/aretw0/igkernel/pkg/domain"
)

// StartOfFrameSize is the fixed size of a CIGI 3.3 Start-Of-Frame packet.
const StartOfFrameSize = 24

// StartOfFrame is the IG's per-frame report to the Host.
//
// Field layout:
//
//	0: Packet ID (101)
//	1: Packet Size (24)
//	2: Major Version
//	3: Database Number (int8, negated while a load is in progress)
//	4: IG Status
//	5: IG Mode (bits 0-1) | Timestamp Valid (bit 2) | Earth Reference Model (bit 3) | Minor Version (bits 4-7)
//	6-7: Byte Swap Magic (0x8000)
//	8-11: IG Frame Number
//	12-15: Timestamp (10 µs ticks)
//	16-19: Last Host Frame Number
//	20-23: reserved
type StartOfFrame struct {
	MajorVersion        uint8
	MinorVersion        uint8
	DatabaseNumber      int8
	IGStatus            uint8
	IGMode              domain.IGMode
	TimestampValid      bool
	EarthReferenceModel uint8
	IGFrame             uint32
	Timestamp           uint32
	LastHostFrame       uint32
}

// PacketID implements Packet.
func (p *StartOfFrame) PacketID() PacketID { return PacketStartOfFrame }

// Size implements Packet.
func (p *StartOfFrame) Size() int { return StartOfFrameSize }

// AppendTo implements Packet.
func (p *StartOfFrame) AppendTo(b []byte, order binary.ByteOrder) []byte {
	var buf [StartOfFrameSize]byte
	buf[0] = byte(PacketStartOfFrame)
	buf[1] = StartOfFrameSize
	buf[2] = p.MajorVersion
	buf[3] = byte(p.DatabaseNumber)
	buf[4] = p.IGStatus
	flags := byte(p.IGMode) & 0x3
	if p.TimestampValid {
		flags |= 1 << 2
	}
	flags |= (p.EarthReferenceModel & 0x1) << 3
	flags |= (p.MinorVersion & 0xF) << 4
	buf[5] = flags
	order.PutUint16(buf[6:8], byteSwapMagic)
	order.PutUint32(buf[8:12], p.IGFrame)
	order.PutUint32(buf[12:16], p.Timestamp)
	order.PutUint32(buf[16:20], p.LastHostFrame)
	return append(b, buf[:]...)
}

func decodeStartOfFrame(b []byte, order binary.ByteOrder) (*StartOfFrame, error) {
	if len(b) != StartOfFrameSize {
		return nil, malformed("Start-Of-Frame size %d, want %d", len(b), StartOfFrameSize)
	}
	flags := b[5]
	return &StartOfFrame{
		MajorVersion:        b[2],
		DatabaseNumber:      int8(b[3]),
		IGStatus:            b[4],
		IGMode:              domain.IGMode(flags & 0x3),
		TimestampValid:      flags&(1<<2) != 0,
		EarthReferenceModel: (flags >> 3) & 0x1,
		MinorVersion:        flags >> 4,
		IGFrame:             order.Uint32(b[8:12]),
		Timestamp:           order.Uint32(b[12:16]),
		LastHostFrame:       order.Uint32(b[16:20]),
	}, nil
}
