package cigi

import (
	"encoding/binary"

	"github.com/aretw0/igkernel/pkg/domain"
)

// IGControlSize is the fixed size of a CIGI 3.3 IG Control packet.
const IGControlSize = 24

// IGControl is the Host's per-frame command packet.
//
// Field layout:
//
//	0: Packet ID (1)
//	1: Packet Size (24)
//	2: Major Version
//	3: Database Number (int8)
//	4: IG Mode (bits 0-1) | Timestamp Valid (bit 2) | Extrapolation Enable (bit 3) | Minor Version (bits 4-7)
//	5: reserved
//	6-7: Byte Swap Magic (0x8000)
//	8-11: Host Frame Number
//	12-15: Timestamp (10 µs ticks)
//	16-19: Last IG Frame Number
//	20-23: reserved
type IGControl struct {
	MajorVersion         uint8
	MinorVersion         uint8
	DatabaseNumber       int8
	IGMode               domain.IGMode
	TimestampValid       bool
	ExtrapolationEnabled bool
	HostFrame            uint32
	Timestamp            uint32
	LastIGFrame          uint32
}

// PacketID implements Packet.
func (p *IGControl) PacketID() PacketID { return PacketIGControl }

// Size implements Packet.
func (p *IGControl) Size() int { return IGControlSize }

// AppendTo implements Packet.
func (p *IGControl) AppendTo(b []byte, order binary.ByteOrder) []byte {
	var buf [IGControlSize]byte
	buf[0] = byte(PacketIGControl)
	buf[1] = IGControlSize
	buf[2] = p.MajorVersion
	buf[3] = byte(p.DatabaseNumber)
	flags := byte(p.IGMode) & 0x3
	if p.TimestampValid {
		flags |= 1 << 2
	}
	if p.ExtrapolationEnabled {
		flags |= 1 << 3
	}
	flags |= (p.MinorVersion & 0xF) << 4
	buf[4] = flags
	order.PutUint16(buf[6:8], byteSwapMagic)
	order.PutUint32(buf[8:12], p.HostFrame)
	order.PutUint32(buf[12:16], p.Timestamp)
	order.PutUint32(buf[16:20], p.LastIGFrame)
	return append(b, buf[:]...)
}

func decodeIGControl(b []byte, order binary.ByteOrder) (*IGControl, error) {
	if len(b) != IGControlSize {
		return nil, malformed("IG Control size %d, want %d", len(b), IGControlSize)
	}
	flags := b[4]
	return &IGControl{
		MajorVersion:         b[2],
		DatabaseNumber:       int8(b[3]),
		IGMode:               domain.IGMode(flags & 0x3),
		TimestampValid:       flags&(1<<2) != 0,
		ExtrapolationEnabled: flags&(1<<3) != 0,
		MinorVersion:         flags >> 4,
		HostFrame:            order.Uint32(b[8:12]),
		Timestamp:            order.Uint32(b[12:16]),
		LastIGFrame:          order.Uint32(b[16:20]),
	}, nil
}
