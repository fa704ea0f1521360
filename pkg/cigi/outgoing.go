package cigi

import (
	"encoding/binary"
	"fmt"
)

// DefaultMessageCapacity bounds one outgoing message (one datagram).
const DefaultMessageCapacity = 64 * 1024

// Outgoing accumulates packets for the current frame.
//
// A cycle is BeginMsg, any number of Pack calls (plus at most one frame
// header), then LockMsg, which serializes the frame header first and the
// packed packets after it in FIFO order.
type Outgoing struct {
	order    binary.ByteOrder
	capacity int
	header   Packet
	queue    []Packet
	size     int
	locked   bool
}

// NewOutgoing creates a big-endian outgoing manager.
// A non-positive capacity selects DefaultMessageCapacity.
func NewOutgoing(capacity int) *Outgoing {
	if capacity <= 0 {
		capacity = DefaultMessageCapacity
	}
	return &Outgoing{
		order:    binary.BigEndian,
		capacity: capacity,
	}
}

// BeginMsg discards any previous content and unlocks the message.
func (o *Outgoing) BeginMsg() {
	o.header = nil
	o.queue = o.queue[:0]
	o.size = 0
	o.locked = false
}

// Pack appends p to the message.
func (o *Outgoing) Pack(p Packet) error {
	if o.locked {
		return ErrMessageLocked
	}
	if p.Size() > MaxPacketSize {
		return malformed("packet %d of %d bytes exceeds %d", p.PacketID(), p.Size(), MaxPacketSize)
	}
	if o.size+p.Size() > o.capacity {
		return fmt.Errorf("%w: packet %d needs %d bytes, %d left", ErrMessageFull, p.PacketID(), p.Size(), o.capacity-o.size)
	}
	o.queue = append(o.queue, p)
	o.size += p.Size()
	return nil
}

// SetFrameHeader places p ahead of every packed packet, replacing any
// previous header. The kernel uses it for Start-Of-Frame.
func (o *Outgoing) SetFrameHeader(p Packet) error {
	if o.locked {
		return ErrMessageLocked
	}
	size := o.size
	if o.header != nil {
		size -= o.header.Size()
	}
	if size+p.Size() > o.capacity {
		return fmt.Errorf("%w: frame header needs %d bytes, %d left", ErrMessageFull, p.Size(), o.capacity-size)
	}
	o.header = p
	o.size = size + p.Size()
	return nil
}

// Len returns the number of packets in the message, header included.
func (o *Outgoing) Len() int {
	n := len(o.queue)
	if o.header != nil {
		n++
	}
	return n
}

// Size returns the encoded size of the message so far.
func (o *Outgoing) Size() int { return o.size }

// LockMsg freezes the message and returns its encoding.
// An empty message encodes to nil.
func (o *Outgoing) LockMsg() []byte {
	o.locked = true
	if o.Len() == 0 {
		return nil
	}
	b := make([]byte, 0, o.size)
	if o.header != nil {
		b = o.header.AppendTo(b, o.order)
	}
	for _, p := range o.queue {
		b = p.AppendTo(b, o.order)
	}
	return b
}
