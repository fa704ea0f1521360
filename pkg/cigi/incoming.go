package cigi

import (
	"errors"
	"fmt"
)

// Handler processes one decoded packet.
type Handler func(Packet) error

// Incoming decodes received messages and dispatches every packet to the
// handlers registered for its type, synchronously and in registration order.
type Incoming struct {
	handlers  map[PacketID][]Handler
	observers []Handler
}

// NewIncoming creates an incoming message manager with no handlers.
func NewIncoming() *Incoming {
	return &Incoming{
		handlers: make(map[PacketID][]Handler),
	}
}

// Register adds a handler for one packet type.
func (in *Incoming) Register(id PacketID, h Handler) {
	in.handlers[id] = append(in.handlers[id], h)
}

// Observe adds a handler invoked for every packet, before type handlers.
func (in *Incoming) Observe(h Handler) {
	in.observers = append(in.observers, h)
}

// Registered reports whether any handler is registered for id.
func (in *Incoming) Registered(id PacketID) bool {
	return len(in.handlers[id]) > 0
}

// ProcessMessage decodes msg and dispatches its packets.
//
// A decode failure returns an error wrapping ErrMalformed and dispatches
// nothing. Handler errors do not stop the dispatch of the remaining packets;
// they are joined into the returned error. The first return value is the
// number of packets decoded.
func (in *Incoming) ProcessMessage(msg []byte) (int, error) {
	packets, err := Decode(msg)
	if err != nil {
		return 0, err
	}

	var errs []error
	for _, p := range packets {
		for _, obs := range in.observers {
			if err := obs(p); err != nil {
				errs = append(errs, fmt.Errorf("observer for packet %d: %w", p.PacketID(), err))
			}
		}
		for _, h := range in.handlers[p.PacketID()] {
			if err := h(p); err != nil {
				errs = append(errs, fmt.Errorf("handler for packet %d: %w", p.PacketID(), err))
			}
		}
	}
	return len(packets), errors.Join(errs...)
}
