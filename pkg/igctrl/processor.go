// Package igctrl turns the Host's IG Control packets into state machine inputs.
package igctrl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/igkernel/pkg/cigi"
	"github.com/aretw0/igkernel/pkg/domain"
)

// ErrUnexpectedPacket is returned when the processor receives a packet that
// is not IG Control.
var ErrUnexpectedPacket = errors.New("unexpected packet for IG Control processor")

// Processor extracts the commanded mode and database load requests from IG
// Control packets and deposits them into the StateContext.
type Processor struct {
	sc                *domain.StateContext
	commandedDatabase *int8
	logger            *slog.Logger
	lastHostFrame     uint32
	hostMajorVersion  uint8
	received          bool
	lastCommandedDB   int8
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger used to report mode and database commands.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// New creates a processor writing into sc and commandedDatabase.
// commandedDatabase is the value published on the blackboard under
// KeyCommandedDatabaseNumber.
func New(sc *domain.StateContext, commandedDatabase *int8, opts ...Option) *Processor {
	if commandedDatabase == nil {
		commandedDatabase = new(int8)
	}
	p := &Processor{
		sc:                sc,
		commandedDatabase: commandedDatabase,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

// Register installs the processor on a session's incoming manager.
func (p *Processor) Register(s *cigi.Session) {
	s.Incoming.Register(cigi.PacketIGControl, p.Handle)
}

// Handle implements cigi.Handler.
//
// A positive database number different from the last one commanded raises
// DatabaseLoadRequested once. Hosts repeat the number every frame, so the
// same number does not re-trigger. Zero and negative numbers are not load
// requests (negative is the IG's "loading" report); they clear the memory so
// that the same database can be requested again.
func (p *Processor) Handle(pkt cigi.Packet) error {
	ctrl, ok := pkt.(*cigi.IGControl)
	if !ok {
		return fmt.Errorf("%w: packet %d", ErrUnexpectedPacket, pkt.PacketID())
	}

	if !p.received || p.sc.CommandedIGMode != ctrl.IGMode {
		p.logger.Debug("host commanded ig mode", "mode", ctrl.IGMode.String(), "host_frame", ctrl.HostFrame)
	}
	p.sc.CommandedIGMode = ctrl.IGMode

	switch {
	case ctrl.DatabaseNumber <= 0:
		p.lastCommandedDB = 0
	case ctrl.DatabaseNumber != p.lastCommandedDB:
		p.lastCommandedDB = ctrl.DatabaseNumber
		*p.commandedDatabase = ctrl.DatabaseNumber
		p.sc.DatabaseLoadRequested = true
		p.logger.Info("host requested database load", "database", ctrl.DatabaseNumber)
	}

	p.lastHostFrame = ctrl.HostFrame
	p.hostMajorVersion = ctrl.MajorVersion
	p.received = true
	return nil
}

// LastHostFrame returns the Host frame number of the latest IG Control
// packet, echoed back in Start-Of-Frame.
func (p *Processor) LastHostFrame() uint32 { return p.lastHostFrame }

// HostMajorVersion returns the CIGI major version the Host last announced.
func (p *Processor) HostMajorVersion() uint8 { return p.hostMajorVersion }

// Received reports whether any IG Control packet has been processed.
func (p *Processor) Received() bool { return p.received }
