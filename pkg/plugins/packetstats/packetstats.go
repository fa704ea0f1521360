// Package packetstats counts the CIGI packets the normal session decodes,
// per packet ID, in Prometheus.
package packetstats

import (
	"context"
	"strconv"

	"github.com/aretw0/igkernel/pkg/blackboard"
	"github.com/aretw0/igkernel/pkg/cigi"
	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/aretw0/igkernel/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// Name is the registration name of the plugin.
const Name = "packetstats"

// Plugin observes every packet of the normal session.
type Plugin struct {
	bb      *blackboard.Blackboard
	packets *prometheus.CounterVec
}

// New creates the plugin and registers its counter on reg.
func New(reg prometheus.Registerer) (*Plugin, error) {
	p := &Plugin{
		packets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: observability.Namespace,
			Name:      "packets_received_total",
			Help:      "CIGI packets decoded in Operate and Debug, by packet ID",
		}, []string{"packet_id"}),
	}
	if err := reg.Register(p.packets); err != nil {
		return nil, err
	}
	return p, nil
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string { return Name }

// UseBlackboard implements plugin.BlackboardUser.
func (p *Plugin) UseBlackboard(bb *blackboard.Blackboard) { p.bb = bb }

// Act implements plugin.Plugin. The observer is installed once, while
// retrieving from the blackboard.
func (p *Plugin) Act(_ context.Context, state domain.SystemState, _ *domain.StateContext) error {
	if state != domain.StateBlackboardRetrieve {
		return nil
	}
	in, err := blackboard.MustGet[*cigi.Incoming](p.bb, blackboard.KeyIncomingMessage)
	if err != nil {
		return err
	}
	in.Observe(p.observe)
	return nil
}

func (p *Plugin) observe(pkt cigi.Packet) error {
	p.packets.WithLabelValues(strconv.Itoa(int(pkt.PacketID()))).Inc()
	return nil
}

// Counter exposes the per-ID counter.
func (p *Plugin) Counter() *prometheus.CounterVec { return p.packets }
