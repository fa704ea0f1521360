package igctrl_test

import (
	"encoding/binary"
	"testing"

	"github.com/aretw0/igkernel/pkg/cigi"
	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/aretw0/igkernel/pkg/igctrl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func control(mode domain.IGMode, db int8, frame uint32) *cigi.IGControl {
	return &cigi.IGControl{MajorVersion: cigi.MajorVersion, IGMode: mode, DatabaseNumber: db, HostFrame: frame}
}

func TestProcessor_CommandedMode(t *testing.T) {
	sc := domain.NewStateContext()
	p := igctrl.New(sc, nil)
	assert.False(t, p.Received())

	require.NoError(t, p.Handle(control(domain.IGModeOperate, 0, 10)))
	assert.Equal(t, domain.IGModeOperate, sc.CommandedIGMode)
	assert.Equal(t, uint32(10), p.LastHostFrame())
	assert.Equal(t, uint8(cigi.MajorVersion), p.HostMajorVersion())
	assert.True(t, p.Received())
	assert.False(t, sc.DatabaseLoadRequested)

	require.NoError(t, p.Handle(control(domain.IGModeDebug, 0, 11)))
	assert.Equal(t, domain.IGModeDebug, sc.CommandedIGMode)
}

func TestProcessor_DatabaseRequestIsEdgeTriggered(t *testing.T) {
	sc := domain.NewStateContext()
	var commanded int8
	p := igctrl.New(sc, &commanded)

	require.NoError(t, p.Handle(control(domain.IGModeOperate, 5, 1)))
	assert.True(t, sc.DatabaseLoadRequested)
	assert.Equal(t, int8(5), commanded)

	// The state machine consumes the request; the Host keeps repeating 5.
	sc.DatabaseLoadRequested = false
	require.NoError(t, p.Handle(control(domain.IGModeOperate, 5, 2)))
	assert.False(t, sc.DatabaseLoadRequested, "a repeated number must not re-trigger a load")

	// A different number triggers again.
	require.NoError(t, p.Handle(control(domain.IGModeOperate, 6, 3)))
	assert.True(t, sc.DatabaseLoadRequested)
	assert.Equal(t, int8(6), commanded)

	// Zero resets, so the same number can be requested again.
	sc.DatabaseLoadRequested = false
	require.NoError(t, p.Handle(control(domain.IGModeOperate, 0, 4)))
	assert.False(t, sc.DatabaseLoadRequested)
	require.NoError(t, p.Handle(control(domain.IGModeOperate, 6, 5)))
	assert.True(t, sc.DatabaseLoadRequested)
}

func TestProcessor_NegativeDatabaseIgnored(t *testing.T) {
	sc := domain.NewStateContext()
	var commanded int8
	p := igctrl.New(sc, &commanded)

	for i, db := range []int8{-5, -128, -1} {
		require.NoError(t, p.Handle(control(domain.IGModeOperate, db, uint32(i))))
		assert.False(t, sc.DatabaseLoadRequested, "database %d is not a load request", db)
		assert.Equal(t, int8(0), commanded)
	}

	require.NoError(t, p.Handle(control(domain.IGModeOperate, 5, 10)))
	assert.True(t, sc.DatabaseLoadRequested)
	assert.Equal(t, int8(5), commanded)

	// A negative number in between lets the same database be requested again.
	sc.DatabaseLoadRequested = false
	require.NoError(t, p.Handle(control(domain.IGModeOperate, -5, 11)))
	assert.False(t, sc.DatabaseLoadRequested)
	require.NoError(t, p.Handle(control(domain.IGModeOperate, 5, 12)))
	assert.True(t, sc.DatabaseLoadRequested)
}

func TestProcessor_RejectsOtherPackets(t *testing.T) {
	p := igctrl.New(domain.NewStateContext(), nil)
	err := p.Handle(cigi.RawPacket{ID: cigi.PacketEntityCtrl})
	assert.ErrorIs(t, err, igctrl.ErrUnexpectedPacket)
}

func TestProcessor_RegisteredOnSession(t *testing.T) {
	sc := domain.NewStateContext()
	p := igctrl.New(sc, nil)
	s := cigi.NewSession(nil)
	p.Register(s)

	msg := cigi.Encode(binary.BigEndian, control(domain.IGModeOperate, 0, 99))
	n, err := s.Incoming.ProcessMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.IGModeOperate, sc.CommandedIGMode)
	assert.Equal(t, uint32(99), p.LastHostFrame())
}
