package cigi_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/aretw0/igkernel/pkg/cigi"
	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncoming_Dispatch(t *testing.T) {
	in := cigi.NewIncoming()

	var order []string
	in.Observe(func(p cigi.Packet) error {
		order = append(order, "observe")
		return nil
	})
	in.Register(cigi.PacketIGControl, func(p cigi.Packet) error {
		order = append(order, "ctrl-1")
		return nil
	})
	in.Register(cigi.PacketIGControl, func(p cigi.Packet) error {
		order = append(order, "ctrl-2")
		return nil
	})
	in.Register(cigi.PacketEntityCtrl, func(p cigi.Packet) error {
		order = append(order, "entity")
		return nil
	})

	assert.True(t, in.Registered(cigi.PacketIGControl))
	assert.False(t, in.Registered(cigi.PacketViewCtrl))

	msg := cigi.Encode(binary.BigEndian,
		hostControl(domain.IGModeOperate, 0, 1),
		cigi.RawPacket{ID: cigi.PacketEntityCtrl, Body: make([]byte, 6)},
		cigi.RawPacket{ID: cigi.PacketViewCtrl, Body: make([]byte, 6)},
	)

	n, err := in.ProcessMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{
		"observe", "ctrl-1", "ctrl-2",
		"observe", "entity",
		"observe",
	}, order)
}

func TestIncoming_MalformedDispatchesNothing(t *testing.T) {
	in := cigi.NewIncoming()
	calls := 0
	in.Register(cigi.PacketIGControl, func(p cigi.Packet) error {
		calls++
		return nil
	})

	msg := cigi.Encode(binary.BigEndian, hostControl(domain.IGModeOperate, 0, 1))
	msg = append(msg, byte(cigi.PacketEntityCtrl), 200)

	n, err := in.ProcessMessage(msg)
	assert.ErrorIs(t, err, cigi.ErrMalformed)
	assert.Zero(t, n)
	assert.Zero(t, calls, "a malformed message must not reach any handler")
}

func TestIncoming_HandlerErrorsAreJoined(t *testing.T) {
	in := cigi.NewIncoming()
	boom := errors.New("boom")
	entityCalls := 0
	in.Register(cigi.PacketIGControl, func(p cigi.Packet) error { return boom })
	in.Register(cigi.PacketEntityCtrl, func(p cigi.Packet) error {
		entityCalls++
		return nil
	})

	msg := cigi.Encode(binary.BigEndian,
		hostControl(domain.IGModeOperate, 0, 1),
		cigi.RawPacket{ID: cigi.PacketEntityCtrl, Body: make([]byte, 2)},
	)
	n, err := in.ProcessMessage(msg)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, entityCalls, "dispatch continues after a handler error")
}

func TestOutgoing_FrameHeaderFirst(t *testing.T) {
	out := cigi.NewOutgoing(0)
	out.BeginMsg()

	a := cigi.RawPacket{ID: cigi.PacketEntityCtrl, Body: []byte{1, 1}}
	b := cigi.RawPacket{ID: cigi.PacketViewCtrl, Body: []byte{2, 2}}
	require.NoError(t, out.Pack(a))
	require.NoError(t, out.Pack(b))

	sof := &cigi.StartOfFrame{MajorVersion: cigi.MajorVersion, IGFrame: 1}
	require.NoError(t, out.SetFrameHeader(sof))
	// Replacing the header keeps a single one.
	sof2 := &cigi.StartOfFrame{MajorVersion: cigi.MajorVersion, IGFrame: 2}
	require.NoError(t, out.SetFrameHeader(sof2))

	assert.Equal(t, 3, out.Len())
	assert.Equal(t, cigi.StartOfFrameSize+8, out.Size())

	msg := out.LockMsg()
	packets, err := cigi.Decode(msg)
	require.NoError(t, err)
	require.Len(t, packets, 3)
	assert.Equal(t, sof2, packets[0])
	assert.Equal(t, a, packets[1])
	assert.Equal(t, b, packets[2])

	assert.ErrorIs(t, out.Pack(a), cigi.ErrMessageLocked)
	assert.ErrorIs(t, out.SetFrameHeader(sof), cigi.ErrMessageLocked)

	out.BeginMsg()
	assert.Zero(t, out.Len())
	assert.Nil(t, out.LockMsg())
}

func TestOutgoing_Capacity(t *testing.T) {
	out := cigi.NewOutgoing(cigi.StartOfFrameSize + 4)
	out.BeginMsg()

	require.NoError(t, out.Pack(cigi.RawPacket{ID: cigi.PacketEntityCtrl, Body: []byte{0, 0}}))
	require.NoError(t, out.SetFrameHeader(&cigi.StartOfFrame{}))

	err := out.Pack(cigi.RawPacket{ID: cigi.PacketEntityCtrl, Body: []byte{0, 0, 0}})
	assert.ErrorIs(t, err, cigi.ErrMessageFull)
	assert.Equal(t, 2, out.Len())

	err = out.Pack(cigi.RawPacket{ID: cigi.PacketEntityCtrl, Body: make([]byte, cigi.MaxPacketSize)})
	assert.ErrorIs(t, err, cigi.ErrMalformed)
}
