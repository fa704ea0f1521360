package igkernel_test

import (
	"context"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/igkernel"
	"github.com/aretw0/igkernel/pkg/adapters/memory"
	"github.com/aretw0/igkernel/pkg/cigi"
	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/aretw0/igkernel/pkg/kernel"
	"github.com/aretw0/igkernel/pkg/plugins/database"
	"github.com/aretw0/igkernel/pkg/plugins/statusmirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type host struct {
	t  *testing.T
	ep *memory.Endpoint
}

func (h host) command(mode domain.IGMode, db int8) {
	h.t.Helper()
	msg := cigi.Encode(binary.BigEndian, &cigi.IGControl{
		MajorVersion:   cigi.MajorVersion,
		MinorVersion:   cigi.MinorVersion,
		IGMode:         mode,
		DatabaseNumber: db,
	})
	_, err := h.ep.Send(msg)
	require.NoError(h.t, err)
}

func (h host) sof() *cigi.StartOfFrame {
	h.t.Helper()
	buf := make([]byte, kernel.MinRecvBufferSize)
	var last *cigi.StartOfFrame
	for h.ep.Pending() > 0 {
		n, err := h.ep.Recv(buf)
		require.NoError(h.t, err)
		packets, err := cigi.Decode(buf[:n])
		require.NoError(h.t, err)
		sof, ok := packets[0].(*cigi.StartOfFrame)
		require.True(h.t, ok)
		last = sof
	}
	require.NotNil(h.t, last, "no Start-Of-Frame received")
	return last
}

func newIG(t *testing.T, opts ...igkernel.Option) (*igkernel.IG, host) {
	t.Helper()
	hostEP, igEP := memory.NewPipe()
	opts = append([]igkernel.Option{
		igkernel.WithSignals(false),
		igkernel.WithKernelOptions(kernel.WithFrameRate(0)),
	}, opts...)
	ig, err := igkernel.New(igEP, opts...)
	require.NoError(t, err)
	return ig, host{t: t, ep: hostEP}
}

func step(t *testing.T, ig *igkernel.IG, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, ig.Kernel().Step(context.Background()))
	}
}

func TestIG_StandbyToOperateWithDatabaseLoad(t *testing.T) {
	store := memory.NewStore()
	ig, h := newIG(t,
		igkernel.WithDatabase(database.Settings{LoadFrames: 2}),
		igkernel.WithStatusStore(store, statusmirror.Settings{InstanceID: "ig-test"}),
	)
	ctx := context.Background()

	step(t, ig, 7)
	require.Equal(t, domain.StateStandby, ig.Kernel().State())
	assert.Equal(t, domain.IGModeStandby, h.sof().IGMode)

	h.command(domain.IGModeOperate, 0)
	step(t, ig, 1)
	require.Equal(t, domain.StateOperate, ig.Kernel().State())
	assert.Equal(t, domain.IGModeOperate, h.sof().IGMode)

	h.command(domain.IGModeOperate, 5)
	step(t, ig, 1)
	require.Equal(t, domain.StateDatabaseLoad, ig.Kernel().State())
	sof := h.sof()
	assert.Equal(t, int8(-5), sof.DatabaseNumber, "negated while loading")
	assert.Equal(t, domain.IGModeOperate, sof.IGMode)

	// The Host keeps repeating the same number; it must not re-trigger a load.
	h.command(domain.IGModeOperate, 5)
	step(t, ig, 1)
	assert.Equal(t, int8(5), h.sof().DatabaseNumber)

	h.command(domain.IGModeOperate, 5)
	step(t, ig, 1)
	assert.Equal(t, domain.StateOperate, ig.Kernel().State())
	step(t, ig, 2)
	assert.Equal(t, domain.StateOperate, ig.Kernel().State())

	st, err := store.Load(ctx, "ig-test")
	require.NoError(t, err)
	assert.Equal(t, "operate", st.State)
	assert.Equal(t, int8(5), st.LoadedDatabaseNumber)
	assert.Equal(t, int8(5), ig.Status().ReportedDatabaseNumber)
}

func TestIG_RunTearsDownOnCancel(t *testing.T) {
	store := memory.NewStore()
	ig, _ := newIG(t, igkernel.WithStatusStore(store, statusmirror.Settings{InstanceID: "ig-test"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, ig.Run(ctx))

	assert.Equal(t, domain.StateQuit, ig.Kernel().State())
	_, err := store.Load(context.Background(), "ig-test")
	assert.ErrorIs(t, err, domain.ErrStatusNotFound, "status mirror removes its snapshot on Quit")
}

func TestIG_Handler(t *testing.T) {
	ig, h := newIG(t)
	step(t, ig, 7)
	h.command(domain.IGModeOperate, 0)
	step(t, ig, 1)
	// Only the normal session, active from Operate on, is observed.
	h.command(domain.IGModeOperate, 0)
	step(t, ig, 1)

	rec := httptest.NewRecorder()
	ig.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "igkernel_frames_total 9")
	assert.Contains(t, rec.Body.String(), `igkernel_packets_received_total{packet_id="1"} 1`)

	rec = httptest.NewRecorder()
	ig.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"operate"`)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, igkernel.Version)
}
