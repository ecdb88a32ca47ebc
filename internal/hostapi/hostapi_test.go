package hostapi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/magv-sim/citysim/internal/navveh"
	"github.com/stretchr/testify/require"
)

func writeTestVehGraph(t *testing.T) string {
	t.Helper()
	nodes := make([]navveh.Node, 3)
	nodes[1] = navveh.Node{X: 0, From: [2]navveh.Side{{Route: navveh.RouteLeft}, {}}, Next: [2]uint32{2, 0}}
	nodes[2] = navveh.Node{X: 10, From: [2]navveh.Side{{Route: navveh.RouteNone}, {}}, Prev: [2]uint32{1, 0}}
	g := &navveh.Graph{Nodes: nodes, NumSpawns: 1}

	path := filepath.Join(t.TempDir(), "veh.dat")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, navveh.Encode(f, g))
	return path
}

func TestDispatchLifecycle(t *testing.T) {
	h := NewHost(Config{VehGraphPath: writeTestVehGraph(t), NumVehicles: 2})

	_, ok := h.Dispatch(ModeInitialize, Inputs{})
	require.True(t, ok)

	out, ok := h.Dispatch(ModeStep, Inputs{Accel: 1.0, Dt: 1.0 / 30})
	require.True(t, ok)
	require.Len(t, out.WheelSpeeds, 4)

	_, ok = h.Dispatch(ModeFinalize, Inputs{})
	require.True(t, ok)
}

func TestDispatchStepBeforeInitializeWarns(t *testing.T) {
	h := NewHost(Config{})
	_, ok := h.Dispatch(ModeStep, Inputs{})
	require.False(t, ok)
}

func TestDispatchUnknownModeWarns(t *testing.T) {
	h := NewHost(Config{})
	_, ok := h.Dispatch(Mode(42), Inputs{})
	require.False(t, ok)
}
