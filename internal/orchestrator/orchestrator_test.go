package orchestrator

import (
	"testing"

	"github.com/magv-sim/citysim/internal/dynamics"
	"github.com/magv-sim/citysim/internal/navped"
	"github.com/magv-sim/citysim/internal/navveh"
	"github.com/magv-sim/citysim/internal/worldgrid"
	"github.com/stretchr/testify/require"
)

func straightVehGraph() *navveh.Graph {
	nodes := make([]navveh.Node, 5)
	nodes[1] = navveh.Node{X: 0, From: [2]navveh.Side{{Route: navveh.RouteLeft}, {}}, Next: [2]uint32{2, 0}}
	nodes[2] = navveh.Node{X: 10, From: [2]navveh.Side{{Route: navveh.RouteLeft}, {}}, Prev: [2]uint32{1, 0}, Next: [2]uint32{3, 0}}
	nodes[3] = navveh.Node{X: 20, From: [2]navveh.Side{{Route: navveh.RouteLeft}, {}}, Prev: [2]uint32{2, 0}, Next: [2]uint32{4, 0}}
	nodes[4] = navveh.Node{X: 30, From: [2]navveh.Side{{Route: navveh.RouteNone}, {}}, Prev: [2]uint32{3, 0}}
	return &navveh.Graph{Nodes: nodes, NumSpawns: 1}
}

func loopPedGraph() *navped.Graph {
	nodes := make([]navped.Node, 3)
	nodes[1] = navped.Node{X: 0, Y: 0, Count: 1, Neighbors: [4]navped.Neighbor{{Next: 2}}}
	nodes[2] = navped.Node{X: 10, Y: 0, Count: 1, Neighbors: [4]navped.Neighbor{{Next: 1}}}
	return &navped.Graph{Nodes: nodes, NumSpawns: 1}
}

func TestStepAdvancesAmbientVehicleTowardTarget(t *testing.T) {
	w := NewWorld(straightVehGraph(), nil, 1)
	v := w.SpawnVehicle(0)
	ctx := NewContext()
	o := New(ctx, w, dynamics.NewSimpleEngine())

	x0 := v.X
	for i := 0; i < 30; i++ {
		o.Step(Input{Dt: 1.0 / 30})
	}
	require.Greater(t, v.X, x0)
}

func TestStepAdvancesPedestrian(t *testing.T) {
	w := NewWorld(nil, loopPedGraph(), 2)
	p := w.SpawnPedestrian(0)
	ctx := NewContext()
	o := New(ctx, w, dynamics.NewSimpleEngine())

	for i := 0; i < 60; i++ {
		o.Step(Input{Dt: 1.0 / 30})
	}
	require.NotEqual(t, 0.0, p.X)
}

func TestStepDrivesBusThroughDynamics(t *testing.T) {
	w := NewWorld(straightVehGraph(), nil, 3)
	engine := dynamics.NewSimpleEngine()
	bus := w.SpawnBus(engine, "bus", 0)
	ctx := NewContext()
	o := New(ctx, w, engine)

	var snap Snapshot
	for i := 0; i < 60; i++ {
		snap = o.Step(Input{Accel: 1.0, Dt: 1.0 / 30})
	}
	require.Greater(t, snap.BusPos.X, float32(0))
	require.NotNil(t, bus)
}

func TestStepOverridesBrakeWhenAgentIsWithinProximityDistance(t *testing.T) {
	w := NewWorld(straightVehGraph(), nil, 4)
	engine := dynamics.NewSimpleEngine()
	bus := w.SpawnBus(engine, "bus", 0)
	ctx := NewContext()
	o := New(ctx, w, engine)

	obstruction := worldgrid.NewEntity(worldgrid.KindVehicle)
	w.Hash.InsertOrMove(obstruction, bus.Entity.X, bus.Entity.Y)

	snap := o.Step(Input{Accel: 1.0, Dt: 1.0 / 30})
	require.Equal(t, float32(0), snap.BusTwist.Linear.X)
}

func TestStepCrashCueDoesNotPanicWithoutCues(t *testing.T) {
	w := NewWorld(straightVehGraph(), nil, 5)
	engine := dynamics.NewSimpleEngine()
	bus := w.SpawnBus(engine, "bus", 0)
	ctx := NewContext()
	o := New(ctx, w, engine)

	obstruction := worldgrid.NewEntity(worldgrid.KindVehicle)
	w.Hash.InsertOrMove(obstruction, bus.Entity.X, bus.Entity.Y)

	require.NotPanics(t, func() {
		o.Step(Input{Accel: 1.0, Dt: 1.0 / 30})
	})
}

func TestClampInputSnapsSmallBrakeToZero(t *testing.T) {
	in := clampInput(Input{Brake: 0.005, Handbrake: 0.5, Steer: 2.0})
	require.Equal(t, float32(0), in.Brake)
	require.Equal(t, float32(1), in.Steer)
}
