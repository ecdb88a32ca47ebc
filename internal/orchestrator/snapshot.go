package orchestrator

import (
	"github.com/magv-sim/citysim/internal/dynamics"
	"github.com/magv-sim/citysim/internal/navveh"
)

// VehicleSnapshot is one ambient vehicle's published state, enough for
// a visualizer or host to draw/log it.
type VehicleSnapshot struct {
	X, Y, Heading float64
	Speed         float32
}

// PedestrianSnapshot is one pedestrian's published state.
type PedestrianSnapshot struct {
	X, Y, Angle float64
}

// Snapshot is everything the host or a visualizer needs after one Step:
// the bus's pose/twist/transmission/collision plus every ambient
// agent's position.
type Snapshot struct {
	BusPos          dynamics.Vector3
	BusDir          dynamics.Vector2
	BusTwist        dynamics.Twist
	BusLinearAccel  dynamics.Vector3
	BusTransmission dynamics.Transmission
	BusCollision    navveh.Info

	Vehicles    []VehicleSnapshot
	Pedestrians []PedestrianSnapshot
}

func snapshotVehicles(vs []*VehicleAgent) []VehicleSnapshot {
	out := make([]VehicleSnapshot, len(vs))
	for i, v := range vs {
		out[i] = VehicleSnapshot{X: v.X, Y: v.Y, Heading: v.Heading, Speed: v.Speed}
	}
	return out
}

func snapshotPedestrians(ps []*PedestrianAgent) []PedestrianSnapshot {
	out := make([]PedestrianSnapshot, len(ps))
	for i, p := range ps {
		out[i] = PedestrianSnapshot{X: p.X, Y: p.Y, Angle: p.Angle}
	}
	return out
}
