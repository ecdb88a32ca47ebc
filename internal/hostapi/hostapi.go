// Package hostapi is the external, mode-dispatched entry point host
// programs use to drive the simulator one tick at a time: a single
// initialize/step/finalize call surface standing in for a richer
// process-boundary API.
package hostapi

import (
	"fmt"
	"os"

	"github.com/magv-sim/citysim/internal/audio"
	"github.com/magv-sim/citysim/internal/dynamics"
	"github.com/magv-sim/citysim/internal/navped"
	"github.com/magv-sim/citysim/internal/navveh"
	"github.com/magv-sim/citysim/internal/orchestrator"
	"github.com/magv-sim/citysim/internal/simlog"
)

// Mode selects which of the three external entry points a Dispatch call
// invokes.
type Mode int

const (
	ModeFinalize   Mode = -1
	ModeStep       Mode = 0
	ModeInitialize Mode = 1
)

// Inputs is the six-float control tuple passed to a step call (mode is
// Dispatch's separate argument).
type Inputs struct {
	Steer, Accel, Brake, Handbrake, Dt, Rate float32
}

// Outputs is a step call's full result.
type Outputs struct {
	BusPos, BusDir                  dynamics.Vector3
	LinearVelocity, AngularVelocity dynamics.Vector3
	LinearAccel                     dynamics.Vector3
	GearCurrent, GearTarget         int
	EngineSpeed                     float32
	WheelSpeeds                     []float32 // at most 8 entries

	Vehicles    []orchestrator.VehicleSnapshot
	Pedestrians []orchestrator.PedestrianSnapshot
}

// Config is the set of load paths and population counts Initialize
// needs.
type Config struct {
	VehGraphPath  string
	PedGraphPath  string
	SemaphorePath string

	NumVehicles    int
	NumPedestrians int
	Seed           uint64
}

// Host wraps one Config and the orchestrator it stands up on
// ModeInitialize and tears down on ModeFinalize.
type Host struct {
	Config Config

	orch *orchestrator.Orchestrator
}

// NewHost returns an uninitialized host; call Dispatch with
// ModeInitialize before ModeStep.
func NewHost(cfg Config) *Host {
	return &Host{Config: cfg}
}

// Dispatch routes one external call to initialize, step, or finalize.
// Any other mode value is a warning, no-op.
func (h *Host) Dispatch(mode Mode, in Inputs) (Outputs, bool) {
	switch mode {
	case ModeInitialize:
		h.initialize()
		return Outputs{}, true
	case ModeStep:
		return h.step(in)
	case ModeFinalize:
		h.finalize()
		return Outputs{}, true
	default:
		simlog.Warn("hostapi", "wrong mode %d", mode)
		return Outputs{}, false
	}
}

func (h *Host) initialize() {
	vehGraph, err := navveh.Load(h.Config.VehGraphPath)
	if err != nil {
		simlog.Fatal("hostapi", fmt.Errorf("load vehicle graph: %w", err))
	}

	var pedGraph *navped.Graph
	if h.Config.PedGraphPath != "" {
		pedGraph, err = navped.Load(h.Config.PedGraphPath)
		if err != nil {
			simlog.Fatal("hostapi", fmt.Errorf("load pedestrian graph: %w", err))
		}
	}

	ctx := orchestrator.NewContext()
	if h.Config.SemaphorePath != "" {
		f, err := os.Open(h.Config.SemaphorePath)
		if err != nil {
			simlog.Fatal("hostapi", fmt.Errorf("open semaphore file: %w", err))
		}
		defer f.Close()
		if err := ctx.Semaphore.Load(f); err != nil {
			simlog.Fatal("hostapi", fmt.Errorf("load semaphore file: %w", err))
		}
	}

	world := orchestrator.NewWorld(vehGraph, pedGraph, h.Config.Seed)
	engine := dynamics.NewSimpleEngine()
	world.SpawnBus(engine, "bus", 0)
	for i := 0; i < h.Config.NumVehicles; i++ {
		world.SpawnVehicle(i)
	}
	for i := 0; i < h.Config.NumPedestrians && pedGraph != nil; i++ {
		world.SpawnPedestrian(i)
	}

	h.orch = orchestrator.New(ctx, world, engine)

	cues, err := audio.New()
	if err != nil {
		simlog.Warn("hostapi", "audio init failed, running without cues: %v", err)
	} else {
		h.orch.Cues = cues
	}
}

func (h *Host) step(in Inputs) (Outputs, bool) {
	if h.orch == nil {
		simlog.Warn("hostapi", "step called before initialize")
		return Outputs{}, false
	}
	snap := h.orch.Step(orchestrator.Input{
		Steer: in.Steer, Accel: in.Accel, Brake: in.Brake, Handbrake: in.Handbrake, Dt: in.Dt,
	})
	return Outputs{
		BusPos:          snap.BusPos,
		BusDir:          dynamics.Vector3{X: snap.BusDir.X, Y: snap.BusDir.Y},
		LinearVelocity:  snap.BusTwist.Linear,
		AngularVelocity: snap.BusTwist.Angular,
		LinearAccel:     snap.BusLinearAccel,
		GearCurrent:     snap.BusTransmission.GearCurrent,
		GearTarget:      snap.BusTransmission.GearTarget,
		EngineSpeed:     snap.BusTransmission.EngineSpeed,
		WheelSpeeds:     snap.BusTransmission.WheelSpeeds,
		Vehicles:        snap.Vehicles,
		Pedestrians:     snap.Pedestrians,
	}, true
}

func (h *Host) finalize() {
	h.orch = nil
}
