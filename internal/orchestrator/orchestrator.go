// Package orchestrator implements the per-frame step that couples the
// spatial hash, both navigation planners, the semaphore table, and the
// vehicle-dynamics façade into one simulation tick.
package orchestrator

import (
	"math"

	"github.com/magv-sim/citysim/internal/audio"
	"github.com/magv-sim/citysim/internal/dynamics"
	"github.com/magv-sim/citysim/internal/navped"
	"github.com/magv-sim/citysim/internal/navveh"
)

// Input is one frame's external host command (the mode selector is
// handled one level up, by internal/hostapi).
type Input struct {
	Steer, Accel, Brake, Handbrake, Dt float32
}

// clampInput clamps an input, snapping sub-0.01 braking/handbrake values
// to zero so small analog noise doesn't keep the bus perpetually
// braking.
func clampInput(in Input) Input {
	out := in
	out.Steer = clampF32(in.Steer, -1, 1)
	out.Accel = clampF32(in.Accel, 0, 1)
	if in.Brake < 0.01 {
		out.Brake = 0
	} else {
		out.Brake = clampF32(in.Brake, 0, 1)
	}
	if in.Handbrake < 0.01 {
		out.Handbrake = 0
	} else {
		out.Handbrake = clampF32(in.Handbrake, 0, 1)
	}
	return out
}

func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Orchestrator runs the single-threaded, frame-serial simulation loop:
// one Input in, one Snapshot out, no suspension anywhere in the call.
type Orchestrator struct {
	Context *Context
	World   *World
	Engine  dynamics.Engine

	// Cues is optional; a nil *audio.Cues silently drops every cue, so
	// callers that skip audio init can leave it unset.
	Cues *audio.Cues
}

// New builds an orchestrator over an already-populated world.
func New(ctx *Context, world *World, engine dynamics.Engine) *Orchestrator {
	return &Orchestrator{Context: ctx, World: world, Engine: engine}
}

// Step advances the simulation by one frame: dynamics update, semaphore
// and epoch tick, then every agent's planner and motion, in a fixed
// iteration order (the user-controlled bus, then ambient vehicles in
// creation order, then pedestrians).
func (o *Orchestrator) Step(in Input) Snapshot {
	in = clampInput(in)
	bus := o.World.Bus

	if bus != nil {
		prevPos, _, _ := busPoseSpeed(o.Engine, bus.Handle)
		if nearest, ok := o.World.Nearest(float64(prevPos.X), float64(prevPos.Y), BusEnvironmentRadius, bus.Entity); ok {
			if nearest < BusCrashDistance {
				o.Cues.PlayCrash()
			}
			if nearest < BusProximityBrakeDistance {
				in.Accel = 0
				in.Brake = 1
			}
		}

		o.Engine.ActionMode(bus.Handle, true, false)
		o.Engine.ActionAutobox(bus.Handle, true)
		o.Engine.ActionSteer(bus.Handle, in.Steer)
		o.Engine.ActionAccel(bus.Handle, in.Accel)
		o.Engine.ActionBrake(bus.Handle, in.Brake)
		o.Engine.ActionHandbrake(bus.Handle, in.Handbrake)
		o.Engine.ActionGear(bus.Handle, 2, true)
	}

	o.Engine.Update(in.Dt)
	o.Context.Tick(in.Dt)

	var busPos dynamics.Vector3
	var busDir dynamics.Vector2
	var busTwist dynamics.Twist
	var busAccel dynamics.Vector3
	var busCollision navveh.Info

	if bus != nil {
		var busSpeed float32
		busPos, busDir, busSpeed = busPoseSpeed(o.Engine, bus.Handle)
		o.World.Hash.InsertOrMove(bus.Entity, float64(busPos.X), float64(busPos.Y))

		if o.World.VehGraph != nil && bus.Plan.Curr != 0 {
			_, busCollision = bus.Plan.Planify(o.World.Reservations, &o.Context.Clock, o.Context.Semaphore,
				busPos.X, busPos.Y, bus.Length, busSpeed, PlannerHorizonSeconds)
		}
		if busCollision.Semaphore != 0 {
			o.Cues.PlayRedLight()
		}

		_, busDir, busTwist, busAccel = o.Engine.GetPoseTwistAccel(bus.Handle, true)
	}

	for _, v := range o.World.Vehicles {
		o.stepVehicle(v, in.Dt)
	}

	for _, p := range o.World.Pedestrians {
		o.stepPedestrian(p, in.Dt)
	}

	var transmission dynamics.Transmission
	if bus != nil {
		transmission = o.Engine.GetTransmission(bus.Handle)
	}

	return Snapshot{
		BusPos:          busPos,
		BusDir:          busDir,
		BusTwist:        busTwist,
		BusLinearAccel:  busAccel,
		BusTransmission: transmission,
		BusCollision:    busCollision,
		Vehicles:        snapshotVehicles(o.World.Vehicles),
		Pedestrians:     snapshotPedestrians(o.World.Pedestrians),
	}
}

func busPoseSpeed(e dynamics.Engine, h dynamics.Handle) (dynamics.Vector3, dynamics.Vector2, float32) {
	return e.GetPositionDirectionOrientationSpeed(h)
}

// stepVehicle re-plans v's route and advances its position toward the
// planner's reported target node, braking when the plan reports a
// conflict it has lost preference over.
func (o *Orchestrator) stepVehicle(v *VehicleAgent, dt float32) {
	if v.Plan.Curr == 0 {
		respawnVehicle(o.World, v)
		return
	}

	target, info := v.Plan.Planify(o.World.Reservations, &o.Context.Clock, o.Context.Semaphore,
		float32(v.X), float32(v.Y), v.Length, v.Speed, PlannerHorizonSeconds)

	targetSpeed := info.SpeedLimit
	if targetSpeed <= 0 {
		targetSpeed = VehSpeedRespawn
	}
	if info.Node != nil {
		switch {
		case info.Dist < v.Length*2:
			targetSpeed = 0
		case info.Dist < VehEnvironmentRadius:
			targetSpeed *= 0.4
		}
	}

	if v.Speed < targetSpeed {
		v.Speed += VehAccelMax * dt
		if v.Speed > targetSpeed {
			v.Speed = targetSpeed
		}
	} else if v.Speed > targetSpeed {
		v.Speed += VehAccelMin * dt // VehAccelMin is negative
		if v.Speed < targetSpeed {
			v.Speed = targetSpeed
		}
	}

	if target == nil {
		respawnVehicle(o.World, v)
		return
	}

	dx := float64(target.X) - v.X
	dy := float64(target.Y) - v.Y
	dist := math.Hypot(dx, dy)
	if dist > 1e-6 {
		v.Heading = math.Atan2(dy, dx)
	}
	step := float64(v.Speed) * float64(dt)
	if step > dist {
		step = dist
	}
	v.X += math.Cos(v.Heading) * step
	v.Y += math.Sin(v.Heading) * step
	o.World.Hash.InsertOrMove(v.Entity, v.X, v.Y)
}

func respawnVehicle(w *World, v *VehicleAgent) {
	node := v.Plan.Respawn(w.VehGraph, VehSpeedRespawn, -1)
	v.X, v.Y = float64(node.X), float64(node.Y)
	v.Speed = VehSpeedRespawn
	w.Hash.InsertOrMove(v.Entity, v.X, v.Y)
}

// stepPedestrian re-plans p's target and advances it, scaling speed by
// the green/red semaphore multiplier when standing at a signed node,
// and issuing an escape RePlanify once it has made no progress for
// long enough to call itself stuck.
func (o *Orchestrator) stepPedestrian(p *PedestrianAgent, dt float32) {
	if p.Plan.Curr == 0 {
		respawnPedestrian(o.World, p)
		return
	}

	node := p.Plan.Planify(p.X, p.Y, p.Angle, PedArrivalDistance)
	if node == nil {
		respawnPedestrian(o.World, p)
		return
	}

	speed := p.Speed
	if node.Sign == navped.SignSemaphore && o.Context.Semaphore != nil {
		if o.Context.Semaphore.IsGreen(int(node.Semaphore)) {
			speed *= PedSpeedMultGreen
		} else {
			speed *= PedSpeedMultRed
		}
	}

	dx := float64(node.X) - p.X
	dy := float64(node.Y) - p.Y
	dist := math.Hypot(dx, dy)
	moved := 0.0
	if dist > 1e-6 {
		p.Angle = math.Atan2(dy, dx)
		step := speed * float64(dt)
		if step > dist {
			step = dist
		}
		p.X += math.Cos(p.Angle) * step
		p.Y += math.Sin(p.Angle) * step
		moved = step
	}

	if moved < 1e-4 {
		p.stuckTimer += float64(dt)
		if p.stuckTimer > 2.0 {
			p.Plan.RePlanify(p.Angle)
			p.stuckTimer = 0
		}
	} else {
		p.stuckTimer = 0
	}

	o.World.Hash.InsertOrMove(p.Entity, p.X, p.Y)
}

func respawnPedestrian(w *World, p *PedestrianAgent) {
	node := p.Plan.Respawn(w.PedGraph, 0)
	p.X, p.Y = float64(node.X), float64(node.Y)
	w.Hash.InsertOrMove(p.Entity, p.X, p.Y)
}
