// Package dynamics is the core's minimal contract onto an external
// wheeled-vehicle physics collaborator. The real implementation —
// chassis, suspension, tire, clutch and gearbox integration against a
// rigid-body solver — lives outside this repository; Engine is the
// interface the orchestrator actually calls, and SimpleEngine is a
// deterministic in-memory stand-in good enough to drive and test that
// orchestrator without one.
package dynamics

import "math"

// Handle identifies one vehicle created through Engine. The zero Handle
// is never returned by Create.
type Handle uint32

// Vector2 is a 2D direction or position component pair (x,y).
type Vector2 struct{ X, Y float32 }

// Vector3 is a world-space position or velocity.
type Vector3 struct{ X, Y, Z float32 }

// Pose is a vehicle's position, forward direction, and current speed.
type Pose struct {
	Pos   Vector3
	Dir   Vector2
	Speed float32
}

// Twist is linear and angular velocity, in either world or body frame
// depending on how GetPoseTwistAccel was called.
type Twist struct {
	Linear  Vector3
	Angular Vector3
}

// Transmission is a vehicle's gearbox and wheel-speed readout, bundled
// into one struct for the orchestrator's output snapshot.
type Transmission struct {
	GearCurrent int
	GearTarget  int
	GearRatio   float32
	EngineSpeed float32
	WheelSpeeds []float32 // at most 8 entries
}

// Engine is the façade the orchestrator drives every tick. All action
// setters are idempotent within a tick; their effect is only observable
// after the next Update call.
type Engine interface {
	// Create constructs a vehicle from a named parameter-DB record and
	// returns its handle.
	Create(vehicleName string) (Handle, error)
	Delete(h Handle)

	SetPositionDirection(h Handle, pos Vector3, dir Vector2)
	GetPositionDirectionOrientationSpeed(h Handle) (Vector3, Vector2, float32)
	GetPoseTwistAccel(h Handle, localFrame bool) (pos Vector3, dir Vector2, twist Twist, linAccel Vector3)
	GetTransmission(h Handle) Transmission

	ActionMode(h Handle, analog, smoothing bool)
	ActionSteer(h Handle, steer float32)
	ActionAccel(h Handle, accel float32)
	ActionBrake(h Handle, brake float32)
	ActionHandbrake(h Handle, handbrake float32)
	ActionGear(h Handle, gear int, target bool)
	ActionAutobox(h Handle, enable bool)

	// Update steps every live vehicle by dt seconds, batching suspension
	// raycasts internally (groups of <=32 sharing one query, in a real
	// implementation) and awaiting them synchronously before returning.
	Update(dt float32)
}

// vehicle is SimpleEngine's per-handle state: position/heading plus a
// small kinematic-bicycle integrator generalized from a 2D top-down car
// to the façade's pose/twist/transmission contract.
type vehicle struct {
	pos     Vector3
	heading float32 // radians, Dir = (cos,sin)
	speed   float32 // signed, m/s along heading

	prevSpeed float32 // for finite-differenced acceleration

	wheelBase float32
	maxSteer  float32 // radians
	maxAccel  float32 // m/s^2
	maxBrake  float32 // m/s^2

	analog, smoothing bool
	autobox           bool
	steerIn           float32 // [-1,1]
	accelIn           float32 // [0,1]
	brakeIn           float32 // [0,1]
	handbrakeIn       float32 // [0,1]

	gearCurrent, gearTarget int
	gearRatio               float32
	engineSpeed             float32
	wheelSpeeds             [4]float32
}

// SimpleEngine implements Engine with one deterministic integrator per
// vehicle: no suspension, no tire model, no collision against scene
// geometry — that is a real wheeled-vehicle engine's job, out of this
// repository's scope.
type SimpleEngine struct {
	vehicles map[Handle]*vehicle
	next     Handle
}

// NewSimpleEngine returns an empty engine.
func NewSimpleEngine() *SimpleEngine {
	return &SimpleEngine{vehicles: make(map[Handle]*vehicle)}
}

func (e *SimpleEngine) Create(vehicleName string) (Handle, error) {
	e.next++
	v := &vehicle{
		wheelBase: 3.2,
		maxSteer:  0.4 * math.Pi,
		maxAccel:  2.0,
		maxBrake:  1.1 * 2.0,
		gearRatio: 1.0,
	}
	if vehicleName == "bus" {
		v.wheelBase = 6.0
	}
	e.vehicles[e.next] = v
	return e.next, nil
}

func (e *SimpleEngine) Delete(h Handle) {
	delete(e.vehicles, h)
}

func (e *SimpleEngine) get(h Handle) *vehicle {
	v, ok := e.vehicles[h]
	if !ok {
		panic("dynamics: unknown handle")
	}
	return v
}

func (e *SimpleEngine) SetPositionDirection(h Handle, pos Vector3, dir Vector2) {
	v := e.get(h)
	v.pos = pos
	v.heading = float32(math.Atan2(float64(dir.Y), float64(dir.X)))
}

func (e *SimpleEngine) GetPositionDirectionOrientationSpeed(h Handle) (Vector3, Vector2, float32) {
	v := e.get(h)
	dir := Vector2{X: float32(math.Cos(float64(v.heading))), Y: float32(math.Sin(float64(v.heading)))}
	return v.pos, dir, v.speed
}

func (e *SimpleEngine) GetPoseTwistAccel(h Handle, localFrame bool) (Vector3, Vector2, Twist, Vector3) {
	v := e.get(h)
	dir := Vector2{X: float32(math.Cos(float64(v.heading))), Y: float32(math.Sin(float64(v.heading)))}

	var twist Twist
	accel := Vector3{X: v.speed - v.prevSpeed}
	if localFrame {
		twist.Linear = Vector3{X: v.speed}
	} else {
		twist.Linear = Vector3{X: v.speed * dir.X, Y: v.speed * dir.Y}
		accel = Vector3{X: accel.X * dir.X, Y: accel.X * dir.Y}
	}
	turnRate := float32(0)
	if v.wheelBase > 0 {
		turnRate = v.speed / v.wheelBase * float32(math.Tan(float64(v.steerIn*v.maxSteer)))
	}
	twist.Angular = Vector3{Z: turnRate}

	return v.pos, dir, twist, accel
}

func (e *SimpleEngine) GetTransmission(h Handle) Transmission {
	v := e.get(h)
	return Transmission{
		GearCurrent: v.gearCurrent,
		GearTarget:  v.gearTarget,
		GearRatio:   v.gearRatio,
		EngineSpeed: v.engineSpeed,
		WheelSpeeds: append([]float32(nil), v.wheelSpeeds[:]...),
	}
}

func (e *SimpleEngine) ActionMode(h Handle, analog, smoothing bool) {
	v := e.get(h)
	v.analog, v.smoothing = analog, smoothing
}

func (e *SimpleEngine) ActionSteer(h Handle, steer float32)         { e.get(h).steerIn = clamp(steer, -1, 1) }
func (e *SimpleEngine) ActionAccel(h Handle, accel float32)         { e.get(h).accelIn = clamp(accel, 0, 1) }
func (e *SimpleEngine) ActionBrake(h Handle, brake float32)         { e.get(h).brakeIn = clamp(brake, 0, 1) }
func (e *SimpleEngine) ActionHandbrake(h Handle, handbrake float32) { e.get(h).handbrakeIn = clamp(handbrake, 0, 1) }

func (e *SimpleEngine) ActionGear(h Handle, gear int, target bool) {
	v := e.get(h)
	if target {
		v.gearTarget = gear
	} else {
		v.gearCurrent = gear
		v.gearTarget = gear
	}
}

func (e *SimpleEngine) ActionAutobox(h Handle, enable bool) { e.get(h).autobox = enable }

// Update steps every vehicle's kinematic-bicycle integrator by dt.
// Gear 0=reverse, 1=neutral, 2=drive.
func (e *SimpleEngine) Update(dt float32) {
	if dt <= 0 {
		return
	}
	for _, v := range e.vehicles {
		v.prevSpeed = v.speed

		if v.autobox {
			switch {
			case v.speed > 0.05:
				v.gearTarget = 2
			case v.speed < -0.05:
				v.gearTarget = 0
			}
		}
		v.gearCurrent = v.gearTarget

		targetAccel := v.accelIn * v.maxAccel
		brakeDecel := (v.brakeIn + v.handbrakeIn) * v.maxBrake
		switch v.gearCurrent {
		case 0: // reverse
			targetAccel = -targetAccel
		case 1: // neutral
			targetAccel = 0
		}

		if brakeDecel > 0 {
			v.speed = approachF(v.speed, 0, brakeDecel*dt)
		} else {
			v.speed += targetAccel * dt
		}

		steerAngle := v.steerIn * v.maxSteer
		if v.wheelBase > 0 && float32(math.Abs(float64(v.speed))) > 0.05 {
			yawRate := v.speed / v.wheelBase * float32(math.Tan(float64(steerAngle)))
			v.heading += yawRate * dt
		}

		v.pos.X += v.speed * float32(math.Cos(float64(v.heading))) * dt
		v.pos.Y += v.speed * float32(math.Sin(float64(v.heading))) * dt

		v.engineSpeed = float32(math.Abs(float64(v.speed))) * 120.0
		for i := range v.wheelSpeeds {
			v.wheelSpeeds[i] = v.speed / 0.35 // /wheel radius
		}
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// approachF moves cur toward target by at most maxDelta.
func approachF(cur, target, maxDelta float32) float32 {
	if cur < target {
		cur += maxDelta
		if cur > target {
			cur = target
		}
		return cur
	}
	if cur > target {
		cur -= maxDelta
		if cur < target {
			cur = target
		}
	}
	return cur
}
