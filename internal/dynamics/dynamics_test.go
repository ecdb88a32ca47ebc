package dynamics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimpleEngineAccelerates(t *testing.T) {
	e := NewSimpleEngine()
	h, err := e.Create("bus")
	require.NoError(t, err)

	e.ActionMode(h, true, false)
	e.ActionAutobox(h, true)
	e.ActionAccel(h, 1.0)
	e.ActionGear(h, 2, true)

	for i := 0; i < 60; i++ {
		e.Update(1.0 / 60)
	}

	pos, _, twist, _ := e.GetPoseTwistAccel(h, false)
	require.Greater(t, pos.X, float32(0))
	require.Greater(t, twist.Linear.X, float32(0))
}

func TestSimpleEngineBrakeStopsVehicle(t *testing.T) {
	e := NewSimpleEngine()
	h, _ := e.Create("car")
	e.ActionAutobox(h, true)
	e.ActionGear(h, 2, true)
	e.ActionAccel(h, 1.0)
	for i := 0; i < 120; i++ {
		e.Update(1.0 / 60)
	}

	e.ActionAccel(h, 0)
	e.ActionBrake(h, 1.0)
	for i := 0; i < 120; i++ {
		e.Update(1.0 / 60)
	}

	_, _, speed := e.GetPositionDirectionOrientationSpeed(h)
	require.InDelta(t, 0, speed, 0.01)
}

func TestSimpleEngineSteerTurnsHeading(t *testing.T) {
	e := NewSimpleEngine()
	h, _ := e.Create("car")
	e.ActionAutobox(h, true)
	e.ActionGear(h, 2, true)
	e.ActionAccel(h, 0.5)
	e.ActionSteer(h, 1.0)

	_, dir0, _ := e.GetPositionDirectionOrientationSpeed(h)
	for i := 0; i < 60; i++ {
		e.Update(1.0 / 60)
	}
	_, dir1, _ := e.GetPositionDirectionOrientationSpeed(h)
	require.NotEqual(t, dir0, dir1)
}

func TestSimpleEngineTransmissionReportsGear(t *testing.T) {
	e := NewSimpleEngine()
	h, _ := e.Create("bus")
	e.ActionGear(h, 2, false)
	e.Update(1.0 / 60)
	tr := e.GetTransmission(h)
	require.Equal(t, 2, tr.GearCurrent)
	require.Len(t, tr.WheelSpeeds, 4)
}

func TestSimpleEngineDeleteRemovesHandle(t *testing.T) {
	e := NewSimpleEngine()
	h, _ := e.Create("car")
	e.Delete(h)
	require.Panics(t, func() { e.GetTransmission(h) })
}
