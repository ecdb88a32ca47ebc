package orchestrator

// Vehicle and pedestrian tuning constants, one exported const block per
// concern rather than a flags/config library.
const (
	VehWidthMin          = 1.8
	VehWidthMax          = 2.2
	VehLengthMin         = 4.5
	VehLengthMax         = 4.8
	VehEnvironmentRadius = 20.0
	VehSpeedRespawn      = 40.0 * (1000.0 / 60 / 60) // 40 km/h in m/s
	VehAccelMax          = 2.0
	VehAccelMin          = -1.1 * VehAccelMax
	VehEccentricityMin   = 0.5
	VehEccentricityMax   = 0.8
	VehSteerAngleMax     = 0.4 * 3.141592
)

const (
	PedHeightMin       = 1.50
	PedHeightMax       = 1.90
	PedRadiusMin       = 0.30
	PedRadiusMax       = 0.40
	PedSpeedMin        = 0.75
	PedSpeedMax        = 1.25
	PedWSpeedMax       = 2.00
	PedSpeedMultGreen  = 1.25
	PedSpeedMultRed    = 1.75
	PedFallSpeed       = -2.0
	PedArrivalDistance = 0.5
)

// BusEnvironmentRadius is the radius of the spatial query run around
// the bus each tick to find the nearest other agent.
const BusEnvironmentRadius = 32.0

// BusProximityBrakeDistance is how close the nearest other agent found
// by the bus's spatial query must get before the bus's own throttle and
// brake inputs are overridden by an emergency stop.
const BusProximityBrakeDistance = 6.0

// BusCrashDistance is tighter than BusProximityBrakeDistance: reaching
// it means the emergency stop didn't arrest the approach in time, so
// it is treated as contact rather than a near miss.
const BusCrashDistance = 2.5

// PlannerHorizonSeconds is how far ahead (in simulated time) each
// vehicle plan's Planify walk looks before giving up.
const PlannerHorizonSeconds = 6.0
