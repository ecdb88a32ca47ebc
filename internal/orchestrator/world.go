package orchestrator

import (
	"math"

	"github.com/magv-sim/citysim/internal/dynamics"
	"github.com/magv-sim/citysim/internal/navped"
	"github.com/magv-sim/citysim/internal/navveh"
	"github.com/magv-sim/citysim/internal/simrand"
	"github.com/magv-sim/citysim/internal/worldgrid"
)

// VehicleAgent is one ambient, planner-driven vehicle: its spatial-hash
// entity, its committed route (navveh.Plan), and the simple kinematic
// state the orchestrator integrates each tick (the real steering/body
// dynamics belong to the out-of-scope physics collaborator; ambient
// traffic only needs enough motion to keep its plan honest).
type VehicleAgent struct {
	Entity  *worldgrid.Entity
	Plan    navveh.Plan
	X, Y    float64
	Heading float64
	Speed   float32
	Length  float32
	Width   float32
}

// PedestrianAgent is one walker: its spatial-hash entity, its graph
// plan, and a stuck-timer that triggers Plan.RePlanify as an escape
// maneuver when it makes no progress toward its target for too long.
type PedestrianAgent struct {
	Entity     *worldgrid.Entity
	Plan       navped.Plan
	X, Y       float64
	Angle      float64
	Speed      float64
	stuckTimer float64
}

// BusAgent is the single player-controlled vehicle: it is driven by the
// dynamics façade rather than by a kinematic approximation, but it
// still carries a navveh.Plan so that ambient vehicles see it through
// the same node-reservation system.
type BusAgent struct {
	Entity *worldgrid.Entity
	Handle dynamics.Handle
	Plan   navveh.Plan
	Width  float32
	Length float32
	Height float32
}

// World wires the spatial hash and both navigation graphs to the live
// agents populating one simulation run.
type World struct {
	Hash *worldgrid.Hash

	VehGraph     *navveh.Graph
	PedGraph     *navped.Graph
	Reservations *navveh.Reservations

	Bus         *BusAgent
	Vehicles    []*VehicleAgent
	Pedestrians []*PedestrianAgent

	rng *simrand.Rand
}

// NewWorld allocates an empty world over the given graphs. Either graph
// may be nil if that kind of agent is never spawned.
func NewWorld(vehGraph *navveh.Graph, pedGraph *navped.Graph, seed uint64) *World {
	w := &World{
		Hash:     worldgrid.New(),
		VehGraph: vehGraph,
		PedGraph: pedGraph,
		rng:      simrand.New(seed),
	}
	if vehGraph != nil {
		w.Reservations = navveh.NewReservations(len(vehGraph.Nodes))
	}
	return w
}

// SpawnBus creates the bus through engine, places it at a vehicle-graph
// spawn node, and registers it in the spatial hash.
func (w *World) SpawnBus(engine dynamics.Engine, vehicleName string, indexSpawn int) *BusAgent {
	h, err := engine.Create(vehicleName)
	if err != nil {
		panic(err) // vehicle creation failure is unrecoverable
	}
	bus := &BusAgent{
		Entity: worldgrid.NewEntity(worldgrid.KindBus),
		Handle: h,
		Width:  VehWidthMax,
		Length: VehLengthMax,
		Height: 3.0,
	}
	node := bus.Plan.Respawn(w.VehGraph, VehSpeedRespawn, indexSpawn)
	dirX, dirY := nodeDirection(w.VehGraph, bus.Plan.Prev, bus.Plan.Curr)
	engine.SetPositionDirection(h, dynamics.Vector3{X: node.X, Y: node.Y, Z: node.Z}, dynamics.Vector2{X: dirX, Y: dirY})
	w.Hash.InsertOrMove(bus.Entity, float64(node.X), float64(node.Y))
	w.Bus = bus
	return bus
}

// SpawnVehicle adds one ambient vehicle at a vehicle-graph spawn node.
func (w *World) SpawnVehicle(indexSpawn int) *VehicleAgent {
	v := &VehicleAgent{
		Entity: worldgrid.NewEntity(worldgrid.KindVehicle),
		Length: VehLengthMin + float32(w.rng.RangeF(0, float64(VehLengthMax-VehLengthMin))),
		Width:  VehWidthMin + float32(w.rng.RangeF(0, float64(VehWidthMax-VehWidthMin))),
	}
	v.Plan.SetTurnBitsRandom(uint32(w.rng.NextU64()))
	node := v.Plan.Respawn(w.VehGraph, VehSpeedRespawn, indexSpawn)
	v.X, v.Y = float64(node.X), float64(node.Y)
	v.Speed = VehSpeedRespawn
	w.Hash.InsertOrMove(v.Entity, v.X, v.Y)
	w.Vehicles = append(w.Vehicles, v)
	return v
}

// SpawnPedestrian adds one ambient pedestrian at a pedestrian-graph
// spawn node.
func (w *World) SpawnPedestrian(indexSpawn int) *PedestrianAgent {
	p := &PedestrianAgent{
		Speed: PedSpeedMin + w.rng.RangeF(0, PedSpeedMax-PedSpeedMin),
	}
	p.Plan.SetRandomSeed(uint32(w.rng.NextU64()))
	node := p.Plan.Respawn(w.PedGraph, indexSpawn)
	p.X, p.Y = float64(node.X), float64(node.Y)
	p.Entity = worldgrid.NewEntity(worldgrid.KindPedestrian)
	w.Hash.InsertOrMove(p.Entity, p.X, p.Y)
	w.Pedestrians = append(w.Pedestrians, p)
	return p
}

// Nearest returns the distance from (x, y) to the closest other entity
// within radius, excluding exclude itself. ok is false if nothing falls
// within radius.
func (w *World) Nearest(x, y, radius float64, exclude *worldgrid.Entity) (dist float64, ok bool) {
	best := math.Inf(1)
	it := w.Hash.QueryRadius(x, y, radius)
	for e := it.Next(); e != nil; e = it.Next() {
		if e == exclude {
			continue
		}
		d := math.Hypot(e.X-x, e.Y-y)
		if d <= radius && d < best {
			best = d
		}
	}
	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

// nodeDirection returns the unit direction from node `from` to node `to`
// in the vehicle graph, or (1,0) if either index is the sentinel.
func nodeDirection(g *navveh.Graph, from, to uint32) (float32, float32) {
	if g == nil || from == 0 || to == 0 {
		return 1, 0
	}
	a, b := &g.Nodes[from], &g.Nodes[to]
	dx, dy := b.X-a.X, b.Y-a.Y
	d := float32(math.Hypot(float64(dx), float64(dy)))
	if d < 1e-6 {
		return 1, 0
	}
	return dx / d, dy / d
}
