package navveh

// Clock holds the two process-wide counters every vehicle plan shares
// within one simulation run: the per-frame tick epoch and the
// per-traversal visited epoch. It is owned by the orchestrator and
// threaded explicitly into every planner call, never a package global.
type Clock struct {
	Tick    uint32
	Visited uint32
}

// Advance bumps the tick epoch once per simulation frame.
func (c *Clock) Advance() {
	c.Tick++
}

// PlanNode is one reservation slot: which plan currently holds this
// node/way, at what tick, and at what claimed distance/time.
type PlanNode struct {
	Plan *Plan
	Tick uint32
	Dist float32
	Time float32
}

// visitedSlot additionally tracks halo-walk visitation; kept in a
// parallel array indexed the same as Reservations so the hot
// same-way/cross-way comparison in Planify stays branch-free.
type visitedSlot struct {
	Visited uint32
}

// Reservations is the mutable per-node occupancy table a VehicleGraph
// needs at runtime: two reservation slots per node (one per incoming
// way) plus one visited marker per node, sized to one Graph.
type Reservations struct {
	nodes   [][2]PlanNode
	visited []visitedSlot
}

// NewReservations allocates a reservation table sized for a graph with
// numNodes nodes.
func NewReservations(numNodes int) *Reservations {
	return &Reservations{
		nodes:   make([][2]PlanNode, numNodes),
		visited: make([]visitedSlot, numNodes),
	}
}

// Plan is one vehicle's position and intent within a Graph: which edge
// it currently occupies, its weak PRNG state for route branching, and
// its current speed limit as constrained by signs encountered so far.
type Plan struct {
	Graph         *Graph
	Bits          uint32
	Prev, Curr    uint32
	SpeedLimitKmh uint8
}

// SetTurnBitsRandom seeds the plan's turn-branching PRNG from seed.
func (p *Plan) SetTurnBitsRandom(seed uint32) {
	p.Bits = seed*3941169319 ^ 2902958803
}

// turnDirection reads one bit of the current turn-bits state without
// advancing it; index selects which bit (successive RouteAny nodes
// within one Planify call consume successive bits).
func (p *Plan) turnDirection(index uint) int {
	return int((p.Bits >> index) & 1)
}

// Turn advances the turn-bits PRNG by one step and returns the bit that
// was consumed (0 or 1), selecting straight-vs-alternate at an
// intersection with RouteAny.
func (p *Plan) Turn() int {
	turn := int(p.Bits & 1)
	r := p.Bits*3941169319 ^ 2902958803
	p.Bits = (p.Bits >> 1) | (r & 0x80000000)
	return turn
}

// Respawn places the plan at a spawn node, chosen by indexSpawn modulo
// the graph's spawn count; a negative indexSpawn instead uses the
// plan's own turn-bits state as the index, so a freshly seeded plan can
// self-select its spawn point. speed is the vehicle's nominal respawn
// speed in m/s, converted and clamped into an 8-bit km/h speed limit.
func (p *Plan) Respawn(graph *Graph, speed float32, indexSpawn int) *Node {
	var index uint32
	if indexSpawn < 0 {
		index = p.Bits
	} else {
		index = uint32(indexSpawn)
	}
	p.Graph = graph
	p.Prev = 1 + index%graph.NumSpawns
	p.Curr = graph.Nodes[p.Prev].Next[0]

	if speed > 70.0 {
		p.SpeedLimitKmh = 255
	} else {
		p.SpeedLimitKmh = uint8(speed * 3.6)
	}
	return &graph.Nodes[p.Prev]
}
