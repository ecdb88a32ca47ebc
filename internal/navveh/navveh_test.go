package navveh

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSemaphores struct {
	green map[int]bool
}

func (f fakeSemaphores) IsGreen(idx int) bool { return f.green[idx] }

func straightChainGraph() *Graph {
	// index 0 is the reserved sentinel.
	nodes := make([]Node, 4)
	nodes[1] = Node{X: -10, From: [2]Side{{Route: RouteLeft}, {}}, Next: [2]uint32{2, 0}}
	nodes[2] = Node{X: 0, From: [2]Side{{Route: RouteLeft}, {}}, Prev: [2]uint32{1, 0}, Next: [2]uint32{3, 0}}
	nodes[3] = Node{X: 10, From: [2]Side{{Route: RouteNone}, {}}, Prev: [2]uint32{2, 0}}
	return &Graph{Nodes: nodes, NumSpawns: 1}
}

func TestFollowingVehicleLosesDistancePreferenceToLeader(t *testing.T) {
	g := straightChainGraph()
	res := NewReservations(len(g.Nodes))
	clock := &Clock{Tick: 1}
	sem := fakeSemaphores{}

	leader := &Plan{Graph: g, Prev: 1, Curr: 2}
	follower := &Plan{Graph: g, Prev: 1, Curr: 2}

	_, leaderInfo := leader.Planify(res, clock, sem, -2, 0, 4, 10, 4)
	require.Nil(t, leaderInfo.Node)

	_, followerInfo := follower.Planify(res, clock, sem, -9, 0, 4, 10, 4)
	require.NotNil(t, followerInfo.Node)
	require.Same(t, leader, followerInfo.OtherPlan)
	require.True(t, followerInfo.MyWay)
}

func TestCloserDistanceOverwritesReservation(t *testing.T) {
	g := straightChainGraph()
	res := NewReservations(len(g.Nodes))
	clock := &Clock{Tick: 1}
	sem := fakeSemaphores{}

	far := &Plan{Graph: g, Prev: 1, Curr: 2}
	near := &Plan{Graph: g, Prev: 1, Curr: 2}

	far.Planify(res, clock, sem, -9, 0, 4, 10, 4)
	require.Same(t, far, res.nodes[2][0].Plan)

	near.Planify(res, clock, sem, -1, 0, 4, 10, 4)
	require.Same(t, near, res.nodes[2][0].Plan)
}

func crossingGraph() *Graph {
	nodes := make([]Node, 8)
	nodes[1] = Node{X: -40, Y: 0, From: [2]Side{{Route: RouteLeft}, {}}, Next: [2]uint32{2, 0}}
	nodes[2] = Node{X: -10, Y: 0, From: [2]Side{{Sign: SignYield, Route: RouteLeft}, {}}, Prev: [2]uint32{1, 0}, Next: [2]uint32{5, 0}}
	nodes[3] = Node{X: 0, Y: -10, From: [2]Side{{Route: RouteLeft}, {}}, Prev: [2]uint32{7, 0}, Next: [2]uint32{5, 0}}
	nodes[5] = Node{X: 0, Y: 0, From: [2]Side{{Route: RouteLeft}, {Route: RouteLeft}}, Prev: [2]uint32{2, 3}, Next: [2]uint32{6, 0}}
	nodes[6] = Node{X: 10, Y: 0, From: [2]Side{{Route: RouteNone}, {}}, Prev: [2]uint32{5, 0}}
	nodes[7] = Node{X: 0, Y: -40, From: [2]Side{{Route: RouteLeft}, {}}, Next: [2]uint32{3, 0}}
	return &Graph{Nodes: nodes, NumSpawns: 1}
}

func TestYieldSignLosesCrossingToNonYieldingVehicle(t *testing.T) {
	g := crossingGraph()
	res := NewReservations(len(g.Nodes))
	clock := &Clock{Tick: 1}
	sem := fakeSemaphores{}

	withoutYield := &Plan{Graph: g, Prev: 7, Curr: 3}
	withYield := &Plan{Graph: g, Prev: 1, Curr: 2}

	_, bInfo := withoutYield.Planify(res, clock, sem, 0, -30, 4, 10, 6)
	require.Nil(t, bInfo.Node)

	_, aInfo := withYield.Planify(res, clock, sem, -30, 0, 4, 10, 6)
	require.NotNil(t, aInfo.Node)
	require.Same(t, withoutYield, aInfo.OtherPlan)
	require.False(t, aInfo.MyWay)
	require.InDelta(t, float32(30), aInfo.Dist, 0.01)
}

func TestAbsentYieldLetsEarlierArrivalWinCrossing(t *testing.T) {
	g := crossingGraph()
	res := NewReservations(len(g.Nodes))
	clock := &Clock{Tick: 1}
	sem := fakeSemaphores{}
	// strip the yield sign from node 2 for this variant
	g.Nodes[2].From[0].Sign = SignNone

	a := &Plan{Graph: g, Prev: 1, Curr: 2}
	b := &Plan{Graph: g, Prev: 7, Curr: 3}

	_, aInfo := a.Planify(res, clock, sem, -30, 0, 4, 10, 6)
	require.Nil(t, aInfo.Node)

	_, bInfo := b.Planify(res, clock, sem, 0, -30, 4, 10, 6)
	require.NotNil(t, bInfo.Node)
	require.Same(t, a, bInfo.OtherPlan)
}

func semaphoreGraph() *Graph {
	nodes := make([]Node, 4)
	nodes[1] = Node{X: -10, From: [2]Side{{Route: RouteLeft}, {}}, Next: [2]uint32{2, 0}}
	nodes[2] = Node{X: 0, Semaphore: 7, From: [2]Side{{Sign: SignSemaphore, Route: RouteLeft}, {}}, Prev: [2]uint32{1, 0}, Next: [2]uint32{3, 0}}
	nodes[3] = Node{X: 10, From: [2]Side{{Route: RouteNone}, {}}, Prev: [2]uint32{2, 0}}
	return &Graph{Nodes: nodes, NumSpawns: 1}
}

func TestRedSemaphoreBlocksPastItsNode(t *testing.T) {
	g := semaphoreGraph()
	res := NewReservations(len(g.Nodes))
	clock := &Clock{Tick: 1}
	sem := fakeSemaphores{green: map[int]bool{7: false}}

	p := &Plan{Graph: g, Prev: 1, Curr: 2}
	target, info := p.Planify(res, clock, sem, -8, 0, 4, 10, 6)

	require.NotNil(t, info.Node)
	require.Equal(t, uint8(7), info.Semaphore)
	require.NotNil(t, target)
	require.Equal(t, float32(0), target.X) // target stayed at node 2, short of the semaphore node's next
}

func TestRespawnClampsSpeedLimit(t *testing.T) {
	g := straightChainGraph()
	p := &Plan{Bits: 123}

	p.Respawn(g, 80.0, 0)
	require.Equal(t, uint8(255), p.SpeedLimitKmh)

	p.Respawn(g, 5.0, 0)
	require.Equal(t, uint8(18), p.SpeedLimitKmh)
}

func TestTurnAdvancesDeterministically(t *testing.T) {
	p1 := &Plan{}
	p1.SetTurnBitsRandom(99)
	p2 := &Plan{}
	p2.SetTurnBitsRandom(99)

	for i := 0; i < 10; i++ {
		require.Equal(t, p1.Turn(), p2.Turn())
	}
}

func TestGraphRoundTrip(t *testing.T) {
	g := straightChainGraph()
	g.Nodes[2].Semaphore = 42

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, g))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, g.Nodes, decoded.Nodes)
	require.Equal(t, g.NumSpawns, decoded.NumSpawns)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(make([]byte, 32))
	_, err := Decode(&buf)
	require.Error(t, err)
}
