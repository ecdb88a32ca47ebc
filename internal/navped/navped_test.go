package navped

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanifyAdvancesToTheNonBacktrackingNeighborAtTwoWayNode(t *testing.T) {
	nodes := make([]Node, 4)
	nodes[1] = Node{X: 0, Y: 0, Count: 2, Neighbors: [4]Neighbor{{Next: 2}, {Next: 3}}}
	nodes[2] = Node{X: -10, Y: 0, Count: 1, Neighbors: [4]Neighbor{{Next: 1}}}
	nodes[3] = Node{X: 10, Y: 0, Count: 1, Neighbors: [4]Neighbor{{Next: 1}}}
	g := &Graph{Nodes: nodes, NumSpawns: 1}

	p := &Plan{Graph: g, Curr: 1, Prev: 2}
	next := p.Planify(0.5, 0.5, 0, 1.0)

	require.NotNil(t, next)
	require.EqualValues(t, 3, p.Curr)
	require.EqualValues(t, 1, p.Prev)
}

func TestPlanifyKeepsTargetWhenOutsideArrivalDistance(t *testing.T) {
	nodes := make([]Node, 3)
	nodes[1] = Node{X: 0, Y: 0, Count: 1, Neighbors: [4]Neighbor{{Next: 2}}}
	nodes[2] = Node{X: 100, Y: 0, Count: 1, Neighbors: [4]Neighbor{{Next: 1}}}
	g := &Graph{Nodes: nodes, NumSpawns: 1}

	p := &Plan{Graph: g, Curr: 1, Prev: 2}
	p.Planify(50, 50, 0, 1.0)

	require.EqualValues(t, 1, p.Curr)
}

func TestAngleBiasFavorsTheNeighborAhead(t *testing.T) {
	nodes := make([]Node, 2)
	// four neighbors at the cardinal quantized angles 0, 64, 128, 192
	nodes[1] = Node{X: 0, Y: 0, Count: 4, Neighbors: [4]Neighbor{
		{Angle: 0, Next: 10},
		{Angle: 64, Next: 11},
		{Angle: 128, Next: 12},
		{Angle: 192, Next: 13},
	}}
	g := &Graph{Nodes: nodes, NumSpawns: 1}

	p := &Plan{Graph: g}
	p.SetRandomSeed(12345)

	// heading 0 radians -> reversed heading byte = 128. Each weight is the
	// wrapped distance from that byte: angle 0 (straight ahead) gets 128,
	// angles 64 and 192 get 64, and angle 128 (straight back) gets 0.
	counts := map[uint32]int{}
	const trials = 20000
	for i := 0; i < trials; i++ {
		next := chooseNext(p, 0, &nodes[1])
		counts[next]++
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	require.Equal(t, trials, total)
	// weight 128 is the maximum possible (the neighbor straight ahead), so
	// it should be chosen more often than the ones at 64/192 (weight 64),
	// and the one at 128 (weight 0) is never chosen.
	require.Zero(t, counts[12])
	require.Greater(t, counts[10], counts[11])
	require.Greater(t, counts[10], counts[13])
}

func TestRePlanifyAdvancesToTheOnlyNeighbor(t *testing.T) {
	nodes := make([]Node, 10)
	nodes[1] = Node{X: 0, Y: 0, Count: 1, Neighbors: [4]Neighbor{{Next: 9}}}
	g := &Graph{Nodes: nodes, NumSpawns: 1}

	p := &Plan{Graph: g, Curr: 1, Prev: 1}
	next := p.RePlanify(math.Pi / 2)
	require.NotNil(t, next)
	require.EqualValues(t, 9, p.Curr)
}

func TestGraphRoundTrip(t *testing.T) {
	nodes := make([]Node, 2)
	nodes[1] = Node{Sign: SignSemaphore, Semaphore: 3, Count: 2,
		Neighbors: [4]Neighbor{{Angle: 10, Next: 5}, {Angle: 200, Next: 6}},
		X: 1, Y: 2, Z: 3}
	g := &Graph{Nodes: nodes, NumSpawns: 1}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, g))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, g.Nodes, decoded.Nodes)
}
