package navped

import "math"

// Plan is one pedestrian's position within a Graph: its current target
// node, the node it came from (to avoid immediate U-turns), and its
// weak PRNG state for weighted next-node choices.
type Plan struct {
	Graph      *Graph
	Bits       uint32
	Curr, Prev uint32
}

// SetRandomSeed seeds the plan's next-node-choice PRNG from seed.
func (p *Plan) SetRandomSeed(seed uint32) {
	p.Bits = seed*3941169319 ^ 2902958803
}

// nextRandom advances the plan's PRNG by one step and returns the new
// state, used as the weighted-choice roulette value.
func (p *Plan) nextRandom() uint32 {
	p.Bits = (p.Bits>>2)*3941169319 ^ 2902958803
	return p.Bits
}

// Respawn places the plan at a spawn node, chosen by indexSpawn modulo
// the graph's spawn count.
func (p *Plan) Respawn(graph *Graph, indexSpawn int) *Node {
	p.Graph = graph
	p.Curr = 1 + uint32(indexSpawn)%graph.NumSpawns
	p.Prev = p.Curr
	return &graph.Nodes[p.Curr]
}

// chooseNext picks one of node's neighbors, biased toward those whose
// quantized angle lies furthest from the reversed heading ang+π, i.e.
// closest to the pedestrian's heading ang (radians). 1 neighbor is
// forced, 2 avoids backtracking to p.Prev, and 3 or 4 run a weighted
// roulette over |angleDiff| to the reversed heading, wrapped into [0,128].
func chooseNext(p *Plan, ang float64, node *Node) uint32 {
	ang256 := uint8(int32(128+256*ang/(2*math.Pi)) & 0xFF)

	switch node.Count {
	case 1:
		return node.Neighbors[0].Next

	case 2:
		n0, n1 := node.Neighbors[0].Next, node.Neighbors[1].Next
		if n0 == p.Prev {
			return n1
		}
		return n0

	case 3, 4:
		n := int(node.Count)
		probs := make([]int, n)
		total := 0
		for i := 0; i < n; i++ {
			diff := int(ang256) - int(node.Neighbors[i].Angle)
			if diff < 0 {
				diff = -diff
			}
			if diff > 128 {
				diff = 256 - diff
			}
			probs[i] = diff
			total += diff
		}
		if total == 0 {
			return node.Neighbors[0].Next
		}
		r := int(p.nextRandom() % uint32(total))
		for i := 0; i < n; i++ {
			r -= probs[i]
			if r <= 0 {
				return node.Neighbors[i].Next
			}
		}
		return node.Neighbors[n-1].Next

	default:
		return 0
	}
}

// Planify advances the plan toward its curr node; once within distance
// of it, a new target is chosen among curr's neighbors, biased by ang
// (the pedestrian's current facing, radians). Returns nil if the plan
// has no current node.
func (p *Plan) Planify(x, y, ang, distance float64) *Node {
	if p.Curr == 0 {
		return nil
	}
	node := &p.Graph.Nodes[p.Curr]
	rx := float64(node.X) - x
	ry := float64(node.Y) - y
	if rx*rx+ry*ry < distance*distance {
		next := chooseNext(p, ang, node)
		p.Prev = p.Curr
		p.Curr = next
	}
	if p.Curr == 0 {
		return nil
	}
	return &p.Graph.Nodes[p.Curr]
}

// RePlanify immediately picks a new target using ang+π as the reference
// heading, an escape maneuver away from whatever is at ang.
func (p *Plan) RePlanify(ang float64) *Node {
	if p.Curr == 0 {
		return nil
	}
	next := chooseNext(p, ang+math.Pi, &p.Graph.Nodes[p.Curr])
	if next != 0 {
		p.Prev = p.Curr
		p.Curr = next
	}
	return &p.Graph.Nodes[p.Curr]
}
