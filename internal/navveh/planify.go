package navveh

import "math"

// SemaphoreSource is the minimal view of a semaphore table the planner
// needs: whether a given signal index is currently green.
type SemaphoreSource interface {
	IsGreen(idx int) bool
}

// Info is Planify's full report: the curvature and speed limit of the
// planned path ahead, plus the nearest conflict found along it, if any
// (Node == nil means none) — either a same-way vehicle the plan lost
// distance preference to, a crossing-way vehicle it lost time preference
// to, or a red semaphore.
type Info struct {
	Node      *Node
	NodeIndex uint32
	OtherPlan *Plan
	Dist      float32
	Time      float32
	MyWay     bool
	Semaphore uint8

	Curvature  float32
	SpeedLimit float32
}

// Planify walks the graph ahead of the plan's current position (x,y),
// looking up to `time` seconds (or `length` meters of lookahead for the
// advance check) down the road at the given speed. It updates the
// plan's own position once it has overpassed its current node, applies
// yield/stop/semaphore/speed signs along the way, and leaves an
// occupancy halo around the vehicle's own position via markOwnNodes.
//
// It returns the furthest node within `length` of the vehicle (or nil
// if the plan has run off the graph) and an Info describing the
// first conflict encountered, if any (info.Node == nil means none).
func (p *Plan) Planify(res *Reservations, clock *Clock, sem SemaphoreSource, x, y, length, speed, time float32) (*Node, Info) {
	var info Info

	speedInv := float32(1.0)
	if speed >= 1.0 {
		speedInv = 1.0 / speed
	}

	graph := p.Graph
	prev := p.Prev
	curr := p.Curr
	var turnCount uint
	target := curr

	currNode := &graph.Nodes[curr]
	prevNode := &graph.Nodes[prev]
	rx := currNode.X - x
	ry := currNode.Y - y
	r := float32(math.Sqrt(float64(rx*rx + ry*ry)))
	t := r * speedInv

	advance := r < length && rx*(currNode.X-prevNode.X)+ry*(currNode.Y-prevNode.Y) < 0.0

	yield := float32(1.0)

	if currNode.From[0].Sign == SignSpeed {
		p.SpeedLimitKmh = currNode.Semaphore
	}

	var preference bool

	for curr != 0 {
		way := 0
		if prev == currNode.Prev[1] {
			way = 1
		}

		slot := &res.nodes[curr][way]
		preference = slot.Plan == p || slot.Tick < clock.Tick || r < slot.Dist
		if preference {
			slot.Plan = p
			slot.Tick = clock.Tick + 1
			slot.Dist = r
			slot.Time = t * yield

			if currNode.Prev[1] != 0 {
				slot = &res.nodes[curr][1-way]
				preference = slot.Plan == p || slot.Tick < clock.Tick || t*yield < slot.Time
			}
		}

		if !preference {
			info.Node = currNode
			info.NodeIndex = curr
			info.OtherPlan = slot.Plan
			info.Dist = r
			info.Time = t
			info.MyWay = slot == &res.nodes[curr][way]
		}

		switch currNode.From[way].Route {
		case RouteNone:
			way = 0
		case RouteLeft:
			way = 0
		case RouteRight:
			way = 1
		case RouteAny:
			way = p.turnDirection(turnCount)
			turnCount++
		}

		switch currNode.From[way].Sign {
		case SignNone, SignSpawn:
			// no effect
		case SignYield, SignStop:
			// a stop is treated identically to a yield: both lose
			// preference by scaling their arrival time.
			yield = 10.0
		case SignSemaphore:
			if preference {
				if !sem.IsGreen(int(currNode.Semaphore)) {
					preference = false
					info.Node = currNode
					info.NodeIndex = curr
					info.Dist = r
					info.Time = t
					info.MyWay = true
					info.Semaphore = currNode.Semaphore
				}
			}
		case SignSpeed:
			if currNode.Semaphore < p.SpeedLimitKmh {
				p.SpeedLimitKmh = currNode.Semaphore
			}
		}

		prev = curr
		curr = currNode.Next[way]

		if r < length {
			target = curr
		}

		if advance {
			advance = false
			p.Prev = prev
			p.Curr = curr
			if turnCount > 0 {
				turnCount = 0
				p.Turn()
			}
		}

		if !preference || t > time {
			break
		}

		currNode = &graph.Nodes[curr]
		prevNode = &graph.Nodes[prev]
		rx = currNode.X - prevNode.X
		ry = currNode.Y - prevNode.Y
		r += float32(math.Sqrt(float64(rx*rx + ry*ry)))
		t = r * speedInv
	}

	markOwnNodes(res, clock, graph, x, y, length, p)

	rx = currNode.X - x
	ry = currNode.Y - y
	info.Curvature = (rx*rx + ry*ry) / (r * r)
	info.Curvature *= info.Curvature
	info.SpeedLimit = float32(p.SpeedLimitKmh) * (1000.0 / 60 / 60)

	var result *Node
	if target != 0 {
		result = &graph.Nodes[target]
	}
	return result, info
}

type haloFrame struct {
	curr    uint32
	forward bool
}

// markOwnNodes stamps an occupancy halo around the vehicle's current
// position (node p.Prev), claiming every reachable node within `length`
// of (x,y) with a tiny reservation distance so that no other plan's
// forward route reservation can displace the vehicle's own footprint.
// It is an iterative flood-fill (stack-based, not recursive) over the
// graph's forward and backward edges.
func markOwnNodes(res *Reservations, clock *Clock, graph *Graph, x, y, length float32, p *Plan) {
	clock.Visited++
	res.visited[0].Visited = clock.Visited

	length2 := length * length
	stack := []haloFrame{{curr: p.Prev, forward: true}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &graph.Nodes[f.curr]
		res.visited[f.curr].Visited = clock.Visited

		rx := node.X - x
		ry := node.Y - y
		rr := rx*rx + ry*ry
		if rr > length2 {
			continue
		}

		var dist float32
		if f.forward {
			dist = rr * 0.001
		} else {
			dist = rr * 0.00001
		}

		slot := &res.nodes[f.curr][0]
		if slot.Plan == p || slot.Tick < clock.Tick || dist < slot.Dist {
			slot.Plan = p
			slot.Tick = clock.Tick + 1
			slot.Dist = dist
			slot.Time = dist
			res.nodes[f.curr][1] = *slot

			if res.visited[node.Next[0]].Visited != clock.Visited {
				stack = append(stack, haloFrame{curr: node.Next[0], forward: f.forward})
			}
			if res.visited[node.Next[1]].Visited != clock.Visited {
				stack = append(stack, haloFrame{curr: node.Next[1], forward: f.forward})
			}
			if res.visited[node.Prev[0]].Visited != clock.Visited {
				stack = append(stack, haloFrame{curr: node.Prev[0], forward: false})
			}
			if res.visited[node.Prev[1]].Visited != clock.Visited {
				stack = append(stack, haloFrame{curr: node.Prev[1], forward: false})
			}
		}
	}

	own := &res.nodes[p.Prev][0]
	own.Plan = p
	own.Tick = clock.Tick + 1
	own.Dist = 0
	own.Time = 0
	res.nodes[p.Prev][1] = *own
}

type nearbyFrame struct {
	curr, prev uint32
	dist       float32
}

// Nearby reports every other plan with an outstanding, unmet forward
// reservation ("exactly on node", Dist == 0) within `dist` meters ahead
// of this plan's current edge, via callback. It is an iterative walk
// over the forward graph (stack-based, not recursive).
func (p *Plan) Nearby(res *Reservations, clock *Clock, dist float32, callback func(other *Plan)) {
	clock.Visited++
	stack := []nearbyFrame{{curr: p.Curr, prev: 0, dist: dist}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &p.Graph.Nodes[f.curr]
		res.visited[f.curr].Visited = clock.Visited

		d := f.dist
		if f.prev != 0 {
			pn := &p.Graph.Nodes[f.prev]
			rx := node.X - pn.X
			ry := node.Y - pn.Y
			d -= float32(math.Sqrt(float64(rx*rx + ry*ry)))
		}

		for i := 0; i < 2; i++ {
			nxt := node.Next[i]
			if nxt == 0 {
				continue
			}
			if res.visited[nxt].Visited != clock.Visited {
				for way := 0; way < 2; way++ {
					slot := &res.nodes[nxt][way]
					if slot.Plan != p && slot.Tick >= clock.Tick {
						if slot.Dist == 0 && slot.Plan != nil {
							callback(slot.Plan)
						}
					}
				}
				if d > 0 {
					stack = append(stack, nearbyFrame{curr: nxt, prev: f.curr, dist: d})
				}
			}
		}
	}
}
