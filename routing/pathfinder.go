package routing

import (
	"math"

	"github.com/fib-lab/urbansim-core/container"
	"github.com/fib-lab/urbansim-core/ids"
	"github.com/fib-lab/urbansim-core/network"
)

// Pathfinder runs A* over the lane graph: nodes are lane ids, edges are
// {next, left, right}.
type Pathfinder struct {
	net  *network.RoadNetwork
	vmax float64
}

func NewPathfinder(net *network.RoadNetwork) *Pathfinder {
	return &Pathfinder{net: net, vmax: 20}
}

func (pf *Pathfinder) SetMaxSpeedForHeuristic(vmax float64) { pf.vmax = vmax }

func (pf *Pathfinder) neighbors(from ids.LaneId) []ids.LaneId {
	lane, ok := pf.net.GetLane(from)
	if !ok {
		return nil
	}
	out := append([]ids.LaneId{}, lane.Next()...)
	if left, ok := lane.Left(); ok {
		out = append(out, left)
	}
	if right, ok := lane.Right(); ok {
		out = append(out, right)
	}
	return out
}

// edgeCost costs a lane change at width/3 of the predecessor lane, or
// otherwise the successor's traversal time (length/speed), multiplied by
// 1.1 if the successor is a connector.
func (pf *Pathfinder) edgeCost(from, to ids.LaneId) float64 {
	fromLane, _ := pf.net.GetLane(from)
	toLane, _ := pf.net.GetLane(to)

	if left, ok := fromLane.Left(); ok && left == to {
		return fromLane.Width / 3
	}
	if right, ok := fromLane.Right(); ok && right == to {
		return fromLane.Width / 3
	}

	speed := math.Max(1, toLane.SpeedLimit)
	cost := toLane.Length() / speed
	if toLane.IsConnector {
		cost *= 1.1
	}
	return cost
}

func (pf *Pathfinder) heuristic(lane ids.LaneId, goal Goal) float64 {
	l, ok := pf.net.GetLane(lane)
	if !ok {
		return 0
	}
	endNode, _ := pf.net.GetNode(l.EndNode)

	targets := goal.targetLanes(pf.net)
	if len(targets) == 0 {
		return 0
	}

	best := math.MaxFloat64
	for _, t := range targets {
		tl, ok := pf.net.GetLane(t)
		if !ok {
			continue
		}
		tn, ok := pf.net.GetNode(tl.EndNode)
		if !ok {
			continue
		}
		d := math.Hypot(tn.Pos.X-endNode.Pos.X, tn.Pos.Y-endNode.Pos.Y)
		if d < best {
			best = d
		}
	}
	if best == math.MaxFloat64 {
		return 0
	}
	vmax := pf.vmax
	if vmax <= 0 {
		vmax = 20
	}
	return best / vmax
}

type openEntry struct {
	lane  ids.LaneId
	order int
}

type planRecord struct {
	g      float64
	parent ids.LaneId
	hasP   bool
	closed bool
}

// Plan runs A* from startLane to a lane satisfying goal. Ties in f break
// by insertion order (earlier-pushed entries win), matching the std
// priority_queue used by the reference implementation.
func (pf *Pathfinder) Plan(startLane ids.LaneId, goal Goal) RoutePlan {
	g := map[ids.LaneId]*planRecord{startLane: {g: 0}}
	open := container.NewPriorityQueue[openEntry]()
	order := 0
	open.HeapPush(openEntry{lane: startLane, order: order}, pf.heuristic(startLane, goal))
	order++

	for open.Len() > 0 {
		entry, _ := open.HeapPop()
		rec := g[entry.lane]
		if rec == nil || rec.closed {
			continue
		}
		rec.closed = true

		if goal.IsSatisfied(entry.lane, pf.net) {
			return pf.reconstruct(g, entry.lane, startLane)
		}

		for _, next := range pf.neighbors(entry.lane) {
			cost := rec.g + pf.edgeCost(entry.lane, next)
			nr, exists := g[next]
			if !exists || cost < nr.g {
				g[next] = &planRecord{g: cost, parent: entry.lane, hasP: true}
				f := cost + pf.heuristic(next, goal)
				open.HeapPush(openEntry{lane: next, order: order}, f)
				order++
			}
		}
	}
	return RoutePlan{}
}

// reconstruct walks parent pointers from goalLane back to startLane and
// reverses, annotating connector transitions on each step.
func (pf *Pathfinder) reconstruct(g map[ids.LaneId]*planRecord, goalLane, startLane ids.LaneId) RoutePlan {
	var lanes []ids.LaneId
	cur := goalLane
	for {
		lanes = append(lanes, cur)
		if cur == startLane {
			break
		}
		rec := g[cur]
		if rec == nil || !rec.hasP {
			break
		}
		cur = rec.parent
	}
	// lanes is goal->...->start; reverse into start->...->goal.
	steps := make([]RouteStep, len(lanes))
	for i, lid := range lanes {
		steps[len(lanes)-1-i] = RouteStep{Lane: lid}
	}
	for i := range steps {
		lane, ok := pf.net.GetLane(steps[i].Lane)
		if !ok {
			continue
		}
		if from, ok := lane.ConnectorFrom(); ok {
			steps[i].ConnectorFrom = &from
		}
		if to, ok := lane.ConnectorTo(); ok {
			steps[i].ConnectorTo = &to
		}
	}
	return RoutePlan{Steps: steps}
}
