// Package routing implements A* route planning over the lane graph and
// per-vehicle route tracking.
package routing

import (
	"github.com/fib-lab/urbansim-core/ids"
	"github.com/fib-lab/urbansim-core/network"
)

type goalKind int

const (
	goalLaneSingle goalKind = iota
	goalLaneSet
	goalNodeReach
)

// Goal is a tagged union over the three ways a route can be satisfied.
type Goal struct {
	kind       goalKind
	laneSingle ids.LaneId
	laneSet    map[ids.LaneId]struct{}
	node       ids.NodeId
}

func GoalToLane(lane ids.LaneId) Goal {
	return Goal{kind: goalLaneSingle, laneSingle: lane}
}

func GoalToLaneSet(lanes map[ids.LaneId]struct{}) Goal {
	return Goal{kind: goalLaneSet, laneSet: lanes}
}

func GoalToNode(node ids.NodeId) Goal {
	return Goal{kind: goalNodeReach, node: node}
}

// IsSatisfied reports whether atLane satisfies the goal.
func (g Goal) IsSatisfied(atLane ids.LaneId, net *network.RoadNetwork) bool {
	switch g.kind {
	case goalLaneSingle:
		return atLane == g.laneSingle
	case goalLaneSet:
		_, ok := g.laneSet[atLane]
		return ok
	case goalNodeReach:
		lane, ok := net.GetLane(atLane)
		if !ok {
			return false
		}
		return lane.EndNode == g.node
	default:
		return false
	}
}

// targetLanes returns the lane ids that would satisfy the goal directly,
// for the heuristic; for NodeReach these are the lanes ending at the
// target node.
func (g Goal) targetLanes(net *network.RoadNetwork) []ids.LaneId {
	switch g.kind {
	case goalLaneSingle:
		return []ids.LaneId{g.laneSingle}
	case goalLaneSet:
		out := make([]ids.LaneId, 0, len(g.laneSet))
		for l := range g.laneSet {
			out = append(out, l)
		}
		return out
	case goalNodeReach:
		out := make([]ids.LaneId, 0)
		for _, l := range net.ExportLanes() {
			lane, ok := net.GetLane(l.ID)
			if ok && lane.EndNode == g.node {
				out = append(out, l.ID)
			}
		}
		return out
	default:
		return nil
	}
}
