package network

import (
	"github.com/fib-lab/urbansim-core/ids"
	"github.com/fib-lab/urbansim-core/vecmath"
)

// DefaultSignalGroup1 and DefaultSignalGroup2 are the two signal-group
// ids wired by NewDefaultNetwork; they are also the only ids the
// adaptive retune algorithm understands (spec.md §4.4: "two configured
// groups G1, G2 (ids 1 and 2)").
const (
	DefaultSignalGroup1 ids.SignalGroupId = 1
	DefaultSignalGroup2 ids.SignalGroupId = 2
)

// DefaultSpawnLanes is returned alongside NewDefaultNetwork so the
// harness can be configured with a fixed set of entry/exit lanes
// without hardcoding ids (spec.md §4.7).
type DefaultSpawnLanes struct {
	StartLanes []ids.LaneId
	EndLanes   []ids.LaneId
	// StartLanesByDirection names each approach's entry lanes, for
	// configuration surfaces that weight spawn rate per direction (the
	// "weight <dir> <value>" line-protocol command).
	StartLanesByDirection map[string][]ids.LaneId
}

// NewDefaultNetwork builds the four-road intersection used by the
// reference scenario and the cmd entrypoint's default configuration:
// four straight two-lane-each-direction roads meeting near (50,50),
// connected through the intersection by a hand-tuned set of Bézier
// connectors, with two signal groups bound to the entry lanes of three
// of the four approaches (the fourth approach is deliberately left
// uncontrolled, matching the original reference scenario).
func NewDefaultNetwork() (*RoadNetwork, DefaultSpawnLanes) {
	n := NewRoadNetwork()

	_, _, northForward, northBackward := n.AddStraightRoad(
		vecmath.Vec2{X: 42.75, Y: 50.00}, vecmath.Vec2{X: 0, Y: 50.00}, 2, 3.5, 50.0)
	_, _, southForward, southBackward := n.AddStraightRoad(
		vecmath.Vec2{X: 50.00, Y: 57.14}, vecmath.Vec2{X: 50.00, Y: 100.00}, 2, 3.5, 50.0)
	_, _, eastForward, eastBackward := n.AddStraightRoad(
		vecmath.Vec2{X: 57.00, Y: 50.00}, vecmath.Vec2{X: 99.82, Y: 50.00}, 2, 3.5, 50.0)
	_, _, westForward, _ := n.AddStraightRoad(
		vecmath.Vec2{X: 50.00, Y: 42.92}, vecmath.Vec2{X: 50.00, Y: 0}, 2, 3.5, 50.0)

	// Intersection connectors: every backward (entry) lane of one
	// approach to the compatible forward (exit) lanes of the others.
	n.AddConnector(northBackward[0].ID, eastForward[1].ID, 6.00, 6.00, 30)
	n.AddConnector(northBackward[0].ID, southForward[0].ID, 5.00, 5.00, 30)
	n.AddConnector(northBackward[0].ID, eastForward[0].ID, 7.00, 7.00, 30)
	n.AddConnector(northBackward[1].ID, eastForward[1].ID, 8.00, 8.00, 30)
	n.AddConnector(northBackward[1].ID, westForward[0].ID, 6.00, 0.10, 30)

	n.AddConnector(eastBackward[0].ID, westForward[1].ID, 6.00, 6.00, 30)
	n.AddConnector(eastBackward[0].ID, westForward[0].ID, 5.00, 5.00, 30)
	n.AddConnector(eastBackward[1].ID, eastForward[1].ID, 0.50, 0.50, 30)
	n.AddConnector(eastBackward[1].ID, southForward[0].ID, 6.00, 0.10, 30)
	n.AddConnector(eastBackward[1].ID, northForward[1].ID, 8.00, 8.00, 30)
	n.AddConnector(eastBackward[0].ID, northForward[0].ID, 7.00, 7.00, 30)

	n.AddConnector(southBackward[0].ID, westForward[1].ID, 6.00, 6.00, 30)
	n.AddConnector(southBackward[0].ID, eastForward[0].ID, 5.00, 5.00, 30)
	n.AddConnector(southBackward[0].ID, westForward[0].ID, 5.00, 5.00, 30)
	n.AddConnector(southBackward[1].ID, northForward[0].ID, 5.00, 1.00, 30)
	n.AddConnector(southBackward[1].ID, northForward[1].ID, 0.50, 0.50, 30)
	n.AddConnector(southBackward[1].ID, eastForward[1].ID, 5.00, 5.00, 30)

	for _, l := range []*Lane{northBackward[0], northBackward[1], southBackward[0], southBackward[1]} {
		n.SetSignalGroup(l.ID, DefaultSignalGroup1)
	}
	for _, l := range []*Lane{eastBackward[0], eastBackward[1]} {
		n.SetSignalGroup(l.ID, DefaultSignalGroup2)
	}

	spawn := DefaultSpawnLanes{
		StartLanes: []ids.LaneId{
			northBackward[0].ID, northBackward[1].ID,
			eastBackward[0].ID, eastBackward[1].ID,
			southBackward[0].ID, southBackward[1].ID,
		},
		EndLanes: []ids.LaneId{
			northForward[0].ID, northForward[1].ID,
			southForward[0].ID, southForward[1].ID,
			eastForward[0].ID, eastForward[1].ID,
			westForward[0].ID, westForward[1].ID,
		},
		StartLanesByDirection: map[string][]ids.LaneId{
			"n": {northBackward[0].ID, northBackward[1].ID},
			"e": {eastBackward[0].ID, eastBackward[1].ID},
			"s": {southBackward[0].ID, southBackward[1].ID},
		},
	}
	return n, spawn
}
