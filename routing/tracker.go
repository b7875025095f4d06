package routing

import (
	"github.com/fib-lab/urbansim-core/ids"
	"github.com/fib-lab/urbansim-core/network"
)

// RouteTracker holds a vehicle's goal and current plan, advancing the
// plan cursor as the vehicle enters new lanes.
type RouteTracker struct {
	net  *network.RoadNetwork
	goal Goal
	plan RoutePlan
}

func NewRouteTracker(net *network.RoadNetwork) *RouteTracker {
	return &RouteTracker{net: net}
}

func (t *RouteTracker) Plan() *RoutePlan { return &t.plan }
func (t *RouteTracker) Goal() Goal       { return t.goal }

// SetGoalAndPlan stores the goal and requests a plan; returns plan
// validity.
func (t *RouteTracker) SetGoalAndPlan(startLane ids.LaneId, goal Goal, pf *Pathfinder) bool {
	t.goal = goal
	t.plan = pf.Plan(startLane, goal)
	return t.plan.Valid()
}

// AdvanceIfEntered bumps StartIndex past any consecutive steps whose
// lane equals the given lane (the vehicle has entered it).
func (t *RouteTracker) AdvanceIfEntered(lane ids.LaneId) {
	for t.plan.StartIndex < len(t.plan.Steps) && t.plan.Steps[t.plan.StartIndex].Lane == lane {
		t.plan.StartIndex++
	}
	if t.plan.StartIndex >= len(t.plan.Steps) {
		t.plan.StartIndex = len(t.plan.Steps) - 1
	}
	if t.plan.StartIndex < 0 {
		t.plan.StartIndex = 0
	}
}

// ReplanFrom re-requests a plan from currentLane with the retained goal.
func (t *RouteTracker) ReplanFrom(currentLane ids.LaneId, pf *Pathfinder) bool {
	t.plan = pf.Plan(currentLane, t.goal)
	return t.plan.Valid()
}
