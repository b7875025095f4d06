package routing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fib-lab/urbansim-core/network"
	"github.com/fib-lab/urbansim-core/routing"
	"github.com/fib-lab/urbansim-core/vecmath"
)

func straightTwoLaneNetwork() (*network.RoadNetwork, []*network.Lane, []*network.Lane) {
	n := network.NewRoadNetwork()
	_, _, forward, backward := n.AddStraightRoad(
		vecmath.Vec2{X: 0, Y: 0}, vecmath.Vec2{X: 50, Y: 0}, 2, 3.5, 20)
	return n, forward, backward
}

func TestPlanToSameLaneIsTrivial(t *testing.T) {
	n, forward, _ := straightTwoLaneNetwork()
	pf := routing.NewPathfinder(n)
	plan := pf.Plan(forward[0].ID, routing.GoalToLane(forward[0].ID))
	require.True(t, plan.Valid())
	assert.Len(t, plan.Steps, 1)
}

func TestPlanAcrossLaneChangeUsesNeighbor(t *testing.T) {
	n, forward, _ := straightTwoLaneNetwork()
	pf := routing.NewPathfinder(n)
	plan := pf.Plan(forward[1].ID, routing.GoalToLane(forward[0].ID))
	require.True(t, plan.Valid())
	assert.Equal(t, forward[1].ID, plan.Steps[0].Lane)
	assert.Equal(t, forward[0].ID, plan.Steps[len(plan.Steps)-1].Lane)
}

func TestPlanViaConnectorAnnotatesConnectorTransitions(t *testing.T) {
	n := network.NewRoadNetwork()
	_, _, f1, _ := n.AddStraightRoad(vecmath.Vec2{X: 0, Y: 0}, vecmath.Vec2{X: 10, Y: 0}, 1, 3.5, 20)
	_, _, f2, _ := n.AddStraightRoad(vecmath.Vec2{X: 20, Y: 0}, vecmath.Vec2{X: 30, Y: 0}, 1, 3.5, 20)
	conn := n.AddConnector(f1[0].ID, f2[0].ID, 2, 2, 10)

	pf := routing.NewPathfinder(n)
	plan := pf.Plan(f1[0].ID, routing.GoalToLane(f2[0].ID))
	require.True(t, plan.Valid())

	found := false
	for _, step := range plan.Steps {
		if step.Lane == conn.ID {
			found = true
			from := step.ConnectorFrom
			require.NotNil(t, from)
			assert.Equal(t, f1[0].ID, *from)
		}
	}
	assert.True(t, found, "connector lane must appear in the plan")
}

func TestPlanUnreachableGoalIsInvalid(t *testing.T) {
	n, forward, _ := straightTwoLaneNetwork()
	pf := routing.NewPathfinder(n)
	plan := pf.Plan(forward[0].ID, routing.GoalToLane(9999))
	assert.False(t, plan.Valid())
}

func TestRouteTrackerAdvancesOnMatchingLane(t *testing.T) {
	n, forward, _ := straightTwoLaneNetwork()
	pf := routing.NewPathfinder(n)
	tracker := routing.NewRouteTracker(n)
	ok := tracker.SetGoalAndPlan(forward[1].ID, routing.GoalToLane(forward[0].ID), pf)
	require.True(t, ok)

	tracker.AdvanceIfEntered(forward[1].ID)
	assert.Equal(t, forward[0].ID, tracker.Plan().CurrentLane())

	tracker.AdvanceIfEntered(forward[0].ID)
	assert.Equal(t, forward[0].ID, tracker.Plan().CurrentLane())
}
