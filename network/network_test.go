package network_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fib-lab/urbansim-core/network"
	"github.com/fib-lab/urbansim-core/vecmath"
)

func TestAddStraightRoadInterleavesLaneIDs(t *testing.T) {
	n := network.NewRoadNetwork()
	_, _, forward, backward := n.AddStraightRoad(
		vecmath.Vec2{X: 0, Y: 0}, vecmath.Vec2{X: 100, Y: 0}, 2, 3.5, 50)

	// forward[0], backward[0], forward[1], backward[1]: ids 1..4.
	assert.Equal(t, forward[0].ID, forward[0].ID)
	ids := []int{int(forward[0].ID), int(backward[0].ID), int(forward[1].ID), int(backward[1].ID)}
	assert.Equal(t, []int{1, 2, 3, 4}, ids)
}

func TestAddStraightRoadWiresNeighborsWithinDirection(t *testing.T) {
	n := network.NewRoadNetwork()
	_, _, forward, _ := n.AddStraightRoad(
		vecmath.Vec2{X: 0, Y: 0}, vecmath.Vec2{X: 100, Y: 0}, 2, 3.5, 50)

	left, ok := forward[0].Left()
	require.True(t, ok)
	assert.Equal(t, forward[1].ID, left)

	_, ok = forward[1].Left()
	assert.False(t, ok)

	right, ok := forward[1].Right()
	require.True(t, ok)
	assert.Equal(t, forward[0].ID, right)
}

func TestAddStraightRoadSetsStopLineBeforeLaneEnd(t *testing.T) {
	n := network.NewRoadNetwork()
	_, _, forward, _ := n.AddStraightRoad(
		vecmath.Vec2{X: 0, Y: 0}, vecmath.Vec2{X: 100, Y: 0}, 1, 3.5, 50)

	s, ok := forward[0].StopLineS()
	require.True(t, ok)
	assert.Less(t, s, forward[0].Length())
}

func TestAddLanePanicsOnMissingNode(t *testing.T) {
	n := network.NewRoadNetwork()
	assert.Panics(t, func() {
		n.AddLane(99, 100, nil, 3.5, 50, false)
	})
}

func TestAddConnectorJoinsLanesAndBindsNext(t *testing.T) {
	n := network.NewRoadNetwork()
	_, _, f1, _ := n.AddStraightRoad(vecmath.Vec2{X: 0, Y: 0}, vecmath.Vec2{X: 10, Y: 0}, 1, 3.5, 50)
	_, _, f2, _ := n.AddStraightRoad(vecmath.Vec2{X: 20, Y: 0}, vecmath.Vec2{X: 30, Y: 0}, 1, 3.5, 50)

	conn := n.AddConnector(f1[0].ID, f2[0].ID, 2, 2, 10)
	assert.True(t, conn.IsConnector)

	from, ok := conn.ConnectorFrom()
	require.True(t, ok)
	assert.Equal(t, f1[0].ID, from)

	next := f1[0].Next()
	require.Len(t, next, 1)
	assert.Equal(t, conn.ID, next[0])
}

func TestNewDefaultNetworkSpawnLaneParity(t *testing.T) {
	n, spawn := network.NewDefaultNetwork()
	require.Len(t, spawn.StartLanes, 6)
	require.Len(t, spawn.EndLanes, 8)

	for _, lane := range spawn.StartLanes {
		assert.Equal(t, 0, int(lane)%2, "start lanes are entry (even) lane ids")
	}
	for _, lane := range spawn.EndLanes {
		assert.Equal(t, 1, int(lane)%2, "end lanes are exit (odd) lane ids")
	}

	lanes := n.LanesForSignalGroup(network.DefaultSignalGroup1)
	assert.Len(t, lanes, 4)
}

func TestExportLanesCoversEveryLane(t *testing.T) {
	n, _ := network.NewDefaultNetwork()
	views := n.ExportLanes()
	assert.NotEmpty(t, views)
}
