package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fib-lab/urbansim-core/ids"
	"github.com/fib-lab/urbansim-core/network"
	"github.com/fib-lab/urbansim-core/signal"
	"github.com/fib-lab/urbansim-core/vecmath"
	"github.com/fib-lab/urbansim-core/world"
)

type fakeVehicle struct {
	id     ids.VehicleId
	lane   ids.LaneId
	s      float64
	radius float64
}

func (f fakeVehicle) ID() ids.VehicleId  { return f.id }
func (f fakeVehicle) LaneID() ids.LaneId { return f.lane }
func (f fakeVehicle) S() float64         { return f.s }
func (f fakeVehicle) BoundingRadius() float64 { return f.radius }

func TestFindLeaderInLaneSmallestPositiveGap(t *testing.T) {
	ctx := &world.Context{
		Vehicles: []world.VehicleView{
			fakeVehicle{id: 1, lane: 5, s: 20, radius: 1},
			fakeVehicle{id: 2, lane: 5, s: 30, radius: 1},
			fakeVehicle{id: 3, lane: 5, s: 5, radius: 1},
		},
	}
	leader, gap, ok := ctx.FindLeaderInLane(5, 10)
	require.True(t, ok)
	assert.Equal(t, ids.VehicleId(1), leader.ID())
	assert.InDelta(t, 9.0, gap, 1e-9)
}

func TestFindLeaderInLaneNoneAhead(t *testing.T) {
	ctx := &world.Context{
		Vehicles: []world.VehicleView{fakeVehicle{id: 1, lane: 5, s: 1, radius: 1}},
	}
	_, _, ok := ctx.FindLeaderInLane(5, 10)
	assert.False(t, ok)
}

func TestCarSignalForLaneDefaultsGreen(t *testing.T) {
	n := network.NewRoadNetwork()
	_, _, forward, _ := n.AddStraightRoad(vecmath.Vec2{X: 0, Y: 0}, vecmath.Vec2{X: 10, Y: 0}, 1, 3.5, 20)
	ctx := &world.Context{Network: n, Signals: signal.NewSignalController()}
	assert.Equal(t, signal.Green, ctx.CarSignalForLane(forward[0].ID))
}

func TestCarSignalForLaneUsesBoundGroupState(t *testing.T) {
	n := network.NewRoadNetwork()
	_, _, forward, _ := n.AddStraightRoad(vecmath.Vec2{X: 0, Y: 0}, vecmath.Vec2{X: 10, Y: 0}, 1, 3.5, 20)
	n.SetSignalGroup(forward[0].ID, 1)

	sc := signal.NewSignalController()
	g := &signal.TrafficLightGroup{ID: 1}
	g.SetProgram([]signal.SignalPhase{{Duration: 10, State: signal.Red}})
	sc.AddCarGroup(g)

	ctx := &world.Context{Network: n, Signals: sc}
	assert.Equal(t, signal.Red, ctx.CarSignalForLane(forward[0].ID))
}

func TestGetVehicleLookup(t *testing.T) {
	ctx := &world.Context{Vehicles: []world.VehicleView{fakeVehicle{id: 7, lane: 1}}}
	v, ok := ctx.GetVehicle(7)
	require.True(t, ok)
	assert.Equal(t, ids.VehicleId(7), v.ID())
	_, ok = ctx.GetVehicle(8)
	assert.False(t, ok)
}
