package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fib-lab/urbansim-core/ids"
	"github.com/fib-lab/urbansim-core/network"
	"github.com/fib-lab/urbansim-core/routing"
	"github.com/fib-lab/urbansim-core/sim"
	"github.com/fib-lab/urbansim-core/vehicle"
)

func TestAddVehiclePlacesOnLane(t *testing.T) {
	net, spawn := network.NewDefaultNetwork()
	s := sim.New(net, spawn, 0.1, 1)

	id, ok := s.AddVehicle(spawn.StartLanes[0], 0, 0, routing.GoalToLane(spawn.EndLanes[2]))
	require.True(t, ok)
	require.Len(t, s.Vehicles(), 1)
	assert.Equal(t, id, s.Vehicles()[0].ID())
}

func TestAddRandomVehicleAvoidsUTurn(t *testing.T) {
	net, spawn := network.NewDefaultNetwork()
	s := sim.New(net, spawn, 0.1, 7)

	for i := 0; i < 50; i++ {
		id, ok := s.AddRandomVehicle()
		if !ok {
			continue
		}
		v := findVehicle(s, id)
		require.NotNil(t, v)
		plan := v.Route().Plan()
		startLane := plan.Steps[0].Lane
		lastLane := plan.LastLane()

		k := (int(startLane) - 2) / 4
		forbid1 := k*4 + 1
		forbid2 := k*4 + 3
		assert.NotEqual(t, forbid1, int(lastLane))
		assert.NotEqual(t, forbid2, int(lastLane))
	}
}

func TestUpdateAdvancesClockByFixedStep(t *testing.T) {
	net, spawn := network.NewDefaultNetwork()
	s := sim.New(net, spawn, 0.1, 1)

	_, ok := s.AddVehicle(spawn.StartLanes[0], 0, 0, routing.GoalToLane(spawn.StartLanes[0]))
	require.True(t, ok)

	for i := 0; i < 5; i++ {
		s.Update()
	}
	assert.InDelta(t, 0.5, s.Clock.T, 1e-9)
}

func TestUpdateDespawnsVehicleAtRouteEnd(t *testing.T) {
	net, spawn := network.NewDefaultNetwork()
	s := sim.New(net, spawn, 0.1, 1)

	lane := spawn.StartLanes[0]
	l, ok := net.GetLane(lane)
	require.True(t, ok)

	id, ok := s.AddVehicle(lane, l.Length()-1, 20, routing.GoalToLane(lane))
	require.True(t, ok)

	var despawned bool
	for i := 0; i < 20 && !despawned; i++ {
		for _, ev := range s.Update() {
			if ev.Kind == sim.Despawned && ev.Vehicle == id {
				despawned = true
			}
		}
	}
	assert.True(t, despawned, "vehicle placed 1m from the end of its single-step route must despawn")
}

func findVehicle(s *sim.Simulation, id ids.VehicleId) *vehicle.Vehicle {
	for _, v := range s.Vehicles() {
		if v.ID() == id {
			return v
		}
	}
	return nil
}
