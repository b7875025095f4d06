package signal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fib-lab/urbansim-core/ids"
	"github.com/fib-lab/urbansim-core/signal"
)

func twoPhaseGroup() *signal.TrafficLightGroup {
	g := &signal.TrafficLightGroup{ID: 1, ControlledLaneIDs: []ids.LaneId{1, 2}}
	g.SetProgram([]signal.SignalPhase{
		{Duration: 10, State: signal.Green},
		{Duration: 5, State: signal.Red},
	})
	return g
}

func TestTrafficLightGroupAdvancesOnPhaseBoundary(t *testing.T) {
	g := twoPhaseGroup()
	assert.Equal(t, signal.Green, g.State())
	g.Update(9)
	assert.Equal(t, signal.Green, g.State())
	g.Update(1)
	assert.Equal(t, signal.Red, g.State())
}

func TestTrafficLightGroupWrapsProgram(t *testing.T) {
	g := twoPhaseGroup()
	g.Update(10)
	g.Update(5)
	assert.Equal(t, signal.Green, g.State())
	assert.Equal(t, 0, g.PhaseIndex())
}

func TestTrafficLightGroupEmptyProgramForcesRed(t *testing.T) {
	g := &signal.TrafficLightGroup{ID: 1}
	g.Update(1)
	assert.Equal(t, signal.Red, g.State())
}

func TestTrafficLightGroupZeroDurationPhaseAdvancesSameTick(t *testing.T) {
	g := &signal.TrafficLightGroup{ID: 1}
	g.SetProgram([]signal.SignalPhase{
		{Duration: 0, State: signal.RedYellow},
		{Duration: 10, State: signal.Green},
	})
	g.Update(0.001)
	assert.Equal(t, signal.Green, g.State())
}

func TestAdaptiveRetuneFavorsLongerQueue(t *testing.T) {
	c := signal.NewSignalController()
	g1 := &signal.TrafficLightGroup{ID: 1, ControlledLaneIDs: []ids.LaneId{1, 2}}
	g1.SetProgram([]signal.SignalPhase{
		{Duration: 1, State: signal.Red}, {Duration: 1, State: signal.RedYellow},
		{Duration: 20, State: signal.Green}, {Duration: 1, State: signal.Yellow},
	})
	g2 := &signal.TrafficLightGroup{ID: 2, ControlledLaneIDs: []ids.LaneId{3, 4}}
	g2.SetProgram([]signal.SignalPhase{
		{Duration: 1, State: signal.Red}, {Duration: 1, State: signal.RedYellow},
		{Duration: 20, State: signal.Green}, {Duration: 1, State: signal.Yellow},
	})
	c.AddCarGroup(g1)
	c.AddCarGroup(g2)
	c.SetAdaptive(true)

	// Group 1 has both lanes queued, group 2 has none: group 1's green
	// should extend, group 2's should shrink.
	c.Update(0.01, func(lane ids.LaneId) bool { return lane == 1 || lane == 2 })

	assert.Greater(t, g1.Program()[2].Duration, g2.Program()[2].Duration)
}
