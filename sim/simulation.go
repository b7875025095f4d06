// Package sim implements the simulation harness: clock advance, signal
// update, per-vehicle update in insertion order, garbage collection of
// vehicles that reached the end of their route, and random-spawn
// bookkeeping for the default network topology.
package sim

import (
	"github.com/fib-lab/urbansim-core/clock"
	"github.com/fib-lab/urbansim-core/ids"
	"github.com/fib-lab/urbansim-core/network"
	"github.com/fib-lab/urbansim-core/randengine"
	"github.com/fib-lab/urbansim-core/routing"
	"github.com/fib-lab/urbansim-core/signal"
	"github.com/fib-lab/urbansim-core/vehicle"
	"github.com/fib-lab/urbansim-core/world"
)

// EventKind distinguishes the two vehicle lifecycle events. Update only
// produces Despawned; spawns are reported through the id returned by
// AddVehicle/AddRandomVehicle.
type EventKind int

const (
	Spawned EventKind = iota
	Despawned
)

// Event is a single lifecycle occurrence from one Update call, returned
// rather than logged directly so the caller (the line protocol in
// cmd/urbansim) decides how to report it.
type Event struct {
	Kind    EventKind
	Vehicle ids.VehicleId
}

// Simulation owns the network, signal controller, clock, pathfinder, and
// the live vehicle set.
type Simulation struct {
	Network    *network.RoadNetwork
	Signals    *signal.SignalController
	Clock      *clock.Clock
	Pathfinder *routing.Pathfinder

	spawnLanes  network.DefaultSpawnLanes
	spawnWeight map[ids.LaneId]float64

	vehicles      []*vehicle.Vehicle
	nextVehicleID ids.VehicleId
	processSeed   uint64
	spawnRNG      *randengine.Engine
}

// New constructs a simulation harness over net, with spawn lanes drawn
// from the default topology and a fixed tick size dt.
func New(net *network.RoadNetwork, spawnLanes network.DefaultSpawnLanes, dt float64, processSeed uint64) *Simulation {
	weight := make(map[ids.LaneId]float64, len(spawnLanes.StartLanes))
	for _, l := range spawnLanes.StartLanes {
		weight[l] = 1
	}
	return &Simulation{
		Network:     net,
		Signals:     signal.NewSignalController(),
		Clock:       clock.New(dt),
		Pathfinder:  routing.NewPathfinder(net),
		spawnLanes:  spawnLanes,
		spawnWeight: weight,
		processSeed: processSeed,
		spawnRNG:    randengine.New(processSeed),
	}
}

// SetSpawnWeight rewrites the spawn weight of a single start lane.
func (s *Simulation) SetSpawnWeight(lane ids.LaneId, w float64) {
	if w < 0 {
		w = 0
	}
	s.spawnWeight[lane] = w
}

// SetSpawnWeightByDirection rewrites the spawn weight of every start
// lane belonging to a named approach (backs the "weight <dir> <value>"
// line-protocol command). Reports false for an unknown direction name.
func (s *Simulation) SetSpawnWeightByDirection(dir string, w float64) bool {
	lanes, ok := s.spawnLanes.StartLanesByDirection[dir]
	if !ok {
		return false
	}
	for _, lane := range lanes {
		s.SetSpawnWeight(lane, w)
	}
	return true
}

// Vehicles returns the live vehicle set, in spawn order.
func (s *Simulation) Vehicles() []*vehicle.Vehicle { return s.vehicles }

func (s *Simulation) context() *world.Context {
	views := make([]world.VehicleView, len(s.vehicles))
	for i, v := range s.vehicles {
		views[i] = v
	}
	return &world.Context{Network: s.Network, Signals: s.Signals, Vehicles: views}
}

// AddVehicle places a new vehicle at (lane, s0, v0) pursuing goal,
// planning a route from lane. Fails if no plan exists.
func (s *Simulation) AddVehicle(lane ids.LaneId, s0, v0 float64, goal routing.Goal) (ids.VehicleId, bool) {
	tracker := routing.NewRouteTracker(s.Network)
	if !tracker.SetGoalAndPlan(lane, goal, s.Pathfinder) {
		return 0, false
	}
	s.nextVehicleID++
	id := s.nextVehicleID
	seed := randengine.VehicleSeed(s.processSeed, int(id))
	v := vehicle.New(id, vehicle.DefaultParams(), lane, s0, v0, tracker, seed)
	s.vehicles = append(s.vehicles, v)
	return id, true
}

// AddRandomVehicle spawns a vehicle on a weighted-random start lane
// toward a uniformly random end lane, skipping the two end lanes that
// would constitute an immediate U-turn from that start lane (k =
// (startLane-2)/4; forbidden = {4k+1, 4k+3}), and skipping start lanes
// already occupied near their entrance (s < 5). Returns ok=false if no
// usable start lane or no valid plan was found.
func (s *Simulation) AddRandomVehicle() (ids.VehicleId, bool) {
	candidates := make([]ids.LaneId, 0, len(s.spawnLanes.StartLanes))
	weights := make([]float64, 0, len(s.spawnLanes.StartLanes))
	for _, lane := range s.spawnLanes.StartLanes {
		if s.laneOccupiedNearEntrance(lane) {
			continue
		}
		w := s.spawnWeight[lane]
		if w <= 0 {
			continue
		}
		candidates = append(candidates, lane)
		weights = append(weights, w)
	}
	if len(candidates) == 0 {
		return 0, false
	}
	pick := s.spawnRNG.DiscreteDistributionSafe(weights)
	if pick < 0 {
		return 0, false
	}
	startLane := candidates[pick]

	k := (int(startLane) - 2) / 4
	forbid1 := ids.LaneId(4*k + 1)
	forbid2 := ids.LaneId(4*k + 3)

	endCandidates := make([]ids.LaneId, 0, len(s.spawnLanes.EndLanes))
	for _, lane := range s.spawnLanes.EndLanes {
		if lane == forbid1 || lane == forbid2 {
			continue
		}
		endCandidates = append(endCandidates, lane)
	}
	if len(endCandidates) == 0 {
		return 0, false
	}
	endLane := endCandidates[s.spawnRNG.IntnSafe(len(endCandidates))]

	return s.AddVehicle(startLane, 0, 0, routing.GoalToLane(endLane))
}

func (s *Simulation) laneOccupiedNearEntrance(lane ids.LaneId) bool {
	for _, v := range s.vehicles {
		if v.LaneID() == lane && v.S() < 5 {
			return true
		}
	}
	return false
}

// Update advances the clock by one tick, steps the signal controller
// (including any adaptive retune), updates every vehicle in insertion
// order, and garbage-collects vehicles that reached the end of their
// route, returning the tick's lifecycle events.
func (s *Simulation) Update() []Event {
	now := s.Clock.Advance()
	dt := s.Clock.DT

	ctx := s.context()
	s.Signals.Update(dt, func(lane ids.LaneId) bool {
		_, _, ok := ctx.FindLeaderInLane(lane, 0)
		return ok
	})

	var events []Event
	live := s.vehicles[:0]
	for _, v := range s.vehicles {
		// ctx holds the live vehicles, so a vehicle observes the
		// post-update state of every vehicle updated before it this tick
		// and the pre-update state of the rest.
		if v.Update(dt, now, ctx) {
			events = append(events, Event{Kind: Despawned, Vehicle: v.ID()})
			continue
		}
		live = append(live, v)
	}
	s.vehicles = live
	return events
}
