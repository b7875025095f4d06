// Package world implements the read-only view vehicles consult: leader
// search, signal-state lookup, and vehicle lookup. It depends only on
// network/signal/ids so that vehicle can depend on world without a
// cycle.
package world

import (
	"github.com/fib-lab/urbansim-core/ids"
	"github.com/fib-lab/urbansim-core/network"
	"github.com/fib-lab/urbansim-core/signal"
)

// VehicleView is the subset of vehicle state the world context needs to
// answer leader and lookup queries, satisfied by vehicle.Vehicle.
type VehicleView interface {
	ID() ids.VehicleId
	LaneID() ids.LaneId
	S() float64
	BoundingRadius() float64
}

// Context is a read-only borrow of the simulation's network, signal
// controller, and current vehicle list.
type Context struct {
	Network  *network.RoadNetwork
	Signals  *signal.SignalController
	Vehicles []VehicleView
}

// FindLeaderInLane returns the vehicle on laneID with the smallest
// positive gap ahead of myS, or ok=false if none.
func (c *Context) FindLeaderInLane(laneID ids.LaneId, myS float64) (leader VehicleView, gap float64, ok bool) {
	bestGap := 1e18
	for _, v := range c.Vehicles {
		if v.LaneID() != laneID {
			continue
		}
		g := v.S() - myS - v.BoundingRadius()
		if g > 0 && g < bestGap {
			bestGap = g
			leader = v
			ok = true
		}
	}
	if ok {
		gap = bestGap
	}
	return
}

// CarSignalForLane returns Green if the lane has no signal-group
// binding or the group is missing; otherwise the group's current state.
func (c *Context) CarSignalForLane(laneID ids.LaneId) signal.CarSignal {
	lane, ok := c.Network.GetLane(laneID)
	if !ok {
		return signal.Green
	}
	groupID, ok := lane.SignalGroupID()
	if !ok {
		return signal.Green
	}
	g, ok := c.Signals.CarGroup(groupID)
	if !ok {
		return signal.Green
	}
	return g.State()
}

// GetVehicle does a linear lookup by id.
func (c *Context) GetVehicle(id ids.VehicleId) (VehicleView, bool) {
	for _, v := range c.Vehicles {
		if v.ID() == id {
			return v, true
		}
	}
	return nil, false
}
