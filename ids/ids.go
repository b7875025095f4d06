// Package ids defines the distinct identifier types shared across the
// core packages, keeping lane/node/vehicle/signal-group ids from being
// mixed up at call sites.
package ids

type NodeId int
type LaneId int
type VehicleId int
type SignalGroupId int
