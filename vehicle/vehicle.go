// Package vehicle implements the vehicle driver model: IDM longitudinal
// control, traffic-light perception with reaction delay, kinematic
// integration, route advancement, the cooperative lane-change FSM, and
// the inter-vehicle yield protocol.
package vehicle

import (
	"math"

	"github.com/fib-lab/urbansim-core/ids"
	"github.com/fib-lab/urbansim-core/network"
	"github.com/fib-lab/urbansim-core/randengine"
	"github.com/fib-lab/urbansim-core/routing"
	"github.com/fib-lab/urbansim-core/signal"
	"github.com/fib-lab/urbansim-core/vecmath"
	"github.com/fib-lab/urbansim-core/world"
)

// Mode is the vehicle's current behavioral state, derived each tick from
// its speed and acceleration.
type Mode int

const (
	Driving Mode = iota
	Braking
	Stopped
	LaneChanging
)

// Params bundles the vehicle's physical and behavioral constants
// (originally split between the reference's VehicleParams and
// DriverProfile structs; merged here since nothing in this module
// varies them independently).
type Params struct {
	MaxAccel    float64
	ComfyDecel  float64
	DesiredSpeed float64
	TimeHeadway float64
	MinGap      float64
	ViewDistance float64
	FovRad      float64
	Width       float64
	Length      float64

	ReactionMean        float64
	ReactionJitter      float64
	Politeness          float64
	MissProb            float64
	LaneChangeDuration  float64
}

// DefaultParams mirrors the reference implementation's struct defaults.
func DefaultParams() Params {
	return Params{
		MaxAccel:           1.5,
		ComfyDecel:         1.2,
		DesiredSpeed:       14.0,
		TimeHeadway:        1.5,
		MinGap:             3.0,
		ViewDistance:       80.0,
		FovRad:             0.7,
		Width:              2.0,
		Length:             4.5,
		ReactionMean:       0.6,
		ReactionJitter:     0.3,
		Politeness:         0.5,
		MissProb:           0.05,
		LaneChangeDuration: 2.0,
	}
}

const maxPlanningTime = 5.0

// Vehicle is a single simulated vehicle: position along its current
// lane, kinematic state, route progress, and lane-change/yield state.
type Vehicle struct {
	id     ids.VehicleId
	params Params
	rng    *randengine.Engine

	lane ids.LaneId
	s, d float64
	v, a float64
	mode Mode

	perceivedSignal      *signal.CarSignal
	nextSignalUpdateTime float64
	timeStopped          float64

	route *routing.RouteTracker

	lcState           lcState
	lcRequest         *laneChangeRequest
	planningStartTime float64
	lateralProgress   float64
	timeSinceSpawn    float64

	yieldingTo       map[ids.VehicleId]struct{}
	receivedRequests map[ids.VehicleId]float64
	yieldBrake       float64
}

// New constructs a vehicle on lane at arc length s0 and speed v0, with
// the given route tracker (already planned) and a seeded RNG (spec.md
// §5: "every vehicle owns a seeded generator derived from its id").
func New(id ids.VehicleId, params Params, lane ids.LaneId, s0, v0 float64, route *routing.RouteTracker, seed uint64) *Vehicle {
	return &Vehicle{
		id:               id,
		params:           params,
		rng:              randengine.New(seed),
		lane:             lane,
		s:                s0,
		v:                v0,
		route:            route,
		yieldingTo:       make(map[ids.VehicleId]struct{}),
		receivedRequests: make(map[ids.VehicleId]float64),
	}
}

func (v *Vehicle) ID() ids.VehicleId   { return v.id }
func (v *Vehicle) LaneID() ids.LaneId  { return v.lane }
func (v *Vehicle) S() float64          { return v.s }
func (v *Vehicle) D() float64          { return v.d }
func (v *Vehicle) V() float64          { return v.v }
func (v *Vehicle) A() float64          { return v.a }
func (v *Vehicle) Mode() Mode          { return v.mode }
func (v *Vehicle) Route() *routing.RouteTracker { return v.route }

// BoundingRadius is the radius of the circle used for coarse
// visibility/collision checks.
func (v *Vehicle) BoundingRadius() float64 {
	return 0.5 * math.Hypot(v.params.Length, v.params.Width)
}

// Pose returns the vehicle's world-frame pose, sampling its current
// lane's centerline at (s, d). net must be the network the vehicle's
// lane belongs to.
func (v *Vehicle) Pose(net *network.RoadNetwork) vecmath.Pose {
	lane, ok := net.GetLane(v.lane)
	if !ok {
		return vecmath.Pose{}
	}
	return lane.Center.PoseAt(v.s, v.d, 0)
}

// CanSee reports whether other is visible from this vehicle's pose:
// within viewDist (plus both bounding radii) and within the field of
// view (fov >= pi is treated as omnidirectional).
func CanSee(egoPose vecmath.Pose, egoRadius float64, otherPose vecmath.Pose, otherRadius, viewDist, fov float64) bool {
	dx := otherPose.X - egoPose.X
	dy := otherPose.Y - egoPose.Y
	dist := math.Hypot(dx, dy)
	if dist > viewDist+egoRadius+otherRadius {
		return false
	}
	if fov >= math.Pi {
		return true
	}
	angle := math.Atan2(dy, dx)
	d := math.Abs(vecmath.AngleDiff(egoPose.Theta, angle))
	return d <= fov*0.5
}

// DistanceTo returns max(0, center distance - rSelf - rOther).
func DistanceTo(egoPose vecmath.Pose, egoRadius float64, otherPose vecmath.Pose, otherRadius float64) float64 {
	dx := otherPose.X - egoPose.X
	dy := otherPose.Y - egoPose.Y
	dist := math.Hypot(dx, dy)
	gap := dist - egoRadius - otherRadius
	if gap < 0 {
		return 0
	}
	return gap
}

// visibleVehicle is a world vehicle observed during perception, with
// derived distance/relative-speed fields.
type visibleVehicle struct {
	id            ids.VehicleId
	laneID        ids.LaneId
	v             float64
	distance      float64
	relativeSpeed float64
}

// visibleVehiclesInLane is the lane-change perception query: every
// visible vehicle currently in targetLane, nearest first, using an
// omnidirectional view (spec.md §9: "lane-change perception is
// omnidirectional within viewDistance").
func (v *Vehicle) visibleVehiclesInLane(ctx *world.Context, targetLane ids.LaneId) []visibleVehicle {
	egoPose := v.Pose(ctx.Network)
	egoRadius := v.BoundingRadius()
	out := make([]visibleVehicle, 0)
	for _, other := range ctx.Vehicles {
		if other.ID() == v.id {
			continue
		}
		ov, ok := other.(*Vehicle)
		if !ok || ov.lane != targetLane {
			continue
		}
		otherPose := ov.Pose(ctx.Network)
		otherRadius := ov.BoundingRadius()
		if !CanSee(egoPose, egoRadius, otherPose, otherRadius, v.params.ViewDistance, math.Pi) {
			continue
		}
		dist := DistanceTo(egoPose, egoRadius, otherPose, otherRadius)
		out = append(out, visibleVehicle{
			id:            ov.id,
			laneID:        ov.lane,
			v:             ov.v,
			distance:      dist,
			relativeSpeed: v.v - ov.v,
		})
	}
	sortByDistance(out)
	return out
}

func sortByDistance(vs []visibleVehicle) {
	for i := 1; i < len(vs); i++ {
		for j := i; j > 0 && vs[j].distance < vs[j-1].distance; j-- {
			vs[j], vs[j-1] = vs[j-1], vs[j]
		}
	}
}
