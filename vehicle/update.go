package vehicle

import "github.com/fib-lab/urbansim-core/world"

// Update advances the vehicle by dt: yield-obligation maintenance,
// immobilization check, longitudinal control, kinematic integration,
// route advancement (only while no lane change is in flight), and the
// lane-change FSM. now is the simulation clock's current time, used for
// reaction-delay scheduling and timestamping yield requests.
//
// Route advancement is gated on lcState == None: a vehicle mid-maneuver
// keeps its lane reference fixed to the lane it is sliding out of until
// the maneuver resolves, so the FSM never has to reason about a moving
// source lane.
func (v *Vehicle) Update(dt, now float64, ctx *world.Context) (reachedEnd bool) {
	v.timeSinceSpawn += dt
	v.yieldBrake = v.purgeStaleYields(ctx, now)

	if v.immobilized(ctx) {
		v.v = 0
		v.a = 0
		v.mode = Stopped
	} else {
		v.a = v.computeLongitudinal(ctx, now)
		v.integrateKinematics(dt)
	}

	if v.lcState == lcNone {
		if !v.advanceAlongRoute(ctx) {
			return true
		}
	}

	v.updateLaneChange(ctx, dt, now)
	return false
}

// immobilized reports whether the vehicle must be forced to a dead stop
// this tick rather than run IDM/kinematics: a lane-change request exists
// but hasn't begun sliding yet, or a pending request is approaching a
// stop line with less than 5m left, or the vehicle currently owes a
// yield to another vehicle.
func (v *Vehicle) immobilized(ctx *world.Context) bool {
	if v.lcRequest != nil {
		if v.lcState != lcExecuting && v.lcState != lcAborting {
			return true
		}
		if lane, ok := ctx.Network.GetLane(v.lane); ok {
			if stopS, hasStop := lane.StopLineS(); hasStop {
				remaining := stopS - v.s
				if remaining >= 0 && remaining < 5 {
					return true
				}
			}
		}
	}
	if len(v.yieldingTo) > 0 {
		return true
	}
	return false
}
