package vehicle

import (
	"math"

	"github.com/fib-lab/urbansim-core/signal"
	"github.com/fib-lab/urbansim-core/world"
)

// idmAccel is the Intelligent Driver Model acceleration for a vehicle at
// speed v, gap (clamped away from zero to avoid division blow-up) ahead
// of an obstacle closing at relative speed dv (positive means ego is
// faster than the obstacle).
func idmAccel(p Params, v, gap, dv float64) float64 {
	if gap < 0.1 {
		gap = 0.1
	}
	sStar := p.MinGap + math.Max(0, v*p.TimeHeadway+v*dv/(2*math.Sqrt(p.MaxAccel*p.ComfyDecel)))
	freeRoad := 1 - math.Pow(math.Max(0, v)/p.DesiredSpeed, 4)
	interact := -(sStar / gap) * (sStar / gap)
	return p.MaxAccel * (freeRoad + interact)
}

// perceiveTrafficLight resamples the perceived signal state at most once
// per reaction-delay window; between resamples the last perceived value
// is held, and on a fresh sample there is a small chance (MissProb) of
// misreading the true state, modelling driver inattention.
func (v *Vehicle) perceiveTrafficLight(ctx *world.Context, now float64) signal.CarSignal {
	actual := ctx.CarSignalForLane(v.lane)
	if v.perceivedSignal != nil && now < v.nextSignalUpdateTime {
		return *v.perceivedSignal
	}
	if lane, ok := ctx.Network.GetLane(v.lane); ok {
		lightPos := lane.Center.PoseAt(lane.Length(), 0, 0)
		egoPose := v.Pose(ctx.Network)
		if !CanSee(egoPose, v.BoundingRadius(), lightPos, 0, v.params.ViewDistance, v.params.FovRad) {
			if v.perceivedSignal != nil {
				return *v.perceivedSignal
			}
			return signal.Green
		}
	}
	perceived := actual
	if v.rng.PTrue(v.params.MissProb) {
		if actual == signal.Red || actual == signal.RedYellow || actual == signal.Yellow {
			perceived = signal.Green
		} else {
			perceived = signal.Red
		}
	}
	v.perceivedSignal = &perceived
	delay := v.params.ReactionMean + v.rng.UniformSafe(-v.params.ReactionJitter, v.params.ReactionJitter)
	if delay < 0 {
		delay = 0
	}
	v.nextSignalUpdateTime = now + delay
	return perceived
}

// stopLineConstraint is a virtual obstacle at a lane's stop line: zero
// speed, positioned at the stop line's arc length, active whenever the
// vehicle hasn't yet crossed it and the perceived light isn't green.
func (v *Vehicle) stopLineConstraint(ctx *world.Context, now float64) (gap, dv float64, ok bool) {
	lane, exists := ctx.Network.GetLane(v.lane)
	if !exists {
		return 0, 0, false
	}
	stopS, hasStop := lane.StopLineS()
	if !hasStop || v.s >= stopS {
		return 0, 0, false
	}
	perceived := v.perceiveTrafficLight(ctx, now)
	if perceived == signal.Green || perceived == signal.Off {
		return 0, 0, false
	}
	return stopS - v.s, v.v, true
}

// computeLongitudinal returns the acceleration to apply this tick: the
// minimum (most restrictive) of free-road cruising, car-following
// against the nearest leader (in this lane, or across a lane-change
// merge target while executing), the stop-line constraint, and the
// maintenance braking owed to any active yield obligations.
func (v *Vehicle) computeLongitudinal(ctx *world.Context, now float64) float64 {
	accel := idmAccel(v.params, v.v, 1e6, 0)

	if leader, gap, ok := ctx.FindLeaderInLane(v.lane, v.s); ok {
		lv, isVeh := leader.(interface{ V() float64 })
		leaderV := 0.0
		if isVeh {
			leaderV = lv.V()
		}
		a := idmAccel(v.params, v.v, gap, v.v-leaderV)
		if a < accel {
			accel = a
		}
	}

	if gap, dv, ok := v.stopLineConstraint(ctx, now); ok {
		a := idmAccel(v.params, v.v, gap, dv)
		if a < accel {
			accel = a
		}
	}

	if v.lcState == lcExecuting && v.lcRequest != nil {
		if leader, gap, ok := ctx.FindLeaderInLane(v.lcRequest.targetLane, v.s); ok {
			lv, isVeh := leader.(interface{ V() float64 })
			leaderV := 0.0
			if isVeh {
				leaderV = lv.V()
			}
			a := idmAccel(v.params, v.v, gap, v.v-leaderV)
			if a < accel {
				accel = a
			}
		}
	}

	if v.yieldBrake < 0 && v.yieldBrake < accel {
		accel = v.yieldBrake
	}

	if accel < -v.params.MaxAccel*4 {
		accel = -v.params.MaxAccel * 4
	}
	return accel
}

// integrateKinematics applies semi-implicit Euler integration: velocity
// updates first, then position, clamping speed to [0, DesiredSpeed*1.2]
// (a small headroom above desired speed, matching free-flow overshoot
// tolerance in the reference model).
func (v *Vehicle) integrateKinematics(dt float64) {
	v.v += v.a * dt
	if v.v < 0 {
		v.v = 0
	}
	maxV := v.params.DesiredSpeed * 1.2
	if v.v > maxV {
		v.v = maxV
	}
	v.s += v.v * dt
	if v.s < 0 {
		v.s = 0
	}

	switch {
	case v.a < -0.5:
		v.mode = Braking
	case v.v < 0.05:
		v.mode = Stopped
	case v.lcState == lcExecuting:
		v.mode = LaneChanging
	default:
		v.mode = Driving
	}
}

// advanceAlongRoute moves the vehicle to the next route lane whenever its
// arc length overruns the current lane, looping to absorb multiple short
// lanes crossed in a single tick. Returns false if the route has no
// further lane to advance into (the vehicle has reached the end of its
// plan and should be collected).
func (v *Vehicle) advanceAlongRoute(ctx *world.Context) bool {
	for {
		lane, ok := ctx.Network.GetLane(v.lane)
		if !ok {
			return false
		}
		if v.s <= lane.Length() {
			return true
		}
		plan := v.route.Plan()
		curIdx := plan.StartIndex
		for i, step := range plan.Steps {
			if step.Lane == v.lane {
				curIdx = i
				break
			}
		}
		nextIdx := curIdx + 1
		if nextIdx >= len(plan.Steps) {
			return false
		}
		overflow := v.s - lane.Length()
		nextLane := plan.Steps[nextIdx].Lane
		v.s = overflow
		v.lane = nextLane
		plan.StartIndex = nextIdx
		v.route.AdvanceIfEntered(nextLane)
	}
}
