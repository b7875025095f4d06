package vehicle

import (
	"github.com/fib-lab/urbansim-core/ids"
	"github.com/fib-lab/urbansim-core/world"
)

// lcState is the cooperative lane-change FSM's state.
type lcState int

const (
	lcNone lcState = iota
	lcPlanning
	lcRequesting
	lcExecuting
	lcAborting
)

// laneChangeRequest records an in-progress maneuver's target, the time it
// was opened, whether it is urgent (remaining distance on the current
// lane was already short when the request was raised), and the vehicles
// it has asked to yield.
type laneChangeRequest struct {
	targetLane   ids.LaneId
	requestTime  float64
	urgent       bool
	askedToYield []ids.VehicleId
}

// desiredLaneChange reports whether the current lane diverges from the
// route's next connector approach, and if so which neighbor lane (left
// or right) moves the vehicle toward the lane the route actually needs.
func (v *Vehicle) desiredLaneChange(ctx *world.Context) (ids.LaneId, bool) {
	plan := v.route.Plan()
	if !plan.Valid() {
		return 0, false
	}
	current := plan.CurrentLane()
	if current == v.lane {
		return 0, false
	}
	lane, ok := ctx.Network.GetLane(v.lane)
	if !ok {
		return 0, false
	}
	if left, ok := lane.Left(); ok && left == current {
		return left, true
	}
	if right, ok := lane.Right(); ok && right == current {
		return right, true
	}
	// The needed lane isn't an immediate neighbor (a connector hop is
	// required); nothing a lane change can fix this tick.
	return 0, false
}

// checkIfCanMergeSafely reports whether every visible vehicle in the
// target lane gives enough time-to-intercept to merge ahead of it.
// relativeSpeed <= 0 (ego no faster than the other vehicle, so it is
// diverging or holding distance rather than closing) is always safe;
// otherwise the merge is
// safe only if distance/(relativeSpeed+0.1) exceeds 1.2x the lane-change
// duration (spec.md §9: the +0.1 denominator is the documented
// ambiguity, resolved by treating non-closing pairs as safe).
func (v *Vehicle) checkIfCanMergeSafely(ctx *world.Context, targetLane ids.LaneId) bool {
	for _, other := range v.visibleVehiclesInLane(ctx, targetLane) {
		if other.relativeSpeed <= 0 {
			continue
		}
		timeToIntercept := other.distance / (other.relativeSpeed + 0.1)
		if timeToIntercept <= 1.2*v.params.LaneChangeDuration {
			return false
		}
	}
	return true
}

// receiveYieldRequest registers that requester wants ego to open a gap.
// A requester behind ego, or within 2m of ego's arc length, is ignored
// (there is no meaningful gap for ego to open). Otherwise ego yields with
// probability yieldProb = politeness + 0.3*urgent + 0.2*(v<5); if it
// yields and the gap is already tight, it brakes immediately.
func (v *Vehicle) receiveYieldRequest(requester ids.VehicleId, requesterS float64, urgent bool, now float64) {
	if requesterS < v.s+2 {
		return
	}
	v.receivedRequests[requester] = now

	yieldProb := v.params.Politeness
	if urgent {
		yieldProb += 0.3
	}
	if v.v < 5 {
		yieldProb += 0.2
	}
	if !v.rng.PTrue(yieldProb) {
		return
	}
	v.yieldingTo[requester] = struct{}{}
	gap := requesterS - v.s
	if gap < 3*v.params.MinGap {
		if brake := -v.params.ComfyDecel; brake < v.a {
			v.a = brake
		}
	}
}

// purgeStaleYields evicts yield obligations once the requester has either
// cleared ego entirely (moved past s+10) or merged in close ahead (within
// 3m), and drops receivedRequests older than 10s. For obligations that
// remain, it returns the maintenance braking acceleration to apply this
// tick: -0.7*comfyDecel while the gap is under 2*minGap and ego is
// moving, 0 otherwise.
func (v *Vehicle) purgeStaleYields(ctx *world.Context, now float64) float64 {
	brake := 0.0
	for id := range v.yieldingTo {
		other, ok := ctx.GetVehicle(id)
		if !ok {
			delete(v.yieldingTo, id)
			continue
		}
		ov, isVeh := other.(*Vehicle)
		if !isVeh {
			delete(v.yieldingTo, id)
			continue
		}
		gap := ov.s - v.s
		if gap > 10 || gap < 3 {
			delete(v.yieldingTo, id)
			continue
		}
		if gap < 2*v.params.MinGap && v.v > 0 {
			if b := -0.7 * v.params.ComfyDecel; b < brake {
				brake = b
			}
		}
	}
	for id, t := range v.receivedRequests {
		if now-t > 10 {
			delete(v.receivedRequests, id)
		}
	}
	return brake
}

func (v *Vehicle) isYieldingTo(id ids.VehicleId) bool {
	_, ok := v.yieldingTo[id]
	return ok
}

// updateLaneChange steps the cooperative lane-change FSM by dt.
func (v *Vehicle) updateLaneChange(ctx *world.Context, dt, now float64) {
	switch v.lcState {
	case lcNone:
		if v.timeSinceSpawn < 1.0 {
			return
		}
		target, want := v.desiredLaneChange(ctx)
		if !want {
			return
		}
		lane, ok := ctx.Network.GetLane(v.lane)
		if !ok {
			return
		}
		remaining := lane.Length() - v.s
		if remaining <= 2 || remaining >= 30 {
			return
		}
		v.lcRequest = &laneChangeRequest{
			targetLane:  target,
			requestTime: now,
			urgent:      remaining < 10,
		}
		v.planningStartTime = now
		v.lcState = lcPlanning

	case lcPlanning:
		if v.lcRequest == nil {
			v.lcState = lcNone
			return
		}
		if now-v.planningStartTime > 5 {
			v.lateralProgress = 0
			v.lcState = lcExecuting
			return
		}
		if v.checkIfCanMergeSafely(ctx, v.lcRequest.targetLane) {
			v.lateralProgress = 0
			v.lcState = lcExecuting
			return
		}
		for _, nearby := range v.visibleVehiclesInLane(ctx, v.lcRequest.targetLane) {
			if other, ok := ctx.GetVehicle(nearby.id); ok {
				if ov, isVeh := other.(*Vehicle); isVeh {
					ov.receiveYieldRequest(v.id, v.s, v.lcRequest.urgent, now)
					v.lcRequest.askedToYield = append(v.lcRequest.askedToYield, ov.id)
				}
			}
		}
		v.lcState = lcRequesting

	case lcRequesting:
		if v.lcRequest == nil {
			v.lcState = lcNone
			return
		}
		yielding := 0
		for _, nearby := range v.visibleVehiclesInLane(ctx, v.lcRequest.targetLane) {
			if other, ok := ctx.GetVehicle(nearby.id); ok {
				if ov, isVeh := other.(*Vehicle); isVeh && ov.isYieldingTo(v.id) {
					yielding++
				}
			}
		}
		if yielding > 0 || v.lcRequest.urgent {
			v.lateralProgress = 0
			v.lcState = lcExecuting
			return
		}
		if now-v.lcRequest.requestTime > 8 {
			if v.lcRequest.urgent {
				v.lateralProgress = 0
				v.lcState = lcExecuting
			} else {
				v.lcState = lcAborting
			}
		}

	case lcExecuting:
		if !v.checkIfCanMergeSafely(ctx, v.lcRequest.targetLane) {
			v.lcState = lcAborting
			return
		}
		v.lateralProgress += dt / v.params.LaneChangeDuration
		if v.lateralProgress >= 1 {
			v.completeLaneChange()
			return
		}
		v.d = v.lateralSlideOffset(ctx) * v.lateralProgress

	case lcAborting:
		v.lateralProgress -= dt / v.params.LaneChangeDuration
		if v.lateralProgress <= 0 {
			v.d = 0
			v.releaseYieldRequests()
			v.lcRequest = nil
			v.lcState = lcNone
			return
		}
		v.d = v.lateralSlideOffset(ctx) * v.lateralProgress
	}
}

// lateralSlideOffset is the full lateral displacement (at
// lateralProgress=1) toward the target lane: positive width if the
// target is the left neighbor, negative if right.
func (v *Vehicle) lateralSlideOffset(ctx *world.Context) float64 {
	if v.lcRequest == nil {
		return 0
	}
	lane, ok := ctx.Network.GetLane(v.lane)
	if !ok {
		return 0
	}
	if left, ok := lane.Left(); ok && left == v.lcRequest.targetLane {
		return lane.Width
	}
	return -lane.Width
}

// completeLaneChange commits the maneuver: ego's lane becomes the
// target, lateral offset resets to the new centerline, and the request is
// cleared. Yield obligations held by other vehicles are not cleared here;
// they expire through those vehicles' purgeStaleYields.
func (v *Vehicle) completeLaneChange() {
	v.lane = v.lcRequest.targetLane
	v.d = 0
	v.releaseYieldRequests()
	v.lcRequest = nil
	v.lcState = lcNone
}

func (v *Vehicle) releaseYieldRequests() {
	// Releasing is implicit: yielders drop the obligation themselves in
	// purgeStaleYields once ego is gone from the world, or ego's arc
	// length is more than 10m or less than 3m ahead of theirs.
}
