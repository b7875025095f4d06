// Package signal implements cyclic traffic-light phase programs and the
// queue-difference adaptive retuning mode.
package signal

import (
	"github.com/samber/lo"

	"github.com/fib-lab/urbansim-core/ids"
)

// CarSignal is the state set visible to vehicles. Off is treated as
// Green by downstream lookups (world.CarSignalForLane).
type CarSignal int

const (
	Red CarSignal = iota
	RedYellow
	Green
	Yellow
	Off
)

type PedSignal int

const (
	DontWalk PedSignal = iota
	Walk
	FlashingDontWalk
	PedOff
)

type SignalPhase struct {
	Duration float64
	State    CarSignal
}

type PedPhase struct {
	Duration float64
	State    PedSignal
}

// greenPhaseIndex is the fixed program slot the adaptive retune rewrites.
const greenPhaseIndex = 2

// TrafficLightGroup is a cyclic program over car signal phases, bound to
// a set of controlled lanes for adaptive queue estimation.
type TrafficLightGroup struct {
	ID                ids.SignalGroupId
	Name              string
	ControlledLaneIDs []ids.LaneId

	program  []SignalPhase
	phaseIdx int
	tInPhase float64
	current  CarSignal
}

// SetProgram installs phases and resets to the first phase. An empty
// program forces Red on Update (not here — here it reports Off until
// the first Update call, mirroring the reference's "Off until first
// tick" nuance is not needed since Update always runs before state is
// observed by the harness's per-tick contract).
func (g *TrafficLightGroup) SetProgram(phases []SignalPhase) {
	g.program = phases
	g.phaseIdx = 0
	g.tInPhase = 0
	if len(phases) == 0 {
		g.current = Off
		return
	}
	g.current = phases[0].State
}

func (g *TrafficLightGroup) Program() []SignalPhase { return g.program }

// Update advances the in-phase timer by dt and, while it meets or
// exceeds the current phase's duration, resets the timer and advances
// to the next phase modulo program length. An empty program forces Red.
func (g *TrafficLightGroup) Update(dt float64) {
	if len(g.program) == 0 {
		g.current = Red
		return
	}
	g.tInPhase += dt
	for g.tInPhase >= g.program[g.phaseIdx].Duration {
		g.tInPhase = 0
		g.phaseIdx = (g.phaseIdx + 1) % len(g.program)
		g.current = g.program[g.phaseIdx].State
	}
}

func (g *TrafficLightGroup) State() CarSignal    { return g.current }
func (g *TrafficLightGroup) TimeInPhase() float64 { return g.tInPhase }
func (g *TrafficLightGroup) PhaseIndex() int      { return g.phaseIdx }

// PedestrianLight is a cyclic program over pedestrian phases. An empty
// program yields no state update (it is not forced to any particular
// state, unlike TrafficLightGroup).
type PedestrianLight struct {
	ID   ids.SignalGroupId
	Name string

	program  []PedPhase
	phaseIdx int
	tInPhase float64
	current  PedSignal
}

func (p *PedestrianLight) SetProgram(phases []PedPhase) {
	p.program = phases
	p.phaseIdx = 0
	p.tInPhase = 0
	if len(phases) == 0 {
		p.current = PedOff
		return
	}
	p.current = phases[0].State
}

func (p *PedestrianLight) Update(dt float64) {
	if len(p.program) == 0 {
		return
	}
	p.tInPhase += dt
	for p.tInPhase >= p.program[p.phaseIdx].Duration {
		p.tInPhase = 0
		p.phaseIdx = (p.phaseIdx + 1) % len(p.program)
		p.current = p.program[p.phaseIdx].State
	}
}

func (p *PedestrianLight) State() PedSignal { return p.current }

// QueueEstimator reports whether lane has a leader reachable from s=0,
// used by the adaptive retune to estimate queue length without the
// signal package depending on the vehicle/world packages.
type QueueEstimator func(lane ids.LaneId) bool

// SignalController owns all car groups and pedestrian lights and runs
// the per-tick program update plus the optional adaptive retune.
type SignalController struct {
	carGroups map[ids.SignalGroupId]*TrafficLightGroup
	pedLights map[ids.SignalGroupId]*PedestrianLight
	adaptive  bool
}

func NewSignalController() *SignalController {
	return &SignalController{
		carGroups: make(map[ids.SignalGroupId]*TrafficLightGroup),
		pedLights: make(map[ids.SignalGroupId]*PedestrianLight),
	}
}

func (c *SignalController) AddCarGroup(g *TrafficLightGroup) { c.carGroups[g.ID] = g }
func (c *SignalController) AddPedLight(p *PedestrianLight)   { c.pedLights[p.ID] = p }

func (c *SignalController) CarGroup(id ids.SignalGroupId) (*TrafficLightGroup, bool) {
	g, ok := c.carGroups[id]
	return g, ok
}

func (c *SignalController) PedLight(id ids.SignalGroupId) (*PedestrianLight, bool) {
	p, ok := c.pedLights[id]
	return p, ok
}

func (c *SignalController) SetAdaptive(on bool) { c.adaptive = on }
func (c *SignalController) Adaptive() bool      { return c.adaptive }

// Update applies the adaptive retune (if enabled) and then steps every
// program by dt. Adaptive mode only ever touches groups 1 and 2, per
// spec.md §4.4.
func (c *SignalController) Update(dt float64, hasQueue QueueEstimator) {
	if c.adaptive {
		c.applyAdaptiveLogic(hasQueue)
	}
	for _, g := range c.carGroups {
		g.Update(dt)
	}
	for _, p := range c.pedLights {
		p.Update(dt)
	}
}

func (c *SignalController) applyAdaptiveLogic(hasQueue QueueEstimator) {
	g1, ok1 := c.carGroups[1]
	g2, ok2 := c.carGroups[2]
	if !ok1 || !ok2 {
		return
	}
	q1 := estimateQueueLength(g1, hasQueue)
	q2 := estimateQueueLength(g2, hasQueue)
	adaptPhaseDuration(g1, q1, q2)
	adaptPhaseDuration(g2, q2, q1)
}

func estimateQueueLength(g *TrafficLightGroup, hasQueue QueueEstimator) float64 {
	count := 0.0
	for _, lane := range g.ControlledLaneIDs {
		if hasQueue(lane) {
			count++
		}
	}
	return count
}

// adaptPhaseDuration rewrites the group's fixed green phase (index 2) to
// clamp(20 + 2*(myQueue-otherQueue), 10, 40) and resets to phase 0.
func adaptPhaseDuration(g *TrafficLightGroup, myQueue, otherQueue float64) {
	if len(g.program) <= greenPhaseIndex {
		return
	}
	prog := append([]SignalPhase{}, g.program...)
	delta := (myQueue - otherQueue) * 2
	prog[greenPhaseIndex].Duration = lo.Clamp(20+delta, 10.0, 40.0)
	g.SetProgram(prog)
}
