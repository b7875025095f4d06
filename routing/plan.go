package routing

import "github.com/fib-lab/urbansim-core/ids"

// RouteStep is one lane of a route plan. When the lane is a connector,
// ConnectorFrom/ConnectorTo name the lanes it joins; otherwise they are nil.
type RouteStep struct {
	Lane          ids.LaneId
	ConnectorFrom *ids.LaneId
	ConnectorTo   *ids.LaneId
}

// RoutePlan is an ordered sequence of steps with a cursor into it.
type RoutePlan struct {
	Steps      []RouteStep
	StartIndex int
}

func (p *RoutePlan) Valid() bool { return len(p.Steps) > 0 }

func (p *RoutePlan) CurrentLane() ids.LaneId { return p.Steps[p.StartIndex].Lane }

func (p *RoutePlan) LastLane() ids.LaneId { return p.Steps[len(p.Steps)-1].Lane }

// NextConnector returns the first lane at or after StartIndex whose
// ConnectorFrom is set.
func (p *RoutePlan) NextConnector() (ids.LaneId, bool) {
	for i := p.StartIndex; i < len(p.Steps); i++ {
		if p.Steps[i].ConnectorFrom != nil {
			return p.Steps[i].Lane, true
		}
	}
	return 0, false
}
