// Package network implements the directed lane graph: nodes, lanes,
// straight-road and connector construction, and a read-only render
// export view.
package network

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/fib-lab/urbansim-core/geometry"
	"github.com/fib-lab/urbansim-core/ids"
	"github.com/fib-lab/urbansim-core/vecmath"
)

// stopLineSetback is the distance from a lane's end to its stop line,
// matching the original prototype's road_network.cpp constant.
const stopLineSetback = 2.89

// Node is a mint-once point in the road network.
type Node struct {
	ID   ids.NodeId
	Pos  vecmath.Vec2
	Name string
}

// Lane is an immutable directed channel of travel, built once during
// network construction.
type Lane struct {
	ID         ids.LaneId
	StartNode  ids.NodeId
	EndNode    ids.NodeId
	Width      float64
	SpeedLimit float64
	IsConnector bool

	Center *geometry.Polyline

	stopLineS     *float64
	signalGroupID *ids.SignalGroupId
	left          *ids.LaneId
	right         *ids.LaneId
	connectorFrom *ids.LaneId
	connectorTo   *ids.LaneId

	next []ids.LaneId
}

func (l *Lane) Length() float64 { return l.Center.Length() }

func (l *Lane) StopLineS() (float64, bool) {
	if l.stopLineS == nil {
		return 0, false
	}
	return *l.stopLineS, true
}

func (l *Lane) SignalGroupID() (ids.SignalGroupId, bool) {
	if l.signalGroupID == nil {
		return 0, false
	}
	return *l.signalGroupID, true
}

func (l *Lane) Left() (ids.LaneId, bool) {
	if l.left == nil {
		return 0, false
	}
	return *l.left, true
}

func (l *Lane) Right() (ids.LaneId, bool) {
	if l.right == nil {
		return 0, false
	}
	return *l.right, true
}

func (l *Lane) ConnectorFrom() (ids.LaneId, bool) {
	if l.connectorFrom == nil {
		return 0, false
	}
	return *l.connectorFrom, true
}

func (l *Lane) ConnectorTo() (ids.LaneId, bool) {
	if l.connectorTo == nil {
		return 0, false
	}
	return *l.connectorTo, true
}

// Next returns the ordered set of lane ids reachable by continuing
// straight ahead (or through a connector) from this lane.
func (l *Lane) Next() []ids.LaneId { return l.next }

// RoadNetwork owns all nodes and lanes, keyed by monotonically allocated
// ids starting from 1.
type RoadNetwork struct {
	nodes map[ids.NodeId]*Node
	lanes map[ids.LaneId]*Lane

	nextNodeID ids.NodeId
	nextLaneID ids.LaneId
}

func NewRoadNetwork() *RoadNetwork {
	return &RoadNetwork{
		nodes: make(map[ids.NodeId]*Node),
		lanes: make(map[ids.LaneId]*Lane),
	}
}

func (n *RoadNetwork) GetNode(id ids.NodeId) (*Node, bool) {
	nd, ok := n.nodes[id]
	return nd, ok
}

func (n *RoadNetwork) GetLane(id ids.LaneId) (*Lane, bool) {
	l, ok := n.lanes[id]
	return l, ok
}

// AddNode mints a new node at pos.
func (n *RoadNetwork) AddNode(pos vecmath.Vec2, name string) *Node {
	n.nextNodeID++
	nd := &Node{ID: n.nextNodeID, Pos: pos, Name: name}
	n.nodes[nd.ID] = nd
	return nd
}

// AddLane mints a new lane along center, between existing endpoint
// nodes. Both endpoints must already exist; this is a construction-time
// invariant, not a runtime failure mode.
func (n *RoadNetwork) AddLane(start, end ids.NodeId, center *geometry.Polyline, width, speedLimit float64, isConnector bool) *Lane {
	if _, ok := n.nodes[start]; !ok {
		panic(fmt.Sprintf("network: AddLane start node %d does not exist", start))
	}
	if _, ok := n.nodes[end]; !ok {
		panic(fmt.Sprintf("network: AddLane end node %d does not exist", end))
	}
	n.nextLaneID++
	l := &Lane{
		ID:          n.nextLaneID,
		StartNode:   start,
		EndNode:     end,
		Width:       width,
		SpeedLimit:  speedLimit,
		IsConnector: isConnector,
		Center:      center,
	}
	n.lanes[l.ID] = l
	return l
}

// SetNeighbors wires the left/right same-direction siblings of a lane.
func (n *RoadNetwork) SetNeighbors(lane ids.LaneId, left, right *ids.LaneId) {
	l := n.lanes[lane]
	l.left = left
	l.right = right
}

// SetStopLine records the stop-line arc length on a lane.
func (n *RoadNetwork) SetStopLine(lane ids.LaneId, s float64) {
	l := n.lanes[lane]
	v := s
	l.stopLineS = &v
}

// SetSignalGroup binds a lane to a signal group.
func (n *RoadNetwork) SetSignalGroup(lane ids.LaneId, group ids.SignalGroupId) {
	l := n.lanes[lane]
	v := group
	l.signalGroupID = &v
}

// AddNext appends to to lane's outgoing set.
func (n *RoadNetwork) AddNext(lane, to ids.LaneId) {
	l := n.lanes[lane]
	l.next = append(l.next, to)
}

// AddStraightRoad creates nodes at A and B plus lanesEachDir parallel
// lanes in each direction, offset (0.5+i)*laneWidth from the centerline,
// with a stop line stopLineSetback before each lane's end and left/right
// neighbors wired within each direction (left = higher index, which lies
// farther from the road centerline; right = lower index; the lanes at
// either end of the index range have no neighbor on that side).
func (n *RoadNetwork) AddStraightRoad(a, b vecmath.Vec2, lanesEachDir int, laneWidth, speedLimit float64) (nodeA, nodeB *Node, forward, backward []*Lane) {
	nodeA = n.AddNode(a, "")
	nodeB = n.AddNode(b, "")

	forward = make([]*Lane, lanesEachDir)
	backward = make([]*Lane, lanesEachDir)

	// Lanes are allocated forward[i], backward[i] for each i in turn (not
	// all forward lanes followed by all backward lanes), so that on a
	// freshly built network entry (toward-intersection) lanes and exit
	// (away-from-intersection) lanes fall into the interleaved id pattern
	// the default harness topology and addRandomVehicle rely on.
	for i := 0; i < lanesEachDir; i++ {
		offsetF := -(0.5 + float64(i)) * laneWidth
		ptsF := geometry.OffsetPolyline([]vecmath.Vec2{a, b}, offsetF)
		lf := n.AddLane(nodeA.ID, nodeB.ID, geometry.NewPolyline(ptsF), laneWidth, speedLimit, false)
		n.SetStopLine(lf.ID, math.Max(0, lf.Length()-stopLineSetback))
		forward[i] = lf

		offsetB := (0.5 + float64(i)) * laneWidth
		ptsB := geometry.OffsetPolyline([]vecmath.Vec2{b, a}, offsetB)
		lb := n.AddLane(nodeB.ID, nodeA.ID, geometry.NewPolyline(ptsB), laneWidth, speedLimit, false)
		n.SetStopLine(lb.ID, math.Max(0, lb.Length()-stopLineSetback))
		backward[i] = lb
	}

	wireNeighbors(n, forward)
	wireNeighbors(n, backward)

	return nodeA, nodeB, forward, backward
}

func wireNeighbors(n *RoadNetwork, lanes []*Lane) {
	for i, l := range lanes {
		var left, right *ids.LaneId
		if i+1 < len(lanes) {
			id := lanes[i+1].ID
			left = &id
		}
		if i-1 >= 0 {
			id := lanes[i-1].ID
			right = &id
		}
		n.SetNeighbors(l.ID, left, right)
	}
}

// AddConnector builds a Bézier-centerline lane joining the end of inLane
// to the start of outLane, using back-differences of each lane's own
// centerline to estimate tangents at the join.
func (n *RoadNetwork) AddConnector(inLane, outLane ids.LaneId, hIn, hOut float64, steps int) *Lane {
	in := n.lanes[inLane]
	out := n.lanes[outLane]

	p0, dir0 := tangentAtEnd(in.Center)
	p3, dir1 := tangentAtStart(out.Center)

	pts := geometry.BezierConnector(p0, dir0, p3, dir1, hIn, hOut, steps)
	width := in.Width
	speedLimit := math.Min(in.SpeedLimit, out.SpeedLimit)

	lane := n.AddLane(in.EndNode, out.StartNode, geometry.NewPolyline(pts), width, speedLimit, true)
	fromID := inLane
	toID := outLane
	lane.connectorFrom = &fromID
	lane.connectorTo = &toID

	n.AddNext(inLane, lane.ID)
	n.AddNext(lane.ID, outLane)
	return lane
}

func tangentAtEnd(p *geometry.Polyline) (vecmath.Vec2, vecmath.Vec2) {
	pts := p.Points()
	end := pts[len(pts)-1]
	prev := end
	if len(pts) >= 2 {
		prev = pts[len(pts)-2]
	}
	return end, vecmath.Normalized(vecmath.Sub(end, prev))
}

func tangentAtStart(p *geometry.Polyline) (vecmath.Vec2, vecmath.Vec2) {
	pts := p.Points()
	start := pts[0]
	next := start
	if len(pts) >= 2 {
		next = pts[1]
	}
	return start, vecmath.Normalized(vecmath.Sub(next, start))
}

// LanesForSignalGroup returns every lane bound to group, in id order.
func (n *RoadNetwork) LanesForSignalGroup(group ids.SignalGroupId) []ids.LaneId {
	laneIDs := make([]ids.LaneId, 0)
	for id, l := range n.lanes {
		if g, ok := l.SignalGroupID(); ok && g == group {
			laneIDs = append(laneIDs, id)
		}
	}
	sortLaneIDs(laneIDs)
	return laneIDs
}

func sortLaneIDs(s []ids.LaneId) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// LaneView is a read-only render-export projection of a lane.
type LaneView struct {
	ID            ids.LaneId
	Width         float64
	IsConnector   bool
	Points        []vecmath.Vec2
	StopLineS     *float64
	SignalGroupID *ids.SignalGroupId
}

// ExportLanes returns one LaneView per lane, for external visualizers.
func (n *RoadNetwork) ExportLanes() []LaneView {
	laneIDs := make([]ids.LaneId, 0, len(n.lanes))
	for id := range n.lanes {
		laneIDs = append(laneIDs, id)
	}
	return lo.Map(laneIDs, func(id ids.LaneId, _ int) LaneView {
		l := n.lanes[id]
		return LaneView{
			ID:            l.ID,
			Width:         l.Width,
			IsConnector:   l.IsConnector,
			Points:        l.Center.Points(),
			StopLineS:     l.stopLineS,
			SignalGroupID: l.signalGroupID,
		}
	})
}
