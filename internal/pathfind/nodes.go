package pathfind

import (
	"trackroute/internal/pathfind/segcache"
	"trackroute/internal/track"
)

// NodeID indexes a node in its store.
type NodeID int32

// NoParent marks origin nodes.
const NoParent NodeID = -1

// Node is one segment of a candidate route. It is keyed by the state the
// segment starts on and remembers the state it ends on.
type Node struct {
	Key    track.State
	Parent NodeID
	// Cost is the path cost up to Last.
	Cost int
	// Estimate is Cost plus the heuristic from Last.
	Estimate int
	// Choice is set when the hop onto Key offered more than one trackdir.
	Choice      bool
	Destination bool
	Segment     segcache.Segment

	closed    bool
	heapIndex int
}

// Last is the state the node's segment ends on.
func (n *Node) Last() track.State {
	return n.Segment.Last()
}

// Closed reports whether the node has been expanded.
func (n *Node) Closed() bool {
	return n.closed
}

// NodeStore owns every node created during one search and guarantees at most
// one node per key.
type NodeStore struct {
	nodes []Node
	index map[track.State]NodeID
}

// NewNodeStore returns an empty store.
func NewNodeStore() *NodeStore {
	return &NodeStore{index: make(map[track.State]NodeID)}
}

// Lookup finds the node keyed by s.
func (s *NodeStore) Lookup(key track.State) (NodeID, bool) {
	id, ok := s.index[key]
	return id, ok
}

// Insert adds a node. The key must not already be present.
func (s *NodeStore) Insert(n Node) NodeID {
	id := NodeID(len(s.nodes))
	n.heapIndex = -1
	s.nodes = append(s.nodes, n)
	s.index[n.Key] = id
	return id
}

// Node returns the node with the given id. The pointer is only valid until
// the next Insert.
func (s *NodeStore) Node(id NodeID) *Node {
	return &s.nodes[id]
}

// Len returns the number of nodes created.
func (s *NodeStore) Len() int {
	return len(s.nodes)
}

// Reset drops every node, keeping allocated capacity.
func (s *NodeStore) Reset() {
	clear(s.nodes)
	s.nodes = s.nodes[:0]
	clear(s.index)
}
