package dag

import "sync"

// Graph is a collection of nodes and the directed edges between them.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map and order slice during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order records node IDs in insertion order.
	order []string
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using string IDs),
// not by direct struct manipulation.
type node struct {
	// id is the unique identifier for the node.
	id string
	// preds holds the nodes with an edge into this node, in insertion order.
	preds []*node
	// succs holds the nodes this node has an edge to, in insertion order.
	succs []*node
}

func (n *node) hasSucc(id string) bool {
	for _, s := range n.succs {
		if s.id == id {
			return true
		}
	}
	return false
}
