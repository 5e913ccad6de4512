package dag

import (
	"fmt"
	"strings"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.addNodeLocked(id)
}

func (g *Graph) addNodeLocked(id string) *node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &node{id: id}
	g.nodes[id] = n
	g.order = append(g.order, id)
	return n
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// Adding an edge that already exists is a no-op and reports false. An error is
// returned if either node does not exist or if the edge would create a
// self-reference.
func (g *Graph) AddEdge(fromID, toID string) (bool, error) {
	if fromID == toID {
		return false, fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return false, fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return false, fmt.Errorf("destination node not found: %s", toID)
	}

	if fromNode.hasSucc(toID) {
		return false, nil
	}

	fromNode.succs = append(fromNode.succs, toNode)
	toNode.preds = append(toNode.preds, fromNode)

	return true, nil
}

// HasEdge reports whether the edge fromID -> toID exists.
func (g *Graph) HasEdge(fromID, toID string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[fromID]
	return ok && n.hasSucc(toID)
}

// Predecessors returns the IDs of nodes with an edge into the given node.
func (g *Graph) Predecessors(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return ids(n.preds), nil
}

// Successors returns the IDs of nodes the given node has an edge to.
func (g *Graph) Successors(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return ids(n.succs), nil
}

// Reachable reports whether toID can be reached from fromID by following one
// or more edges. A node only reaches itself through a cycle.
func (g *Graph) Reachable(fromID, toID string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	from, ok := g.nodes[fromID]
	if !ok {
		return false
	}

	seen := make(map[string]bool)
	stack := append([]*node(nil), from.succs...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.id == toID {
			return true
		}
		if seen[n.id] {
			continue
		}
		seen[n.id] = true
		stack = append(stack, n.succs...)
	}
	return false
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// if a cycle is found, naming the path that closes it.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Classic depth-first search with three sets of nodes:
	// permanent: fully visited and not part of a cycle.
	// temporary: on the recursion stack of the current traversal.
	// unvisited: all other nodes.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)
	var path []string

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			start := 0
			for i, id := range path {
				if id == n.id {
					start = i
					break
				}
			}
			cycle := append(append([]string(nil), path[start:]...), n.id)
			return fmt.Errorf("cycle detected: %s", strings.Join(cycle, " -> "))
		}

		temporary[n.id] = true
		path = append(path, n.id)

		for _, succ := range n.succs {
			if err := visit(succ); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		delete(temporary, n.id)
		permanent[n.id] = true

		return nil
	}

	// Visit every node in insertion order so the reported cycle is stable.
	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return err
		}
	}

	return nil
}

func ids(nodes []*node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.id)
	}
	return out
}
