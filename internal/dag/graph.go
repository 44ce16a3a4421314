// Package dag tracks the tasks of one phase as a dependency graph.
//
// A task becomes available once every task it requires has settled
// (completed or timed out). Available tasks with a time limit run as timed
// jobs; the evaluator reports jobs whose deadline has passed.
//
// All transitions are pure with respect to (graph, state, now), where now is
// the elapsed time of the owning phase.
package dag

import (
	"errors"
	"fmt"
	"time"
)

// NodeID uniquely identifies a task within a phase.
type NodeID string

// Node is a single task in the graph.
type Node struct {
	ID    NodeID `json:"id"`
	Label string `json:"label"`
	// Limit is the time the trainee has once the task opens. Zero means no limit.
	Limit    time.Duration `json:"limit"`
	Requires []NodeID      `json:"requires"`
	// Gated tasks stay locked until ReleaseGate is called, even when their
	// requirements are settled.
	Gated bool `json:"gated,omitempty"`
}

// Graph is the validated task graph of one phase.
type Graph struct {
	Nodes      map[NodeID]*Node    // All nodes indexed by ID
	RequiresIn map[NodeID][]NodeID // Reverse index: which nodes require this one
	TopoOrder  []NodeID            // Topologically sorted node IDs, stable in declaration order
}

var (
	// ErrCycleDetected is returned when a cycle is detected in the graph.
	ErrCycleDetected = errors.New("dag: cycle detected in graph")
	// ErrNodeNotFound is returned when a referenced node doesn't exist.
	ErrNodeNotFound = errors.New("dag: node not found")
	// ErrInvalidLimit is returned when a time limit is negative.
	ErrInvalidLimit = errors.New("dag: negative time limit")
	// ErrDuplicateNode is returned when two nodes share an ID.
	ErrDuplicateNode = errors.New("dag: duplicate node")
)

// New builds and validates a graph from nodes.
func New(nodes []*Node) (*Graph, error) {
	g := &Graph{
		Nodes:      make(map[NodeID]*Node),
		RequiresIn: make(map[NodeID][]NodeID),
	}

	for _, node := range nodes {
		if node.Limit < 0 {
			return nil, fmt.Errorf("%w: node %s has limit %s", ErrInvalidLimit, node.ID, node.Limit)
		}
		if _, dup := g.Nodes[node.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
		}
		g.Nodes[node.ID] = node
	}

	for _, node := range nodes {
		for _, reqID := range node.Requires {
			if _, exists := g.Nodes[reqID]; !exists {
				return nil, fmt.Errorf("%w: node %s requires missing node %s", ErrNodeNotFound, node.ID, reqID)
			}
			g.RequiresIn[reqID] = append(g.RequiresIn[reqID], node.ID)
		}
	}

	order, err := g.topoSort(nodes)
	if err != nil {
		return nil, err
	}
	g.TopoOrder = order
	return g, nil
}

// GetNode returns a node by ID, or nil if not found.
func (g *Graph) GetNode(id NodeID) *Node {
	return g.Nodes[id]
}

// topoSort runs Kahn's algorithm seeded in declaration order so the result
// does not depend on map iteration.
func (g *Graph) topoSort(declared []*Node) ([]NodeID, error) {
	inDegree := make(map[NodeID]int, len(g.Nodes))
	for _, node := range declared {
		inDegree[node.ID] = len(node.Requires)
	}

	var queue []NodeID
	for _, node := range declared {
		if inDegree[node.ID] == 0 {
			queue = append(queue, node.ID)
		}
	}

	var order []NodeID
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		order = append(order, curr)

		for _, depID := range g.RequiresIn[curr] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	if len(order) != len(g.Nodes) {
		return nil, ErrCycleDetected
	}
	return order, nil
}
