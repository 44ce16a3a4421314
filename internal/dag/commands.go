package dag

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNodeLocked is returned when acting on a task whose requirements are unsettled.
	ErrNodeLocked = errors.New("dag: node locked")
	// ErrNodeSettled is returned when acting on a completed or timed-out task.
	ErrNodeSettled = errors.New("dag: node already settled")
	// ErrNodeNotLocked is returned when opening a task that is already open.
	ErrNodeNotLocked = errors.New("dag: node already open")
)

// Effects receives task lifecycle notifications.
type Effects interface {
	// OnOpen is called when a task becomes actionable.
	OnOpen(nodeID NodeID, node *Node)
	// OnComplete is called when the trainee finishes a task.
	OnComplete(nodeID NodeID, node *Node)
	// OnTimeout is called when a task's deadline passes.
	OnTimeout(nodeID NodeID, node *Node)
}

// Start opens a locked task at now. Tasks with a limit get a running deadline.
func Start(graph *Graph, state *State, nodeID NodeID, now time.Duration, effects Effects) error {
	node := graph.GetNode(nodeID)
	if node == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	if status := state.GetStatus(nodeID); status != StatusLocked {
		return fmt.Errorf("%w: %s (status: %s)", ErrNodeNotLocked, nodeID, status)
	}
	if node.Gated && !state.Gates[nodeID] {
		return fmt.Errorf("%w: %s is gated", ErrNodeLocked, nodeID)
	}
	for _, reqID := range node.Requires {
		if !state.GetStatus(reqID).Settled() {
			return fmt.Errorf("%w: %s waits on %s", ErrNodeLocked, nodeID, reqID)
		}
	}

	if node.Limit > 0 {
		state.StartJob(nodeID, now, node.Limit)
	} else {
		state.SetStatus(nodeID, StatusAvailable)
		state.OpenedAt[nodeID] = now
	}
	effects.OnOpen(nodeID, node)
	return nil
}

// Complete finishes an open task.
func Complete(graph *Graph, state *State, nodeID NodeID, effects Effects) error {
	node := graph.GetNode(nodeID)
	if node == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	if err := CheckOpen(graph, state, nodeID); err != nil {
		return err
	}
	state.CompleteJob(nodeID)
	effects.OnComplete(nodeID, node)
	return nil
}

// CheckOpen returns nil when the trainee may act on nodeID.
func CheckOpen(graph *Graph, state *State, nodeID NodeID) error {
	if graph.GetNode(nodeID) == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	status := state.GetStatus(nodeID)
	switch {
	case status.Open():
		return nil
	case status.Settled():
		return fmt.Errorf("%w: %s (status: %s)", ErrNodeSettled, nodeID, status)
	default:
		return fmt.Errorf("%w: %s", ErrNodeLocked, nodeID)
	}
}

// AllSettled reports whether every task has completed or timed out.
func AllSettled(graph *Graph, state *State) bool {
	for id := range graph.Nodes {
		if !state.GetStatus(id).Settled() {
			return false
		}
	}
	return true
}
