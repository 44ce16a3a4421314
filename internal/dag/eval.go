package dag

import "time"

// EvalResult contains the results of evaluating the task state.
type EvalResult struct {
	Unlocked []NodeID // Tasks whose requirements just settled, in topological order
	Expired  []NodeID // Tasks whose deadline has passed, in topological order
}

// Evaluator reports locked tasks that can open and running tasks whose
// deadline has been reached.
//
// The evaluator is pure: it doesn't mutate state, only reports what should change.
func Evaluator(graph *Graph, state *State, now time.Duration) *EvalResult {
	result := &EvalResult{}

	for _, nodeID := range graph.TopoOrder {
		node := graph.Nodes[nodeID]
		switch state.GetStatus(nodeID) {
		case StatusInProgress:
			if job := state.GetActiveJob(nodeID); job != nil && job.Deadline <= now {
				result.Expired = append(result.Expired, nodeID)
			}
		case StatusLocked:
			if node.Gated && !state.Gates[nodeID] {
				continue
			}
			allSettled := true
			for _, reqID := range node.Requires {
				if !state.GetStatus(reqID).Settled() {
					allSettled = false
					break
				}
			}
			if allSettled {
				result.Unlocked = append(result.Unlocked, nodeID)
			}
		}
	}

	return result
}

// ApplyEvalResult expires overdue tasks and opens unlocked ones at now,
// starting their deadlines. Returns the tasks that timed out.
func ApplyEvalResult(graph *Graph, state *State, result *EvalResult, now time.Duration, effects Effects) []NodeID {
	for _, nodeID := range result.Expired {
		state.ExpireJob(nodeID)
		effects.OnTimeout(nodeID, graph.GetNode(nodeID))
	}
	for _, nodeID := range result.Unlocked {
		// errors are impossible here: the evaluator only reports locked nodes
		_ = Start(graph, state, nodeID, now, effects)
	}
	return result.Expired
}

// Advance runs Evaluator and ApplyEvalResult until no task changes, so that
// chains of zero-requirement unlocks settle in one call.
func Advance(graph *Graph, state *State, now time.Duration, effects Effects) []NodeID {
	var expired []NodeID
	for {
		result := Evaluator(graph, state, now)
		if len(result.Expired) == 0 && len(result.Unlocked) == 0 {
			return expired
		}
		expired = append(expired, ApplyEvalResult(graph, state, result, now, effects)...)
	}
}
