package dag

import "time"

// Status represents the current state of a task.
type Status string

const (
	// StatusLocked means the task's requirements are not settled.
	StatusLocked Status = "locked"
	// StatusAvailable means the task is open and has no running deadline.
	StatusAvailable Status = "available"
	// StatusInProgress means the task is open and its deadline is running.
	StatusInProgress Status = "in_progress"
	// StatusCompleted means the trainee finished the task.
	StatusCompleted Status = "completed"
	// StatusTimedOut means the deadline passed before the trainee finished.
	StatusTimedOut Status = "timed_out"
)

// Settled reports whether a status unblocks dependents.
func (s Status) Settled() bool {
	return s == StatusCompleted || s == StatusTimedOut
}

// Open reports whether the trainee may act on the task.
func (s Status) Open() bool {
	return s == StatusAvailable || s == StatusInProgress
}

// ActiveJob tracks a task whose deadline is running.
type ActiveJob struct {
	StartedAt time.Duration // phase time the task opened
	Deadline  time.Duration // phase time the task times out
}

// State holds per-phase task progression.
type State struct {
	Status     map[NodeID]Status        `json:"status"`
	ActiveJobs map[NodeID]*ActiveJob    `json:"active_jobs"`
	OpenedAt   map[NodeID]time.Duration `json:"opened_at"`
	Gates      map[NodeID]bool          `json:"gates"`
}

// NewState creates a new empty state.
func NewState() *State {
	return &State{
		Status:     make(map[NodeID]Status),
		ActiveJobs: make(map[NodeID]*ActiveJob),
		OpenedAt:   make(map[NodeID]time.Duration),
		Gates:      make(map[NodeID]bool),
	}
}

// ReleaseGate lets a gated task open once its requirements settle.
func (s *State) ReleaseGate(id NodeID) {
	s.Gates[id] = true
}

// GetStatus returns the status of a task, defaulting to locked if not set.
func (s *State) GetStatus(id NodeID) Status {
	if status, exists := s.Status[id]; exists {
		return status
	}
	return StatusLocked
}

// SetStatus updates the status of a task.
func (s *State) SetStatus(id NodeID, status Status) {
	s.Status[id] = status
}

// GetActiveJob returns the running deadline for a task, or nil.
func (s *State) GetActiveJob(id NodeID) *ActiveJob {
	return s.ActiveJobs[id]
}

// StartJob marks a task in progress with a deadline limit after startedAt.
func (s *State) StartJob(id NodeID, startedAt, limit time.Duration) {
	s.Status[id] = StatusInProgress
	s.OpenedAt[id] = startedAt
	s.ActiveJobs[id] = &ActiveJob{
		StartedAt: startedAt,
		Deadline:  startedAt + limit,
	}
}

// CompleteJob marks a task completed and stops its deadline.
func (s *State) CompleteJob(id NodeID) {
	s.Status[id] = StatusCompleted
	delete(s.ActiveJobs, id)
}

// ExpireJob marks a task timed out and stops its deadline.
func (s *State) ExpireJob(id NodeID) {
	s.Status[id] = StatusTimedOut
	delete(s.ActiveJobs, id)
}

// RemainingTime returns how long is left before a task times out.
// Returns 0 if the task has no running deadline.
func (s *State) RemainingTime(id NodeID, now time.Duration) time.Duration {
	job := s.GetActiveJob(id)
	if job == nil {
		return 0
	}
	remaining := job.Deadline - now
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Elapsed returns how long a task has been open at now.
func (s *State) Elapsed(id NodeID, now time.Duration) time.Duration {
	at, ok := s.OpenedAt[id]
	if !ok || now < at {
		return 0
	}
	return now - at
}
