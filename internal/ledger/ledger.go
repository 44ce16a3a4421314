// Package ledger accumulates experience points for one session.
package ledger

// Policy controls how negative deltas are treated.
type Policy struct {
	// AllowNegative accepts negative deltas. When false they are ignored.
	AllowNegative bool
	// FloorAtZero keeps the running total from dropping below zero.
	FloorAtZero bool
}

// Entry records one applied change.
type Entry struct {
	Reason    string `json:"reason"`
	Requested int    `json:"requested"`
	Applied   int    `json:"applied"`
	Total     int    `json:"total"`
}

// Ledger is a running XP total with an audit trail.
type Ledger struct {
	policy  Policy
	total   int
	entries []Entry
}

// New creates an empty ledger.
func New(policy Policy) *Ledger {
	return &Ledger{policy: policy}
}

// AddXP applies delta under the ledger policy and returns the amount applied.
func (l *Ledger) AddXP(delta int) int {
	return l.Add("", delta)
}

// Add is AddXP with a reason kept in the audit trail.
func (l *Ledger) Add(reason string, delta int) int {
	applied := delta
	if delta < 0 && !l.policy.AllowNegative {
		applied = 0
	}
	if l.policy.FloorAtZero && l.total+applied < 0 {
		applied = -l.total
	}
	l.total += applied
	l.entries = append(l.entries, Entry{Reason: reason, Requested: delta, Applied: applied, Total: l.total})
	return applied
}

// Total returns the current XP.
func (l *Ledger) Total() int { return l.total }

// Entries returns a copy of the audit trail.
func (l *Ledger) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}
