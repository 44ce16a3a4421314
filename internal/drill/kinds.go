package drill

// PhaseKind is the closed set of phase behaviours.
type PhaseKind string

const (
	// PhaseBriefing introduces the scenario. It has no actors or events.
	PhaseBriefing PhaseKind = "briefing"
	// PhaseOperational runs the hazard with every subsystem available.
	PhaseOperational PhaseKind = "operational"
	// PhaseDebrief reviews the provisional score. It must be the last phase.
	PhaseDebrief PhaseKind = "debrief"
)

// PhaseKinds lists every phase kind.
var PhaseKinds = []PhaseKind{PhaseBriefing, PhaseOperational, PhaseDebrief}

// TaskKind is the closed set of trainee interactions.
type TaskKind string

const (
	// TaskConfirm completes on a single confirmation.
	TaskConfirm TaskKind = "confirm"
	// TaskCounter completes after Count confirmations, e.g. alarm blasts.
	TaskCounter TaskKind = "counter"
	// TaskDetect asks the trainee to tap every real warning sign among decoys.
	TaskDetect TaskKind = "detect"
	// TaskBoundary asks the trainee to trace a hazard boundary.
	TaskBoundary TaskKind = "boundary"
	// TaskDecision asks for one option.
	TaskDecision TaskKind = "decision"
	// TaskMultiSelect asks for a set of options.
	TaskMultiSelect TaskKind = "multi_select"
	// TaskShelterCheck verifies every evacuee reached a zone within capacity.
	TaskShelterCheck TaskKind = "shelter_check"
	// TaskReading asks whether an instrument reading exceeds a limit.
	TaskReading TaskKind = "reading"
)

// TaskKinds lists every task kind.
var TaskKinds = []TaskKind{
	TaskConfirm,
	TaskCounter,
	TaskDetect,
	TaskBoundary,
	TaskDecision,
	TaskMultiSelect,
	TaskShelterCheck,
	TaskReading,
}

// Reading choices.
const (
	ReadingWithin  = "within"
	ReadingExceeds = "exceeds"
)
