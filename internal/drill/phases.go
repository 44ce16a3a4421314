package drill

import "fmt"

// phaseHandler is the per-kind behaviour of a phase.
type phaseHandler struct {
	validate func(cfg ScenarioConfig, index int) error
	enter    func(c *Controller, rt *phaseRuntime)
}

var phaseHandlers = map[PhaseKind]phaseHandler{
	PhaseBriefing: {
		validate: func(cfg ScenarioConfig, index int) error {
			p := cfg.Phases[index]
			if len(p.Actors) > 0 || len(p.Rosters) > 0 || len(p.Events) > 0 {
				return fmt.Errorf("briefing %s cannot declare actors or events", p.ID)
			}
			return nil
		},
		enter: func(*Controller, *phaseRuntime) {},
	},
	PhaseOperational: {
		validate: func(ScenarioConfig, int) error { return nil },
		enter:    func(*Controller, *phaseRuntime) {},
	},
	PhaseDebrief: {
		validate: func(cfg ScenarioConfig, index int) error {
			p := cfg.Phases[index]
			if index != len(cfg.Phases)-1 {
				return fmt.Errorf("debrief %s must be the last phase", p.ID)
			}
			if len(p.Tasks) > 0 || len(p.Actors) > 0 || len(p.Rosters) > 0 || len(p.Events) > 0 {
				return fmt.Errorf("debrief %s cannot declare tasks, actors or events", p.ID)
			}
			return nil
		},
		enter: func(c *Controller, rt *phaseRuntime) {
			preview := c.engine.Preview()
			rt.preview = &preview
		},
	},
}
