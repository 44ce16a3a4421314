package scoring

import (
	"fmt"

	"github.com/Shopify/go-lua"
)

// Expr is a badge predicate written as a Lua boolean expression, for example
//
//	metrics.coverage >= 0.9 and tasks.stop_work.correct
//
// The expression sees these globals:
//
//	score    composite score
//	grade    grade label
//	metrics  component id -> raw sub-score in [0,1]
//	tasks    task id -> {correct, choice, decision_ms, value, timed_out}
//
// Runtime errors count as "not awarded" and are reported to the engine log.
type Expr struct {
	Source string
}

func (p Expr) chunk() string { return "return (" + p.Source + ")" }

func (p Expr) validate() error {
	if p.Source == "" {
		return fmt.Errorf("empty expression")
	}
	l := lua.NewState()
	if err := lua.LoadString(l, p.chunk()); err != nil {
		return fmt.Errorf("compile %q: %w", p.Source, err)
	}
	return nil
}

func (p Expr) Awarded(ctx *BadgeContext) (bool, error) {
	l := lua.NewState()
	lua.OpenLibraries(l)
	pushGlobals(l, ctx)

	if err := lua.LoadString(l, p.chunk()); err != nil {
		return false, fmt.Errorf("compile %q: %w", p.Source, err)
	}
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		return false, fmt.Errorf("evaluate %q: %w", p.Source, err)
	}
	ok := l.ToBoolean(-1)
	l.Pop(1)
	return ok, nil
}

func pushGlobals(l *lua.State, ctx *BadgeContext) {
	rec := ctx.Record

	l.PushNumber(rec.Score)
	l.SetGlobal("score")
	l.PushString(rec.Grade.Label)
	l.SetGlobal("grade")

	l.NewTable()
	for id, v := range rec.Metrics {
		l.PushNumber(v)
		l.SetField(-2, id)
	}
	l.SetGlobal("metrics")

	l.NewTable()
	for id := range ctx.idx.byTask {
		o, _ := ctx.Last(id)
		l.NewTable()
		l.PushBoolean(o.Correct)
		l.SetField(-2, "correct")
		l.PushString(o.Choice)
		l.SetField(-2, "choice")
		l.PushNumber(float64(o.Decision.Milliseconds()))
		l.SetField(-2, "decision_ms")
		l.PushBoolean(o.TimedOut)
		l.SetField(-2, "timed_out")
		if o.Value != nil {
			l.PushNumber(*o.Value)
			l.SetField(-2, "value")
		}
		l.SetField(-2, id)
	}
	l.SetGlobal("tasks")
}
