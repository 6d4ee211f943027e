package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/athlete-assessment-api/internal/observability"
)

// LifecycleState is where an assessment identifier currently lives.
type LifecycleState string

// Lifecycle states. Duplicated means a move was interrupted after the copy
// was written but before the source was removed; re-running the same move
// completes it. Purged is reserved for a future force-delete.
const (
	StateActive     LifecycleState = "active"
	StateArchived   LifecycleState = "archived"
	StateDuplicated LifecycleState = "duplicated"
	StateMissing    LifecycleState = "missing"
	StatePurged     LifecycleState = "purged"
)

func lifecycleState(active, archived bool) LifecycleState {
	switch {
	case active && archived:
		return StateDuplicated
	case active:
		return StateActive
	case archived:
		return StateArchived
	default:
		return StateMissing
	}
}

// moveStep is one idempotent sub-step of a transition. Every step can be
// re-run after a crash without changing the outcome.
type moveStep struct {
	name string
	run  func(ctx context.Context) error
}

// StepError reports the sub-step at which a transition stopped. Steps before
// it are committed; steps after it never ran.
type StepError struct {
	Transition string
	Step       string
	Completed  []string
	Err        error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %s failed after %v: %v", e.Transition, e.Step, e.Completed, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// transition runs moveSteps in order, each committing independently.
type transition struct {
	name   string
	steps  []moveStep
	logger zerolog.Logger
}

func newTransition(name string, logger zerolog.Logger, steps ...moveStep) transition {
	return transition{name: name, steps: steps, logger: logger}
}

func (t transition) execute(ctx context.Context) error {
	completed := make([]string, 0, len(t.steps))
	for _, step := range t.steps {
		if err := step.run(ctx); err != nil {
			observability.LifecycleTransitions().WithLabelValues(t.name, "failed", step.name).Inc()
			t.logger.Warn().
				Err(err).
				Str("transition", t.name).
				Str("step", step.name).
				Strs("completed", completed).
				Msg("lifecycle transition interrupted")
			return &StepError{Transition: t.name, Step: step.name, Completed: completed, Err: err}
		}
		completed = append(completed, step.name)
	}
	observability.LifecycleTransitions().WithLabelValues(t.name, "succeeded", "").Inc()
	return nil
}
