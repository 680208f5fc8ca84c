package store

import (
	"context"

	"github.com/bool64/ctxd"

	"github.com/goliatone/go-dining-store/dining"
)

// SagaStep is one forward action in a multi-step write, with an optional
// compensating action that undoes it.
type SagaStep struct {
	Name       string
	Do         func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga runs a sequence of steps against a backend that has no multi-table
// transactions. When a step fails, the compensations of every completed step
// run in reverse order, best effort: compensation failures are logged and do
// not mask the step error.
type Saga struct {
	log ctxd.Logger
}

// NewSaga builds a saga runner. A nil logger falls back to a no-op.
func NewSaga(log ctxd.Logger) *Saga {
	if log == nil {
		log = ctxd.NoOpLogger{}
	}
	return &Saga{log: log}
}

// Run executes steps in order. It returns the first step error, wrapped with
// the step name; a nil return means every step completed.
func (s *Saga) Run(ctx context.Context, steps ...SagaStep) error {
	for i, step := range steps {
		if step.Do == nil {
			continue
		}
		err := step.Do(ctx)
		if err == nil {
			continue
		}

		s.compensate(ctx, steps[:i])
		return dining.Wrap("", "step "+step.Name+" failed", err)
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context, done []SagaStep) {
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			s.log.Warn(ctx, "compensation failed",
				"step", step.Name,
				"error", err.Error(),
			)
		}
	}
}
