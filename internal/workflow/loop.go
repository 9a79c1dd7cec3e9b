package workflow

import (
	"context"
	"fmt"

	"github.com/inkworks/atelier/internal/agent"
	"go.uber.org/zap"
)

// Condition decides whether a loop continues after an iteration. It receives
// the iteration's result and the 1-based iteration number; returning false
// stops the loop.
type Condition func(result map[string]any, iteration int) bool

// Loop runs one agent repeatedly, feeding each iteration's result into the
// next as extra context. The agent always runs at least once. The loop stops
// when the condition returns false or the iteration cap is reached, whichever
// comes first; without a condition it runs exactly the cap.
type Loop struct {
	meta   Metadata
	task   *agent.Task
	worker agent.Capability
	cond   Condition
	logger *zap.Logger
}

// NewLoop builds a loop workflow over a single agent. A zero or negative
// MaxIterations in the metadata falls back to DefaultMaxIterations.
func NewLoop(meta Metadata, task *agent.Task, worker agent.Capability, cond Condition, logger *zap.Logger) *Loop {
	meta.Pattern = PatternLoop
	if meta.MaxIterations <= 0 {
		meta.MaxIterations = DefaultMaxIterations
	}
	return &Loop{meta: meta, task: task, worker: worker, cond: cond, logger: logger}
}

func (w *Loop) Meta() Metadata { return w.meta }

// AssignAgents attaches the first agent as the loop worker; a loop has
// exactly one.
func (w *Loop) AssignAgents(agents []agent.Capability) error {
	if len(agents) == 0 {
		return fmt.Errorf("loop workflow %s: %w", w.meta.Name, ErrNoAgents)
	}
	w.worker = agents[0]
	return nil
}

func (w *Loop) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	run := newRun(w.meta.Name)
	run.start(w.logger)

	if w.task == nil {
		err := fmt.Errorf("loop workflow %s: %w", w.meta.Name, agent.ErrNilTask)
		run.finish(w.logger, err)
		return nil, err
	}
	if w.worker == nil {
		err := fmt.Errorf("loop workflow %s: %w", w.meta.Name, ErrNoAgents)
		run.finish(w.logger, err)
		return nil, err
	}

	extra := input
	var result map[string]any
	for i := 1; i <= w.meta.MaxIterations; i++ {
		w.logger.Debug("loop iteration",
			zap.String("workflow", w.meta.Name),
			zap.String("run", run.ID),
			zap.Int("iteration", i))

		out, err := w.worker.ProcessTask(ctx, w.task, extra)
		if err != nil {
			err = fmt.Errorf("loop workflow %s iteration %d: %w", w.meta.Name, i, err)
			run.finish(w.logger, err)
			return nil, err
		}
		result = out

		if w.cond != nil && !w.cond(result, i) {
			break
		}
		extra = result
	}

	run.finish(w.logger, nil)
	return result, nil
}
