package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/inkworks/atelier/internal/agent"
	"go.uber.org/zap"
)

// ErrNoBranch is returned when the selector names a branch that does not
// exist and no fallback agent is configured.
var ErrNoBranch = errors.New("no branch for selected key")

// Selector inspects the workflow input and names the branch to execute.
type Selector func(input map[string]any) string

// Conditional routes the task to exactly one agent chosen by the selector.
// An unknown selection falls through to the fallback agent when one is set
// and fails the workflow otherwise; silent no-ops hide routing bugs.
type Conditional struct {
	meta     Metadata
	task     *agent.Task
	selector Selector
	branches map[string]agent.Capability
	fallback agent.Capability
	logger   *zap.Logger
}

// NewConditional builds a conditional workflow. Fallback may be nil, in which
// case an unmatched selection is an error.
func NewConditional(meta Metadata, task *agent.Task, selector Selector, branches map[string]agent.Capability, fallback agent.Capability, logger *zap.Logger) *Conditional {
	meta.Pattern = PatternConditional
	return &Conditional{
		meta:     meta,
		task:     task,
		selector: selector,
		branches: branches,
		fallback: fallback,
		logger:   logger,
	}
}

func (w *Conditional) Meta() Metadata { return w.meta }

// AssignAgents cannot rebuild a branch table from a flat agent list; branches
// are keyed by selector output, not position.
func (w *Conditional) AssignAgents([]agent.Capability) error {
	return fmt.Errorf("conditional workflow %s: branches must be set by key, not assigned as a list", w.meta.Name)
}

func (w *Conditional) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	run := newRun(w.meta.Name)
	run.start(w.logger)

	if w.task == nil {
		err := fmt.Errorf("conditional workflow %s: %w", w.meta.Name, agent.ErrNilTask)
		run.finish(w.logger, err)
		return nil, err
	}
	if w.selector == nil {
		err := fmt.Errorf("conditional workflow %s: nil selector", w.meta.Name)
		run.finish(w.logger, err)
		return nil, err
	}

	key := w.selector(input)
	target, ok := w.branches[key]
	if !ok {
		if w.fallback == nil {
			err := fmt.Errorf("conditional workflow %s: %w: %q", w.meta.Name, ErrNoBranch, key)
			run.finish(w.logger, err)
			return nil, err
		}
		w.logger.Warn("no branch matched, using fallback",
			zap.String("workflow", w.meta.Name),
			zap.String("selected", key))
		target = w.fallback
	}

	w.logger.Debug("conditional branch selected",
		zap.String("workflow", w.meta.Name),
		zap.String("run", run.ID),
		zap.String("branch", key),
		zap.String("agent", target.ID()))

	result, err := target.ProcessTask(ctx, w.task, input)
	if err != nil {
		err = fmt.Errorf("conditional workflow %s branch %q: %w", w.meta.Name, key, err)
		run.finish(w.logger, err)
		return nil, err
	}

	run.finish(w.logger, nil)
	return result, nil
}
