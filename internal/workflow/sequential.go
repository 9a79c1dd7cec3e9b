package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/inkworks/atelier/internal/agent"
	"go.uber.org/zap"
)

// ErrNoAgents is returned when a workflow executes without any agents.
var ErrNoAgents = errors.New("workflow has no agents assigned")

// Sequential runs its agents one after another. The first agent sees the
// workflow input as-is; every later agent sees the original input plus the
// previous agent's full result under the "content" key. A single failure
// aborts the chain.
type Sequential struct {
	meta   Metadata
	task   *agent.Task
	agents []agent.Capability
	logger *zap.Logger
}

// NewSequential builds a sequential workflow over the given agents.
func NewSequential(meta Metadata, task *agent.Task, agents []agent.Capability, logger *zap.Logger) *Sequential {
	meta.Pattern = PatternSequential
	return &Sequential{meta: meta, task: task, agents: agents, logger: logger}
}

func (w *Sequential) Meta() Metadata { return w.meta }

func (w *Sequential) AssignAgents(agents []agent.Capability) error {
	w.agents = agents
	return nil
}

func (w *Sequential) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	run := newRun(w.meta.Name)
	run.start(w.logger)

	if w.task == nil {
		err := fmt.Errorf("sequential workflow %s: %w", w.meta.Name, agent.ErrNilTask)
		run.finish(w.logger, err)
		return nil, err
	}
	if len(w.agents) == 0 {
		err := fmt.Errorf("sequential workflow %s: %w", w.meta.Name, ErrNoAgents)
		run.finish(w.logger, err)
		return nil, err
	}

	var result map[string]any
	for i, a := range w.agents {
		extra := input
		if i > 0 {
			extra = mergeInput(input, map[string]any{"content": result})
		}

		w.logger.Debug("sequential step",
			zap.String("workflow", w.meta.Name),
			zap.String("run", run.ID),
			zap.Int("step", i),
			zap.String("agent", a.ID()))

		out, err := a.ProcessTask(ctx, w.task, extra)
		if err != nil {
			err = fmt.Errorf("sequential workflow %s step %d: %w", w.meta.Name, i, err)
			run.finish(w.logger, err)
			return nil, err
		}
		result = out
	}

	run.finish(w.logger, nil)
	return result, nil
}
