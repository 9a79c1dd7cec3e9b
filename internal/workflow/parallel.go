package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/inkworks/atelier/internal/agent"
	"go.uber.org/zap"
)

// DefaultParallelism caps how many branches of a parallel workflow run
// concurrently when no explicit limit is set.
const DefaultParallelism = 8

// ErrAllBranchesFailed is returned by a best-effort parallel workflow when
// not a single branch produced a result.
var ErrAllBranchesFailed = errors.New("all parallel branches failed")

// Parallel fans the same task out to every agent concurrently and joins the
// results in agent order, regardless of completion order. By default one
// branch failure fails the whole workflow; AllowPartialFailure switches to
// best-effort joining where failed branches are dropped from the merge.
type Parallel struct {
	meta        Metadata
	task        *agent.Task
	agents      []agent.Capability
	logger      *zap.Logger
	parallelism int
	bestEffort  bool
}

// NewParallel builds a parallel workflow over the given agents.
func NewParallel(meta Metadata, task *agent.Task, agents []agent.Capability, logger *zap.Logger) *Parallel {
	meta.Pattern = PatternParallel
	return &Parallel{
		meta:        meta,
		task:        task,
		agents:      agents,
		logger:      logger,
		parallelism: DefaultParallelism,
	}
}

func (w *Parallel) Meta() Metadata { return w.meta }

func (w *Parallel) AssignAgents(agents []agent.Capability) error {
	w.agents = agents
	return nil
}

// AllowPartialFailure switches the join to best-effort: failed branches are
// logged and skipped, and the workflow only fails when every branch fails.
func (w *Parallel) AllowPartialFailure() *Parallel {
	w.bestEffort = true
	return w
}

// SetParallelism bounds concurrent branches. Values below 1 are ignored.
func (w *Parallel) SetParallelism(n int) *Parallel {
	if n >= 1 {
		w.parallelism = n
	}
	return w
}

func (w *Parallel) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	run := newRun(w.meta.Name)
	run.start(w.logger)

	if w.task == nil {
		err := fmt.Errorf("parallel workflow %s: %w", w.meta.Name, agent.ErrNilTask)
		run.finish(w.logger, err)
		return nil, err
	}
	if len(w.agents) == 0 {
		err := fmt.Errorf("parallel workflow %s: %w", w.meta.Name, ErrNoAgents)
		run.finish(w.logger, err)
		return nil, err
	}

	results := make([]BranchResult, len(w.agents))
	sem := make(chan struct{}, w.parallelism)
	var wg sync.WaitGroup

	for i, a := range w.agents {
		wg.Add(1)
		go func(idx int, a agent.Capability) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			out, err := a.ProcessTask(ctx, w.task, input)
			results[idx] = BranchResult{AgentID: a.ID(), Output: out, Err: err}
		}(i, a)
	}
	wg.Wait()

	merged, err := w.join(results)
	run.finish(w.logger, err)
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// join applies the failure policy and then the merge strategy. Results arrive
// already ordered by agent position, so merges are deterministic no matter
// which branch finished first.
func (w *Parallel) join(results []BranchResult) (map[string]any, error) {
	var succeeded []BranchResult
	var failures []error
	for _, br := range results {
		if br.Err != nil {
			failures = append(failures, fmt.Errorf("branch %s: %w", br.AgentID, br.Err))
			continue
		}
		succeeded = append(succeeded, br)
	}

	if len(failures) > 0 {
		if !w.bestEffort {
			return nil, fmt.Errorf("parallel workflow %s: %w", w.meta.Name, errors.Join(failures...))
		}
		w.logger.Warn("parallel branches failed, merging remainder",
			zap.String("workflow", w.meta.Name),
			zap.Int("failed", len(failures)),
			zap.Int("succeeded", len(succeeded)))
		if len(succeeded) == 0 {
			return nil, fmt.Errorf("parallel workflow %s: %w: %w",
				w.meta.Name, ErrAllBranchesFailed, errors.Join(failures...))
		}
	}

	outputs := make([]map[string]any, len(succeeded))
	for i, br := range succeeded {
		outputs[i] = br.Output
	}

	switch w.meta.MergeStrategy {
	case MergeFirst:
		return outputs[0], nil
	case MergeCombine:
		return map[string]any{"results": outputs, "merged": true}, nil
	default:
		return map[string]any{"results": outputs}, nil
	}
}
