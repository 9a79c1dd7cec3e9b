package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inkworks/atelier/internal/agent"
	"go.uber.org/zap"
)

// Pattern is the control-flow algorithm a workflow uses to combine agents.
type Pattern string

const (
	PatternSequential  Pattern = "sequential"
	PatternParallel    Pattern = "parallel"
	PatternLoop        Pattern = "loop"
	PatternConditional Pattern = "conditional"
)

// Scope labels the orchestration layer a workflow applies to. It is a label
// only; nothing is enforced structurally.
type Scope string

const (
	ScopeAgent     Scope = "agent"
	ScopeContent   Scope = "content"
	ScopeEditorial Scope = "editorial"
)

// Merge strategies for parallel workflows. Any other value returns the raw
// result list unmerged.
const (
	MergeFirst   = "first"
	MergeCombine = "combine"
)

// DefaultMaxIterations bounds loop workflows that set no explicit limit.
const DefaultMaxIterations = 10

// Metadata describes a workflow for registration and persistence. Agents and
// condition functions attached to a workflow are runtime-only and are not
// part of the metadata.
type Metadata struct {
	Name          string         `json:"name" yaml:"name"`
	Pattern       Pattern        `json:"pattern" yaml:"pattern"`
	Scope         Scope          `json:"scope" yaml:"scope"`
	Description   string         `json:"description,omitempty" yaml:"description"`
	MaxIterations int            `json:"max_iterations,omitempty" yaml:"max_iterations"`
	MergeStrategy string         `json:"merge_strategy,omitempty" yaml:"merge_strategy"`
	Params        map[string]any `json:"parameters,omitempty" yaml:"parameters"`
}

// Workflow executes a task across one or more agents according to its
// pattern. A workflow value is stateless across invocations: each Execute
// call runs a fresh pending→running→{completed|failed} state machine.
type Workflow interface {
	Meta() Metadata
	Execute(ctx context.Context, input map[string]any) (map[string]any, error)
	// AssignAgents replaces the workflow's agent attachment, used to link a
	// team's agents into a registered workflow post-hoc.
	AssignAgents(agents []agent.Capability) error
}

// BranchResult is the explicit outcome of one parallel branch. Collecting
// these, rather than letting one failure tear down a join barrier, lets the
// caller choose all-or-nothing or best-effort semantics.
type BranchResult struct {
	AgentID string
	Output  map[string]any
	Err     error
}

// RunState tracks one workflow invocation.
type RunState string

const (
	RunPending   RunState = "pending"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunFailed    RunState = "failed"
)

// Run is the per-invocation state machine record. It makes a single terminal
// transition; there is no retry or resume.
type Run struct {
	ID        string
	Workflow  string
	State     RunState
	StartedAt time.Time
	EndedAt   time.Time
	Err       error
}

func newRun(workflow string) *Run {
	return &Run{
		ID:       uuid.New().String(),
		Workflow: workflow,
		State:    RunPending,
	}
}

func (r *Run) start(logger *zap.Logger) {
	r.State = RunRunning
	r.StartedAt = time.Now()
	logger.Info("workflow started",
		zap.String("workflow", r.Workflow),
		zap.String("run", r.ID))
}

func (r *Run) finish(logger *zap.Logger, err error) {
	r.EndedAt = time.Now()
	if err != nil {
		r.State = RunFailed
		r.Err = err
		logger.Error("workflow failed",
			zap.String("workflow", r.Workflow),
			zap.String("run", r.ID),
			zap.Duration("duration", r.EndedAt.Sub(r.StartedAt)),
			zap.Error(err))
		return
	}
	r.State = RunCompleted
	logger.Info("workflow completed",
		zap.String("workflow", r.Workflow),
		zap.String("run", r.ID),
		zap.Duration("duration", r.EndedAt.Sub(r.StartedAt)))
}

// mergeInput copies base and overlays extra on top of it.
func mergeInput(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
