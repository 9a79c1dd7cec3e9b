package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inkworks/atelier/internal/prompt"
	"go.uber.org/zap"
)

// Capability is the contract every executable unit satisfies. Workflows and
// the runtime registry only ever see this interface.
type Capability interface {
	ID() string
	Role() string
	// ProcessTask resolves the task prompt against the merged context and
	// runs the agent's generation logic. Extra context has the highest
	// merge precedence: parameters < variables < task params < extra.
	ProcessTask(ctx context.Context, task *Task, extra map[string]any) (map[string]any, error)
	UpdateStatus(Status)
	State() State
}

// Generator is the injected generation strategy: it turns a resolved prompt
// plus merged context into a result map. Concrete generators (static template
// fillers, LLM-backed writers) live outside the orchestration core.
type Generator interface {
	Generate(ctx context.Context, task *Task, resolvedPrompt string, merged map[string]any) (map[string]any, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, task *Task, resolvedPrompt string, merged map[string]any) (map[string]any, error)

func (f GeneratorFunc) Generate(ctx context.Context, task *Task, resolvedPrompt string, merged map[string]any) (map[string]any, error) {
	return f(ctx, task, resolvedPrompt, merged)
}

// ErrNilTask is returned when ProcessTask is called without a task.
var ErrNilTask = errors.New("nil task")

// StatefulAgent is the single concrete agent type: one State record plus an
// injected Generator. Domain behavior is a strategy, not a subclass.
//
// A mutex guards the State so that a pooled agent observed from another
// goroutine (state snapshots, status reads) never sees a torn write. Two
// workflows should still not share one agent instance for concurrent task
// execution; the registry sizes teams so each branch owns its agent.
type StatefulAgent struct {
	cfg    Config
	gen    Generator
	logger *zap.Logger

	mu    sync.Mutex
	state State
	runs  []TaskRun
}

// NewStatefulAgent creates an agent in the idle state. Optional parameter
// defaults from the config seed the parameter namespace.
func NewStatefulAgent(id string, cfg Config, gen Generator, logger *zap.Logger) *StatefulAgent {
	if id == "" {
		id = uuid.New().String()
	}
	params := make(map[string]any, len(cfg.OptionalParams))
	for k, v := range cfg.OptionalParams {
		params[k] = v
	}
	a := &StatefulAgent{
		cfg:    cfg,
		gen:    gen,
		logger: logger,
		state: State{
			AgentID:    id,
			Role:       cfg.Role,
			Status:     StatusIdle,
			Variables:  make(map[string]any),
			Parameters: params,
			Metadata:   make(map[string]any),
		},
	}
	logger.Info("created agent",
		zap.String("id", id),
		zap.String("role", cfg.Role))
	return a
}

// ID returns the agent identifier.
func (a *StatefulAgent) ID() string { return a.state.AgentID }

// Role returns the capability category this agent fills.
func (a *StatefulAgent) Role() string { return a.cfg.Role }

// Config returns the configuration the agent was created from.
func (a *StatefulAgent) Config() Config { return a.cfg }

// ProcessTask executes one task: status moves to working, the context is
// merged (parameters < variables < task params < extra), the prompt is
// resolved, the generator runs, and the result is stored under the task's
// output key. Unresolved placeholders are logged but never fatal. There are
// no retries: a generator error leaves the agent in the error status and
// propagates to the caller.
func (a *StatefulAgent) ProcessTask(ctx context.Context, task *Task, extra map[string]any) (map[string]any, error) {
	if task == nil {
		return nil, ErrNilTask
	}

	run := TaskRun{
		RunID:     uuid.New().String(),
		TaskID:    task.ID,
		AgentID:   a.state.AgentID,
		Status:    StatusWorking,
		StartedAt: time.Now(),
	}

	a.mu.Lock()
	a.state.Status = StatusWorking
	a.state.CurrentTask = task.ID
	merged := a.mergeContextLocked(task, extra)
	a.mu.Unlock()

	if ok, missing := prompt.Validate(task.Prompt, merged); !ok {
		a.logger.Warn("task prompt has unresolved placeholders, proceeding with available context",
			zap.String("agent", a.state.AgentID),
			zap.String("task", task.ID),
			zap.Strings("missing", missing))
	}
	resolved := prompt.Substitute(task.Prompt, merged)

	a.logger.Debug("processing task",
		zap.String("agent", a.state.AgentID),
		zap.String("task", task.ID))

	result, err := a.gen.Generate(ctx, task, resolved, merged)

	run.CompletedAt = time.Now()
	if err != nil {
		run.Status = StatusError
		run.Error = err.Error()
		a.mu.Lock()
		a.state.Status = StatusError
		a.state.CurrentTask = ""
		a.runs = append(a.runs, run)
		a.mu.Unlock()
		return nil, fmt.Errorf("agent %s task %s: %w", a.state.AgentID, task.ID, err)
	}
	run.Status = StatusCompleted

	a.mu.Lock()
	if task.OutputKey != "" {
		a.state.Variables[task.OutputKey] = result
	}
	a.state.CompletedTasks = append(a.state.CompletedTasks, task.ID)
	a.state.CurrentTask = ""
	a.state.Status = StatusCompleted
	a.runs = append(a.runs, run)
	a.mu.Unlock()

	return result, nil
}

// mergeContextLocked builds the execution context. Extra context is also
// written back into the parameter namespace so later tasks see it as
// configuration. Caller holds a.mu.
func (a *StatefulAgent) mergeContextLocked(task *Task, extra map[string]any) map[string]any {
	merged := make(map[string]any, len(a.state.Parameters)+len(a.state.Variables)+len(task.Params)+len(extra))
	for k, v := range a.state.Parameters {
		merged[k] = v
	}
	for k, v := range a.state.Variables {
		merged[k] = v
	}
	for k, v := range task.Params {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
		a.state.Parameters[k] = v
	}
	return merged
}

// UpdateStatus sets the agent status.
func (a *StatefulAgent) UpdateStatus(s Status) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Status = s
}

// State returns a snapshot of the agent state. Maps and slices are copied so
// callers cannot mutate the agent's own record.
func (a *StatefulAgent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := a.state
	snap.CompletedTasks = append([]string(nil), a.state.CompletedTasks...)
	snap.Variables = copyMap(a.state.Variables)
	snap.Parameters = copyMap(a.state.Parameters)
	snap.Metadata = copyMap(a.state.Metadata)
	return snap
}

// TaskRuns returns the execution records accumulated by this agent.
func (a *StatefulAgent) TaskRuns() []TaskRun {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]TaskRun(nil), a.runs...)
}

// SetVariable stores a runtime variable.
func (a *StatefulAgent) SetVariable(key string, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Variables[key] = value
}

// Variable reads a runtime variable.
func (a *StatefulAgent) Variable(key string) (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.state.Variables[key]
	return v, ok
}

// SetParameter stores a configuration parameter.
func (a *StatefulAgent) SetParameter(key string, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Parameters[key] = value
}

// Parameter reads a configuration parameter.
func (a *StatefulAgent) Parameter(key string) (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.state.Parameters[key]
	return v, ok
}

// Reset clears variables, task history, and run records, returning the agent
// to the idle state. Parameters are re-seeded from the config defaults.
func (a *StatefulAgent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state.Variables = make(map[string]any)
	a.state.CompletedTasks = nil
	a.state.CurrentTask = ""
	a.state.Status = StatusIdle
	a.runs = nil

	params := make(map[string]any, len(a.cfg.OptionalParams))
	for k, v := range a.cfg.OptionalParams {
		params[k] = v
	}
	a.state.Parameters = params

	a.logger.Debug("reset agent", zap.String("id", a.state.AgentID))
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
