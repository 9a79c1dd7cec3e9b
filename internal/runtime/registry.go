// Package runtime assembles agents, teams, and workflows from configuration
// and drives their execution.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/inkworks/atelier/internal/agent"
	"github.com/inkworks/atelier/internal/messaging"
	"github.com/inkworks/atelier/internal/workflow"
)

var (
	ErrAgentNotFound    = errors.New("agent not found")
	ErrTeamNotFound     = errors.New("team not found")
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrUnknownRole      = errors.New("no configuration for role")
	ErrNoGenerator      = errors.New("no generator for role")
)

// Team groups agents assembled from a role list. AgentIDs records the
// instances created for the team's role slots.
type Team struct {
	Name        string    `json:"name" yaml:"name"`
	Scope       string    `json:"scope" yaml:"scope"`
	Description string    `json:"description,omitempty" yaml:"description"`
	Roles       []string  `json:"roles" yaml:"roles"`
	AgentIDs    []string  `json:"agent_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// GeneratorFactory resolves the generation strategy for a role.
type GeneratorFactory func(role string) (agent.Generator, bool)

// RunRecorder persists task execution records; the Postgres store satisfies
// it. Attached after construction so the registry runs fine without one.
type RunRecorder interface {
	RecordTaskRun(ctx context.Context, run agent.TaskRun) error
}

// Registry is the runtime's central directory: agents, teams, and workflows
// created from the role catalog. The message bus is optional; when present,
// task results are published to the executing agent's stream.
type Registry struct {
	configs map[string]agent.Config
	gens    GeneratorFactory
	bus     *messaging.Bus
	logger  *zap.Logger

	mu        sync.RWMutex
	runLog    RunRecorder
	agents    map[string]agent.Capability
	teams     map[string]*Team
	workflows map[string]workflow.Workflow
}

// New creates a registry over a role catalog. Pass a nil bus to run without
// messaging.
func New(configs map[string]agent.Config, gens GeneratorFactory, bus *messaging.Bus, logger *zap.Logger) *Registry {
	r := &Registry{
		configs:   configs,
		gens:      gens,
		bus:       bus,
		logger:    logger,
		agents:    make(map[string]agent.Capability),
		teams:     make(map[string]*Team),
		workflows: make(map[string]workflow.Workflow),
	}
	logger.Info("initialized runtime registry", zap.Int("roles", len(configs)))
	return r
}

// SetRunRecorder attaches a persistence sink for task execution records.
// Every task executed through the registry is flushed to it on completion,
// failures included.
func (r *Registry) SetRunRecorder(rec RunRecorder) {
	r.mu.Lock()
	r.runLog = rec
	r.mu.Unlock()
}

// Config returns the catalog configuration for a role.
func (r *Registry) Config(role string) (agent.Config, bool) {
	cfg, ok := r.configs[role]
	return cfg, ok
}

// CreateAgent instantiates and registers an agent for a catalog role. An
// empty id gets a generated one. Creating an agent with an existing id
// replaces the previous instance.
func (r *Registry) CreateAgent(id, role string) (agent.Capability, error) {
	cfg, ok := r.configs[role]
	if !ok {
		return nil, fmt.Errorf("create agent %s: %w: %s", id, ErrUnknownRole, role)
	}
	gen, ok := r.gens(role)
	if !ok {
		return nil, fmt.Errorf("create agent %s: %w: %s", id, ErrNoGenerator, role)
	}

	a := agent.NewStatefulAgent(id, cfg, gen, r.logger)

	r.mu.Lock()
	r.agents[a.ID()] = a
	r.mu.Unlock()

	return a, nil
}

// Agent looks up a registered agent.
func (r *Registry) Agent(id string) (agent.Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	return a, ok
}

// ListAgents returns all registered agent ids.
func (r *Registry) ListAgents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	return ids
}

// CreateTeam instantiates one agent per role slot and registers the team.
// Agent ids follow <team>_<role>_<idx>. Roles missing from the catalog are
// skipped with a warning rather than failing the whole team.
func (r *Registry) CreateTeam(team *Team) ([]agent.Capability, error) {
	if team == nil || team.Name == "" {
		return nil, errors.New("team needs a name")
	}
	team.CreatedAt = time.Now()

	var members []agent.Capability
	for idx, role := range team.Roles {
		if _, ok := r.configs[role]; !ok {
			r.logger.Warn("no config for role, skipping team slot",
				zap.String("team", team.Name),
				zap.String("role", role),
				zap.Int("slot", idx))
			continue
		}
		id := fmt.Sprintf("%s_%s_%d", team.Name, role, idx)
		a, err := r.CreateAgent(id, role)
		if err != nil {
			return nil, fmt.Errorf("team %s slot %d: %w", team.Name, idx, err)
		}
		members = append(members, a)
		team.AgentIDs = append(team.AgentIDs, id)
	}

	r.mu.Lock()
	r.teams[team.Name] = team
	r.mu.Unlock()

	r.logger.Info("created team",
		zap.String("team", team.Name),
		zap.Int("agents", len(members)))
	return members, nil
}

// Team looks up team metadata by name.
func (r *Registry) Team(name string) (*Team, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.teams[name]
	return t, ok
}

// ListTeams returns all registered team names.
func (r *Registry) ListTeams() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.teams))
	for name := range r.teams {
		names = append(names, name)
	}
	return names
}

// TeamAgents returns the live agent instances behind a team's slots. Slots
// whose agents were since replaced or never created are omitted.
func (r *Registry) TeamAgents(name string) []agent.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	team, ok := r.teams[name]
	if !ok {
		return nil
	}
	agents := make([]agent.Capability, 0, len(team.AgentIDs))
	for _, id := range team.AgentIDs {
		if a, ok := r.agents[id]; ok {
			agents = append(agents, a)
		}
	}
	return agents
}

// RegisterWorkflow adds a workflow under its metadata name, replacing any
// previous registration.
func (r *Registry) RegisterWorkflow(w workflow.Workflow) {
	meta := w.Meta()
	r.mu.Lock()
	r.workflows[meta.Name] = w
	r.mu.Unlock()

	r.logger.Info("registered workflow",
		zap.String("workflow", meta.Name),
		zap.String("pattern", string(meta.Pattern)),
		zap.String("scope", string(meta.Scope)))
}

// Workflow looks up a registered workflow.
func (r *Registry) Workflow(name string) (workflow.Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workflows[name]
	return w, ok
}

// ListWorkflows returns registered workflow names, optionally filtered by
// scope. An empty scope matches everything.
func (r *Registry) ListWorkflows(scope workflow.Scope) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.workflows))
	for name, w := range r.workflows {
		if scope != "" && w.Meta().Scope != scope {
			continue
		}
		names = append(names, name)
	}
	return names
}

// ExecuteWorkflow runs a registered workflow by name.
func (r *Registry) ExecuteWorkflow(ctx context.Context, name string, input map[string]any) (map[string]any, error) {
	w, ok := r.Workflow(name)
	if !ok {
		return nil, fmt.Errorf("execute workflow: %w: %s", ErrWorkflowNotFound, name)
	}
	return w.Execute(ctx, input)
}

// ExecuteTask runs a single task on a specific agent. When a message bus is
// attached, the result is published back to the agent's stream as a response
// message.
func (r *Registry) ExecuteTask(ctx context.Context, agentID string, task *agent.Task, params map[string]any) (map[string]any, error) {
	a, ok := r.Agent(agentID)
	if !ok {
		return nil, fmt.Errorf("execute task: %w: %s", ErrAgentNotFound, agentID)
	}

	result, err := a.ProcessTask(ctx, task, params)
	if !errors.Is(err, agent.ErrNilTask) {
		r.recordRun(ctx, a)
	}
	if err != nil {
		return nil, err
	}

	if r.bus != nil {
		msg := agent.Message{
			Sender:   agentID,
			Receiver: agentID,
			Content:  fmt.Sprintf("completed task %s", task.ID),
			Type:     "response",
			Data:     result,
		}
		if perr := r.bus.Publish(ctx, msg); perr != nil {
			r.logger.Warn("publish task result failed",
				zap.String("agent", agentID),
				zap.String("task", task.ID),
				zap.Error(perr))
		}
	}
	return result, nil
}

// recordRun flushes the agent's latest execution record to the attached
// recorder. A sink failure is logged, never surfaced: history is advisory.
func (r *Registry) recordRun(ctx context.Context, a agent.Capability) {
	r.mu.RLock()
	rec := r.runLog
	r.mu.RUnlock()
	if rec == nil {
		return
	}
	tracker, ok := a.(interface{ TaskRuns() []agent.TaskRun })
	if !ok {
		return
	}
	runs := tracker.TaskRuns()
	if len(runs) == 0 {
		return
	}
	last := runs[len(runs)-1]
	if err := rec.RecordTaskRun(ctx, last); err != nil {
		r.logger.Warn("persist task run failed",
			zap.String("agent", a.ID()),
			zap.String("run", last.RunID),
			zap.Error(err))
	}
}

// AgentRuns returns an agent's in-memory task execution records.
func (r *Registry) AgentRuns(id string) ([]agent.TaskRun, bool) {
	a, ok := r.Agent(id)
	if !ok {
		return nil, false
	}
	if tracker, ok := a.(interface{ TaskRuns() []agent.TaskRun }); ok {
		return tracker.TaskRuns(), true
	}
	return nil, true
}

// LinkTeam assigns a team's agents to a registered workflow.
func (r *Registry) LinkTeam(workflowName, teamName string) error {
	w, ok := r.Workflow(workflowName)
	if !ok {
		return fmt.Errorf("link team: %w: %s", ErrWorkflowNotFound, workflowName)
	}
	if _, ok := r.Team(teamName); !ok {
		return fmt.Errorf("link team: %w: %s", ErrTeamNotFound, teamName)
	}
	agents := r.TeamAgents(teamName)
	if len(agents) == 0 {
		return fmt.Errorf("link team: team %s has no live agents", teamName)
	}
	if err := w.AssignAgents(agents); err != nil {
		return fmt.Errorf("link team %s to %s: %w", teamName, workflowName, err)
	}
	r.logger.Info("linked team to workflow",
		zap.String("workflow", workflowName),
		zap.String("team", teamName),
		zap.Int("agents", len(agents)))
	return nil
}

// AgentState returns a state snapshot for an agent.
func (r *Registry) AgentState(id string) (agent.State, bool) {
	a, ok := r.Agent(id)
	if !ok {
		return agent.State{}, false
	}
	return a.State(), true
}

// ResetAgent clears an agent's runtime state. Returns false when the agent
// does not exist or cannot be reset.
func (r *Registry) ResetAgent(id string) bool {
	a, ok := r.Agent(id)
	if !ok {
		return false
	}
	resettable, ok := a.(interface{ Reset() })
	if !ok {
		return false
	}
	resettable.Reset()
	return true
}

// Shutdown drops all agents, teams, and workflows.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Info("shutting down registry",
		zap.Int("agents", len(r.agents)),
		zap.Int("teams", len(r.teams)),
		zap.Int("workflows", len(r.workflows)))

	r.agents = make(map[string]agent.Capability)
	r.teams = make(map[string]*Team)
	r.workflows = make(map[string]workflow.Workflow)
}
