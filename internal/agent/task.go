package agent

import "time"

// Task is an immutable catalog entry describing one unit of work: the role
// required to execute it, a prompt template with {placeholder} syntax, static
// parameters merged into the execution context, and the variable name the
// result is stored under. Tasks are shared and reused across executions;
// per-execution status belongs in a TaskRun, never on the Task itself.
type Task struct {
	ID        string         `json:"task_id" yaml:"id"`
	Role      string         `json:"role" yaml:"role"`
	Prompt    string         `json:"prompt" yaml:"prompt"`
	Params    map[string]any `json:"parameters,omitempty" yaml:"parameters"`
	DependsOn []string       `json:"dependencies,omitempty" yaml:"depends_on"`
	OutputKey string         `json:"output_key,omitempty" yaml:"output_key"`
}

// TaskRun records one execution of a Task by one agent.
type TaskRun struct {
	RunID       string    `json:"run_id"`
	TaskID      string    `json:"task_id"`
	AgentID     string    `json:"agent_id"`
	Status      Status    `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
	Error       string    `json:"error,omitempty"`
}
