package agent

// Status represents an agent's current lifecycle state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusWorking   Status = "working"
	StatusWaiting   Status = "waiting"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// State is the mutable record owned by exactly one agent instance. Variables
// hold data produced by prior tasks; Parameters hold configuration. Only the
// owning agent's methods mutate a State.
type State struct {
	AgentID        string         `json:"agent_id"`
	Role           string         `json:"role"`
	Status         Status         `json:"status"`
	CurrentTask    string         `json:"current_task,omitempty"`
	CompletedTasks []string       `json:"completed_tasks"`
	Variables      map[string]any `json:"variables"`
	Parameters     map[string]any `json:"parameters"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Config describes how to instantiate an agent for a role.
type Config struct {
	Role           string         `json:"role" yaml:"role"`
	Instruction    string         `json:"instruction" yaml:"instruction"`
	Temperature    float64        `json:"temperature" yaml:"temperature"`
	MaxTokens      int            `json:"max_tokens,omitempty" yaml:"max_tokens"`
	RequiredParams []string       `json:"required_parameters,omitempty" yaml:"required_parameters"`
	OptionalParams map[string]any `json:"optional_parameters,omitempty" yaml:"optional_parameters"`
	Capabilities   []string       `json:"capabilities,omitempty" yaml:"capabilities"`
}

// Message is passed between agents over the message bus.
type Message struct {
	Sender   string         `json:"sender"`
	Receiver string         `json:"receiver"`
	Content  string         `json:"content"`
	Type     string         `json:"type"` // "task", "response", "feedback"
	Data     map[string]any `json:"data,omitempty"`
}
