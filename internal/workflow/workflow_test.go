package workflow

import (
	"context"
	"testing"

	"github.com/inkworks/atelier/internal/agent"
	"go.uber.org/zap"
)

// newWorker builds a real stateful agent around the given generator so the
// workflow tests exercise the full merge-and-resolve path, not a stub.
func newWorker(t *testing.T, id, role string, gen agent.Generator) *agent.StatefulAgent {
	t.Helper()
	return agent.NewStatefulAgent(id, agent.Config{Role: role}, gen, zap.NewNop())
}

// labelGenerator tags its output with the agent label and echoes the extra
// context it received, so tests can trace which agent ran and what it saw.
func labelGenerator(label string) agent.Generator {
	return agent.GeneratorFunc(func(_ context.Context, _ *agent.Task, _ string, merged map[string]any) (map[string]any, error) {
		out := map[string]any{"writer": label}
		if c, ok := merged["content"]; ok {
			out["previous"] = c
		}
		if topic, ok := merged["topic"]; ok {
			out["topic"] = topic
		}
		return out, nil
	})
}

func testTask() *agent.Task {
	return &agent.Task{ID: "draft", Role: "writer", Prompt: "Write about {topic}"}
}
