package agent

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

// echoGenerator returns the resolved prompt and merged context unchanged.
func echoGenerator() Generator {
	return GeneratorFunc(func(_ context.Context, task *Task, resolved string, merged map[string]any) (map[string]any, error) {
		return map[string]any{
			"task_id": task.ID,
			"prompt":  resolved,
			"merged":  merged,
		}, nil
	})
}

func newTestAgent(t *testing.T, cfg Config, gen Generator) *StatefulAgent {
	t.Helper()
	if cfg.Role == "" {
		cfg.Role = "writer"
	}
	return NewStatefulAgent("test-agent", cfg, gen, zap.NewNop())
}

func TestProcessTaskResolvesPrompt(t *testing.T) {
	a := newTestAgent(t, Config{}, echoGenerator())
	a.SetVariable("topic", "oceans")

	task := &Task{ID: "t1", Role: "writer", Prompt: "Write about {topic} for {audience}"}
	result, err := a.ProcessTask(context.Background(), task, map[string]any{"audience": "kids"})
	if err != nil {
		t.Fatalf("process task: %v", err)
	}
	if result["prompt"] != "Write about oceans for kids" {
		t.Errorf("unexpected resolved prompt %q", result["prompt"])
	}
}

func TestProcessTaskMergePrecedence(t *testing.T) {
	a := newTestAgent(t, Config{OptionalParams: map[string]any{"key": "from-params"}}, echoGenerator())

	// Variables beat parameters.
	a.SetVariable("key", "from-variables")
	task := &Task{ID: "t1", Prompt: "{key}"}
	result, err := a.ProcessTask(context.Background(), task, nil)
	if err != nil {
		t.Fatalf("process task: %v", err)
	}
	if result["prompt"] != "from-variables" {
		t.Errorf("expected variables to win over parameters, got %q", result["prompt"])
	}

	// Task params beat variables.
	task = &Task{ID: "t2", Prompt: "{key}", Params: map[string]any{"key": "from-task"}}
	result, _ = a.ProcessTask(context.Background(), task, nil)
	if result["prompt"] != "from-task" {
		t.Errorf("expected task params to win over variables, got %q", result["prompt"])
	}

	// Extra context beats everything.
	result, _ = a.ProcessTask(context.Background(), task, map[string]any{"key": "from-extra"})
	if result["prompt"] != "from-extra" {
		t.Errorf("expected extra context to win, got %q", result["prompt"])
	}
}

func TestProcessTaskStoresOutputKey(t *testing.T) {
	a := newTestAgent(t, Config{}, echoGenerator())

	task := &Task{ID: "t1", Prompt: "hello", OutputKey: "content_block"}
	result, err := a.ProcessTask(context.Background(), task, nil)
	if err != nil {
		t.Fatalf("process task: %v", err)
	}

	stored, ok := a.Variable("content_block")
	if !ok {
		t.Fatal("expected result stored under output key")
	}
	if sm, ok := stored.(map[string]any); !ok || sm["task_id"] != result["task_id"] {
		t.Errorf("stored value does not match result: %v", stored)
	}
}

func TestProcessTaskLifecycle(t *testing.T) {
	a := newTestAgent(t, Config{}, echoGenerator())

	task := &Task{ID: "t1", Prompt: "x"}
	if _, err := a.ProcessTask(context.Background(), task, nil); err != nil {
		t.Fatalf("process task: %v", err)
	}

	state := a.State()
	if state.Status != StatusCompleted {
		t.Errorf("expected status completed, got %s", state.Status)
	}
	if state.CurrentTask != "" {
		t.Errorf("expected current task cleared, got %q", state.CurrentTask)
	}
	if len(state.CompletedTasks) != 1 || state.CompletedTasks[0] != "t1" {
		t.Errorf("expected completed tasks [t1], got %v", state.CompletedTasks)
	}

	runs := a.TaskRuns()
	if len(runs) != 1 {
		t.Fatalf("expected 1 task run, got %d", len(runs))
	}
	if runs[0].Status != StatusCompleted || runs[0].TaskID != "t1" {
		t.Errorf("unexpected run record %+v", runs[0])
	}
}

func TestProcessTaskGeneratorError(t *testing.T) {
	boom := errors.New("generation failed")
	gen := GeneratorFunc(func(context.Context, *Task, string, map[string]any) (map[string]any, error) {
		return nil, boom
	})
	a := newTestAgent(t, Config{}, gen)

	_, err := a.ProcessTask(context.Background(), &Task{ID: "t1", Prompt: "x"}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped generator error, got %v", err)
	}

	state := a.State()
	if state.Status != StatusError {
		t.Errorf("expected status error, got %s", state.Status)
	}
	if len(state.CompletedTasks) != 0 {
		t.Errorf("failed task must not be marked completed: %v", state.CompletedTasks)
	}
}

func TestProcessTaskNilTask(t *testing.T) {
	a := newTestAgent(t, Config{}, echoGenerator())
	if _, err := a.ProcessTask(context.Background(), nil, nil); !errors.Is(err, ErrNilTask) {
		t.Fatalf("expected ErrNilTask, got %v", err)
	}
}

func TestStateSnapshotIsolated(t *testing.T) {
	a := newTestAgent(t, Config{}, echoGenerator())
	a.SetVariable("k", "v")

	snap := a.State()
	snap.Variables["k"] = "mutated"
	snap.CompletedTasks = append(snap.CompletedTasks, "fake")

	if v, _ := a.Variable("k"); v != "v" {
		t.Errorf("snapshot mutation leaked into agent state: %v", v)
	}
	if len(a.State().CompletedTasks) != 0 {
		t.Error("snapshot slice mutation leaked into agent state")
	}
}

func TestReset(t *testing.T) {
	a := newTestAgent(t, Config{OptionalParams: map[string]any{"difficulty": "medium"}}, echoGenerator())
	a.SetParameter("difficulty", "hard")
	a.SetVariable("content", "draft")
	if _, err := a.ProcessTask(context.Background(), &Task{ID: "t1", Prompt: "x"}, nil); err != nil {
		t.Fatalf("process task: %v", err)
	}

	a.Reset()

	state := a.State()
	if state.Status != StatusIdle {
		t.Errorf("expected idle after reset, got %s", state.Status)
	}
	if len(state.Variables) != 0 {
		t.Errorf("expected variables cleared, got %v", state.Variables)
	}
	if len(state.CompletedTasks) != 0 {
		t.Errorf("expected task history cleared, got %v", state.CompletedTasks)
	}
	if v, _ := a.Parameter("difficulty"); v != "medium" {
		t.Errorf("expected parameter re-seeded from config default, got %v", v)
	}
}
