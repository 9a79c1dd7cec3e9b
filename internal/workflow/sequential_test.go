package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/inkworks/atelier/internal/agent"
	"go.uber.org/zap"
)

func TestSequentialChainsResults(t *testing.T) {
	first := newWorker(t, "w1", "writer", labelGenerator("one"))
	second := newWorker(t, "w2", "writer", labelGenerator("two"))

	w := NewSequential(Metadata{Name: "chain", Scope: ScopeContent}, testTask(),
		[]agent.Capability{first, second}, zap.NewNop())

	result, err := w.Execute(context.Background(), map[string]any{"topic": "tides"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if result["writer"] != "two" {
		t.Errorf("expected final result from last agent, got %v", result["writer"])
	}
	// The second agent must see both the original input and the first
	// agent's result under the content key.
	if result["topic"] != "tides" {
		t.Errorf("original input not passed through: %v", result["topic"])
	}
	prev, ok := result["previous"].(map[string]any)
	if !ok {
		t.Fatalf("second agent did not receive previous result: %v", result["previous"])
	}
	if prev["writer"] != "one" {
		t.Errorf("previous result should come from first agent, got %v", prev["writer"])
	}
}

func TestSequentialFirstAgentGetsRawInput(t *testing.T) {
	var sawContent bool
	gen := agent.GeneratorFunc(func(_ context.Context, _ *agent.Task, _ string, merged map[string]any) (map[string]any, error) {
		_, sawContent = merged["content"]
		return map[string]any{}, nil
	})
	w := NewSequential(Metadata{Name: "chain"}, testTask(),
		[]agent.Capability{newWorker(t, "w1", "writer", gen)}, zap.NewNop())

	if _, err := w.Execute(context.Background(), map[string]any{"topic": "x"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if sawContent {
		t.Error("first agent must not receive a content key")
	}
}

func TestSequentialStopsOnFailure(t *testing.T) {
	boom := errors.New("draft rejected")
	failing := newWorker(t, "w1", "writer", agent.GeneratorFunc(
		func(context.Context, *agent.Task, string, map[string]any) (map[string]any, error) {
			return nil, boom
		}))

	var ran bool
	after := newWorker(t, "w2", "writer", agent.GeneratorFunc(
		func(context.Context, *agent.Task, string, map[string]any) (map[string]any, error) {
			ran = true
			return map[string]any{}, nil
		}))

	w := NewSequential(Metadata{Name: "chain"}, testTask(),
		[]agent.Capability{failing, after}, zap.NewNop())

	if _, err := w.Execute(context.Background(), nil); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped agent error, got %v", err)
	}
	if ran {
		t.Error("agents after a failed step must not run")
	}
}

func TestSequentialNoAgents(t *testing.T) {
	w := NewSequential(Metadata{Name: "empty"}, testTask(), nil, zap.NewNop())
	if _, err := w.Execute(context.Background(), nil); !errors.Is(err, ErrNoAgents) {
		t.Fatalf("expected ErrNoAgents, got %v", err)
	}
}

func TestSequentialNilTask(t *testing.T) {
	w := NewSequential(Metadata{Name: "niltask"}, nil,
		[]agent.Capability{newWorker(t, "w1", "writer", labelGenerator("one"))}, zap.NewNop())
	if _, err := w.Execute(context.Background(), nil); !errors.Is(err, agent.ErrNilTask) {
		t.Fatalf("expected ErrNilTask, got %v", err)
	}
}
