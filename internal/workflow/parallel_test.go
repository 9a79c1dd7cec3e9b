package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inkworks/atelier/internal/agent"
	"go.uber.org/zap"
)

// staggeredGenerator completes after a delay, so result ordering is only
// deterministic if the join orders by agent position rather than finish time.
func staggeredGenerator(label string, delay time.Duration) agent.Generator {
	return agent.GeneratorFunc(func(_ context.Context, _ *agent.Task, _ string, _ map[string]any) (map[string]any, error) {
		time.Sleep(delay)
		return map[string]any{"writer": label}, nil
	})
}

func TestParallelPreservesAgentOrder(t *testing.T) {
	// The first agent finishes last; its result must still come first.
	agents := []agent.Capability{
		newWorker(t, "w1", "writer", staggeredGenerator("one", 30*time.Millisecond)),
		newWorker(t, "w2", "writer", staggeredGenerator("two", 10*time.Millisecond)),
		newWorker(t, "w3", "writer", staggeredGenerator("three", 0)),
	}
	w := NewParallel(Metadata{Name: "fanout"}, testTask(), agents, zap.NewNop())

	result, err := w.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	outputs, ok := result["results"].([]map[string]any)
	if !ok {
		t.Fatalf("expected results list, got %T", result["results"])
	}
	want := []string{"one", "two", "three"}
	if len(outputs) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(outputs))
	}
	for i, label := range want {
		if outputs[i]["writer"] != label {
			t.Errorf("result %d: expected %q, got %v", i, label, outputs[i]["writer"])
		}
	}
}

func TestParallelMergeFirst(t *testing.T) {
	agents := []agent.Capability{
		newWorker(t, "w1", "writer", staggeredGenerator("one", 20*time.Millisecond)),
		newWorker(t, "w2", "writer", staggeredGenerator("two", 0)),
	}
	w := NewParallel(Metadata{Name: "fanout", MergeStrategy: MergeFirst}, testTask(), agents, zap.NewNop())

	result, err := w.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	// "first" means first agent, not first to finish.
	if result["writer"] != "one" {
		t.Errorf("expected first agent's result, got %v", result["writer"])
	}
}

func TestParallelMergeCombine(t *testing.T) {
	agents := []agent.Capability{
		newWorker(t, "w1", "writer", labelGenerator("one")),
		newWorker(t, "w2", "writer", labelGenerator("two")),
	}
	w := NewParallel(Metadata{Name: "fanout", MergeStrategy: MergeCombine}, testTask(), agents, zap.NewNop())

	result, err := w.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result["merged"] != true {
		t.Errorf("combine merge must set merged flag: %v", result)
	}
	if outputs := result["results"].([]map[string]any); len(outputs) != 2 {
		t.Errorf("expected 2 combined results, got %d", len(outputs))
	}
}

func TestParallelBranchFailureFailsWorkflow(t *testing.T) {
	boom := errors.New("branch broke")
	agents := []agent.Capability{
		newWorker(t, "w1", "writer", labelGenerator("one")),
		newWorker(t, "w2", "writer", agent.GeneratorFunc(
			func(context.Context, *agent.Task, string, map[string]any) (map[string]any, error) {
				return nil, boom
			})),
	}
	w := NewParallel(Metadata{Name: "fanout"}, testTask(), agents, zap.NewNop())

	if _, err := w.Execute(context.Background(), nil); !errors.Is(err, boom) {
		t.Fatalf("expected branch error to fail the workflow, got %v", err)
	}
}

func TestParallelBestEffortSkipsFailedBranches(t *testing.T) {
	boom := errors.New("branch broke")
	agents := []agent.Capability{
		newWorker(t, "w1", "writer", agent.GeneratorFunc(
			func(context.Context, *agent.Task, string, map[string]any) (map[string]any, error) {
				return nil, boom
			})),
		newWorker(t, "w2", "writer", labelGenerator("two")),
	}
	w := NewParallel(Metadata{Name: "fanout"}, testTask(), agents, zap.NewNop()).AllowPartialFailure()

	result, err := w.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("best-effort execute: %v", err)
	}
	outputs := result["results"].([]map[string]any)
	if len(outputs) != 1 || outputs[0]["writer"] != "two" {
		t.Errorf("expected only surviving branch in merge, got %v", outputs)
	}
}

func TestParallelBestEffortAllFailed(t *testing.T) {
	failing := agent.GeneratorFunc(
		func(context.Context, *agent.Task, string, map[string]any) (map[string]any, error) {
			return nil, errors.New("broke")
		})
	agents := []agent.Capability{
		newWorker(t, "w1", "writer", failing),
		newWorker(t, "w2", "writer", failing),
	}
	w := NewParallel(Metadata{Name: "fanout"}, testTask(), agents, zap.NewNop()).AllowPartialFailure()

	if _, err := w.Execute(context.Background(), nil); !errors.Is(err, ErrAllBranchesFailed) {
		t.Fatalf("expected ErrAllBranchesFailed, got %v", err)
	}
}

func TestParallelNoAgents(t *testing.T) {
	w := NewParallel(Metadata{Name: "empty"}, testTask(), nil, zap.NewNop())
	if _, err := w.Execute(context.Background(), nil); !errors.Is(err, ErrNoAgents) {
		t.Fatalf("expected ErrNoAgents, got %v", err)
	}
}
