package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/inkworks/atelier/internal/agent"
	"go.uber.org/zap"
)

func countingWorker(t *testing.T, calls *int) *agent.StatefulAgent {
	t.Helper()
	gen := agent.GeneratorFunc(func(_ context.Context, _ *agent.Task, _ string, merged map[string]any) (map[string]any, error) {
		*calls++
		return map[string]any{"pass": *calls}, nil
	})
	return newWorker(t, "refiner", "editor", gen)
}

func TestLoopStopsWhenConditionFalse(t *testing.T) {
	var calls int
	cond := func(_ map[string]any, iteration int) bool { return iteration < 3 }

	w := NewLoop(Metadata{Name: "refine", MaxIterations: 10}, testTask(),
		countingWorker(t, &calls), cond, zap.NewNop())

	result, err := w.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 iterations, got %d", calls)
	}
	if result["pass"] != 3 {
		t.Errorf("expected final iteration result, got %v", result["pass"])
	}
}

func TestLoopWithoutConditionRunsToCap(t *testing.T) {
	var calls int
	w := NewLoop(Metadata{Name: "refine", MaxIterations: 4}, testTask(),
		countingWorker(t, &calls), nil, zap.NewNop())

	if _, err := w.Execute(context.Background(), nil); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if calls != 4 {
		t.Errorf("expected iteration cap runs, got %d", calls)
	}
}

func TestLoopRunsAtLeastOnce(t *testing.T) {
	var calls int
	cond := func(map[string]any, int) bool { return false }

	w := NewLoop(Metadata{Name: "refine"}, testTask(),
		countingWorker(t, &calls), cond, zap.NewNop())

	if _, err := w.Execute(context.Background(), nil); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if calls != 1 {
		t.Errorf("loop must run exactly once with an always-false condition, got %d", calls)
	}
}

func TestLoopFeedsResultForward(t *testing.T) {
	var sawPrevious bool
	gen := agent.GeneratorFunc(func(_ context.Context, _ *agent.Task, _ string, merged map[string]any) (map[string]any, error) {
		if v, ok := merged["pass"]; ok && v == 1 {
			sawPrevious = true
		}
		return map[string]any{"pass": 1}, nil
	})
	cond := func(_ map[string]any, iteration int) bool { return iteration < 2 }

	w := NewLoop(Metadata{Name: "refine"}, testTask(),
		newWorker(t, "refiner", "editor", gen), cond, zap.NewNop())

	if _, err := w.Execute(context.Background(), nil); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !sawPrevious {
		t.Error("second iteration must receive first iteration's result as context")
	}
}

func TestLoopDefaultsIterationCap(t *testing.T) {
	var calls int
	w := NewLoop(Metadata{Name: "refine"}, testTask(),
		countingWorker(t, &calls), nil, zap.NewNop())
	if w.Meta().MaxIterations != DefaultMaxIterations {
		t.Fatalf("expected default cap, got %d", w.Meta().MaxIterations)
	}
}

func TestLoopIterationError(t *testing.T) {
	boom := errors.New("refinement failed")
	var calls int
	gen := agent.GeneratorFunc(func(context.Context, *agent.Task, string, map[string]any) (map[string]any, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return map[string]any{}, nil
	})
	w := NewLoop(Metadata{Name: "refine", MaxIterations: 5}, testTask(),
		newWorker(t, "refiner", "editor", gen), nil, zap.NewNop())

	if _, err := w.Execute(context.Background(), nil); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped iteration error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("loop must stop at the failing iteration, got %d calls", calls)
	}
}
