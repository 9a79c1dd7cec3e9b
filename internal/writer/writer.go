// Package writer provides static, template-based content generators for each
// studio role. They produce structured output deterministically, which keeps
// workflow behavior reproducible and testable; an LLM-backed generator can be
// swapped in per role without touching the orchestration core.
package writer

import (
	"hash/fnv"

	"github.com/inkworks/atelier/internal/agent"
)

// Role names the studio understands out of the box.
const (
	RoleStoryWriter      = "story_writer"
	RoleQuizWriter       = "quiz_writer"
	RoleGameWriter       = "game_writer"
	RoleSimulationWriter = "simulation_writer"
	RoleReviewer         = "editorial_reviewer"
	RoleRefiner          = "editorial_refiner"
)

// ForRole returns the static generator for a role.
func ForRole(role string) (agent.Generator, bool) {
	switch role {
	case RoleStoryWriter:
		return StoryGenerator(), true
	case RoleQuizWriter:
		return QuizGenerator(), true
	case RoleGameWriter:
		return GameGenerator(), true
	case RoleSimulationWriter:
		return SimulationGenerator(), true
	case RoleReviewer:
		return ReviewerGenerator(), true
	case RoleRefiner:
		return RefinerGenerator(), true
	default:
		return nil, false
	}
}

// pick selects a template from a pool using a stable hash of the seed plus an
// offset. Same topic, same output. The index is computed in uint64 so large
// hash values cannot go negative on 32-bit platforms.
func pick(pool []string, seed string, offset int) string {
	h := fnv.New32a()
	h.Write([]byte(seed))
	idx := (uint64(h.Sum32()) + uint64(offset)) % uint64(len(pool))
	return pool[idx]
}

func stringParam(ctx map[string]any, key, fallback string) string {
	if v, ok := ctx[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func intParam(ctx map[string]any, key string, fallback int) int {
	switch v := ctx[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}
