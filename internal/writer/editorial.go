package writer

import (
	"context"
	"fmt"

	"github.com/inkworks/atelier/internal/agent"
)

// requiredContentFields maps content shapes to the fields a complete piece of
// that shape must carry. The reviewer scores drafts against these.
var requiredContentFields = map[string][]string{
	"quiz":       {"title", "questions", "passing_score"},
	"story":      {"title", "start_node", "nodes"},
	"game":       {"title", "stages", "victory_condition"},
	"simulation": {"title", "variables", "controls"},
}

// ReviewerGenerator scores a draft found under the content key against the
// structural requirements for its shape and emits feedback plus an approval
// flag. Drafts without a recognizable shape score zero.
func ReviewerGenerator() agent.Generator {
	return agent.GeneratorFunc(func(_ context.Context, _ *agent.Task, _ string, merged map[string]any) (map[string]any, error) {
		draft, ok := merged["content"].(map[string]any)
		if !ok {
			return map[string]any{
				"score":    0.0,
				"approved": false,
				"feedback": []string{"no draft content to review"},
			}, nil
		}

		shape := detectShape(draft)
		required := requiredContentFields[shape]

		var feedback []string
		present := 0
		for _, field := range required {
			if _, ok := draft[field]; ok {
				present++
				continue
			}
			feedback = append(feedback, fmt.Sprintf("missing required field %q", field))
		}

		score := 0.0
		if len(required) > 0 {
			score = float64(present) / float64(len(required))
		}
		if len(feedback) == 0 {
			feedback = []string{"draft meets structural requirements"}
		}

		return map[string]any{
			"shape":    shape,
			"score":    score,
			"approved": score >= 1.0,
			"feedback": feedback,
		}, nil
	})
}

// RefinerGenerator applies a revision pass to the draft under the content
// key, tracking the revision count so loop conditions can bound refinement.
func RefinerGenerator() agent.Generator {
	return agent.GeneratorFunc(func(_ context.Context, _ *agent.Task, _ string, merged map[string]any) (map[string]any, error) {
		refined := make(map[string]any)
		if draft, ok := merged["content"].(map[string]any); ok {
			for k, v := range draft {
				refined[k] = v
			}
		}

		// A prior pass may arrive wrapped under the content key or flattened
		// into the context when looped.
		revision := 1
		if prev, ok := merged["revision"].(int); ok {
			revision = prev + 1
		} else if prev, ok := refined["revision"].(int); ok {
			revision = prev + 1
		}
		refined["revision"] = revision

		if fb, ok := merged["feedback"]; ok {
			refined["addressed_feedback"] = fb
		}

		return refined, nil
	})
}

func detectShape(draft map[string]any) string {
	switch {
	case has(draft, "questions"):
		return "quiz"
	case has(draft, "nodes"):
		return "story"
	case has(draft, "stages"):
		return "game"
	case has(draft, "variables") && has(draft, "controls"):
		return "simulation"
	default:
		return "unknown"
	}
}

func has(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}
