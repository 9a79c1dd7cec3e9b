package writer

import (
	"context"
	"fmt"

	"github.com/inkworks/atelier/internal/agent"
)

var questRooms = []string{
	"The Entrance", "The Ancient Portal", "The Whispering Forest",
	"The Descending Steps", "The Library of Knowledge", "The Sacred Grove",
	"The Eternal Spring", "The Ancient Vault", "The Final Chamber",
}

// GameGenerator produces a quest game with ordered stages from the topic and
// complexity context keys. Complexity selects how many stages the quest has.
func GameGenerator() agent.Generator {
	return agent.GeneratorFunc(func(_ context.Context, _ *agent.Task, _ string, merged map[string]any) (map[string]any, error) {
		topic := stringParam(merged, "topic", "mystery")
		complexity := stringParam(merged, "complexity", "medium")

		numStages := 5
		switch complexity {
		case "easy":
			numStages = 3
		case "hard":
			numStages = len(questRooms)
		}

		stages := make([]map[string]any, 0, numStages)
		for i := 0; i < numStages; i++ {
			stage := map[string]any{
				"stage_id":  fmt.Sprintf("stage_%d", i+1),
				"title":     questRooms[i],
				"objective": fmt.Sprintf("Uncover what %s hides within %s", topic, questRooms[i]),
				"reward":    fmt.Sprintf("Fragment %d of the %s key", i+1, topic),
			}
			if i < numStages-1 {
				stage["next_stage"] = fmt.Sprintf("stage_%d", i+2)
			}
			stages = append(stages, stage)
		}

		return map[string]any{
			"title":             fmt.Sprintf("Quest for %s", titleCase(topic)),
			"description":       fmt.Sprintf("A %s quest game exploring %s", complexity, topic),
			"complexity":        complexity,
			"stages":            stages,
			"victory_condition": fmt.Sprintf("Assemble all %d fragments of the %s key", numStages, topic),
		}, nil
	})
}
