package writer

import (
	"context"
	"fmt"

	"github.com/inkworks/atelier/internal/agent"
)

// SimulationGenerator produces an interactive simulation description with
// variables and controls from the topic and simulation_type context keys.
func SimulationGenerator() agent.Generator {
	return agent.GeneratorFunc(func(_ context.Context, _ *agent.Task, _ string, merged map[string]any) (map[string]any, error) {
		topic := stringParam(merged, "topic", "physics")
		simType := stringParam(merged, "simulation_type", "chart")

		variables := []map[string]any{
			{"name": "rate", "label": fmt.Sprintf("%s rate", titleCase(topic)), "min": 0.0, "max": 100.0, "default": 50.0},
			{"name": "scale", "label": "Scale factor", "min": 0.1, "max": 10.0, "default": 1.0},
			{"name": "iterations", "label": "Iterations", "min": 1.0, "max": 1000.0, "default": 100.0},
		}

		controls := make([]map[string]any, 0, len(variables)+1)
		for _, v := range variables {
			controls = append(controls, map[string]any{
				"type":    "slider",
				"target":  v["name"],
				"label":   v["label"],
				"affects": []string{"output"},
			})
		}
		controls = append(controls, map[string]any{
			"type":    "button",
			"target":  "reset",
			"label":   "Reset to defaults",
			"affects": []string{"rate", "scale", "iterations"},
		})

		return map[string]any{
			"title":       fmt.Sprintf("Interactive %s Simulation", titleCase(topic)),
			"description": fmt.Sprintf("Explore how %s behaves as parameters change", topic),
			"type":        simType,
			"variables":   variables,
			"controls":    controls,
		}, nil
	})
}
