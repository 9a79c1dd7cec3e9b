package writer

import (
	"context"
	"fmt"

	"github.com/inkworks/atelier/internal/agent"
)

var storyOpenings = []string{
	"You find yourself at the beginning of an extraordinary journey into %[1]s. The world of %[2]s stretches before you, full of possibilities.",
	"As dawn breaks, you stand at the threshold of %[1]s. The %[2]s realm ahead promises adventure and discovery.",
	"A mysterious force draws you toward %[1]s. In this %[2]s world, every choice shapes your destiny.",
	"The ancient texts spoke of %[1]s, but nothing prepared you for this moment. The %[2]s adventure begins now.",
	"You've trained for this moment, to explore %[1]s. The %[2]s landscape unfolds before your eyes.",
}

var boldPaths = []string{
	"Your bold approach to %s leads you to unexpected discoveries.",
	"Courage drives you forward into %s, revealing hidden opportunities.",
	"Your daring decision regarding %s opens new pathways.",
	"Fearlessly, you dive deeper into %s, uncovering secrets.",
}

var cautiousPaths = []string{
	"Your careful consideration of %s reveals hidden details others might miss.",
	"Patience and observation guide your exploration of %s.",
	"Your methodical approach to %s uncovers subtle clues.",
	"Wisdom leads you to examine %s from every angle.",
}

var victoryEndings = []string{
	"Through courage and determination, you've mastered %s. Your victory inspires others.",
	"Your triumph over %s becomes legendary. Songs will be sung of your deeds.",
	"Success! Your understanding of %s has reached its peak, and the world takes notice.",
}

var wisdomEndings = []string{
	"The wisdom you've gained about %s becomes a beacon for others.",
	"Your insights into %s revolutionize the field and enlighten many.",
	"The knowledge of %s you've acquired changes the course of history.",
}

// StoryGenerator produces a branched narrative with a start node, two path
// nodes, and two endings, from the topic and genre context keys.
func StoryGenerator() agent.Generator {
	return agent.GeneratorFunc(func(_ context.Context, _ *agent.Task, _ string, merged map[string]any) (map[string]any, error) {
		topic := stringParam(merged, "topic", "adventure")
		genre := stringParam(merged, "genre", "fantasy")

		nodes := map[string]any{
			"start": storyNode("start",
				fmt.Sprintf(pick(storyOpenings, topic, 0), topic, genre),
				[]map[string]any{
					{"text": "Venture forth boldly", "next_node_id": "bold_path"},
					{"text": "Proceed with caution", "next_node_id": "cautious_path"},
				}, false),
			"bold_path": storyNode("bold_path",
				fmt.Sprintf(pick(boldPaths, topic, 1), topic),
				[]map[string]any{
					{"text": "Claim your victory", "next_node_id": "victory_ending"},
				}, false),
			"cautious_path": storyNode("cautious_path",
				fmt.Sprintf(pick(cautiousPaths, topic, 2), topic),
				[]map[string]any{
					{"text": "Share your discoveries", "next_node_id": "wisdom_ending"},
				}, false),
			"victory_ending": storyNode("victory_ending",
				fmt.Sprintf(pick(victoryEndings, topic, 3), topic), nil, true),
			"wisdom_ending": storyNode("wisdom_ending",
				fmt.Sprintf(pick(wisdomEndings, topic, 4), topic), nil, true),
		}

		return map[string]any{
			"title":      fmt.Sprintf("The %s Chronicles", titleCase(topic)),
			"synopsis":   fmt.Sprintf("An interactive %s story about %s", genre, topic),
			"genre":      genre,
			"start_node": "start",
			"nodes":      nodes,
		}, nil
	})
}

func storyNode(id, content string, branches []map[string]any, ending bool) map[string]any {
	n := map[string]any{
		"node_id":   id,
		"content":   content,
		"branches":  branches,
		"is_ending": ending,
	}
	return n
}
