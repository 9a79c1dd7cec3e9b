// Package catalog ships the built-in studio roles, task definitions, and
// team layouts, plus a YAML loader for external catalogs.
package catalog

import (
	"github.com/inkworks/atelier/internal/agent"
	"github.com/inkworks/atelier/internal/runtime"
	"github.com/inkworks/atelier/internal/workflow"
	"github.com/inkworks/atelier/internal/writer"
)

// DefaultConfigs returns the built-in role catalog.
func DefaultConfigs() map[string]agent.Config {
	return map[string]agent.Config{
		writer.RoleStoryWriter: {
			Role: writer.RoleStoryWriter,
			Instruction: "You are an expert storytelling specialist creating interactive narratives. " +
				"Craft engaging stories with meaningful choices, coherent branches, and satisfying endings for every path.",
			Temperature:    0.85,
			MaxTokens:      2048,
			RequiredParams: []string{"topic"},
			OptionalParams: map[string]any{"genre": "fantasy"},
			Capabilities:   []string{"branched_narrative"},
		},
		writer.RoleQuizWriter: {
			Role: writer.RoleQuizWriter,
			Instruction: "You are an expert educational content creator specializing in interactive quizzes. " +
				"Create clear questions with four options, one correct answer, and a detailed explanation.",
			Temperature:    0.7,
			MaxTokens:      1536,
			RequiredParams: []string{"topic"},
			OptionalParams: map[string]any{"num_questions": 5, "difficulty": "medium"},
			Capabilities:   []string{"quiz"},
		},
		writer.RoleGameWriter: {
			Role: writer.RoleGameWriter,
			Instruction: "You are a game design specialist creating quest-based interactive experiences. " +
				"Design clear objectives, logical quest progression, and rewarding victory conditions.",
			Temperature:    0.75,
			MaxTokens:      2048,
			RequiredParams: []string{"topic"},
			OptionalParams: map[string]any{"complexity": "medium"},
			Capabilities:   []string{"quest_game"},
		},
		writer.RoleSimulationWriter: {
			Role: writer.RoleSimulationWriter,
			Instruction: "You are a simulation design specialist creating interactive parameter-driven models. " +
				"Expose every variable through a control and describe how changes affect the output.",
			Temperature:    0.6,
			MaxTokens:      2048,
			RequiredParams: []string{"topic"},
			OptionalParams: map[string]any{"simulation_type": "chart"},
			Capabilities:   []string{"simulation"},
		},
		writer.RoleReviewer: {
			Role: writer.RoleReviewer,
			Instruction: "You are an editorial reviewer assessing drafts for structural completeness and quality. " +
				"Score each draft, flag missing elements, and approve only complete work.",
			Temperature:  0.3,
			MaxTokens:    1024,
			Capabilities: []string{"review"},
		},
		writer.RoleRefiner: {
			Role: writer.RoleRefiner,
			Instruction: "You are an editorial refiner improving drafts based on reviewer feedback. " +
				"Preserve the draft's intent while addressing every piece of feedback.",
			Temperature:  0.5,
			MaxTokens:    2048,
			Capabilities: []string{"refine"},
		},
	}
}

// Built-in task definitions shared by the default workflows.
var (
	GenerateBlock = agent.Task{
		ID:        "generate_block",
		Role:      writer.RoleQuizWriter,
		Prompt:    "Generate a single content block about the following topic.\n\nBlock type: {block_type}\nTopic: {topic}",
		OutputKey: "content_block",
	}

	GenerateSequentialBlocks = agent.Task{
		ID:        "generate_sequential_blocks",
		Role:      writer.RoleQuizWriter,
		Prompt:    "Generate sequential content blocks about the following topic in the specified style.\n\nTopic: {topic}\nStyle: {genre}",
		OutputKey: "content_block",
	}

	ReviewContent = agent.Task{
		ID:        "review_content",
		Role:      writer.RoleReviewer,
		Prompt:    "Review the following content for quality and completeness.\n\nContent: {content}",
		OutputKey: "feedback",
	}

	RefineContent = agent.Task{
		ID:        "refine_content",
		Role:      writer.RoleRefiner,
		Prompt:    "Refine the content based on the review feedback.\n\nContent: {content}\nFeedback: {feedback}",
		OutputKey: "refined_content",
		DependsOn: []string{"review_content"},
	}

	FinalizeContent = agent.Task{
		ID:        "finalize_content",
		Role:      writer.RoleRefiner,
		Prompt:    "Finalize the refined content for publication.\n\nContent: {refined_content}",
		OutputKey: "final_content",
		DependsOn: []string{"refine_content"},
	}
)

// DefaultTasks returns the built-in task definitions keyed by id.
func DefaultTasks() map[string]agent.Task {
	tasks := []agent.Task{
		GenerateBlock, GenerateSequentialBlocks,
		ReviewContent, RefineContent, FinalizeContent,
	}
	out := make(map[string]agent.Task, len(tasks))
	for _, t := range tasks {
		out[t.ID] = t
	}
	return out
}

// DefaultTeams returns the built-in team layouts.
func DefaultTeams() []runtime.Team {
	return []runtime.Team{
		{
			Name:        "content",
			Scope:       string(workflow.ScopeContent),
			Description: "Writers producing first drafts across content shapes",
			Roles: []string{
				writer.RoleQuizWriter,
				writer.RoleStoryWriter,
				writer.RoleGameWriter,
				writer.RoleSimulationWriter,
			},
		},
		{
			Name:        "editorial",
			Scope:       string(workflow.ScopeEditorial),
			Description: "Review and refinement pool",
			Roles: []string{
				writer.RoleReviewer,
				writer.RoleRefiner,
			},
		},
	}
}
