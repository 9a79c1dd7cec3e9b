package catalog

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inkworks/atelier/internal/agent"
	"github.com/inkworks/atelier/internal/runtime"
	"github.com/inkworks/atelier/internal/workflow"
	"github.com/inkworks/atelier/internal/writer"
)

// refinementPasses bounds the default editorial loop.
const refinementPasses = 3

// ContentTypeSelector routes a conditional workflow on the content_type
// input key.
func ContentTypeSelector(input map[string]any) string {
	if ct, ok := input["content_type"].(string); ok {
		return ct
	}
	return ""
}

// RegisterDefaults creates the built-in teams and registers the default
// workflows against their agents:
//
//   - draft_pipeline: sequential draft → refine chain
//   - parallel_drafts: every content writer drafts the same brief at once
//   - looped_refinement: bounded editorial refinement passes
//   - branched_generation: routes a brief to the writer for its content type
func RegisterDefaults(reg *runtime.Registry, logger *zap.Logger) error {
	for _, team := range DefaultTeams() {
		t := team
		if _, err := reg.CreateTeam(&t); err != nil {
			return fmt.Errorf("bootstrap team %s: %w", team.Name, err)
		}
	}

	contentAgents := reg.TeamAgents("content")
	editorialAgents := reg.TeamAgents("editorial")
	if len(contentAgents) == 0 || len(editorialAgents) == 0 {
		return fmt.Errorf("bootstrap: default teams came up empty")
	}

	seqTask := GenerateSequentialBlocks
	refineTask := RefineContent

	reg.RegisterWorkflow(workflow.NewSequential(
		workflow.Metadata{
			Name:        "draft_pipeline",
			Scope:       workflow.ScopeContent,
			Description: "Draft content, then refine it editorially",
		},
		&seqTask,
		[]agent.Capability{contentAgents[0], refinerFrom(editorialAgents)},
		logger))

	reg.RegisterWorkflow(workflow.NewParallel(
		workflow.Metadata{
			Name:          "parallel_drafts",
			Scope:         workflow.ScopeContent,
			Description:   "Every content writer drafts the same brief concurrently",
			MergeStrategy: workflow.MergeCombine,
		},
		&seqTask, contentAgents, logger))

	reg.RegisterWorkflow(workflow.NewLoop(
		workflow.Metadata{
			Name:          "looped_refinement",
			Scope:         workflow.ScopeEditorial,
			Description:   "Bounded refinement passes over a draft",
			MaxIterations: workflow.DefaultMaxIterations,
		},
		&refineTask, refinerFrom(editorialAgents),
		func(_ map[string]any, iteration int) bool { return iteration < refinementPasses },
		logger))

	branches := make(map[string]agent.Capability)
	for _, a := range contentAgents {
		switch a.Role() {
		case writer.RoleQuizWriter:
			branches["quiz"] = a
		case writer.RoleStoryWriter:
			branches["story"] = a
		case writer.RoleGameWriter:
			branches["game"] = a
		case writer.RoleSimulationWriter:
			branches["simulation"] = a
		}
	}
	blockTask := GenerateBlock
	reg.RegisterWorkflow(workflow.NewConditional(
		workflow.Metadata{
			Name:        "branched_generation",
			Scope:       workflow.ScopeContent,
			Description: "Route a brief to the writer for its content type",
		},
		&blockTask, ContentTypeSelector, branches, contentAgents[0], logger))

	logger.Info("registered default catalog",
		zap.Int("teams", len(reg.ListTeams())),
		zap.Int("workflows", len(reg.ListWorkflows(""))))
	return nil
}

// refinerFrom picks the refiner out of the editorial pool, falling back to
// the first member.
func refinerFrom(agents []agent.Capability) agent.Capability {
	for _, a := range agents {
		if a.Role() == writer.RoleRefiner {
			return a
		}
	}
	return agents[0]
}
