// compose runs a workflow from the built-in catalog locally and prints the
// result as JSON. Useful for trying the studio without the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inkworks/atelier/internal/catalog"
	"github.com/inkworks/atelier/internal/runtime"
	"github.com/inkworks/atelier/internal/writer"
)

func main() {
	workflowName := flag.String("workflow", "branched_generation", "workflow to run")
	topic := flag.String("topic", "the deep sea", "content topic")
	contentType := flag.String("type", "quiz", "content type: quiz, story, game, simulation")
	genre := flag.String("genre", "documentary", "style or genre hint")
	list := flag.Bool("list", false, "list available workflows and exit")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		logger, _ = cfg.Build()
	}

	registry := runtime.New(catalog.DefaultConfigs(), writer.ForRole, nil, logger)
	if err := catalog.RegisterDefaults(registry, logger); err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap catalog: %v\n", err)
		os.Exit(1)
	}

	if *list {
		fmt.Println("Available workflows:")
		for _, name := range registry.ListWorkflows("") {
			w, _ := registry.Workflow(name)
			meta := w.Meta()
			fmt.Printf("  %-22s %-12s %s\n", name, meta.Pattern, meta.Description)
		}
		return
	}

	input := map[string]any{
		"topic":        *topic,
		"content_type": *contentType,
		"genre":        *genre,
		"block_type":   *contentType,
		"content":      map[string]any{"title": *topic},
	}

	result, err := registry.ExecuteWorkflow(context.Background(), *workflowName, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "execute %s: %v\n", *workflowName, err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
