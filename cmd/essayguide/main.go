// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/essayguide"
	"github.com/poiesic/essayguide/ai"
	"github.com/poiesic/essayguide/core"
)

func main() {
	app := &cli.App{
		Name:  "essayguide",
		Usage: "Retrieval-backed writing guidance for essay prompts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "add-material",
				Usage:  "Add reference materials from a JSON file (array of materials)",
				Action: addMaterialCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to JSON file of materials",
						Required: true,
					},
				},
			},
			{
				Name:   "add-essay",
				Usage:  "Add sample essays from a JSON file (array of essays)",
				Action: addEssayCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to JSON file of essays",
						Required: true,
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the vector index from the full content store",
				Action: reindexCommand,
				Flags:  append([]cli.Flag{dbFlag()}, aiFlags()...),
			},
			{
				Name:      "search",
				Usage:     "Retrieve references for an essay prompt",
				ArgsUsage: "<prompt title>",
				Action:    searchCommand,
				Flags:     append([]cli.Flag{dbFlag(), topKFlag()}, promptFlags()...),
			},
			{
				Name:      "guide",
				Usage:     "Generate writing guidance for an essay prompt",
				ArgsUsage: "<prompt title>",
				Action:    guideCommand,
				Flags:     append(append([]cli.Flag{dbFlag(), topKFlag()}, promptFlags()...), aiFlags()...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func topKFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "top-k",
		Usage: "Maximum number of references to retrieve",
		Value: 10,
	}
}

func promptFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "description",
			Usage: "Prompt description or background",
		},
		&cli.StringFlag{
			Name:  "type",
			Usage: "Essay type (narrative, descriptive, argumentative, expository)",
		},
		&cli.StringFlag{
			Name:  "difficulty",
			Usage: "Difficulty level (elementary, middle, high, advanced)",
		},
		&cli.StringSliceFlag{
			Name:    "keyword",
			Aliases: []string{"k"},
			Usage:   "Prompt keyword (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:    "requirement",
			Aliases: []string{"r"},
			Usage:   "Prompt requirement (repeatable)",
		},
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "ai-host",
			Usage: "OpenAI-compatible service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "generator-model",
			Usage: "Guidance generation model name",
			Value: "qwen2.5:3b",
		},
	}
}

func openSystem(c *cli.Context) (*essayguide.System, error) {
	// The vector index keeps its own store next to the content database.
	opts := []essayguide.SystemOption{
		essayguide.WithIndexPath(c.String("db") + ".index"),
	}
	if c.IsSet("top-k") {
		opts = append(opts, essayguide.WithTopK(c.Int("top-k")))
	}
	if c.String("ai-host") != "" {
		opts = append(opts, essayguide.WithAIConfig(ai.NewConfig(
			ai.WithHost(c.String("ai-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
			ai.WithGeneratorModel(c.String("generator-model")),
		)))
	}
	return essayguide.NewSystem(c.String("db"), opts...)
}

func promptFromContext(c *cli.Context) (*core.EssayPrompt, error) {
	title := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if title == "" {
		return nil, fmt.Errorf("a prompt title is required")
	}
	return &core.EssayPrompt{
		Title:        title,
		Description:  c.String("description"),
		EssayType:    core.EssayType(c.String("type")),
		Difficulty:   core.DifficultyLevel(c.String("difficulty")),
		Keywords:     c.StringSlice("keyword"),
		Requirements: c.StringSlice("requirement"),
	}, nil
}

func addMaterialCommand(c *cli.Context) error {
	var materials []*core.Material
	if err := decodeFile(c.String("file"), &materials); err != nil {
		return err
	}

	system, err := openSystem(c)
	if err != nil {
		return fmt.Errorf("failed to open system: %w", err)
	}
	defer system.Close()

	ctx := context.Background()
	for _, material := range materials {
		added, err := system.AddMaterial(ctx, material)
		if err != nil {
			return fmt.Errorf("failed to add material %q: %w", material.Title, err)
		}
		fmt.Fprintf(os.Stderr, "added material %d: %s\n", added.Id, added.Title)
	}
	return nil
}

func addEssayCommand(c *cli.Context) error {
	var essays []*core.SampleEssay
	if err := decodeFile(c.String("file"), &essays); err != nil {
		return err
	}

	system, err := openSystem(c)
	if err != nil {
		return fmt.Errorf("failed to open system: %w", err)
	}
	defer system.Close()

	ctx := context.Background()
	for _, essay := range essays {
		added, err := system.AddEssay(ctx, essay)
		if err != nil {
			return fmt.Errorf("failed to add essay %q: %w", essay.Title, err)
		}
		fmt.Fprintf(os.Stderr, "added essay %d: %s\n", added.Id, added.Title)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	system, err := openSystem(c)
	if err != nil {
		return fmt.Errorf("failed to open system: %w", err)
	}
	defer system.Close()

	if err := system.Reindex(context.Background()); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	prompt, err := promptFromContext(c)
	if err != nil {
		return err
	}

	system, err := openSystem(c)
	if err != nil {
		return fmt.Errorf("failed to open system: %w", err)
	}
	defer system.Close()

	result, err := system.Retrieve(context.Background(), prompt)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	fmt.Printf("query: %s\n\n", result.Diagnostics.Query)
	fmt.Printf("materials (%d):\n", len(result.Materials))
	for _, m := range result.Materials {
		fmt.Printf("  [%d] %s (%s)\n", m.Id, m.Title, m.Category)
	}
	fmt.Printf("essays (%d):\n", len(result.Essays))
	for _, e := range result.Essays {
		fmt.Printf("  [%d] %s (%s)\n", e.Id, e.Title, e.EssayType)
	}
	return nil
}

func guideCommand(c *cli.Context) error {
	prompt, err := promptFromContext(c)
	if err != nil {
		return err
	}

	system, err := openSystem(c)
	if err != nil {
		return fmt.Errorf("failed to open system: %w", err)
	}
	defer system.Close()

	response, err := system.Guide(context.Background(), prompt)
	if err != nil {
		return fmt.Errorf("guidance failed: %w", err)
	}

	out := struct {
		Guidance   *core.WritingGuidance `json:"guidance"`
		Materials  []*core.Material      `json:"materials"`
		Essays     []*core.SampleEssay   `json:"essays"`
		Confidence float64               `json:"confidence"`
	}{
		Guidance:   response.Guidance,
		Materials:  response.Materials,
		Essays:     response.Essays,
		Confidence: response.Confidence,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func decodeFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
