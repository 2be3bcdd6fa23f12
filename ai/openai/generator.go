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


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/essayguide/ai"
	"github.com/poiesic/essayguide/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.GuidanceGenerator using OpenAI-compatible chat APIs.
type Generator struct {
	client llms.Model
	logger *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken("none"),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		logger: slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new guidance generator using the provided configuration.
//
// Returns ai.GuidanceGenerator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.GuidanceGenerator, error) {
	return newGenerator(config)
}

// GenerateGuidance produces writing guidance for the prompt using an LLM.
// When the model is unreachable or returns unparsable output after retries,
// it degrades to a deterministic template built from the retrieved references
// and never surfaces an error for those cases.
func (g *Generator) GenerateGuidance(ctx context.Context, prompt *core.EssayPrompt, materials []*core.Material, essays []*core.SampleEssay) (*core.WritingGuidance, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildUserPrompt(prompt, materials, essays)),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var guidance core.WritingGuidance
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := g.client.GenerateContent(ctx, content, llms.WithTemperature(0.7), llms.WithJSONMode())
		if err != nil {
			g.logger.Warn("guidance model unreachable, using template guidance",
				"attempt", attempt+1, "err", err)
			return templateGuidance(prompt, materials, essays), nil
		}

		if len(response.Choices) < 1 {
			g.logger.Debug("no choices returned from model")
			return templateGuidance(prompt, materials, essays), nil
		}

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(response.Choices[0].Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &guidance); err != nil {
			lastErr = err
			g.logger.Warn("error parsing guidance response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		g.logger.Error("failed to parse guidance response after retries, using template guidance", "err", lastErr)
		return templateGuidance(prompt, materials, essays), nil
	}

	g.logger.Debug("generated guidance",
		"structureSuggestions", len(guidance.StructureSuggestions),
		"writingTips", len(guidance.WritingTips),
		"keyPoints", len(guidance.KeyPoints))

	return &guidance, nil
}

// templateGuidance builds deterministic guidance from the prompt and the
// retrieved references. Used whenever the model path is unavailable.
func templateGuidance(prompt *core.EssayPrompt, materials []*core.Material, essays []*core.SampleEssay) *core.WritingGuidance {
	theme := "The topic \"" + prompt.Title + "\" asks for a " + string(prompt.EssayType) +
		" essay at the " + string(prompt.Difficulty) + " level."
	if prompt.Description != "" {
		theme += " " + prompt.Description
	}

	structure := []string{
		"Open with a scene or statement that establishes the topic",
		"Develop the body in two or three focused paragraphs",
		"Close by returning to the opening idea with a changed perspective",
	}

	tips := []string{
		"Keep the language concrete; prefer specific detail over abstraction",
		"Stay within the " + string(prompt.EssayType) + " form throughout",
		"Read the draft aloud to catch awkward transitions",
	}

	keyPoints := []string{"Address the topic \"" + prompt.Title + "\" directly"}
	for _, kw := range prompt.Keywords {
		keyPoints = append(keyPoints, "Work the keyword \""+kw+"\" into the essay")
	}
	for _, m := range materials {
		keyPoints = append(keyPoints, "Consider the reference material \""+m.Title+"\"")
	}
	for _, e := range essays {
		keyPoints = append(keyPoints, "Study the structure of the sample essay \""+e.Title+"\"")
	}
	for _, filler := range []string{
		"Plan the essay before writing the first sentence",
		"Support each point with a concrete example",
	} {
		if len(keyPoints) >= 3 {
			break
		}
		keyPoints = append(keyPoints, filler)
	}

	return &core.WritingGuidance{
		ThemeAnalysis:        theme,
		StructureSuggestions: structure,
		WritingTips:          tips,
		KeyPoints:            keyPoints,
	}
}
