package openai

import (
	"context"

	"github.com/poiesic/essayguide/ai"
	"github.com/poiesic/essayguide/core"
)

// TemplateGenerator produces deterministic guidance without a model.
// Used when no generation service can be constructed at all; the
// model-backed Generator already degrades to the same template per call.
type TemplateGenerator struct{}

var _ ai.GuidanceGenerator = TemplateGenerator{}

// NewTemplateGenerator creates a generator that always uses the template.
//
// Returns ai.GuidanceGenerator interface to enforce abstraction.
func NewTemplateGenerator() ai.GuidanceGenerator {
	return TemplateGenerator{}
}

// GenerateGuidance builds guidance from the prompt and references alone.
func (TemplateGenerator) GenerateGuidance(ctx context.Context, prompt *core.EssayPrompt, materials []*core.Material, essays []*core.SampleEssay) (*core.WritingGuidance, error) {
	return templateGuidance(prompt, materials, essays), nil
}
