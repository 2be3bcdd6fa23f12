package mock

import (
	"context"

	"github.com/poiesic/essayguide/core"
)

// MockGenerator is a test double for ai.GuidanceGenerator.
// It allows custom behavior injection via a function field.
type MockGenerator struct {
	// GenerateGuidanceFunc is called by GenerateGuidance if set.
	// If nil, returns a fixed complete guidance shape.
	GenerateGuidanceFunc func(ctx context.Context, prompt *core.EssayPrompt, materials []*core.Material, essays []*core.SampleEssay) (*core.WritingGuidance, error)

	callCount int
}

// NewMockGenerator creates a mock generator with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// GenerateGuidance returns a fixed complete guidance shape unless a custom
// function is injected.
func (m *MockGenerator) GenerateGuidance(ctx context.Context, prompt *core.EssayPrompt, materials []*core.Material, essays []*core.SampleEssay) (*core.WritingGuidance, error) {
	m.callCount++

	if m.GenerateGuidanceFunc != nil {
		return m.GenerateGuidanceFunc(ctx, prompt, materials, essays)
	}

	return &core.WritingGuidance{
		ThemeAnalysis:        "A complete analysis of the prompt theme for testing.",
		StructureSuggestions: []string{"opening", "development", "conclusion"},
		WritingTips:          []string{"be concrete", "stay on form", "revise aloud"},
		KeyPoints:            []string{"address the topic", "use the keywords", "plan first"},
	}, nil
}

// CallCount returns the number of times GenerateGuidance was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.GenerateGuidanceFunc = nil
}
