package openai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/essayguide/core"
)

func barePrompt() *core.EssayPrompt {
	return &core.EssayPrompt{
		Title:      "The Value of Friendship",
		EssayType:  core.EssayTypeNarrative,
		Difficulty: core.DifficultyMiddle,
	}
}

func TestTemplateGuidance_CompleteWithoutReferences(t *testing.T) {
	// No keywords and no retrieved references: the template must still
	// produce three key points, not collapse below the list minimum.
	guidance := templateGuidance(barePrompt(), nil, nil)

	assert.GreaterOrEqual(t, len(guidance.KeyPoints), 3)
	assert.GreaterOrEqual(t, len(guidance.StructureSuggestions), 3)
	assert.GreaterOrEqual(t, len(guidance.WritingTips), 3)
	assert.Greater(t, len(guidance.ThemeAnalysis), 10)
}

func TestTemplateGuidance_ReferencesBecomeKeyPoints(t *testing.T) {
	prompt := barePrompt()
	prompt.Keywords = []string{"friendship", "growth"}

	materials := []*core.Material{{Title: "Friendship in Hard Times"}}
	essays := []*core.SampleEssay{{Title: "My Best Friend"}}

	guidance := templateGuidance(prompt, materials, essays)

	// 1 title point + 2 keywords + 1 material + 1 essay, no filler needed.
	assert.Len(t, guidance.KeyPoints, 5)
	assert.Contains(t, guidance.KeyPoints[3], "Friendship in Hard Times")
	assert.Contains(t, guidance.KeyPoints[4], "My Best Friend")
}

func TestTemplateGenerator_GenerateGuidance(t *testing.T) {
	generator := NewTemplateGenerator()

	guidance, err := generator.GenerateGuidance(context.Background(), barePrompt(), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, guidance)
	assert.GreaterOrEqual(t, len(guidance.KeyPoints), 3)
}
