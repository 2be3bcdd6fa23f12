package essayguide

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/essayguide/ai/mock"
	"github.com/poiesic/essayguide/core"
)

func newTestSystem(t *testing.T) *System {
	t.Helper()
	system, err := NewSystem("", WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, system.Close())
	})
	return system
}

func guidePrompt() *core.EssayPrompt {
	return &core.EssayPrompt{
		Title:        "The Value of Friendship",
		Description:  "Write about a friendship that shaped you.",
		EssayType:    core.EssayTypeNarrative,
		Difficulty:   core.DifficultyMiddle,
		Keywords:     []string{"friendship", "growth"},
		Requirements: []string{"at least 600 words"},
	}
}

func seedGuideCorpus(t *testing.T, system *System) {
	t.Helper()
	ctx := context.Background()

	materials := []*core.Material{
		{
			Title:      "Friendship in Hard Times",
			Content:    "True friendship shows itself when times are hard.",
			Category:   "relationships",
			Keywords:   []string{"friendship", "loyalty"},
			Difficulty: core.DifficultyMiddle,
		},
		{
			Title:      "Growing Through Friendship",
			Content:    "Friendship teaches patience and growth.",
			Category:   "relationships",
			Keywords:   []string{"friendship", "growth"},
			Difficulty: core.DifficultyMiddle,
		},
		{
			Title:      "Quotes on Friendship",
			Content:    "A friend is one soul dwelling in two bodies.",
			Category:   "quotes",
			Keywords:   []string{"friendship"},
			Difficulty: core.DifficultyMiddle,
		},
	}
	for _, m := range materials {
		_, err := system.AddMaterial(ctx, m)
		require.NoError(t, err)
	}

	essays := []*core.SampleEssay{
		{
			Title:      "The Friendship That Changed Me",
			Content:    "Our friendship began in the schoolyard and grew from there.",
			EssayType:  core.EssayTypeNarrative,
			Difficulty: core.DifficultyMiddle,
			Score:      88,
		},
		{
			Title:      "On Friendship",
			Content:    "Friendship is the quiet foundation of a good life.",
			EssayType:  core.EssayTypeArgumentative,
			Difficulty: core.DifficultyMiddle,
			Score:      90,
		},
	}
	for _, e := range essays {
		_, err := system.AddEssay(ctx, e)
		require.NoError(t, err)
	}
}

func TestNewSystem_InMemory(t *testing.T) {
	system := newTestSystem(t)
	assert.NotNil(t, system.MaterialRepository())
	assert.NotNil(t, system.EssayRepository())
}

func TestSystem_GuideEndToEnd(t *testing.T) {
	system := newTestSystem(t)
	seedGuideCorpus(t, system)

	response, err := system.Guide(context.Background(), guidePrompt())
	require.NoError(t, err)

	require.NotNil(t, response.Guidance)
	assert.NotEmpty(t, response.Guidance.ThemeAnalysis)
	assert.NotEmpty(t, response.Materials)
	assert.NotEmpty(t, response.Essays)
	assert.Positive(t, response.Confidence)
	assert.LessOrEqual(t, response.Confidence, 1.0)
	assert.NotEmpty(t, response.Diagnostics.Query)
}

func TestSystem_GuideOnEmptyStore(t *testing.T) {
	system := newTestSystem(t)

	// The mock generator produces complete guidance even without
	// references, so only the retrieval share of confidence is missing.
	response, err := system.Guide(context.Background(), guidePrompt())
	require.NoError(t, err)

	require.NotNil(t, response.Guidance)
	assert.Empty(t, response.Materials)
	assert.Empty(t, response.Essays)
	assert.InDelta(t, 0.6, response.Confidence, 1e-9)
}

func TestSystem_MutationReindexes(t *testing.T) {
	system := newTestSystem(t)
	ctx := context.Background()

	// No explicit Reindex call: adding content must refresh the index
	// on its own for the semantic pass to see it.
	_, err := system.AddMaterial(ctx, &core.Material{
		Title:      "Friendship in Hard Times",
		Content:    "True friendship shows itself when times are hard.",
		Category:   "relationships",
		Difficulty: core.DifficultyMiddle,
	})
	require.NoError(t, err)

	result, err := system.Retrieve(ctx, guidePrompt())
	require.NoError(t, err)
	assert.Len(t, result.Materials, 1)
	assert.Positive(t, result.Diagnostics.SemanticCount)
}

func TestSystem_DeleteRemovesFromRetrieval(t *testing.T) {
	system := newTestSystem(t)
	ctx := context.Background()

	added, err := system.AddMaterial(ctx, &core.Material{
		Title:      "Friendship in Hard Times",
		Content:    "True friendship shows itself when times are hard.",
		Category:   "relationships",
		Difficulty: core.DifficultyMiddle,
	})
	require.NoError(t, err)

	require.NoError(t, system.DeleteMaterial(ctx, added.Id))

	result, err := system.Retrieve(ctx, guidePrompt())
	require.NoError(t, err)
	assert.Empty(t, result.Materials)
}

func TestSystem_UpdateReflectsInRetrieval(t *testing.T) {
	system := newTestSystem(t)
	ctx := context.Background()

	added, err := system.AddMaterial(ctx, &core.Material{
		Title:      "Friendship in Hard Times",
		Content:    "True friendship shows itself when times are hard.",
		Category:   "relationships",
		Difficulty: core.DifficultyMiddle,
	})
	require.NoError(t, err)

	added.Category = "values"
	updated, err := system.UpdateMaterial(ctx, added)
	require.NoError(t, err)
	assert.Equal(t, "values", updated.Category)

	result, err := system.Retrieve(ctx, guidePrompt())
	require.NoError(t, err)
	require.Len(t, result.Materials, 1)
	assert.Equal(t, "values", result.Materials[0].Category)
}

func TestSystem_TopKOption(t *testing.T) {
	system, err := NewSystem("",
		WithProvider(mock.NewMockProvider()),
		WithTopK(2))
	require.NoError(t, err)
	defer system.Close()

	seedGuideCorpus(t, system)

	result, err := system.Retrieve(context.Background(), guidePrompt())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Materials), 2)
	assert.LessOrEqual(t, len(result.Essays), 1)
}
