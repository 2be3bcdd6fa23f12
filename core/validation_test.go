package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMaterial() *Material {
	return &Material{
		Title:      "On Friendship",
		Content:    "A short passage about friendship and growing up.",
		Category:   "relationships",
		Keywords:   []string{"friendship", "growth"},
		Difficulty: DifficultyMiddle,
	}
}

func validEssay() *SampleEssay {
	return &SampleEssay{
		Title:      "The Summer We Grew Up",
		Content:    "A full narrative essay about a summer friendship.",
		EssayType:  EssayTypeNarrative,
		Difficulty: DifficultyMiddle,
		Score:      88,
	}
}

func TestValidateMaterial(t *testing.T) {
	t.Run("valid material", func(t *testing.T) {
		require.NoError(t, ValidateMaterial(validMaterial()))
	})

	t.Run("nil material", func(t *testing.T) {
		err := ValidateMaterial(nil)
		assert.ErrorIs(t, err, ErrInvalidMaterial)
	})

	t.Run("empty title", func(t *testing.T) {
		m := validMaterial()
		m.Title = ""
		err := ValidateMaterial(m)
		assert.ErrorIs(t, err, ErrEmptyTitle)
	})

	t.Run("empty content", func(t *testing.T) {
		m := validMaterial()
		m.Content = ""
		err := ValidateMaterial(m)
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("unknown difficulty", func(t *testing.T) {
		m := validMaterial()
		m.Difficulty = "phd"
		err := ValidateMaterial(m)
		assert.ErrorIs(t, err, ErrInvalidDifficulty)
	})
}

func TestValidateSampleEssay(t *testing.T) {
	t.Run("valid essay", func(t *testing.T) {
		require.NoError(t, ValidateSampleEssay(validEssay()))
	})

	t.Run("nil essay", func(t *testing.T) {
		err := ValidateSampleEssay(nil)
		assert.ErrorIs(t, err, ErrInvalidEssay)
	})

	t.Run("unknown essay type", func(t *testing.T) {
		e := validEssay()
		e.EssayType = "haiku"
		err := ValidateSampleEssay(e)
		assert.ErrorIs(t, err, ErrInvalidEssayType)
	})

	t.Run("ungraded essay is valid", func(t *testing.T) {
		e := validEssay()
		e.Score = 0
		require.NoError(t, ValidateSampleEssay(e))
	})
}

func TestValidateEssayPrompt(t *testing.T) {
	prompt := &EssayPrompt{
		Title:      "Friendship and Growth",
		EssayType:  EssayTypeNarrative,
		Difficulty: DifficultyMiddle,
	}

	t.Run("valid prompt", func(t *testing.T) {
		require.NoError(t, ValidateEssayPrompt(prompt))
	})

	t.Run("nil prompt", func(t *testing.T) {
		assert.ErrorIs(t, ValidateEssayPrompt(nil), ErrInvalidPrompt)
	})

	t.Run("empty title", func(t *testing.T) {
		p := *prompt
		p.Title = ""
		assert.ErrorIs(t, ValidateEssayPrompt(&p), ErrEmptyTitle)
	})
}

func TestValidateContentType(t *testing.T) {
	assert.NoError(t, ValidateContentType(ContentTypeMaterial))
	assert.NoError(t, ValidateContentType(ContentTypeEssay))
	assert.ErrorIs(t, ValidateContentType("poem"), ErrInvalidContentType)
}
