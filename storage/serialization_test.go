package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/essayguide/core"
)

func TestMaterialRoundtrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	material := &core.Material{
		Id:         core.ContentID("Spring Rains", "The first rains of spring."),
		Title:      "Spring Rains",
		Content:    "The first rains of spring.",
		Category:   "nature",
		Keywords:   []string{"seasons", "rain"},
		Difficulty: core.DifficultyMiddle,
		Source:     "textbook",
		InsertedAt: now,
		UpdatedAt:  now,
	}

	decoded, err := UnmarshalMaterial(MarshalMaterial(material))
	require.NoError(t, err)
	assert.Equal(t, material, decoded)
}

func TestEssayRoundtrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	essay := &core.SampleEssay{
		Id:         core.ContentID("My Best Friend", "A narrative about friendship."),
		Title:      "My Best Friend",
		Content:    "A narrative about friendship.",
		EssayType:  core.EssayTypeNarrative,
		Difficulty: core.DifficultyHigh,
		Score:      92,
		Highlights: []string{"vivid opening", "strong close"},
		InsertedAt: now,
		UpdatedAt:  now,
	}

	decoded, err := UnmarshalEssay(MarshalEssay(essay))
	require.NoError(t, err)
	assert.Equal(t, essay, decoded)
}

func TestChunkRoundtrip(t *testing.T) {
	chunk := &core.Chunk{
		Id:   core.ID(7),
		Text: "Spring Rains\n\nThe first rains of spring.",
		Metadata: map[string]string{
			core.MetaContentType: string(core.ContentTypeMaterial),
			core.MetaTitle:       "Spring Rains",
			core.MetaCategory:    "nature",
		},
		Source:   "material",
		Sequence: 0,
	}

	decoded, err := UnmarshalChunk(MarshalChunk(chunk))
	require.NoError(t, err)
	assert.Equal(t, chunk, decoded)
}

func TestUnmarshalTruncated(t *testing.T) {
	material := &core.Material{
		Id:      core.ID(1),
		Title:   "Spring Rains",
		Content: "The first rains of spring.",
	}
	data := MarshalMaterial(material)

	_, err := UnmarshalMaterial(data[:3])
	assert.Error(t, err)
}
