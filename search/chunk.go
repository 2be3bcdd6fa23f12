package search

import (
	"strconv"
	"strings"

	"github.com/poiesic/essayguide/core"
)

// ChunkFromMaterial builds the indexed chunk for a material. Metadata
// carries every field needed to rebuild the material without consulting
// the content store.
func ChunkFromMaterial(material *core.Material) *core.Chunk {
	return &core.Chunk{
		Id:   material.Id,
		Text: material.Title + "\n\n" + material.Content,
		Metadata: map[string]string{
			core.MetaContentType: string(core.ContentTypeMaterial),
			core.MetaTitle:       material.Title,
			core.MetaCategory:    material.Category,
			core.MetaDifficulty:  string(material.Difficulty),
			core.MetaKeywords:    strings.Join(material.Keywords, ","),
		},
		Source: material.Source,
	}
}

// ChunkFromEssay builds the indexed chunk for a sample essay.
func ChunkFromEssay(essay *core.SampleEssay) *core.Chunk {
	return &core.Chunk{
		Id:   essay.Id,
		Text: essay.Title + "\n\n" + essay.Content,
		Metadata: map[string]string{
			core.MetaContentType: string(core.ContentTypeEssay),
			core.MetaTitle:       essay.Title,
			core.MetaEssayType:   string(essay.EssayType),
			core.MetaDifficulty:  string(essay.Difficulty),
			core.MetaScore:       strconv.Itoa(essay.Score),
		},
		Source: "essay",
	}
}

// materialFromChunk rebuilds a material from chunk metadata. Selected by
// the content_type tag; callers must not probe fields to guess the type.
func materialFromChunk(chunk *core.Chunk) *core.Material {
	md := chunk.Metadata
	title := md[core.MetaTitle]

	var keywords []string
	if raw := md[core.MetaKeywords]; raw != "" {
		keywords = strings.Split(raw, ",")
	}

	return &core.Material{
		Id:         chunk.Id,
		Title:      title,
		Content:    bodyFromChunkText(chunk.Text, title),
		Category:   md[core.MetaCategory],
		Keywords:   keywords,
		Difficulty: core.DifficultyLevel(md[core.MetaDifficulty]),
		Source:     chunk.Source,
	}
}

// essayFromChunk rebuilds a sample essay from chunk metadata.
func essayFromChunk(chunk *core.Chunk) *core.SampleEssay {
	md := chunk.Metadata
	title := md[core.MetaTitle]

	score := 0
	if raw := md[core.MetaScore]; raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			score = parsed
		}
	}

	return &core.SampleEssay{
		Id:         chunk.Id,
		Title:      title,
		Content:    bodyFromChunkText(chunk.Text, title),
		EssayType:  core.EssayType(md[core.MetaEssayType]),
		Difficulty: core.DifficultyLevel(md[core.MetaDifficulty]),
		Score:      score,
	}
}

// bodyFromChunkText strips the "title\n\n" prefix that chunk construction
// prepends to the body.
func bodyFromChunkText(text, title string) string {
	return strings.TrimPrefix(text, title+"\n\n")
}
