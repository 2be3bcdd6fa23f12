package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is derived deterministically from content so that re-ingesting
// identical content is idempotent.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ContentID derives the stable identifier for a content item from its
// title and body. Both materials and essays use this derivation.
func ContentID(title, body string) ID {
	return IDFromContent(title + "\n" + body)
}

// ContentType tags the category of an indexed content item.
type ContentType string

const (
	// ContentTypeMaterial identifies a writing material.
	ContentTypeMaterial ContentType = "material"
	// ContentTypeEssay identifies a sample essay.
	ContentTypeEssay ContentType = "essay"
)

// EssayType classifies an essay by rhetorical form.
type EssayType string

const (
	EssayTypeNarrative     EssayType = "narrative"
	EssayTypeDescriptive   EssayType = "descriptive"
	EssayTypeArgumentative EssayType = "argumentative"
	EssayTypeExpository    EssayType = "expository"
)

// DifficultyLevel grades content by the school level it targets.
type DifficultyLevel string

const (
	DifficultyElementary DifficultyLevel = "elementary"
	DifficultyMiddle     DifficultyLevel = "middle"
	DifficultyHigh       DifficultyLevel = "high"
	DifficultyAdvanced   DifficultyLevel = "advanced"
)

// EssayPrompt describes a writing assignment. It is read-only input to
// query construction and is never persisted by this system.
type EssayPrompt struct {
	Title        string
	Description  string
	EssayType    EssayType
	Difficulty   DifficultyLevel
	Keywords     []string
	Requirements []string
}

// Material is a short reusable reference passage tagged by topic category.
type Material struct {
	Id         ID
	Title      string
	Content    string
	Category   string
	Keywords   []string
	Difficulty DifficultyLevel
	Source     string
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// SampleEssay is a full example composition tagged by rhetorical type.
// Score is 0 when the essay has not been graded.
type SampleEssay struct {
	Id         ID
	Title      string
	Content    string
	EssayType  EssayType
	Difficulty DifficultyLevel
	Score      int
	Highlights []string
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Chunk is the unit of text stored in the vector index. One chunk is
// produced per content item; the metadata carries everything needed to
// reconstruct the item without consulting the content store.
type Chunk struct {
	Id       ID
	Text     string
	Metadata map[string]string
	Source   string
	Sequence int
}

// Metadata keys persisted on every indexed chunk. MetaContentType selects
// the reconstruction path; the remaining keys restore the item's fields.
const (
	MetaContentType = "content_type"
	MetaTitle       = "title"
	MetaCategory    = "category"
	MetaEssayType   = "essay_type"
	MetaDifficulty  = "difficulty"
	MetaKeywords    = "keywords"
	MetaScore       = "score"
)

// WritingGuidance is the structured output of the generation service.
// The retrieval core only consumes its shape for confidence scoring.
type WritingGuidance struct {
	ThemeAnalysis        string   `json:"theme_analysis"`
	StructureSuggestions []string `json:"structure_suggestions"`
	WritingTips          []string `json:"writing_tips"`
	KeyPoints            []string `json:"key_points"`
}

// ScoredChunk is a chunk paired with its similarity score from a vector
// index query. Higher scores are better on both index backends.
type ScoredChunk struct {
	Chunk *Chunk
	Score float32
}
