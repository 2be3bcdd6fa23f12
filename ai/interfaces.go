package ai

import (
	"context"

	"github.com/poiesic/essayguide/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// GuidanceGenerator turns a prompt plus retrieved references into structured
// writing guidance. Implementations must be thread-safe for concurrent use.
type GuidanceGenerator interface {
	// GenerateGuidance produces writing guidance for the prompt, using the
	// retrieved materials and sample essays as reference context.
	// Implementations degrade to a template rather than failing when the
	// model is unreachable or its output cannot be parsed.
	GenerateGuidance(ctx context.Context, prompt *core.EssayPrompt, materials []*core.Material, essays []*core.SampleEssay) (*core.WritingGuidance, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and GuidanceGenerator instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// GuidanceGenerator returns the guidance generation service.
	// The returned GuidanceGenerator is safe for concurrent use.
	GuidanceGenerator() GuidanceGenerator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
