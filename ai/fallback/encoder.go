package fallback

import (
	"context"
	"log/slog"
	"math"

	"github.com/poiesic/essayguide/core"
)

// Dim is the fixed dimensionality of fallback vectors. The vocabulary of a
// batch is capped at this many entries; tokens beyond the cap are ignored.
const Dim = 100

// Encoder is a deterministic bag-of-words embedder used when no embedding
// model is reachable. Vectors are term-frequency × inverse-batch-frequency
// weights over a batch-local vocabulary, L2-normalized.
//
// The vocabulary is rebuilt per batch, so vectors are stable for a fixed
// batch but not comparable across batches. That is an accepted property of
// the fallback path, not a defect: ranking only ever compares vectors
// produced against the same index contents.
type Encoder struct {
	logger *slog.Logger
}

// NewEncoder creates a deterministic fallback encoder.
func NewEncoder() *Encoder {
	return &Encoder{
		logger: slog.Default().With("component", "fallback-encoder"),
	}
}

// EmbedText generates a vector for a single text. The single text forms its
// own batch, so its vocabulary is its own token set.
func (e *Encoder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts generates vectors for a batch of texts. The same batch always
// produces the same vectors. Texts with no tokens map to the zero vector.
func (e *Encoder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	tokenized := make([][]string, len(texts))
	for i, text := range texts {
		tokenized[i] = core.Tokenize(text)
	}

	// Batch vocabulary in first-seen order, capped at Dim entries.
	vocab := make(map[string]int)
	for _, tokens := range tokenized {
		for _, token := range tokens {
			if _, ok := vocab[token]; !ok && len(vocab) < Dim {
				vocab[token] = len(vocab)
			}
		}
	}

	// Document frequency per vocabulary token.
	docFreq := make([]int, len(vocab))
	for _, tokens := range tokenized {
		seen := make(map[int]bool, len(tokens))
		for _, token := range tokens {
			if idx, ok := vocab[token]; ok && !seen[idx] {
				seen[idx] = true
				docFreq[idx]++
			}
		}
	}

	vectors := make([][]float32, len(texts))
	for i, tokens := range tokenized {
		vector := make([]float32, Dim)
		if len(tokens) == 0 {
			vectors[i] = vector
			continue
		}

		counts := make(map[int]int, len(tokens))
		for _, token := range tokens {
			if idx, ok := vocab[token]; ok {
				counts[idx]++
			}
		}

		for idx, count := range counts {
			tf := float64(count) / float64(len(tokens))
			ibf := math.Log(float64(len(texts)+1) / float64(docFreq[idx]+1))
			if ibf <= 0 {
				// Token present in every text of the batch; keep a small
				// weight so single-text batches don't collapse to zero.
				ibf = math.Log(float64(len(texts)) + 1)
			}
			vector[idx] = float32(tf * ibf)
		}

		vectors[i] = l2normalize(vector)
	}

	e.logger.Debug("encoded batch with fallback vectors", "texts", len(texts), "vocabulary", len(vocab))

	return vectors, nil
}

// l2normalize scales a vector to unit length in place. A zero vector is
// returned unchanged.
func l2normalize(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return v
	}
	norm := float32(math.Sqrt(sumSquares))
	for i := range v {
		v[i] /= norm
	}
	return v
}
