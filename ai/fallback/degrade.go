package fallback

import (
	"context"
	"log/slog"

	"github.com/poiesic/essayguide/ai"
)

// DegradingEmbedder wraps a primary embedder and degrades to the
// deterministic encoder whenever the primary fails. Failures are reported
// through the logger only; callers never see an embedding error.
type DegradingEmbedder struct {
	primary ai.Embedder
	encoder *Encoder
	logger  *slog.Logger
}

var _ ai.Embedder = (*DegradingEmbedder)(nil)

// WrapEmbedder wraps primary with per-call degradation to the fallback
// encoder. A nil primary yields an embedder that always uses the fallback.
func WrapEmbedder(primary ai.Embedder) *DegradingEmbedder {
	return &DegradingEmbedder{
		primary: primary,
		encoder: NewEncoder(),
		logger:  slog.Default().With("component", "degrading-embedder"),
	}
}

// EmbedText embeds via the primary path, degrading to the fallback encoder
// on failure.
func (d *DegradingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if d.primary != nil {
		vector, err := d.primary.EmbedText(ctx, text)
		if err == nil {
			return vector, nil
		}
		d.logger.Warn("primary embedder failed, degrading to fallback", "err", err)
	}
	return d.encoder.EmbedText(ctx, text)
}

// EmbedTexts embeds via the primary path, degrading the whole batch to the
// fallback encoder on failure. The batch is never split across paths since
// fallback vectors are not comparable with model vectors.
func (d *DegradingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if d.primary != nil {
		vectors, err := d.primary.EmbedTexts(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		d.logger.Warn("primary embedder failed, degrading batch to fallback", "count", len(texts), "err", err)
	}
	return d.encoder.EmbedTexts(ctx, texts)
}
