package index

import (
	"context"
	"log/slog"

	"github.com/poiesic/essayguide/core"
)

// Backend type names reported by CollectionInfo.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// CollectionInfo describes the state of a vector index.
type CollectionInfo struct {
	BackendType   string
	DocumentCount int
}

// Index stores embedded chunks and answers nearest-neighbor queries.
// Scores returned by Search are in (0, 1] on every backend, higher is
// more similar, so callers can fuse them without knowing the backend.
type Index interface {
	// AddChunks stores chunks with their embedding vectors.
	// chunks and vectors must have equal length. Re-adding a chunk ID
	// overwrites the previous entry.
	AddChunks(ctx context.Context, chunks []*core.Chunk, vectors [][]float32) error

	// Search returns up to topK chunks nearest to the query vector,
	// ordered by score descending. A non-empty filter restricts results
	// to chunks whose metadata contains every filter entry.
	Search(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]*core.ScoredChunk, error)

	// DeleteChunks removes chunks by ID. Missing IDs are ignored.
	DeleteChunks(ctx context.Context, ids ...core.ID) error

	// Clear removes every chunk from the index.
	Clear(ctx context.Context) error

	// Info reports the backend type and document count.
	Info(ctx context.Context) (*CollectionInfo, error)

	// Close releases index resources.
	Close() error
}

// Config selects and parameterizes the index backend.
type Config struct {
	// Path is the directory for the persistent backend. Empty selects
	// the in-memory backend.
	Path string
}

// Option configures index opening.
type Option func(*Config)

// WithPath sets the persistent backend directory.
func WithPath(path string) Option {
	return func(c *Config) {
		c.Path = path
	}
}

// Open selects a backend once at startup and returns it. A configured
// persistent path that cannot be opened degrades to the in-memory
// backend with a warning; retrieval stays available either way.
func Open(opts ...Option) (Index, error) {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := slog.Default().With("component", "index")

	if cfg.Path == "" {
		logger.Info("using in-memory vector index")
		return newMemoryIndex(), nil
	}

	persistent, err := newPersistentIndex(cfg.Path)
	if err != nil {
		logger.Warn("persistent index unavailable, degrading to in-memory",
			"path", cfg.Path, "error", err)
		return newMemoryIndex(), nil
	}

	logger.Info("using persistent vector index", "path", cfg.Path)
	return persistent, nil
}

// matchesFilter reports whether the chunk metadata contains every
// filter entry.
func matchesFilter(metadata map[string]string, filter map[string]string) bool {
	for k, want := range filter {
		if metadata[k] != want {
			return false
		}
	}
	return true
}
