package search

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/essayguide/ai"
	"github.com/poiesic/essayguide/core"
	"github.com/poiesic/essayguide/index"
)

const defaultEmbedBatchSize = 32

// materialLister is the slice of the material store the indexer needs.
type materialLister interface {
	ListMaterials(ctx context.Context) ([]*core.Material, error)
}

// essayLister is the slice of the essay store the indexer needs.
type essayLister interface {
	ListEssays(ctx context.Context) ([]*core.SampleEssay, error)
}

// Indexer rebuilds the vector index from the full content store.
// A rebuild is exclusive: retrieval sharing the same lock waits until
// the rebuild finishes, so no search observes a half-built index.
type Indexer struct {
	materials materialLister
	essays    essayLister
	index     index.Index
	embedder  ai.Embedder
	pool      *ants.Pool
	batchSize int
	logger    *slog.Logger
	mu        *sync.RWMutex
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) IndexerOption {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}
		if ix.pool != nil {
			ix.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		ix.pool = pool
		return nil
	}
}

// WithBatchSize sets how many texts are embedded per worker task.
func WithBatchSize(size int) IndexerOption {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}
		ix.batchSize = size
		return nil
	}
}

// WithIndexerLogger sets a custom logger.
// Default is slog.Default().
func WithIndexerLogger(logger *slog.Logger) IndexerOption {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// WithIndexerExclusion shares a lock with the Retriever so a rebuild
// never overlaps in-flight retrieval.
func WithIndexerExclusion(mu *sync.RWMutex) IndexerOption {
	return func(ix *Indexer) error {
		if mu != nil {
			ix.mu = mu
		}
		return nil
	}
}

// NewIndexer creates an indexer over the content store, a vector index,
// and an embedder.
func NewIndexer(materials materialLister, essays essayLister, idx index.Index, embedder ai.Embedder, opts ...IndexerOption) (*Indexer, error) {
	if materials == nil {
		return nil, ErrMaterialRepositoryRequired
	}
	if essays == nil {
		return nil, ErrEssayRepositoryRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	ix := &Indexer{
		materials: materials,
		essays:    essays,
		index:     idx,
		embedder:  embedder,
		pool:      pool,
		batchSize: defaultEmbedBatchSize,
		logger:    slog.Default().With("component", "indexer"),
		mu:        &sync.RWMutex{},
	}

	for _, opt := range opts {
		if err := opt(ix); err != nil {
			pool.Release()
			return nil, err
		}
	}

	return ix, nil
}

// Reindex clears the vector index and rebuilds it from every material
// and essay currently in the content store. Partial index updates are
// not supported; staleness between a content mutation and the next
// Reindex is repaired here.
func (ix *Indexer) Reindex(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	materials, err := ix.materials.ListMaterials(ctx)
	if err != nil {
		return err
	}
	essays, err := ix.essays.ListEssays(ctx)
	if err != nil {
		return err
	}

	chunks := make([]*core.Chunk, 0, len(materials)+len(essays))
	for _, material := range materials {
		chunks = append(chunks, ChunkFromMaterial(material))
	}
	for _, essay := range essays {
		chunks = append(chunks, ChunkFromEssay(essay))
	}

	if err := ix.index.Clear(ctx); err != nil {
		return err
	}
	if len(chunks) == 0 {
		ix.logger.Info("reindex complete", "chunks", 0)
		return nil
	}

	vectors, err := ix.embedChunks(ctx, chunks)
	if err != nil {
		return err
	}

	if err := ix.index.AddChunks(ctx, chunks, vectors); err != nil {
		return err
	}

	ix.logger.Info("reindex complete",
		"materials", len(materials), "essays", len(essays), "chunks", len(chunks))
	return nil
}

// embedChunks embeds chunk texts in fixed-size batches spread across the
// worker pool. Each batch is embedded as a unit so batch-local encoders
// see the whole batch at once.
func (ix *Indexer) embedChunks(ctx context.Context, chunks []*core.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors := make([][]float32, len(texts))

	var wg sync.WaitGroup
	var errOnce sync.Once
	var firstErr error

	for start := 0; start < len(texts); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		wg.Add(1)
		batchStart, batchEnd := start, end
		submitErr := ix.pool.Submit(func() {
			defer wg.Done()
			batch, err := ix.embedder.EmbedTexts(ctx, texts[batchStart:batchEnd])
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			copy(vectors[batchStart:batchEnd], batch)
		})
		if submitErr != nil {
			wg.Done()
			errOnce.Do(func() { firstErr = submitErr })
			break
		}
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

// Release releases the worker pool.
// The indexer should not be used after calling Release.
func (ix *Indexer) Release() {
	if ix.pool != nil {
		ix.pool.Release()
	}
}
