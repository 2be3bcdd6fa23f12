package index

import (
	"context"

	"github.com/poiesic/essayguide/core"
	storagebadger "github.com/poiesic/essayguide/storage/badger"
)

// persistentIndex stores chunks and vectors in BadgerDB and scans
// linearly at query time. Distance is Euclidean, converted to a
// similarity in (0, 1] so scores merge with the memory backend's.
type persistentIndex struct {
	backend *storagebadger.Backend
	chunks  *storagebadger.ChunkRepository
}

var _ Index = (*persistentIndex)(nil)

func newPersistentIndex(path string) (*persistentIndex, error) {
	backend, err := storagebadger.OpenBackend(path, false)
	if err != nil {
		return nil, err
	}

	chunks, err := storagebadger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &persistentIndex{backend: backend, chunks: chunks}, nil
}

func (p *persistentIndex) AddChunks(ctx context.Context, chunks []*core.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return ErrVectorMismatch
	}
	return p.chunks.AddChunks(ctx, chunks, vectors)
}

func (p *persistentIndex) Search(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]*core.ScoredChunk, error) {
	if len(vector) == 0 {
		return nil, ErrEmptyVector
	}

	var results []*core.ScoredChunk
	err := p.chunks.IterateChunks(ctx, func(chunk *core.Chunk, stored []float32) error {
		if !matchesFilter(chunk.Metadata, filter) {
			return nil
		}
		distance := EuclideanDistance(vector, stored)
		score := 1.0 / (1.0 + distance)
		results = append(results, &core.ScoredChunk{Chunk: chunk, Score: score})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortScoredChunks(results)

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (p *persistentIndex) DeleteChunks(ctx context.Context, ids ...core.ID) error {
	return p.chunks.DeleteChunks(ctx, ids...)
}

func (p *persistentIndex) Clear(ctx context.Context) error {
	return p.chunks.DeleteAllChunks(ctx)
}

func (p *persistentIndex) Info(ctx context.Context) (*CollectionInfo, error) {
	count, err := p.chunks.CountChunks(ctx)
	if err != nil {
		return nil, err
	}
	return &CollectionInfo{
		BackendType:   BackendBadger,
		DocumentCount: count,
	}, nil
}

func (p *persistentIndex) Close() error {
	if err := p.chunks.Close(); err != nil {
		return err
	}
	return p.backend.Close()
}
