package index

import (
	"context"
	"slices"
	"sync"

	"github.com/poiesic/essayguide/core"
)

// memoryIndex keeps chunks and vectors in process memory.
// Similarity is cosine; vectors are not required to be normalized.
type memoryIndex struct {
	mu      sync.RWMutex
	chunks  map[core.ID]*core.Chunk
	vectors map[core.ID][]float32
}

var _ Index = (*memoryIndex)(nil)

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{
		chunks:  make(map[core.ID]*core.Chunk),
		vectors: make(map[core.ID][]float32),
	}
}

func (m *memoryIndex) AddChunks(ctx context.Context, chunks []*core.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return ErrVectorMismatch
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, chunk := range chunks {
		m.chunks[chunk.Id] = chunk
		m.vectors[chunk.Id] = vectors[i]
	}
	return nil
}

func (m *memoryIndex) Search(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]*core.ScoredChunk, error) {
	if len(vector) == 0 {
		return nil, ErrEmptyVector
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []*core.ScoredChunk
	for id, chunk := range m.chunks {
		if !matchesFilter(chunk.Metadata, filter) {
			continue
		}
		score := CosineSimilarity(vector, m.vectors[id])
		results = append(results, &core.ScoredChunk{Chunk: chunk, Score: score})
	}

	sortScoredChunks(results)

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (m *memoryIndex) DeleteChunks(ctx context.Context, ids ...core.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.chunks, id)
		delete(m.vectors, id)
	}
	return nil
}

func (m *memoryIndex) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = make(map[core.ID]*core.Chunk)
	m.vectors = make(map[core.ID][]float32)
	return nil
}

func (m *memoryIndex) Info(ctx context.Context) (*CollectionInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &CollectionInfo{
		BackendType:   BackendMemory,
		DocumentCount: len(m.chunks),
	}, nil
}

func (m *memoryIndex) Close() error {
	return nil
}

// sortScoredChunks orders by score descending with ID as tiebreak so
// equal-score results have a stable order.
func sortScoredChunks(results []*core.ScoredChunk) {
	slices.SortFunc(results, func(a, b *core.ScoredChunk) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.Chunk.Id < b.Chunk.Id {
			return -1
		}
		if a.Chunk.Id > b.Chunk.Id {
			return 1
		}
		return 0
	})
}
