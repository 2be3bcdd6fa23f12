package search

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/essayguide/core"
	"github.com/poiesic/essayguide/index"
	storagebadger "github.com/poiesic/essayguide/storage/badger"
)

func TestIndexer_ReindexBuildsFromStore(t *testing.T) {
	f := newRetrievalFixture(t)
	ctx := context.Background()

	_, err := f.materials.AddMaterials(ctx, &core.Material{
		Title:      "Friendship in Hard Times",
		Content:    "Friendship carries us through hard times.",
		Category:   "relationships",
		Difficulty: core.DifficultyMiddle,
	})
	require.NoError(t, err)
	_, err = f.essays.AddEssays(ctx, &core.SampleEssay{
		Title:      "My Best Friend",
		Content:    "A story of friendship.",
		EssayType:  core.EssayTypeNarrative,
		Difficulty: core.DifficultyMiddle,
	})
	require.NoError(t, err)

	require.NoError(t, f.indexer.Reindex(ctx))

	info, err := f.retriever.index.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, info.DocumentCount, "one chunk per content item")
}

func TestIndexer_ReindexReplacesStaleChunks(t *testing.T) {
	f := newRetrievalFixture(t)
	ctx := context.Background()

	added, err := f.materials.AddMaterials(ctx, &core.Material{
		Title:      "Friendship in Hard Times",
		Content:    "Friendship carries us through hard times.",
		Category:   "relationships",
		Difficulty: core.DifficultyMiddle,
	})
	require.NoError(t, err)
	require.NoError(t, f.indexer.Reindex(ctx))

	// Delete from the store; the index is stale until the next rebuild.
	materialRepo := f.materials.(interface {
		DeleteMaterials(ctx context.Context, ids ...core.ID) error
	})
	require.NoError(t, materialRepo.DeleteMaterials(ctx, added[0].Id))
	require.NoError(t, f.indexer.Reindex(ctx))

	info, err := f.retriever.index.Info(ctx)
	require.NoError(t, err)
	assert.Zero(t, info.DocumentCount, "rebuild must drop chunks for deleted content")
}

func TestIndexer_EmptyStore(t *testing.T) {
	f := newRetrievalFixture(t)
	require.NoError(t, f.indexer.Reindex(context.Background()))

	info, err := f.retriever.index.Info(context.Background())
	require.NoError(t, err)
	assert.Zero(t, info.DocumentCount)
}

func TestIndexer_ExclusionWithRetrieval(t *testing.T) {
	materialRepo, essayRepo, backend, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	idx, err := index.Open()
	require.NoError(t, err)
	defer idx.Close()

	embedder := topicEmbedder()
	var mu sync.RWMutex

	retriever, err := NewRetriever(materialRepo, essayRepo, idx, embedder, WithExclusion(&mu))
	require.NoError(t, err)
	indexer, err := NewIndexer(materialRepo, essayRepo, idx, embedder, WithIndexerExclusion(&mu))
	require.NoError(t, err)
	defer indexer.Release()

	ctx := context.Background()
	_, err = materialRepo.AddMaterials(ctx, &core.Material{
		Title:      "Friendship in Hard Times",
		Content:    "Friendship carries us through hard times.",
		Category:   "relationships",
		Difficulty: core.DifficultyMiddle,
	})
	require.NoError(t, err)

	// Interleave rebuilds and retrievals; the shared lock must keep every
	// retrieval from observing a half-built index, so each run sees either
	// the full corpus or (before the first rebuild) nothing.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, indexer.Reindex(ctx))
		}()
		go func() {
			defer wg.Done()
			result, err := retriever.RetrieveForPrompt(ctx, friendshipPrompt(), 10)
			assert.NoError(t, err)
			assert.LessOrEqual(t, len(result.Materials), 1)
		}()
	}
	wg.Wait()

	result, err := retriever.RetrieveForPrompt(ctx, friendshipPrompt(), 10)
	require.NoError(t, err)
	assert.Len(t, result.Materials, 1)
}
