package index

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/essayguide/core"
)

func testChunk(id core.ID, text string, contentType core.ContentType) *core.Chunk {
	return &core.Chunk{
		Id:   id,
		Text: text,
		Metadata: map[string]string{
			core.MetaContentType: string(contentType),
			core.MetaTitle:       text,
		},
		Source: string(contentType),
	}
}

// openBackends returns both index backends so every test runs against each.
func openBackends(t *testing.T) map[string]Index {
	t.Helper()

	memory, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { memory.Close() })

	persistent, err := Open(WithPath(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { persistent.Close() })

	return map[string]Index{
		BackendMemory: memory,
		BackendBadger: persistent,
	}
}

func TestIndex_AddAndSearch(t *testing.T) {
	for name, idx := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			chunks := []*core.Chunk{
				testChunk(1, "friendship", core.ContentTypeMaterial),
				testChunk(2, "machinery", core.ContentTypeMaterial),
			}
			vectors := [][]float32{
				{1, 0, 0},
				{0, 1, 0},
			}
			require.NoError(t, idx.AddChunks(ctx, chunks, vectors))

			results, err := idx.Search(ctx, []float32{0.9, 0.1, 0}, 10, nil)
			require.NoError(t, err)
			require.Len(t, results, 2)
			assert.Equal(t, core.ID(1), results[0].Chunk.Id, "nearest chunk must rank first")
			assert.Greater(t, results[0].Score, results[1].Score)
		})
	}
}

func TestIndex_ScoreRange(t *testing.T) {
	for name, idx := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			vec := []float32{0.6, 0.8}
			require.NoError(t, idx.AddChunks(ctx, []*core.Chunk{testChunk(1, "self", core.ContentTypeEssay)}, [][]float32{vec}))

			results, err := idx.Search(ctx, vec, 1, nil)
			require.NoError(t, err)
			require.Len(t, results, 1)
			// Identical vectors score 1 on both backends
			assert.InDelta(t, 1.0, float64(results[0].Score), 1e-5)
		})
	}
}

func TestIndex_Filter(t *testing.T) {
	for name, idx := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			chunks := []*core.Chunk{
				testChunk(1, "a material", core.ContentTypeMaterial),
				testChunk(2, "an essay", core.ContentTypeEssay),
			}
			vectors := [][]float32{{1, 0}, {1, 0}}
			require.NoError(t, idx.AddChunks(ctx, chunks, vectors))

			results, err := idx.Search(ctx, []float32{1, 0}, 10,
				map[string]string{core.MetaContentType: string(core.ContentTypeEssay)})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, core.ID(2), results[0].Chunk.Id)
		})
	}
}

func TestIndex_TopK(t *testing.T) {
	for name, idx := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var chunks []*core.Chunk
			var vectors [][]float32
			for i := 1; i <= 5; i++ {
				chunks = append(chunks, testChunk(core.ID(i), "chunk", core.ContentTypeMaterial))
				vectors = append(vectors, []float32{float32(i), 1})
			}
			require.NoError(t, idx.AddChunks(ctx, chunks, vectors))

			results, err := idx.Search(ctx, []float32{1, 1}, 3, nil)
			require.NoError(t, err)
			assert.Len(t, results, 3)
		})
	}
}

func TestIndex_Overwrite(t *testing.T) {
	for name, idx := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, idx.AddChunks(ctx, []*core.Chunk{testChunk(1, "old", core.ContentTypeMaterial)}, [][]float32{{1, 0}}))
			require.NoError(t, idx.AddChunks(ctx, []*core.Chunk{testChunk(1, "new", core.ContentTypeMaterial)}, [][]float32{{0, 1}}))

			info, err := idx.Info(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, info.DocumentCount, "same ID must overwrite, not duplicate")

			results, err := idx.Search(ctx, []float32{0, 1}, 1, nil)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, "new", results[0].Chunk.Text)
		})
	}
}

func TestIndex_DeleteAndClear(t *testing.T) {
	for name, idx := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			chunks := []*core.Chunk{
				testChunk(1, "one", core.ContentTypeMaterial),
				testChunk(2, "two", core.ContentTypeMaterial),
			}
			require.NoError(t, idx.AddChunks(ctx, chunks, [][]float32{{1, 0}, {0, 1}}))

			require.NoError(t, idx.DeleteChunks(ctx, 1))
			info, err := idx.Info(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, info.DocumentCount)

			require.NoError(t, idx.Clear(ctx))
			info, err = idx.Info(ctx)
			require.NoError(t, err)
			assert.Zero(t, info.DocumentCount)
		})
	}
}

func TestIndex_EmptyQueryVector(t *testing.T) {
	for name, idx := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := idx.Search(context.Background(), nil, 10, nil)
			assert.ErrorIs(t, err, ErrEmptyVector)
		})
	}
}

func TestIndex_VectorMismatch(t *testing.T) {
	for name, idx := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			err := idx.AddChunks(context.Background(),
				[]*core.Chunk{testChunk(1, "one", core.ContentTypeMaterial)},
				[][]float32{{1, 0}, {0, 1}})
			assert.Error(t, err)
		})
	}
}

func TestOpen_BackendNegotiation(t *testing.T) {
	ctx := context.Background()

	memory, err := Open()
	require.NoError(t, err)
	defer memory.Close()
	info, err := memory.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, info.BackendType)

	persistent, err := Open(WithPath(t.TempDir()))
	require.NoError(t, err)
	defer persistent.Close()
	info, err = persistent.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, BackendBadger, info.BackendType)
}

func TestOpen_DegradesOnBadPath(t *testing.T) {
	// A file where a directory is expected makes the persistent backend
	// unusable; Open must fall back to memory instead of failing.
	dir := t.TempDir()
	file := dir + "/not-a-dir"
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	idx, err := Open(WithPath(file))
	require.NoError(t, err)
	defer idx.Close()

	info, err := idx.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, info.BackendType)
}
