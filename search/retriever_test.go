package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/essayguide/ai/mock"
	"github.com/poiesic/essayguide/core"
	"github.com/poiesic/essayguide/index"
	storagebadger "github.com/poiesic/essayguide/storage/badger"
)

// topicEmbedder maps texts to one of two fixed directions so tests can
// steer which chunks a query lands near.
func topicEmbedder() *mock.MockEmbedder {
	embed := func(text string) []float32 {
		for _, token := range core.Tokenize(text) {
			if token == "friendship" {
				return []float32{1, 0}
			}
		}
		return []float32{0, 1}
	}

	m := mock.NewMockEmbedder()
	m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return embed(text), nil
	}
	m.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vectors[i] = embed(text)
		}
		return vectors, nil
	}
	return m
}

type retrievalFixture struct {
	retriever *Retriever
	indexer   *Indexer
	materials interface {
		AddMaterials(ctx context.Context, materials ...*core.Material) ([]*core.Material, error)
	}
	essays interface {
		AddEssays(ctx context.Context, essays ...*core.SampleEssay) ([]*core.SampleEssay, error)
	}
}

func newRetrievalFixture(t *testing.T) *retrievalFixture {
	t.Helper()

	materialRepo, essayRepo, backend, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	idx, err := index.Open()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	embedder := topicEmbedder()

	retriever, err := NewRetriever(materialRepo, essayRepo, idx, embedder)
	require.NoError(t, err)

	indexer, err := NewIndexer(materialRepo, essayRepo, idx, embedder)
	require.NoError(t, err)
	t.Cleanup(indexer.Release)

	return &retrievalFixture{
		retriever: retriever,
		indexer:   indexer,
		materials: materialRepo,
		essays:    essayRepo,
	}
}

func friendshipPrompt() *core.EssayPrompt {
	return &core.EssayPrompt{
		Title:       "Friendship and Growth",
		Description: "Write about how friendship shapes personal growth",
		EssayType:   core.EssayTypeNarrative,
		Difficulty:  core.DifficultyMiddle,
		Keywords:    []string{"friendship", "growth"},
	}
}

func (f *retrievalFixture) seedFriendshipCorpus(t *testing.T, ctx context.Context) {
	t.Helper()

	titles := []string{
		"Friendship in Hard Times",
		"Growing Through Friendship",
		"A Friendship Remembered",
		"What Friendship Teaches",
	}
	for _, title := range titles {
		_, err := f.materials.AddMaterials(ctx, &core.Material{
			Title:      title,
			Content:    "Friendship and growth walk together: " + title,
			Category:   "relationships",
			Keywords:   []string{"friendship", "growth"},
			Difficulty: core.DifficultyMiddle,
		})
		require.NoError(t, err)
	}

	for _, title := range []string{"My Best Friend", "The Summer We Grew Up"} {
		_, err := f.essays.AddEssays(ctx, &core.SampleEssay{
			Title:      title,
			Content:    "A story of friendship and growth: " + title,
			EssayType:  core.EssayTypeNarrative,
			Difficulty: core.DifficultyMiddle,
			Score:      90,
		})
		require.NoError(t, err)
	}

	require.NoError(t, f.indexer.Reindex(ctx))
}

func TestRetriever_FriendshipScenario(t *testing.T) {
	f := newRetrievalFixture(t)
	ctx := context.Background()
	f.seedFriendshipCorpus(t, ctx)

	result, err := f.retriever.RetrieveForPrompt(ctx, friendshipPrompt(), 10)
	require.NoError(t, err)

	// 4 matching materials and 2 matching essays; caps ceil(10*0.6)=6 and
	// ceil(10*0.4)=4 are not binding.
	assert.Len(t, result.Materials, 4)
	assert.Len(t, result.Essays, 2)

	seen := make(map[core.ID]bool)
	for _, m := range result.Materials {
		assert.False(t, seen[m.Id], "duplicate material id %d", m.Id)
		seen[m.Id] = true
	}
	for _, e := range result.Essays {
		assert.False(t, seen[e.Id], "duplicate essay id %d", e.Id)
		seen[e.Id] = true
	}
	assert.Len(t, seen, 6)
}

func TestRetriever_CategoryCaps(t *testing.T) {
	f := newRetrievalFixture(t)
	ctx := context.Background()
	f.seedFriendshipCorpus(t, ctx)

	// topK=2: caps are ceil(2*0.6)=2 materials, ceil(2*0.4)=1 essay.
	result, err := f.retriever.RetrieveForPrompt(ctx, friendshipPrompt(), 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Materials), 2)
	assert.LessOrEqual(t, len(result.Essays), 1)
}

func TestRetriever_Idempotent(t *testing.T) {
	f := newRetrievalFixture(t)
	ctx := context.Background()
	f.seedFriendshipCorpus(t, ctx)

	first, err := f.retriever.RetrieveForPrompt(ctx, friendshipPrompt(), 10)
	require.NoError(t, err)
	second, err := f.retriever.RetrieveForPrompt(ctx, friendshipPrompt(), 10)
	require.NoError(t, err)

	require.Equal(t, len(first.Materials), len(second.Materials))
	for i := range first.Materials {
		assert.Equal(t, first.Materials[i].Id, second.Materials[i].Id)
	}
	require.Equal(t, len(first.Essays), len(second.Essays))
	for i := range first.Essays {
		assert.Equal(t, first.Essays[i].Id, second.Essays[i].Id)
	}
}

func TestRetriever_EmptyStore(t *testing.T) {
	f := newRetrievalFixture(t)

	result, err := f.retriever.RetrieveForPrompt(context.Background(), friendshipPrompt(), 10)
	require.NoError(t, err)

	assert.Empty(t, result.Materials)
	assert.Empty(t, result.Essays)
	assert.Zero(t, result.Diagnostics.TotalResults)
	assert.Zero(t, result.Diagnostics.LexicalMaterialCount)
	assert.Zero(t, result.Diagnostics.SemanticCount)
	assert.NotEmpty(t, result.Diagnostics.Query)
}

func TestRetriever_LexicalOnlyOnEmbeddingFailure(t *testing.T) {
	f := newRetrievalFixture(t)
	ctx := context.Background()
	f.seedFriendshipCorpus(t, ctx)

	// Force the query embedding to fail; retrieval must degrade to the
	// lexical pathway instead of erroring.
	broken := mock.NewMockEmbedder()
	broken.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("model unavailable")
	}
	f.retriever.embedder = broken

	result, err := f.retriever.RetrieveForPrompt(ctx, friendshipPrompt(), 10)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Materials, "lexical pathway must still produce results")
	assert.Zero(t, result.Diagnostics.SemanticCount)
}

func TestRetriever_QueryConstruction(t *testing.T) {
	prompt := &core.EssayPrompt{
		Title:        "Friendship and Growth",
		Description:  "how friends shape us",
		Keywords:     []string{"friendship", "growth"},
		Requirements: []string{"at least 600 words"},
	}
	query := buildQuery(prompt)
	assert.Equal(t, "Friendship and Growth how friends shape us friendship growth at least 600 words", query)

	// Description is omitted when absent, order otherwise preserved
	prompt.Description = ""
	assert.Equal(t, "Friendship and Growth friendship growth at least 600 words", buildQuery(prompt))
}

func TestRetriever_InvalidPrompt(t *testing.T) {
	f := newRetrievalFixture(t)

	_, err := f.retriever.RetrieveForPrompt(context.Background(), &core.EssayPrompt{}, 10)
	assert.ErrorIs(t, err, ErrInvalidPrompt)
}

func TestRetriever_ReconstructsFromIndexOnly(t *testing.T) {
	// A chunk present only in the vector index must come back as a full
	// item, indistinguishable from a store-fetched one.
	f := newRetrievalFixture(t)
	ctx := context.Background()

	material := &core.Material{
		Id:         core.ContentID("Friendship in Winter", "Friendship warms the coldest season."),
		Title:      "Friendship in Winter",
		Content:    "Friendship warms the coldest season.",
		Category:   "relationships",
		Keywords:   []string{"friendship", "winter"},
		Difficulty: core.DifficultyMiddle,
	}
	chunk := ChunkFromMaterial(material)
	require.NoError(t, f.retriever.index.AddChunks(ctx, []*core.Chunk{chunk}, [][]float32{{1, 0}}))

	result, err := f.retriever.RetrieveForPrompt(ctx, friendshipPrompt(), 10)
	require.NoError(t, err)
	require.Len(t, result.Materials, 1)

	got := result.Materials[0]
	assert.Equal(t, material.Id, got.Id)
	assert.Equal(t, material.Title, got.Title)
	assert.Equal(t, material.Content, got.Content)
	assert.Equal(t, material.Category, got.Category)
	assert.Equal(t, material.Keywords, got.Keywords)
	assert.Equal(t, material.Difficulty, got.Difficulty)
}

func TestRetriever_OrderedByCompositeScore(t *testing.T) {
	// Three materials and two essays at graded angles to the query
	// direction. Their texts share no tokens with the query, so lexical
	// scores stay under the store floor and the composite score is the
	// semantic pathway alone: cosine 1.0, 0.6, and 0.0.
	markers := map[string][]float32{
		"north": {1, 0},
		"east":  {0.6, 0.8},
		"south": {0, 1},
	}
	embed := func(text string) []float32 {
		for _, token := range core.Tokenize(text) {
			if vector, ok := markers[token]; ok {
				return vector
			}
		}
		return []float32{0, 1}
	}
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return embed(text), nil
	}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vectors[i] = embed(text)
		}
		return vectors, nil
	}

	materialRepo, essayRepo, backend, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	idx, err := index.Open()
	require.NoError(t, err)
	defer idx.Close()

	retriever, err := NewRetriever(materialRepo, essayRepo, idx, embedder)
	require.NoError(t, err)
	indexer, err := NewIndexer(materialRepo, essayRepo, idx, embedder)
	require.NoError(t, err)
	defer indexer.Release()

	ctx := context.Background()
	addMaterial := func(title, content string) core.ID {
		added, err := materialRepo.AddMaterials(ctx, &core.Material{
			Title:      title,
			Content:    content,
			Category:   "geography",
			Difficulty: core.DifficultyMiddle,
		})
		require.NoError(t, err)
		return added[0].Id
	}
	addEssay := func(title, content string) core.ID {
		added, err := essayRepo.AddEssays(ctx, &core.SampleEssay{
			Title:      title,
			Content:    content,
			EssayType:  core.EssayTypeNarrative,
			Difficulty: core.DifficultyMiddle,
		})
		require.NoError(t, err)
		return added[0].Id
	}

	nearest := addMaterial("The Compass Point", "Winds blow north across the ridge.")
	middle := addMaterial("The Harbor Light", "Winds blow east across the ridge.")
	farthest := addMaterial("The Quiet Valley", "Winds blow south across the ridge.")
	nearEssay := addEssay("A Night at Sea", "Sailing north through fog and rain.")
	farEssay := addEssay("A Morning at Sea", "Sailing east through fog and rain.")

	require.NoError(t, indexer.Reindex(ctx))

	prompt := &core.EssayPrompt{
		Title:      "Voyage north",
		EssayType:  core.EssayTypeNarrative,
		Difficulty: core.DifficultyMiddle,
	}
	result, err := retriever.RetrieveForPrompt(ctx, prompt, 10)
	require.NoError(t, err)

	require.Len(t, result.Materials, 3)
	assert.Equal(t, nearest, result.Materials[0].Id)
	assert.Equal(t, middle, result.Materials[1].Id)
	assert.Equal(t, farthest, result.Materials[2].Id)

	require.Len(t, result.Essays, 2)
	assert.Equal(t, nearEssay, result.Essays[0].Id)
	assert.Equal(t, farEssay, result.Essays[1].Id)
}

func TestConfig_MergeDefaults(t *testing.T) {
	// Both weights zero selects the default pair.
	merged := mergeDefaults(Config{})
	assert.Equal(t, DefaultConfig().KeywordWeight, merged.KeywordWeight)
	assert.Equal(t, DefaultConfig().SemanticWeight, merged.SemanticWeight)

	// The weights are filled as a pair: one non-zero weight keeps its
	// zero partner, running a single-pathway ranking.
	merged = mergeDefaults(Config{SemanticWeight: 1})
	assert.Zero(t, merged.KeywordWeight)
	assert.Equal(t, 1.0, merged.SemanticWeight)
	assert.Equal(t, DefaultConfig().MaterialShare, merged.MaterialShare)
	assert.Equal(t, DefaultConfig().LexicalMaterialCap, merged.LexicalMaterialCap)
}

func TestRetriever_MonitorCallbacks(t *testing.T) {
	f := newRetrievalFixture(t)
	ctx := context.Background()
	f.seedFriendshipCorpus(t, ctx)

	monitor := &recordingMonitor{}
	result, err := f.retriever.RetrieveForPromptWithMonitor(ctx, friendshipPrompt(), 10, monitor)
	require.NoError(t, err)

	assert.Equal(t, result.Diagnostics.Query, monitor.query)
	assert.Len(t, monitor.lexicalMaterialIds, result.Diagnostics.LexicalMaterialCount)
	assert.Len(t, monitor.semanticIds, result.Diagnostics.SemanticCount)
	assert.True(t, monitor.finished)
}

type recordingMonitor struct {
	query              string
	lexicalMaterialIds []uint64
	lexicalEssayIds    []uint64
	semanticIds        []uint64
	finished           bool
}

var _ RetrievalMonitor = (*recordingMonitor)(nil)

func (m *recordingMonitor) Start(query string) { m.query = query }
func (m *recordingMonitor) AfterLexicalSearch(materialIds []uint64, essayIds []uint64) {
	m.lexicalMaterialIds = materialIds
	m.lexicalEssayIds = essayIds
}
func (m *recordingMonitor) AfterSemanticSearch(ids []uint64) { m.semanticIds = ids }
func (m *recordingMonitor) LexicalAndSemanticHit(_ core.ID)  {}
func (m *recordingMonitor) LexicalHit(_ core.ID)             {}
func (m *recordingMonitor) SemanticHit(_ core.ID)            {}
func (m *recordingMonitor) Finish(_ *Result)                 { m.finished = true }
