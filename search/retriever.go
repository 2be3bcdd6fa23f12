// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/essayguide/ai"
	"github.com/poiesic/essayguide/core"
	"github.com/poiesic/essayguide/index"
)

// Config holds the fusion parameters. Zero values are replaced with
// defaults by NewRetriever.
type Config struct {
	// KeywordWeight and SemanticWeight combine pathway scores into the
	// composite score. The pair is treated as one setting: defaults apply
	// only when both are zero, so a config carrying exactly one non-zero
	// weight runs that single pathway's ranking on purpose.
	KeywordWeight  float64
	SemanticWeight float64

	// MaterialShare and EssayShare split topK into independent category
	// caps of ceil(topK*share).
	MaterialShare float64
	EssayShare    float64

	// LexicalMaterialCap and LexicalEssayCap bound raw candidates from
	// the lexical pass.
	LexicalMaterialCap int
	LexicalEssayCap    int

	// TypeBonus is added when an essay's type matches the prompt's;
	// DifficultyBonus when difficulty tags match.
	TypeBonus       float64
	DifficultyBonus float64
}

// DefaultConfig returns the standard fusion parameters.
func DefaultConfig() Config {
	return Config{
		KeywordWeight:      0.3,
		SemanticWeight:     0.7,
		MaterialShare:      0.6,
		EssayShare:         0.4,
		LexicalMaterialCap: 10,
		LexicalEssayCap:    5,
		TypeBonus:          0.2,
		DifficultyBonus:    0.1,
	}
}

// Diagnostics reports pathway counts and the constructed query for
// observability. It never affects control flow.
type Diagnostics struct {
	Query                string
	LexicalMaterialCount int
	LexicalEssayCount    int
	SemanticCount        int
	TotalResults         int
}

// Result is the output of one retrieval run.
type Result struct {
	Materials   []*core.Material
	Essays      []*core.SampleEssay
	Diagnostics Diagnostics
}

// materialSearcher is the slice of the material store the retriever needs.
type materialSearcher interface {
	SearchMaterials(ctx context.Context, query string, limit int) ([]*core.Material, error)
}

// essaySearcher is the slice of the essay store the retriever needs.
type essaySearcher interface {
	SearchEssays(ctx context.Context, query string, limit int) ([]*core.SampleEssay, error)
}

// Retriever fuses lexical and semantic search into one ranked,
// deduplicated, category-balanced selection.
type Retriever struct {
	materials materialSearcher
	essays    essaySearcher
	index     index.Index
	embedder  ai.Embedder
	cfg       Config
	logger    *slog.Logger
	mu        *sync.RWMutex
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithConfig overrides the fusion parameters.
func WithConfig(cfg Config) Option {
	return func(r *Retriever) error {
		r.cfg = mergeDefaults(cfg)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithExclusion shares a lock with the Indexer so retrieval never
// overlaps a re-index of the same vector index.
func WithExclusion(mu *sync.RWMutex) Option {
	return func(r *Retriever) error {
		if mu != nil {
			r.mu = mu
		}
		return nil
	}
}

// NewRetriever creates a retriever over the content store, a vector
// index, and an embedder.
func NewRetriever(materials materialSearcher, essays essaySearcher, idx index.Index, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
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

	r := &Retriever{
		materials: materials,
		essays:    essays,
		index:     idx,
		embedder:  embedder,
		cfg:       DefaultConfig(),
		logger:    slog.Default().With("component", "retriever"),
		mu:        &sync.RWMutex{},
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// RetrieveForPrompt runs retrieval fusion for a writing prompt.
// Returns up to ceil(topK*MaterialShare) materials and
// ceil(topK*EssayShare) essays, each list ordered by composite score
// descending. An empty result is a valid outcome, not an error.
func (r *Retriever) RetrieveForPrompt(ctx context.Context, prompt *core.EssayPrompt, topK int) (*Result, error) {
	return r.RetrieveForPromptWithMonitor(ctx, prompt, topK, nil)
}

// RetrieveForPromptWithMonitor runs retrieval fusion with monitoring.
// The monitor receives callbacks at each stage of the retrieval process.
func (r *Retriever) RetrieveForPromptWithMonitor(ctx context.Context, prompt *core.EssayPrompt, topK int, monitor RetrievalMonitor) (*Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if err := core.ValidateEssayPrompt(prompt); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrompt, err)
	}

	query := buildQuery(prompt)
	monitor.Start(query)

	// Retrieval shares a read lock with the indexer's exclusive rebuild.
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := make(map[core.ID]*candidate)

	// 1. Lexical pass. A failing pass contributes nothing; fusion
	// proceeds with whatever succeeded.
	lexMaterials, err := r.materials.SearchMaterials(ctx, query, r.cfg.LexicalMaterialCap)
	if err != nil {
		r.logger.Warn("lexical material search failed", "error", err)
		lexMaterials = nil
	}
	lexEssays, err := r.essays.SearchEssays(ctx, query, r.cfg.LexicalEssayCap)
	if err != nil {
		r.logger.Warn("lexical essay search failed", "error", err)
		lexEssays = nil
	}

	materialIds := make([]uint64, 0, len(lexMaterials))
	for _, material := range lexMaterials {
		score := r.keywordScoreMaterial(query, prompt, material)
		candidates[material.Id] = &candidate{
			id:           material.Id,
			category:     core.ContentTypeMaterial,
			keywordScore: score,
			material:     material,
		}
		materialIds = append(materialIds, uint64(material.Id))
	}
	essayIds := make([]uint64, 0, len(lexEssays))
	for _, essay := range lexEssays {
		score := r.keywordScoreEssay(query, prompt, essay)
		candidates[essay.Id] = &candidate{
			id:           essay.Id,
			category:     core.ContentTypeEssay,
			keywordScore: score,
			essay:        essay,
		}
		essayIds = append(essayIds, uint64(essay.Id))
	}
	monitor.AfterLexicalSearch(materialIds, essayIds)

	// 2. Semantic pass.
	semanticCount := r.semanticPass(ctx, query, topK, candidates, monitor)

	// 3. Fuse, sort, split.
	fused := make([]*candidate, 0, len(candidates))
	for _, c := range candidates {
		c.composite = r.cfg.KeywordWeight*c.keywordScore + r.cfg.SemanticWeight*c.semanticScore
		fused = append(fused, c)

		switch {
		case c.keywordScore > 0 && c.semanticScore > 0:
			monitor.LexicalAndSemanticHit(c.id)
		case c.semanticScore > 0:
			monitor.SemanticHit(c.id)
		default:
			monitor.LexicalHit(c.id)
		}
	}

	slices.SortFunc(fused, func(a, b *candidate) int {
		if a.composite > b.composite {
			return -1
		}
		if a.composite < b.composite {
			return 1
		}
		if a.id < b.id {
			return -1
		}
		if a.id > b.id {
			return 1
		}
		return 0
	})

	materialCap := int(math.Ceil(float64(topK) * r.cfg.MaterialShare))
	essayCap := int(math.Ceil(float64(topK) * r.cfg.EssayShare))

	result := &Result{}
	for _, c := range fused {
		switch c.category {
		case core.ContentTypeMaterial:
			if len(result.Materials) < materialCap {
				result.Materials = append(result.Materials, c.material)
			}
		case core.ContentTypeEssay:
			if len(result.Essays) < essayCap {
				result.Essays = append(result.Essays, c.essay)
			}
		}
	}

	result.Diagnostics = Diagnostics{
		Query:                query,
		LexicalMaterialCount: len(lexMaterials),
		LexicalEssayCount:    len(lexEssays),
		SemanticCount:        semanticCount,
		TotalResults:         len(result.Materials) + len(result.Essays),
	}

	monitor.Finish(result)
	return result, nil
}

// semanticPass embeds the query and merges index hits into candidates.
// Returns the hit count. Failures degrade to an empty contribution.
func (r *Retriever) semanticPass(ctx context.Context, query string, topK int, candidates map[core.ID]*candidate, monitor RetrievalMonitor) int {
	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed, semantic pass skipped", "error", err)
		monitor.AfterSemanticSearch(nil)
		return 0
	}

	hits, err := r.index.Search(ctx, vector, topK, nil)
	if err != nil {
		r.logger.Warn("vector search failed, semantic pass skipped", "error", err)
		monitor.AfterSemanticSearch(nil)
		return 0
	}

	ids := make([]uint64, 0, len(hits))
	for _, hit := range hits {
		chunk := hit.Chunk
		ids = append(ids, uint64(chunk.Id))

		existing, found := candidates[chunk.Id]
		if found {
			if float64(hit.Score) > existing.semanticScore {
				existing.semanticScore = float64(hit.Score)
			}
			continue
		}

		// Reconstruction is selected by the content_type tag, never by
		// probing which metadata fields happen to be present.
		switch core.ContentType(chunk.Metadata[core.MetaContentType]) {
		case core.ContentTypeMaterial:
			candidates[chunk.Id] = &candidate{
				id:            chunk.Id,
				category:      core.ContentTypeMaterial,
				semanticScore: float64(hit.Score),
				material:      materialFromChunk(chunk),
			}
		case core.ContentTypeEssay:
			candidates[chunk.Id] = &candidate{
				id:            chunk.Id,
				category:      core.ContentTypeEssay,
				semanticScore: float64(hit.Score),
				essay:         essayFromChunk(chunk),
			}
		default:
			r.logger.Warn("indexed chunk has unknown content type",
				"id", chunk.Id, "content_type", chunk.Metadata[core.MetaContentType])
		}
	}

	monitor.AfterSemanticSearch(ids)
	return len(ids)
}

// keywordScoreMaterial scores a lexically found material against the
// prompt. Clipped to 1.0.
func (r *Retriever) keywordScoreMaterial(query string, prompt *core.EssayPrompt, material *core.Material) float64 {
	score := 0.4*core.TextSimilarity(query, material.Title) +
		0.4*core.TextSimilarity(query, material.Content) +
		0.2*core.KeywordOverlap(prompt.Keywords, material.Keywords)

	if material.Difficulty == prompt.Difficulty {
		score += r.cfg.DifficultyBonus
	}

	return math.Min(score, 1.0)
}

// keywordScoreEssay scores a lexically found essay against the prompt.
// Essays carry no keyword tags, so the overlap term is always zero.
func (r *Retriever) keywordScoreEssay(query string, prompt *core.EssayPrompt, essay *core.SampleEssay) float64 {
	score := 0.4*core.TextSimilarity(query, essay.Title) +
		0.4*core.TextSimilarity(query, essay.Content)

	if essay.EssayType == prompt.EssayType {
		score += r.cfg.TypeBonus
	}
	if essay.Difficulty == prompt.Difficulty {
		score += r.cfg.DifficultyBonus
	}

	return math.Min(score, 1.0)
}

// candidate is the working unit of one fusion run.
type candidate struct {
	id            core.ID
	category      core.ContentType
	keywordScore  float64
	semanticScore float64
	composite     float64
	material      *core.Material
	essay         *core.SampleEssay
}

// buildQuery joins prompt fields into the retrieval query, title first.
func buildQuery(prompt *core.EssayPrompt) string {
	parts := make([]string, 0, 2+len(prompt.Keywords)+len(prompt.Requirements))
	parts = append(parts, prompt.Title)
	if prompt.Description != "" {
		parts = append(parts, prompt.Description)
	}
	parts = append(parts, prompt.Keywords...)
	parts = append(parts, prompt.Requirements...)
	return strings.Join(parts, " ")
}

// mergeDefaults fills zero-valued config fields from DefaultConfig.
// The fusion weights are filled as a pair: one weight left at zero next
// to a non-zero partner stays zero, silencing that pathway.
func mergeDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.KeywordWeight == 0 && cfg.SemanticWeight == 0 {
		cfg.KeywordWeight = def.KeywordWeight
		cfg.SemanticWeight = def.SemanticWeight
	}
	if cfg.MaterialShare == 0 {
		cfg.MaterialShare = def.MaterialShare
	}
	if cfg.EssayShare == 0 {
		cfg.EssayShare = def.EssayShare
	}
	if cfg.LexicalMaterialCap == 0 {
		cfg.LexicalMaterialCap = def.LexicalMaterialCap
	}
	if cfg.LexicalEssayCap == 0 {
		cfg.LexicalEssayCap = def.LexicalEssayCap
	}
	return cfg
}
