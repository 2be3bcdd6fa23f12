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


package essayguide

import (
	"context"
	"log/slog"
	"sync"

	"github.com/poiesic/essayguide/ai"
	"github.com/poiesic/essayguide/ai/fallback"
	"github.com/poiesic/essayguide/ai/openai"
	"github.com/poiesic/essayguide/confidence"
	"github.com/poiesic/essayguide/core"
	"github.com/poiesic/essayguide/index"
	"github.com/poiesic/essayguide/search"
	"github.com/poiesic/essayguide/storage"
	"github.com/poiesic/essayguide/storage/badger"
)

// GuideResponse is the output of one full guidance request: the
// generated guidance, the references it was built from, and a
// confidence score over both.
type GuideResponse struct {
	Guidance    *core.WritingGuidance
	Materials   []*core.Material
	Essays      []*core.SampleEssay
	Confidence  float64
	Diagnostics search.Diagnostics
}

// System wires the content store, vector index, AI services, retriever,
// and scorer into one facade.
type System struct {
	backend      *badger.Backend
	materialRepo storage.MaterialRepository
	essayRepo    storage.EssayRepository
	provider     ai.AIProvider
	generator    ai.GuidanceGenerator
	idx          index.Index
	retriever    *search.Retriever
	indexer      *search.Indexer
	scorer       *confidence.Scorer
	topK         int
	logger       *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig   *ai.Config
	provider   ai.AIProvider
	indexPath  string
	retrieval  *search.Config
	confidence confidence.Config
	topK       int
}

// WithAIConfig sets the AI service configuration.
func WithAIConfig(cfg *ai.Config) SystemOption {
	return func(o *systemOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithProvider injects a pre-built AI provider, bypassing the
// OpenAI-compatible default. Used in tests with ai/mock.
func WithProvider(provider ai.AIProvider) SystemOption {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

// WithIndexPath stores the vector index on disk at path.
// Default is an in-memory index.
func WithIndexPath(path string) SystemOption {
	return func(o *systemOptions) {
		o.indexPath = path
	}
}

// WithRetrievalConfig overrides the fusion parameters.
func WithRetrievalConfig(cfg search.Config) SystemOption {
	return func(o *systemOptions) {
		o.retrieval = &cfg
	}
}

// WithConfidenceConfig overrides the confidence scoring weights.
func WithConfidenceConfig(cfg confidence.Config) SystemOption {
	return func(o *systemOptions) {
		o.confidence = cfg
	}
}

// WithTopK sets the default retrieval depth for Guide.
// Default is 10.
func WithTopK(topK int) SystemOption {
	return func(o *systemOptions) {
		if topK > 0 {
			o.topK = topK
		}
	}
}

// NewSystem opens the content store at filePath (in-memory when empty)
// and wires all services. Only an unconstructible content store is
// fatal; AI services and the persistent index degrade with a warning.
func NewSystem(filePath string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
		topK:     10,
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := slog.Default().With("component", "essayguide")

	backend, err := badger.OpenBackend(filePath, filePath == "")
	if err != nil {
		return nil, err
	}

	materialRepo, err := badger.NewMaterialRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	essayRepo, err := badger.NewEssayRepository(backend)
	if err != nil {
		materialRepo.Close()
		backend.Close()
		return nil, err
	}

	// AI services degrade, never block startup. With no provider the
	// embedder runs on the deterministic fallback encoder and guidance
	// comes from the template.
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			logger.Warn("AI provider unavailable, degrading to fallback services", "error", err)
			provider = nil
		}
	}

	var primary ai.Embedder
	generator := openai.NewTemplateGenerator()
	if provider != nil {
		primary = provider.Embedder()
		generator = provider.GuidanceGenerator()
	}
	embedder := fallback.WrapEmbedder(primary)

	idx, err := index.Open(index.WithPath(options.indexPath))
	if err != nil {
		essayRepo.Close()
		materialRepo.Close()
		backend.Close()
		return nil, err
	}

	// One lock keeps rebuilds exclusive against in-flight retrieval.
	var mu sync.RWMutex

	retrieverOpts := []search.Option{search.WithExclusion(&mu)}
	if options.retrieval != nil {
		retrieverOpts = append(retrieverOpts, search.WithConfig(*options.retrieval))
	}
	retriever, err := search.NewRetriever(materialRepo, essayRepo, idx, embedder, retrieverOpts...)
	if err != nil {
		idx.Close()
		essayRepo.Close()
		materialRepo.Close()
		backend.Close()
		return nil, err
	}

	indexer, err := search.NewIndexer(materialRepo, essayRepo, idx, embedder,
		search.WithIndexerExclusion(&mu))
	if err != nil {
		idx.Close()
		essayRepo.Close()
		materialRepo.Close()
		backend.Close()
		return nil, err
	}

	return &System{
		backend:      backend,
		materialRepo: materialRepo,
		essayRepo:    essayRepo,
		provider:     provider,
		generator:    generator,
		idx:          idx,
		retriever:    retriever,
		indexer:      indexer,
		scorer:       confidence.NewScorer(options.confidence),
		topK:         options.topK,
		logger:       logger,
	}, nil
}

// MaterialRepository exposes the material store.
func (s *System) MaterialRepository() storage.MaterialRepository {
	return s.materialRepo
}

// EssayRepository exposes the essay store.
func (s *System) EssayRepository() storage.EssayRepository {
	return s.essayRepo
}

// AddMaterial stores a material and rebuilds the vector index.
func (s *System) AddMaterial(ctx context.Context, material *core.Material) (*core.Material, error) {
	added, err := s.materialRepo.AddMaterials(ctx, material)
	if err != nil {
		return nil, err
	}
	s.reindexAfterMutation(ctx)
	return added[0], nil
}

// AddEssay stores a sample essay and rebuilds the vector index.
func (s *System) AddEssay(ctx context.Context, essay *core.SampleEssay) (*core.SampleEssay, error) {
	added, err := s.essayRepo.AddEssays(ctx, essay)
	if err != nil {
		return nil, err
	}
	s.reindexAfterMutation(ctx)
	return added[0], nil
}

// UpdateMaterial updates a material and rebuilds the vector index.
func (s *System) UpdateMaterial(ctx context.Context, material *core.Material) (*core.Material, error) {
	updated, err := s.materialRepo.UpdateMaterials(ctx, material)
	if err != nil {
		return nil, err
	}
	s.reindexAfterMutation(ctx)
	return updated[0], nil
}

// UpdateEssay updates an essay and rebuilds the vector index.
func (s *System) UpdateEssay(ctx context.Context, essay *core.SampleEssay) (*core.SampleEssay, error) {
	updated, err := s.essayRepo.UpdateEssays(ctx, essay)
	if err != nil {
		return nil, err
	}
	s.reindexAfterMutation(ctx)
	return updated[0], nil
}

// DeleteMaterial removes a material and rebuilds the vector index.
func (s *System) DeleteMaterial(ctx context.Context, id core.ID) error {
	if err := s.materialRepo.DeleteMaterials(ctx, id); err != nil {
		return err
	}
	s.reindexAfterMutation(ctx)
	return nil
}

// DeleteEssay removes an essay and rebuilds the vector index.
func (s *System) DeleteEssay(ctx context.Context, id core.ID) error {
	if err := s.essayRepo.DeleteEssays(ctx, id); err != nil {
		return err
	}
	s.reindexAfterMutation(ctx)
	return nil
}

// Reindex rebuilds the vector index from the full content store.
func (s *System) Reindex(ctx context.Context) error {
	return s.indexer.Reindex(ctx)
}

// Retrieve runs retrieval fusion for a prompt at the system's default depth.
func (s *System) Retrieve(ctx context.Context, prompt *core.EssayPrompt) (*search.Result, error) {
	return s.retriever.RetrieveForPrompt(ctx, prompt, s.topK)
}

// Guide runs the full request flow: retrieve references, generate
// guidance from them, and score confidence in the result.
func (s *System) Guide(ctx context.Context, prompt *core.EssayPrompt) (*GuideResponse, error) {
	retrieved, err := s.retriever.RetrieveForPrompt(ctx, prompt, s.topK)
	if err != nil {
		return nil, err
	}

	guidance, err := s.generator.GenerateGuidance(ctx, prompt, retrieved.Materials, retrieved.Essays)
	if err != nil {
		return nil, err
	}

	return &GuideResponse{
		Guidance:    guidance,
		Materials:   retrieved.Materials,
		Essays:      retrieved.Essays,
		Confidence:  s.scorer.Score(len(retrieved.Materials), len(retrieved.Essays), guidance),
		Diagnostics: retrieved.Diagnostics,
	}, nil
}

// reindexAfterMutation rebuilds the index after a content change. A
// failed rebuild leaves the index stale until the next one; the
// mutation itself already succeeded, so only a warning is raised.
func (s *System) reindexAfterMutation(ctx context.Context) {
	if err := s.indexer.Reindex(ctx); err != nil {
		s.logger.Warn("reindex after content mutation failed, index is stale", "error", err)
	}
}

// Close releases all system resources.
func (s *System) Close() error {
	s.indexer.Release()

	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			s.logger.Error("error closing AI provider", "err", err)
		}
	}

	if err := s.idx.Close(); err != nil {
		s.logger.Error("error closing vector index", "err", err)
		return err
	}
	if err := s.essayRepo.Close(); err != nil {
		s.logger.Error("error closing essay repository", "err", err)
		return err
	}
	if err := s.materialRepo.Close(); err != nil {
		s.logger.Error("error closing material repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
