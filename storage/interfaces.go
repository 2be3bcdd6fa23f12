package storage

import (
	"context"

	"github.com/poiesic/essayguide/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// MaterialRepository provides operations for managing writing materials.
type MaterialRepository interface {
	Repository

	// AddMaterials adds one or more materials to storage.
	// For materials with Id=0, derives the ID from title and content.
	// Sets InsertedAt and UpdatedAt timestamps.
	// Returns the materials with IDs and timestamps populated.
	AddMaterials(ctx context.Context, materials ...*core.Material) ([]*core.Material, error)

	// UpdateMaterials updates existing materials.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any material doesn't exist.
	UpdateMaterials(ctx context.Context, materials ...*core.Material) ([]*core.Material, error)

	// DeleteMaterials removes materials by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any material doesn't exist.
	DeleteMaterials(ctx context.Context, ids ...core.ID) error

	// GetMaterial retrieves a single material by ID.
	// Returns ErrNotFound if the material doesn't exist.
	GetMaterial(ctx context.Context, id core.ID) (*core.Material, error)

	// ListMaterials retrieves all stored materials in key order.
	ListMaterials(ctx context.Context) ([]*core.Material, error)

	// GetMaterialsByCategory retrieves materials tagged with a topic category.
	GetMaterialsByCategory(ctx context.Context, category string) ([]*core.Material, error)

	// SearchMaterials ranks stored materials by lexical overlap with the
	// query text. Returns up to limit materials ordered by score descending;
	// materials below the relevance floor are excluded.
	SearchMaterials(ctx context.Context, query string, limit int) ([]*core.Material, error)
}

// EssayRepository provides operations for managing sample essays.
type EssayRepository interface {
	Repository

	// AddEssays adds one or more sample essays to storage.
	// For essays with Id=0, derives the ID from title and content.
	// Sets InsertedAt and UpdatedAt timestamps.
	// Returns the essays with IDs and timestamps populated.
	AddEssays(ctx context.Context, essays ...*core.SampleEssay) ([]*core.SampleEssay, error)

	// UpdateEssays updates existing essays.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any essay doesn't exist.
	UpdateEssays(ctx context.Context, essays ...*core.SampleEssay) ([]*core.SampleEssay, error)

	// DeleteEssays removes essays by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any essay doesn't exist.
	DeleteEssays(ctx context.Context, ids ...core.ID) error

	// GetEssay retrieves a single essay by ID.
	// Returns ErrNotFound if the essay doesn't exist.
	GetEssay(ctx context.Context, id core.ID) (*core.SampleEssay, error)

	// ListEssays retrieves all stored essays in key order.
	ListEssays(ctx context.Context) ([]*core.SampleEssay, error)

	// GetEssaysByType retrieves essays of a given rhetorical type.
	GetEssaysByType(ctx context.Context, essayType core.EssayType) ([]*core.SampleEssay, error)

	// SearchEssays ranks stored essays by lexical overlap with the query
	// text. Returns up to limit essays ordered by score descending; essays
	// below the relevance floor are excluded.
	SearchEssays(ctx context.Context, query string, limit int) ([]*core.SampleEssay, error)
}
