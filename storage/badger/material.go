package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/essayguide/core"
	"github.com/poiesic/essayguide/storage"
)

// Weights for lexical material ranking. Title and body overlap dominate;
// tagged keywords contribute a smaller share.
const (
	materialTitleWeight   = 0.4
	materialContentWeight = 0.4
	materialKeywordWeight = 0.2

	// Records scoring at or below this are not relevant enough to return.
	lexicalScoreFloor = 0.1
)

// MaterialRepository implements storage.MaterialRepository for BadgerDB.
type MaterialRepository struct {
	backend *Backend
}

var _ storage.MaterialRepository = (*MaterialRepository)(nil)

// NewMaterialRepository creates a new MaterialRepository.
func NewMaterialRepository(backend *Backend) (*MaterialRepository, error) {
	return &MaterialRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *MaterialRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *MaterialRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddMaterials adds one or more materials to storage.
func (r *MaterialRepository) AddMaterials(ctx context.Context, materials ...*core.Material) ([]*core.Material, error) {
	for _, material := range materials {
		if err := core.ValidateMaterial(material); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, material := range materials {
			// Content-based ID makes re-adding identical content idempotent.
			if material.Id == 0 {
				material.Id = core.ContentID(material.Title, material.Content)
			}

			material.InsertedAt = time.Now().UTC()
			material.UpdatedAt = material.InsertedAt

			key := makeMaterialKey(material.Id)
			if err := tx.Set(key, storage.MarshalMaterial(material)); err != nil {
				return err
			}

			if material.Category != "" {
				catKey := makeMaterialCategoryKey(material.Category, material.Id)
				if err := tx.Set(catKey, storage.MarshalID(material.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return materials, err
}

// UpdateMaterials updates existing materials.
func (r *MaterialRepository) UpdateMaterials(ctx context.Context, materials ...*core.Material) ([]*core.Material, error) {
	for _, material := range materials {
		if err := core.ValidateMaterial(material); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, material := range materials {
			key := makeMaterialKey(material.Id)

			old, err := r.readMaterial(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			material.InsertedAt = old.InsertedAt
			material.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalMaterial(material)); err != nil {
				return err
			}

			// Move the category index entry if the category changed
			if old.Category != material.Category {
				if old.Category != "" {
					if err := tx.Delete(makeMaterialCategoryKey(old.Category, old.Id)); err != nil {
						return err
					}
				}
				if material.Category != "" {
					catKey := makeMaterialCategoryKey(material.Category, material.Id)
					if err := tx.Set(catKey, storage.MarshalID(material.Id)); err != nil {
						return err
					}
				}
			}
		}
		return tx.Commit()
	}, true)

	return materials, err
}

// DeleteMaterials removes materials by their IDs.
func (r *MaterialRepository) DeleteMaterials(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeMaterialKey(id)

			material, err := r.readMaterial(tx, key)
			if err != nil {
				return err
			}
			if material == nil {
				return storage.ErrNotFound
			}

			if material.Category != "" {
				if err := tx.Delete(makeMaterialCategoryKey(material.Category, material.Id)); err != nil {
					return err
				}
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetMaterial retrieves a single material by ID.
func (r *MaterialRepository) GetMaterial(ctx context.Context, id core.ID) (*core.Material, error) {
	var result *core.Material
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readMaterial(tx, makeMaterialKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListMaterials retrieves all stored materials in key order.
func (r *MaterialRepository) ListMaterials(ctx context.Context) ([]*core.Material, error) {
	var results []*core.Material
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.scanMaterials(tx, func(material *core.Material) {
			results = append(results, material)
		})
	}, false)
	return results, err
}

// GetMaterialsByCategory retrieves materials tagged with a topic category.
func (r *MaterialRepository) GetMaterialsByCategory(ctx context.Context, category string) ([]*core.Material, error) {
	var results []*core.Material
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialMaterialCategoryKey(category)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = startKey
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			material, err := r.readMaterial(tx, makeMaterialKey(id))
			if err != nil {
				return err
			}
			if material != nil {
				results = append(results, material)
			}
		}
		return nil
	}, false)
	return results, err
}

// SearchMaterials ranks stored materials by lexical overlap with the query.
func (r *MaterialRepository) SearchMaterials(ctx context.Context, query string, limit int) ([]*core.Material, error) {
	queryTokens := core.Tokenize(query)

	type scored struct {
		material *core.Material
		score    float64
	}
	var matches []scored

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.scanMaterials(tx, func(material *core.Material) {
			score := materialTitleWeight*core.TextSimilarity(query, material.Title) +
				materialContentWeight*core.TextSimilarity(query, material.Content) +
				materialKeywordWeight*core.KeywordOverlap(queryTokens, material.Keywords)
			if score > lexicalScoreFloor {
				matches = append(matches, scored{material: material, score: score})
			}
		})
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(matches, func(a, b scored) int {
		if a.score > b.score {
			return -1
		}
		if a.score < b.score {
			return 1
		}
		// Stable order for equal scores
		if a.material.Id < b.material.Id {
			return -1
		}
		if a.material.Id > b.material.Id {
			return 1
		}
		return 0
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]*core.Material, len(matches))
	for i, m := range matches {
		results[i] = m.material
	}
	return results, nil
}

// scanMaterials iterates all primary material records. Malformed records
// are skipped with a warning rather than failing the whole scan.
func (r *MaterialRepository) scanMaterials(tx *badger.Txn, visit func(*core.Material)) error {
	prefix := []byte(materialRecordPrefix + ":")
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Seek(prefix); iter.Valid(); iter.Next() {
		item := iter.Item()
		var material *core.Material
		err := item.Value(func(val []byte) error {
			var unmarshalErr error
			material, unmarshalErr = storage.UnmarshalMaterial(val)
			return unmarshalErr
		})
		if err != nil {
			r.backend.logger.Warn("skipping malformed material record",
				"key", string(item.Key()), "error", err)
			continue
		}
		visit(material)
	}
	return nil
}

// readMaterial reads a material from the transaction.
// Returns nil without error when the key does not exist.
func (r *MaterialRepository) readMaterial(tx *badger.Txn, key []byte) (*core.Material, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var material *core.Material
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		material, unmarshalErr = storage.UnmarshalMaterial(val)
		return unmarshalErr
	})
	return material, err
}
