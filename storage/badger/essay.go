package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/essayguide/core"
	"github.com/poiesic/essayguide/storage"
)

// Weights for lexical essay ranking. Essays carry no keyword tags, so
// title and body overlap split the score evenly.
const (
	essayTitleWeight   = 0.5
	essayContentWeight = 0.5
)

// EssayRepository implements storage.EssayRepository for BadgerDB.
type EssayRepository struct {
	backend *Backend
}

var _ storage.EssayRepository = (*EssayRepository)(nil)

// NewEssayRepository creates a new EssayRepository.
func NewEssayRepository(backend *Backend) (*EssayRepository, error) {
	return &EssayRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *EssayRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *EssayRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddEssays adds one or more sample essays to storage.
func (r *EssayRepository) AddEssays(ctx context.Context, essays ...*core.SampleEssay) ([]*core.SampleEssay, error) {
	for _, essay := range essays {
		if err := core.ValidateSampleEssay(essay); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, essay := range essays {
			// Content-based ID makes re-adding identical content idempotent.
			if essay.Id == 0 {
				essay.Id = core.ContentID(essay.Title, essay.Content)
			}

			essay.InsertedAt = time.Now().UTC()
			essay.UpdatedAt = essay.InsertedAt

			key := makeEssayKey(essay.Id)
			if err := tx.Set(key, storage.MarshalEssay(essay)); err != nil {
				return err
			}

			typeKey := makeEssayTypeKey(essay.EssayType, essay.Id)
			if err := tx.Set(typeKey, storage.MarshalID(essay.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return essays, err
}

// UpdateEssays updates existing essays.
func (r *EssayRepository) UpdateEssays(ctx context.Context, essays ...*core.SampleEssay) ([]*core.SampleEssay, error) {
	for _, essay := range essays {
		if err := core.ValidateSampleEssay(essay); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, essay := range essays {
			key := makeEssayKey(essay.Id)

			old, err := r.readEssay(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			essay.InsertedAt = old.InsertedAt
			essay.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalEssay(essay)); err != nil {
				return err
			}

			// Move the type index entry if the type changed
			if old.EssayType != essay.EssayType {
				if err := tx.Delete(makeEssayTypeKey(old.EssayType, old.Id)); err != nil {
					return err
				}
				typeKey := makeEssayTypeKey(essay.EssayType, essay.Id)
				if err := tx.Set(typeKey, storage.MarshalID(essay.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return essays, err
}

// DeleteEssays removes essays by their IDs.
func (r *EssayRepository) DeleteEssays(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeEssayKey(id)

			essay, err := r.readEssay(tx, key)
			if err != nil {
				return err
			}
			if essay == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeEssayTypeKey(essay.EssayType, essay.Id)); err != nil {
				return err
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetEssay retrieves a single essay by ID.
func (r *EssayRepository) GetEssay(ctx context.Context, id core.ID) (*core.SampleEssay, error) {
	var result *core.SampleEssay
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readEssay(tx, makeEssayKey(id))
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

// ListEssays retrieves all stored essays in key order.
func (r *EssayRepository) ListEssays(ctx context.Context) ([]*core.SampleEssay, error) {
	var results []*core.SampleEssay
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.scanEssays(tx, func(essay *core.SampleEssay) {
			results = append(results, essay)
		})
	}, false)
	return results, err
}

// GetEssaysByType retrieves essays of a given rhetorical type.
func (r *EssayRepository) GetEssaysByType(ctx context.Context, essayType core.EssayType) ([]*core.SampleEssay, error) {
	var results []*core.SampleEssay
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialEssayTypeKey(essayType)
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

			essay, err := r.readEssay(tx, makeEssayKey(id))
			if err != nil {
				return err
			}
			if essay != nil {
				results = append(results, essay)
			}
		}
		return nil
	}, false)
	return results, err
}

// SearchEssays ranks stored essays by lexical overlap with the query.
func (r *EssayRepository) SearchEssays(ctx context.Context, query string, limit int) ([]*core.SampleEssay, error) {
	type scored struct {
		essay *core.SampleEssay
		score float64
	}
	var matches []scored

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.scanEssays(tx, func(essay *core.SampleEssay) {
			score := essayTitleWeight*core.TextSimilarity(query, essay.Title) +
				essayContentWeight*core.TextSimilarity(query, essay.Content)
			if score > lexicalScoreFloor {
				matches = append(matches, scored{essay: essay, score: score})
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
		if a.essay.Id < b.essay.Id {
			return -1
		}
		if a.essay.Id > b.essay.Id {
			return 1
		}
		return 0
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]*core.SampleEssay, len(matches))
	for i, m := range matches {
		results[i] = m.essay
	}
	return results, nil
}

// scanEssays iterates all primary essay records. Malformed records are
// skipped with a warning rather than failing the whole scan.
func (r *EssayRepository) scanEssays(tx *badger.Txn, visit func(*core.SampleEssay)) error {
	prefix := []byte(essayRecordPrefix + ":")
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Seek(prefix); iter.Valid(); iter.Next() {
		item := iter.Item()
		var essay *core.SampleEssay
		err := item.Value(func(val []byte) error {
			var unmarshalErr error
			essay, unmarshalErr = storage.UnmarshalEssay(val)
			return unmarshalErr
		})
		if err != nil {
			r.backend.logger.Warn("skipping malformed essay record",
				"key", string(item.Key()), "error", err)
			continue
		}
		visit(essay)
	}
	return nil
}

// readEssay reads an essay from the transaction.
// Returns nil without error when the key does not exist.
func (r *EssayRepository) readEssay(tx *badger.Txn, key []byte) (*core.SampleEssay, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var essay *core.SampleEssay
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		essay, unmarshalErr = storage.UnmarshalEssay(val)
		return unmarshalErr
	})
	return essay, err
}
