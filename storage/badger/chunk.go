package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/essayguide/core"
	"github.com/poiesic/essayguide/storage"
)

// ChunkRepository stores indexed chunks and their embedding vectors.
// Chunk text and vector live under separate keys so scans that only need
// one of them avoid decoding the other.
type ChunkRepository struct {
	backend *Backend
}

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	return &ChunkRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *ChunkRepository) Close() error {
	return nil
}

// AddChunks stores chunks with their embedding vectors.
// chunks and vectors must have equal length.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks []*core.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks with %d vectors", storage.ErrInvalidQuery, len(chunks), len(vectors))
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for i, chunk := range chunks {
			if err := tx.Set(makeChunkKey(chunk.Id), storage.MarshalChunk(chunk)); err != nil {
				return err
			}

			vec := vectors[i]
			buf := make([]byte, core.SizeVector(vec))
			core.MarshalVector(vec, buf)
			if err := tx.Set(makeChunkVectorKey(chunk.Id), buf); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// IterateChunks visits every stored chunk with its vector.
// Chunks with a missing or malformed vector are skipped with a warning.
func (r *ChunkRepository) IterateChunks(ctx context.Context, visit func(chunk *core.Chunk, vector []float32) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(chunkRecordPrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()

			var chunk *core.Chunk
			err := item.Value(func(val []byte) error {
				var unmarshalErr error
				chunk, unmarshalErr = storage.UnmarshalChunk(val)
				return unmarshalErr
			})
			if err != nil {
				r.backend.logger.Warn("skipping malformed chunk record",
					"key", string(item.Key()), "error", err)
				continue
			}

			vecItem, err := tx.Get(makeChunkVectorKey(chunk.Id))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					r.backend.logger.Warn("chunk has no stored vector", "id", chunk.Id)
					continue
				}
				return err
			}

			var vector []float32
			err = vecItem.Value(func(val []byte) error {
				var unmarshalErr error
				vector, _, unmarshalErr = core.UnmarshalVector(val)
				return unmarshalErr
			})
			if err != nil {
				r.backend.logger.Warn("skipping chunk with malformed vector",
					"id", chunk.Id, "error", err)
				continue
			}

			if err := visit(chunk, vector); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// DeleteChunks removes chunks and their vectors by ID.
// Missing IDs are ignored.
func (r *ChunkRepository) DeleteChunks(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeChunkKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(makeChunkVectorKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteAllChunks removes every stored chunk and vector.
func (r *ChunkRepository) DeleteAllChunks(ctx context.Context) error {
	return r.backend.DropPrefixes(
		[]byte(chunkRecordPrefix+":"),
		[]byte(chunkVectorPrefix+":"),
	)
}

// CountChunks returns the number of stored chunks.
func (r *ChunkRepository) CountChunks(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(chunkRecordPrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}
