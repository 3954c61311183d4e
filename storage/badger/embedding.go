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

package badger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/faqmatch/storage"
)

// EmbeddingCache implements storage.EmbeddingCache for BadgerDB.
type EmbeddingCache struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.EmbeddingCache = (*EmbeddingCache)(nil)

// NewEmbeddingCache creates an embedding cache over backend.
// The backend is owned by the caller; Close on the cache does not close it.
func NewEmbeddingCache(backend *Backend) (storage.EmbeddingCache, error) {
	return newEmbeddingCache(backend)
}

func newEmbeddingCache(backend *Backend) (*EmbeddingCache, error) {
	if backend == nil || backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	return &EmbeddingCache{
		backend: backend,
		logger:  slog.Default().With("component", "embedding-cache"),
	}, nil
}

// Close is a no-op; the backend is closed by its owner.
func (c *EmbeddingCache) Close() error {
	return nil
}

// GetEmbedding retrieves the vector stored for (model, text).
func (c *EmbeddingCache) GetEmbedding(ctx context.Context, model, text string) ([]float32, error) {
	var vec []float32
	err := c.view(func(tx *badger.Txn) error {
		var err error
		vec, err = readEmbedding(tx, model, text)
		return err
	})
	if err != nil {
		return nil, err
	}
	if vec == nil {
		return nil, storage.ErrNotFound
	}
	return vec, nil
}

// GetEmbeddings retrieves the vectors stored for texts under model.
func (c *EmbeddingCache) GetEmbeddings(ctx context.Context, model string, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	err := c.view(func(tx *badger.Txn) error {
		for i, text := range texts {
			if err := ctx.Err(); err != nil {
				return err
			}
			vec, err := readEmbedding(tx, model, text)
			if err != nil {
				return err
			}
			out[i] = vec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PutEmbeddings stores the given embeddings in a single transaction.
func (c *EmbeddingCache) PutEmbeddings(ctx context.Context, embeddings ...storage.CachedEmbedding) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		for i := range embeddings {
			e := &embeddings[i]
			if err := tx.Set(makeEmbeddingKey(e.Model, e.Text), storage.MarshalCachedEmbedding(e)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}
	c.logger.Debug("stored embeddings", "count", len(embeddings))
	return nil
}

// CountEmbeddings returns the number of stored embeddings for model.
func (c *EmbeddingCache) CountEmbeddings(ctx context.Context, model string) (int, error) {
	count := 0
	err := c.view(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makeModelPrefix(model)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	})
	return count, err
}

func (c *EmbeddingCache) view(fn func(tx *badger.Txn) error) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return c.backend.WithTx(fn, false)
}

// readEmbedding returns nil without error when no matching record exists.
// A record whose model or text differs from the request is a key collision and is ignored.
func readEmbedding(tx *badger.Txn, model, text string) ([]float32, error) {
	item, err := tx.Get(makeEmbeddingKey(model, text))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record *storage.CachedEmbedding
	err = item.Value(func(val []byte) error {
		record, err = storage.UnmarshalCachedEmbedding(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	if record.Model != model || record.Text != text {
		return nil, nil
	}
	return record.Vector, nil
}
