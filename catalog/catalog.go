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

// Package catalog holds the fixed set of question/answer pairs the engine can answer.
//
// A Catalog is built once at startup: every question is normalized for the
// lexical path and embedded for the semantic path. After Build returns, the
// catalog is read-only and safe to share across goroutines.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/faqmatch/ai"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/normalize"
	"github.com/poiesic/faqmatch/storage"
)

// Catalog is an ordered, immutable list of catalog entries.
type Catalog struct {
	entries []core.CatalogEntry
}

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	cache  storage.EmbeddingCache
	model  string
	logger *slog.Logger
}

// WithCache reuses question embeddings stored in cache under model and
// stores any newly computed ones.
func WithCache(cache storage.EmbeddingCache, model string) Option {
	return func(o *buildOptions) {
		o.cache = cache
		o.model = model
	}
}

// WithLogger sets the logger used during Build.
func WithLogger(logger *slog.Logger) Option {
	return func(o *buildOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Build validates entries, normalizes and embeds every question, and returns
// the catalog in insertion order. Duplicate questions are kept.
func Build(ctx context.Context, entries []core.Entry, embedder ai.Embedder, opts ...Option) (*Catalog, error) {
	o := &buildOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger.With("component", "catalog")

	if err := core.ValidateEntries(entries); err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedder", core.ErrEmbeddingFailed)
	}

	start := time.Now()
	questions := make([]string, len(entries))
	for i := range entries {
		questions[i] = entries[i].Question
	}

	vectors, err := embedQuestions(ctx, questions, embedder, o, logger)
	if err != nil {
		return nil, err
	}

	built := make([]core.CatalogEntry, len(entries))
	for i := range entries {
		built[i] = core.CatalogEntry{
			Entry:              entries[i],
			NormalizedQuestion: normalize.Normalize(entries[i].Question),
			QuestionEmbedding:  vectors[i],
		}
	}

	logger.Info("catalog built", "entries", len(built), "elapsed", time.Since(start))
	return &Catalog{entries: built}, nil
}

// embedQuestions returns one vector per question, consulting the cache first when configured.
func embedQuestions(ctx context.Context, questions []string, embedder ai.Embedder, o *buildOptions, logger *slog.Logger) ([][]float32, error) {
	vectors := make([][]float32, len(questions))

	if o.cache != nil {
		cached, err := o.cache.GetEmbeddings(ctx, o.model, questions)
		if err != nil {
			logger.Warn("embedding cache read failed, embedding all questions", "err", err)
		} else {
			copy(vectors, cached)
		}
	}

	var missing []int
	for i, v := range vectors {
		if v == nil {
			missing = append(missing, i)
		}
	}
	logger.Debug("embedding catalog questions", "total", len(questions), "to_embed", len(missing))
	if len(missing) == 0 {
		return vectors, nil
	}

	texts := make([]string, len(missing))
	for j, i := range missing {
		texts[j] = questions[i]
	}
	fresh, err := embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrEmbeddingFailed, err)
	}
	if len(fresh) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d questions", core.ErrEmbeddingFailed, len(fresh), len(texts))
	}

	toStore := make([]storage.CachedEmbedding, 0, len(missing))
	for j, i := range missing {
		vectors[i] = fresh[j]
		toStore = append(toStore, storage.CachedEmbedding{Model: o.model, Text: texts[j], Vector: fresh[j]})
	}

	if o.cache != nil {
		if err := o.cache.PutEmbeddings(ctx, toStore...); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("embedding cache write failed", "err", err)
		}
	}
	return vectors, nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entry returns the entry at position i. It panics if i is out of range.
func (c *Catalog) Entry(i int) core.CatalogEntry {
	return c.entries[i]
}

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []core.CatalogEntry {
	out := make([]core.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Questions returns the raw questions in catalog order.
func (c *Catalog) Questions() []string {
	out := make([]string, len(c.entries))
	for i := range c.entries {
		out[i] = c.entries[i].Question
	}
	return out
}
