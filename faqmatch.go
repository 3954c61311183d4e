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

// Package faqmatch wires a catalog, an embedding provider, an optional
// embedding cache and a match engine into a single handle.
package faqmatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/faqmatch/ai"
	"github.com/poiesic/faqmatch/ai/openai"
	"github.com/poiesic/faqmatch/ai/tfidf"
	"github.com/poiesic/faqmatch/catalog"
	"github.com/poiesic/faqmatch/config"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/match"
	"github.com/poiesic/faqmatch/storage"
	"github.com/poiesic/faqmatch/storage/badger"
	"github.com/poiesic/faqmatch/warm"
)

// ErrCacheDisabled is returned by Warm when the configuration does not use the embedding cache.
var ErrCacheDisabled = errors.New("embedding cache is not in use")

// Service is a ready-to-use FAQ answering service. It is safe for concurrent use.
type Service struct {
	engine   *match.Engine
	provider ai.Provider
	backend  *badger.Backend
	cache    storage.EmbeddingCache
	logger   *slog.Logger
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	entries  []core.Entry
	provider ai.Provider
	logger   *slog.Logger
}

// WithEntries answers from entries instead of the configured catalog source.
func WithEntries(entries []core.Entry) Option {
	return func(o *openOptions) {
		o.entries = entries
	}
}

// WithProvider uses provider instead of the one selected by the configuration.
// The Service takes ownership and closes it.
func WithProvider(provider ai.Provider) Option {
	return func(o *openOptions) {
		o.provider = provider
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *openOptions) {
		o.logger = logger
	}
}

// Open loads the catalog, embeds every question and readies the engine.
// Embedding failures wrap core.ErrEmbeddingFailed so callers can retry.
func Open(ctx context.Context, cfg *config.AppConfig, opts ...Option) (*Service, error) {
	cfg, options, entries, err := prepare(cfg, opts)
	if err != nil {
		return nil, err
	}

	s := &Service{logger: options.logger.With("component", "faqmatch")}

	provider := options.provider
	if provider == nil {
		provider, err = newProvider(cfg, entries)
		if err != nil {
			return nil, err
		}
	}
	s.provider = provider

	buildOpts := []catalog.Option{catalog.WithLogger(options.logger)}
	if usesCache(cfg) {
		s.backend, s.cache, err = openCache(cfg)
		if err != nil {
			s.Close()
			return nil, err
		}
		buildOpts = append(buildOpts, catalog.WithCache(s.cache, provider.Model()))
	}

	cat, err := catalog.Build(ctx, entries, provider.Embedder(), buildOpts...)
	if err != nil {
		s.Close()
		return nil, err
	}

	engine, err := match.NewEngine(cat, provider.Embedder(),
		match.WithPolicy(cfg.Policy()),
		match.WithPoolSize(cfg.Workers.PoolSize),
		match.WithLogger(options.logger))
	if err != nil {
		s.Close()
		return nil, err
	}
	s.engine = engine
	return s, nil
}

// Warm embeds the catalog questions into the embedding cache without
// building an engine. Progress is written to progress when it is not nil.
// It returns ErrCacheDisabled when the configured embedder is not cached.
func Warm(ctx context.Context, cfg *config.AppConfig, warmConfig *warm.Config, progress io.Writer, opts ...Option) (warm.Stats, error) {
	cfg, options, entries, err := prepare(cfg, opts)
	if err != nil {
		return warm.Stats{}, err
	}
	if !usesCache(cfg) {
		options.closeProvider()
		return warm.Stats{}, ErrCacheDisabled
	}

	provider := options.provider
	if provider == nil {
		provider, err = newProvider(cfg, entries)
		if err != nil {
			return warm.Stats{}, err
		}
	}
	defer provider.Close()

	backend, cache, err := openCache(cfg)
	if err != nil {
		return warm.Stats{}, err
	}
	defer backend.Close()

	warmer, err := warm.NewWarmer(cache, provider.Embedder(), provider.Model(), warmConfig, progress)
	if err != nil {
		return warm.Stats{}, err
	}
	questions := make([]string, len(entries))
	for i := range entries {
		questions[i] = entries[i].Question
	}
	return warmer.Run(ctx, questions)
}

func prepare(cfg *config.AppConfig, opts []Option) (*config.AppConfig, *openOptions, []core.Entry, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	options := &openOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	entries := options.entries
	if entries == nil {
		var err error
		entries, err = loadEntries(cfg)
		if err != nil {
			options.closeProvider()
			return nil, nil, nil, err
		}
	}
	if err := core.ValidateEntries(entries); err != nil {
		options.closeProvider()
		return nil, nil, nil, err
	}
	return cfg, options, entries, nil
}

// closeProvider closes an injected provider that will never reach a Service.
func (o *openOptions) closeProvider() {
	if o.provider == nil {
		return
	}
	if err := o.provider.Close(); err != nil {
		o.logger.Error("error closing AI provider", "component", "faqmatch", "err", err)
	}
}

func usesCache(cfg *config.AppConfig) bool {
	return cfg.Embedder.Type == config.EmbedderOpenAI && !cfg.Cache.Disabled
}

func loadEntries(cfg *config.AppConfig) ([]core.Entry, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Default(), nil
	}
	entries, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", cfg.Catalog.Path, err)
	}
	return entries, nil
}

func newProvider(cfg *config.AppConfig, entries []core.Entry) (ai.Provider, error) {
	switch cfg.Embedder.Type {
	case config.EmbedderOpenAI:
		return openai.NewProvider(cfg.AIConfig())
	case config.EmbedderTFIDF, "":
		questions := make([]string, len(entries))
		for i := range entries {
			questions[i] = entries[i].Question
		}
		return tfidf.NewProvider(questions)
	default:
		return nil, fmt.Errorf("unknown embedder type %q", cfg.Embedder.Type)
	}
}

func openCache(cfg *config.AppConfig) (*badger.Backend, storage.EmbeddingCache, error) {
	backend, err := badger.OpenBackend(cfg.Cache.Path, cfg.Cache.InMemory)
	if err != nil {
		return nil, nil, fmt.Errorf("open embedding cache: %w", err)
	}
	cache, err := badger.NewEmbeddingCache(backend)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	return backend, cache, nil
}

// Close releases the engine, the provider and the cache.
func (s *Service) Close() error {
	if s.engine != nil {
		s.engine.Release()
	}
	var errs []error
	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			s.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Error("error closing embedding cache", "err", err)
			errs = append(errs, err)
		}
	}
	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			s.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Answer answers a single question. See match.Engine.Answer.
func (s *Service) Answer(ctx context.Context, question string) (*core.MatchResult, error) {
	return s.engine.Answer(ctx, question)
}

// Engine returns the match engine behind the service.
func (s *Service) Engine() *match.Engine {
	return s.engine
}

// Catalog returns the loaded catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.engine.Catalog()
}

// Model names the embedding model in use.
func (s *Service) Model() string {
	return s.provider.Model()
}

// Cache returns the embedding cache, or nil when caching is off.
func (s *Service) Cache() storage.EmbeddingCache {
	return s.cache
}
