package warm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/faqmatch/ai"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/retry"
	"github.com/poiesic/faqmatch/storage"
)

// Config controls a warm run.
type Config struct {
	// BatchSize is the number of questions sent to the embedder per call.
	BatchSize int

	// ReportInterval is how often to report progress, in questions.
	ReportInterval int

	// Force re-embeds questions that are already cached.
	Force bool

	// Retry applies to each batch. Only embedding failures are retried.
	Retry retry.Policy
}

func DefaultConfig() *Config {
	return &Config{
		BatchSize:      32,
		ReportInterval: 32,
		Retry:          retry.DefaultPolicy(),
	}
}

// Stats summarizes a warm run.
type Stats struct {
	Total    int // distinct questions
	Cached   int // already present and skipped
	Embedded int
	Elapsed  time.Duration
}

// Warmer fills an embedding cache for one model.
type Warmer struct {
	cache    storage.EmbeddingCache
	embedder ai.Embedder
	model    string
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// NewWarmer creates a warmer. A nil config uses DefaultConfig; a nil progress writer discards output.
func NewWarmer(cache storage.EmbeddingCache, embedder ai.Embedder, model string, config *Config, progress io.Writer) (*Warmer, error) {
	if cache == nil {
		return nil, errors.New("warm: cache is required")
	}
	if embedder == nil {
		return nil, errors.New("warm: embedder is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize <= 0 {
		return nil, fmt.Errorf("warm: batch size must be greater than 0, got %d", config.BatchSize)
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Warmer{
		cache:    cache,
		embedder: embedder,
		model:    model,
		config:   config,
		progress: progress,
		logger:   slog.Default().With("component", "warm"),
	}, nil
}

// Run embeds every question not yet cached and stores the vectors.
func (w *Warmer) Run(ctx context.Context, questions []string) (Stats, error) {
	start := time.Now()
	todo := dedupe(questions)
	stats := Stats{Total: len(todo)}

	if !w.config.Force && len(todo) > 0 {
		cached, err := w.cache.GetEmbeddings(ctx, w.model, todo)
		if err != nil {
			return stats, fmt.Errorf("failed to read cache: %w", err)
		}
		missing := todo[:0:0]
		for i, v := range cached {
			if v == nil {
				missing = append(missing, todo[i])
			}
		}
		stats.Cached = len(todo) - len(missing)
		todo = missing
	}

	if len(todo) == 0 {
		fmt.Fprintf(w.progress, "All %d questions already cached for model %s\n", stats.Total, w.model)
		stats.Elapsed = time.Since(start)
		return stats, nil
	}

	fmt.Fprintf(w.progress, "Embedding %d questions with %s (batch size: %d, %d already cached)\n",
		len(todo), w.model, w.config.BatchSize, stats.Cached)

	tracker := NewProgressTracker(w.progress, len(todo), w.config.ReportInterval)
	tracker.Start()

	for lo := 0; lo < len(todo); lo += w.config.BatchSize {
		batch := todo[lo:min(lo+w.config.BatchSize, len(todo))]
		if err := w.process(ctx, batch); err != nil {
			return stats, fmt.Errorf("failed to process batch at %d: %w", lo, err)
		}
		stats.Embedded += len(batch)
		tracker.Add(len(batch))
	}

	tracker.Finish()
	stats.Elapsed = time.Since(start)
	fmt.Fprintf(w.progress, "Warming complete. Embedded %d questions in %v\n",
		stats.Embedded, stats.Elapsed.Round(time.Millisecond))
	return stats, nil
}

func (w *Warmer) process(ctx context.Context, batch []string) error {
	policy := w.config.Retry
	if policy.Retryable == nil {
		policy.Retryable = func(err error) bool { return errors.Is(err, core.ErrEmbeddingFailed) }
	}
	if policy.Logger == nil {
		policy.Logger = w.logger
	}

	var vectors [][]float32
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		var err error
		vectors, err = w.embedder.EmbedTexts(ctx, batch)
		if err != nil {
			return fmt.Errorf("%w: %w", core.ErrEmbeddingFailed, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vectors))
	}

	records := make([]storage.CachedEmbedding, len(batch))
	for i := range batch {
		records[i] = storage.CachedEmbedding{Model: w.model, Text: batch[i], Vector: vectors[i]}
	}
	if err := w.cache.PutEmbeddings(ctx, records...); err != nil {
		return fmt.Errorf("failed to store embeddings: %w", err)
	}
	return nil
}

func dedupe(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
