package match

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/faqmatch/ai"
	"github.com/poiesic/faqmatch/catalog"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/normalize"
)

// minParallelEntries is the catalog size below which scoring stays on the calling goroutine.
const minParallelEntries = 64

// Engine answers questions from an immutable catalog.
// It keeps no per-request state and is safe for concurrent use.
type Engine struct {
	catalog    *catalog.Catalog
	embedder   ai.Embedder
	policy     Policy
	similarity Similarity
	pool       *ants.Pool
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithPolicy replaces the default matching policy.
func WithPolicy(policy Policy) Option {
	return func(e *Engine) error {
		if err := policy.Validate(); err != nil {
			return err
		}
		e.policy = policy
		return nil
	}
}

// WithSimilarity replaces cosine similarity as the semantic comparison.
// The result is clamped to [0, 1].
func WithSimilarity(fn Similarity) Option {
	return func(e *Engine) error {
		if fn != nil {
			e.similarity = fn
		}
		return nil
	}
}

// WithPoolSize scores large catalogs on a worker pool of the given size.
// A size below 1 disables the pool. Default is no pool.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if e.pool != nil {
			e.pool.Release()
			e.pool = nil
		}
		if size < 1 {
			return nil
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		e.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger.With("component", "match-engine")
		return nil
	}
}

// NewEngine creates an engine over a built catalog.
// The embedder must be the one the catalog was built with.
func NewEngine(cat *catalog.Catalog, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if cat == nil {
		return nil, ErrCatalogRequired
	}
	if cat.Len() == 0 {
		return nil, core.ErrEmptyCatalog
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		catalog:    cat,
		embedder:   embedder,
		policy:     DefaultPolicy(),
		similarity: SemanticScore,
		logger:     slog.Default().With("component", "match-engine"),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			e.Release()
			return nil, err
		}
	}

	return e, nil
}

// Release frees the worker pool, if any. The engine must not be used afterwards.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
		e.pool = nil
	}
}

// Policy returns the policy in effect.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Catalog returns the catalog the engine answers from.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Answer matches question against the catalog.
//
// A blank question yields StatusEmptyQuestion without consulting the embedder.
// A best fused score below the policy threshold yields StatusNoMatch.
// An error is returned only when the embedding capability fails; it wraps
// core.ErrEmbeddingFailed and is never retried here.
func (e *Engine) Answer(ctx context.Context, question string) (*core.MatchResult, error) {
	return e.AnswerWithMonitor(ctx, question, nil)
}

// AnswerWithMonitor is Answer with callbacks at each stage.
func (e *Engine) AnswerWithMonitor(ctx context.Context, question string, monitor Monitor) (*core.MatchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	question = strings.TrimSpace(question)
	monitor.Start(question)
	if question == "" {
		result := core.EmptyQuestionResult()
		monitor.Finish(result)
		return result, nil
	}

	e.logger.Info("user question", "question", question)

	scored, err := e.score(ctx, question, monitor)
	if err != nil {
		return nil, err
	}

	ranking, err := Rank(scored, e.policy.TopK, e.policy.Threshold)
	if err != nil {
		return nil, err
	}
	monitor.AfterRanking(ranking)

	best := ranking.Best()
	if !ranking.Confident {
		e.logger.Info("no good match found", "top_score", e.policy.Round(best.FusedScore))
		result := core.NoMatchResult()
		monitor.Finish(result)
		return result, nil
	}

	result := &core.MatchResult{
		Status:     core.StatusMatched,
		Answer:     e.catalog.Entry(best.Index).Answer,
		Confidence: e.policy.Round(best.FusedScore),
		TopMatches: make([]core.TopMatch, len(ranking.Top)),
	}
	for i, s := range ranking.Top {
		entry := e.catalog.Entry(s.Index)
		result.TopMatches[i] = core.TopMatch{
			Question: entry.Question,
			Answer:   entry.Answer,
			Score:    e.policy.Round(s.FusedScore),
		}
	}

	e.logger.Info("best match",
		"question", e.catalog.Entry(best.Index).Question,
		"score", result.Confidence)
	monitor.Finish(result)
	return result, nil
}

// Score returns the score breakdown of every catalog entry in catalog order.
// A blank question returns core.ErrEmptyQuestion.
func (e *Engine) Score(ctx context.Context, question string) ([]core.ScoredEntry, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, core.ErrEmptyQuestion
	}
	return e.score(ctx, question, &noopMonitor{})
}

func (e *Engine) score(ctx context.Context, question string, monitor Monitor) ([]core.ScoredEntry, error) {
	start := time.Now()
	embedding, err := e.embedder.EmbedText(ctx, question)
	if err != nil {
		e.logger.Error("error generating embedding for question", "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrEmbeddingFailed, err)
	}
	monitor.AfterEmbedding(embedding)
	embedded := time.Now()

	normalized := normalize.Normalize(question)
	monitor.AfterNormalization(normalized)

	scored := e.scoreAll(embedding, normalized)
	monitor.AfterScoring(scored)

	e.logger.Debug("scored catalog",
		"entries", len(scored),
		"embed_elapsed", embedded.Sub(start),
		"score_elapsed", time.Since(embedded))
	return scored, nil
}

// scoreAll fills one ScoredEntry per catalog position. Each worker writes a
// disjoint range of the result slice.
func (e *Engine) scoreAll(embedding []float32, normalized string) []core.ScoredEntry {
	n := e.catalog.Len()
	scored := make([]core.ScoredEntry, n)

	if e.pool == nil || n < minParallelEntries {
		e.scoreRange(scored, 0, n, embedding, normalized)
		return scored
	}

	chunks := e.pool.Cap()
	size := (n + chunks - 1) / chunks
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		wg.Add(1)
		task := func() {
			defer wg.Done()
			e.scoreRange(scored, lo, hi, embedding, normalized)
		}
		if err := e.pool.Submit(task); err != nil {
			e.logger.Warn("worker pool rejected scoring task, running inline", "err", err)
			task()
		}
	}
	wg.Wait()
	return scored
}

func (e *Engine) scoreRange(out []core.ScoredEntry, lo, hi int, embedding []float32, normalized string) {
	for i := lo; i < hi; i++ {
		entry := e.catalog.Entry(i)
		semantic := clampUnit(e.similarity(embedding, entry.QuestionEmbedding))
		lexical := LexicalScore(normalized, entry.NormalizedQuestion)
		out[i] = core.ScoredEntry{
			Index:         i,
			SemanticScore: semantic,
			LexicalScore:  lexical,
			FusedScore:    e.policy.Weights.Fuse(semantic, lexical),
		}
	}
}
