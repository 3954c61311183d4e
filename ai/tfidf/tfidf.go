// Package tfidf provides an offline ai.Embedder fitted on a fixed corpus.
//
// It needs no external service, which makes it the default embedder for
// local runs and the deterministic embedder for end-to-end tests. Tokens come
// from the normalize package, so stopwords and punctuation never reach the
// vocabulary.
package tfidf

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/poiesic/faqmatch/ai"
	"github.com/poiesic/faqmatch/normalize"
)

// ModelName identifies vectors produced by this embedder.
const ModelName = "tfidf"

// ErrEmptyCorpus is returned when the corpus yields no vocabulary.
var ErrEmptyCorpus = errors.New("tfidf: corpus has no indexable tokens")

// Embedder implements ai.Embedder with a smoothed TF-IDF vectorizer.
// It is immutable after construction and safe for concurrent use.
type Embedder struct {
	vocabulary map[string]int
	idf        []float64
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder builds the vocabulary and IDF weights from corpus.
func NewEmbedder(corpus []string) (*Embedder, error) {
	if len(corpus) == 0 {
		return nil, ErrEmptyCorpus
	}

	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range normalize.Tokens(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, ErrEmptyCorpus
	}

	// Stable ordering for vocabulary
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	e := &Embedder{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		e.vocabulary[term] = i
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return e, nil
}

// Dimension returns the length of produced vectors.
func (e *Embedder) Dimension() int { return len(e.idf) }

// EmbedText returns the L2-normalized TF-IDF vector of text.
// Text with no known terms embeds to the zero vector.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.embed(text), nil
}

// EmbedTexts embeds each text in order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *Embedder) embed(text string) []float32 {
	weights := make([]float64, len(e.idf))
	tf := make(map[int]int)
	total := 0
	for _, tok := range normalize.Tokens(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}

	vec := make([]float32, len(e.idf))
	if total == 0 {
		return vec
	}

	var norm float64
	for idx, count := range tf {
		w := float64(count) / float64(total) * e.idf[idx]
		weights[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for i, w := range weights {
		vec[i] = float32(w / norm)
	}
	return vec
}

// Provider adapts an Embedder to ai.Provider.
type Provider struct {
	embedder *Embedder
}

// NewProvider fits a TF-IDF embedder on corpus and wraps it as an ai.Provider.
func NewProvider(corpus []string) (ai.Provider, error) {
	e, err := NewEmbedder(corpus)
	if err != nil {
		return nil, err
	}
	return &Provider{embedder: e}, nil
}

// Embedder returns the fitted embedder.
func (p *Provider) Embedder() ai.Embedder { return p.embedder }

// Model returns ModelName.
func (p *Provider) Model() string { return ModelName }

// Close is a no-op.
func (p *Provider) Close() error { return nil }
