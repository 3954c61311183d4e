package main

import (
	"fmt"
	"io"

	"github.com/poiesic/faqmatch/catalog"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/match"
)

// explainRows is the number of scored entries printed by --explain.
const explainRows = 5

// explainMonitor prints each stage of a single answer.
type explainMonitor struct {
	out     io.Writer
	catalog *catalog.Catalog
}

var _ match.Monitor = (*explainMonitor)(nil)

func newExplainMonitor(out io.Writer, cat *catalog.Catalog) *explainMonitor {
	return &explainMonitor{out: out, catalog: cat}
}

func (m *explainMonitor) Start(question string) {
	fmt.Fprintf(m.out, "question:   %q\n", question)
}

func (m *explainMonitor) AfterEmbedding(embedding []float32) {
	fmt.Fprintf(m.out, "embedding:  %d dimensions\n", len(embedding))
}

func (m *explainMonitor) AfterNormalization(normalized string) {
	fmt.Fprintf(m.out, "normalized: %q\n", normalized)
}

func (m *explainMonitor) AfterScoring(scored []core.ScoredEntry) {
	ranked, err := match.Rank(scored, explainRows, 0)
	if err != nil {
		fmt.Fprintf(m.out, "scoring:    %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "\n%-8s %-8s %-8s %s\n", "fused", "semantic", "lexical", "question")
	for _, s := range ranked.Top {
		fmt.Fprintf(m.out, "%-8.4f %-8.4f %-8.4f %s\n",
			s.FusedScore, s.SemanticScore, s.LexicalScore, m.catalog.Entry(s.Index).Question)
	}
}

func (m *explainMonitor) AfterRanking(ranking match.Ranking) {
	fmt.Fprintf(m.out, "\nconfident:  %t\n", ranking.Confident)
}

func (m *explainMonitor) Finish(result *core.MatchResult) {
	fmt.Fprintf(m.out, "status:     %s\n", result.Status)
	if result.Matched() {
		fmt.Fprintf(m.out, "confidence: %.2f\n", result.Confidence)
	}
	fmt.Fprintf(m.out, "answer:     %s\n", result.Answer)
}
