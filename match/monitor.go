package match

import "github.com/poiesic/faqmatch/core"

// Monitor provides hooks to observe a single Answer call.
// Implement this interface to trace intermediate results, for example to
// explain why a question matched.
type Monitor interface {
	Start(question string)
	AfterEmbedding(embedding []float32)
	AfterNormalization(normalized string)
	AfterScoring(scored []core.ScoredEntry)
	AfterRanking(ranking Ranking)
	Finish(result *core.MatchResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                    {}
func (n *noopMonitor) AfterEmbedding(_ []float32)        {}
func (n *noopMonitor) AfterNormalization(_ string)       {}
func (n *noopMonitor) AfterScoring(_ []core.ScoredEntry) {}
func (n *noopMonitor) AfterRanking(_ Ranking)            {}
func (n *noopMonitor) Finish(_ *core.MatchResult)        {}
