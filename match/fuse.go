package match

// Weights are the coefficients of the semantic and lexical signals in the fused score.
// They need not sum to 1.
type Weights struct {
	Semantic float64 `yaml:"semantic_weight" json:"semantic_weight"`
	Lexical  float64 `yaml:"lexical_weight" json:"lexical_weight"`
}

// DefaultWeights favors meaning over spelling: 0.7 semantic, 0.3 lexical.
func DefaultWeights() Weights {
	return Weights{Semantic: 0.7, Lexical: 0.3}
}

// Fuse combines one entry's two scores into its ranking score.
func (w Weights) Fuse(semantic, lexical float64) float64 {
	return w.Semantic*semantic + w.Lexical*lexical
}
