package match

import (
	"fmt"
	"math"
)

// Policy holds the tunable constants of matching.
type Policy struct {
	Weights Weights

	// Threshold is the confidence floor. A best fused score strictly below it is no match.
	Threshold float64

	// TopK is the number of ranked entries reported with a confident match.
	TopK int

	// Precision is the number of decimal places kept in reported scores.
	Precision int
}

// DefaultPolicy returns weights 0.7/0.3, threshold 0.6, top 3, two decimals.
func DefaultPolicy() Policy {
	return Policy{
		Weights:   DefaultWeights(),
		Threshold: 0.6,
		TopK:      3,
		Precision: 2,
	}
}

// Validate checks the policy for values the engine cannot use.
func (p Policy) Validate() error {
	switch {
	case p.TopK < 1:
		return fmt.Errorf("%w: top_k must be at least 1, got %d", ErrInvalidPolicy, p.TopK)
	case p.Precision < 0 || p.Precision > 6:
		return fmt.Errorf("%w: precision must be between 0 and 6, got %d", ErrInvalidPolicy, p.Precision)
	case p.Weights.Semantic < 0 || p.Weights.Lexical < 0:
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidPolicy)
	case p.Weights.Semantic == 0 && p.Weights.Lexical == 0:
		return fmt.Errorf("%w: at least one weight must be positive", ErrInvalidPolicy)
	case math.IsNaN(p.Threshold):
		return fmt.Errorf("%w: threshold is NaN", ErrInvalidPolicy)
	}
	return nil
}

// Round rounds a score to the policy precision, half away from zero.
func (p Policy) Round(score float64) float64 {
	scale := math.Pow10(p.Precision)
	return math.Round(score*scale) / scale
}
