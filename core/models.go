package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Entry is a single question/answer pair as supplied by a catalog source.
type Entry struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

// CatalogEntry is an Entry enriched with the values precomputed at startup.
// It is immutable once the catalog has been built.
type CatalogEntry struct {
	Entry
	NormalizedQuestion string    // Question after text normalization (lexical path)
	QuestionEmbedding  []float32 // Embedding of the raw question (semantic path)
}

// ScoredEntry is the per-request score breakdown for one catalog entry.
type ScoredEntry struct {
	Index         int // Position in the catalog; also the tie-break order
	SemanticScore float64
	LexicalScore  float64
	FusedScore    float64
}

// MatchStatus describes which kind of response a MatchResult carries.
type MatchStatus int

const (
	// StatusMatched means a catalog entry cleared the confidence floor.
	StatusMatched MatchStatus = iota + 1
	// StatusNoMatch means the best fused score was below the confidence floor.
	StatusNoMatch
	// StatusEmptyQuestion means the question was blank after trimming.
	StatusEmptyQuestion
)

func (s MatchStatus) String() string {
	switch s {
	case StatusMatched:
		return "matched"
	case StatusNoMatch:
		return "no_match"
	case StatusEmptyQuestion:
		return "empty_question"
	default:
		return "unknown"
	}
}

// Fixed fallback answers.
const (
	EmptyQuestionAnswer = "Please ask a question."
	NoMatchAnswer       = "Sorry, I don't understand your question. Please try rephrasing."
)

// TopMatch is one entry of the top-k list returned with a confident match.
type TopMatch struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
}

// MatchResult is the response to a single question.
// Confidence and TopMatches are only meaningful when Status is StatusMatched.
type MatchResult struct {
	Status     MatchStatus
	Answer     string
	Confidence float64
	TopMatches []TopMatch
}

// Matched reports whether the result carries a real catalog answer.
func (r *MatchResult) Matched() bool {
	return r != nil && r.Status == StatusMatched
}

// EmptyQuestionResult returns the fallback for a blank question.
func EmptyQuestionResult() *MatchResult {
	return &MatchResult{Status: StatusEmptyQuestion, Answer: EmptyQuestionAnswer}
}

// NoMatchResult returns the fallback used when nothing clears the confidence floor.
func NoMatchResult() *MatchResult {
	return &MatchResult{Status: StatusNoMatch, Answer: NoMatchAnswer}
}
