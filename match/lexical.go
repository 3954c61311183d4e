package match

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// LexicalScore returns the InDel similarity ratio of two normalized strings:
// 2*LCS(a, b) / (len(a) + len(b)) over runes, in [0, 1].
//
// If either string is empty the score is 0, including when both are empty.
// A question reduced to nothing by normalization carries no lexical evidence.
func LexicalScore(normalizedQuery, normalizedQuestion string) float64 {
	if normalizedQuery == "" || normalizedQuestion == "" {
		return 0
	}
	total := utf8.RuneCountInString(normalizedQuery) + utf8.RuneCountInString(normalizedQuestion)
	return float64(2*edlib.LCS(normalizedQuery, normalizedQuestion)) / float64(total)
}
