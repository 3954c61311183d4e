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

package normalize

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// contractionSuffixes are split off a word before the stopword check so
// "don't" and "we're" reduce the same way a linguistic tokenizer would.
var contractionSuffixes = []string{"n't", "'s", "'re", "'ve", "'ll", "'d", "'m"}

// Normalize reduces text to a canonical token sequence for lexical comparison.
//
// The text is NFKC-normalized and lowercased, segmented into words using
// Unicode word boundaries (UAX #29), and stripped of stopwords and tokens
// carrying no letter or digit. Surviving tokens are joined with single spaces
// in their original order. The result is empty when nothing survives.
//
// Normalize is pure and idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	// A Caser holds state and is not safe for concurrent use.
	lower := cases.Lower(language.English)
	folded := norm.NFKC.String(lower.String(norm.NFKC.String(text)))

	kept := make([]string, 0, 8)
	tokens := words.FromString(folded)
	for tokens.Next() {
		for _, tok := range splitContraction(tokens.Value()) {
			if keep(tok) {
				kept = append(kept, tok)
			}
		}
	}
	return strings.Join(kept, " ")
}

// Tokens returns the normalized tokens of text.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}

func keep(tok string) bool {
	if !hasWordRune(tok) {
		return false
	}
	return !IsStopword(tok)
}

func hasWordRune(tok string) bool {
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// splitContraction peels contraction suffixes off tok until none match, so
// stacked forms like "shouldn't've" yield "should", "n't", "'ve".
func splitContraction(tok string) []string {
	canon := strings.ReplaceAll(tok, "’", "'")
	var suffixes []string
	for {
		suffix := contractionSuffix(canon)
		if suffix == "" {
			break
		}
		suffixes = append(suffixes, suffix)
		canon = canon[:len(canon)-len(suffix)]
	}
	if len(suffixes) == 0 {
		return []string{tok}
	}
	parts := make([]string, 0, len(suffixes)+1)
	parts = append(parts, canon)
	for i := len(suffixes) - 1; i >= 0; i-- {
		parts = append(parts, suffixes[i])
	}
	return parts
}

func contractionSuffix(tok string) string {
	for _, suffix := range contractionSuffixes {
		if len(tok) > len(suffix) && strings.HasSuffix(tok, suffix) {
			return suffix
		}
	}
	return ""
}
