package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "model scoped key", content: "tfidf|How can I track my order?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("nomic-embed-text|What is your return policy?")
	id2 := IDFromContent("all-minilm|What is your return policy?")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestMatchStatus_String(t *testing.T) {
	tests := []struct {
		status MatchStatus
		want   string
	}{
		{StatusMatched, "matched"},
		{StatusNoMatch, "no_match"},
		{StatusEmptyQuestion, "empty_question"},
		{MatchStatus(0), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFallbackResults(t *testing.T) {
	empty := EmptyQuestionResult()
	if empty.Status != StatusEmptyQuestion || empty.Answer != "Please ask a question." {
		t.Errorf("EmptyQuestionResult() = %+v", empty)
	}
	if empty.Matched() {
		t.Error("empty question result should not be matched")
	}

	none := NoMatchResult()
	if none.Status != StatusNoMatch || none.Answer != "Sorry, I don't understand your question. Please try rephrasing." {
		t.Errorf("NoMatchResult() = %+v", none)
	}
	if none.TopMatches != nil || none.Confidence != 0 {
		t.Error("no match result should carry no confidence or top matches")
	}

	var nilResult *MatchResult
	if nilResult.Matched() {
		t.Error("nil result should not be matched")
	}
}
