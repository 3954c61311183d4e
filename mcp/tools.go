package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type askResult struct {
	Status     string     `json:"status"`
	Answer     string     `json:"answer"`
	Confidence *float64   `json:"confidence,omitempty"`
	TopMatches []topMatch `json:"top_matches,omitempty"`
}

type topMatch struct {
	Question string  `json:"question"`
	Score    float64 `json:"score"`
}

func (s *Server) registerTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "ask",
		Description: "Answer a customer question from the FAQ catalog. Returns the best answer with its confidence and the closest catalog questions, or a fallback answer when nothing matches well enough.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"question": {"type": "string", "description": "The customer's question in free text"}
			},
			"required": ["question"]
		}`),
	}, s.handleAsk)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "list_questions",
		Description: "List every question in the FAQ catalog, in catalog order.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {}
		}`),
	}, s.handleListQuestions)
}

func (s *Server) handleAsk(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Question string `json:"question"`
	}
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return toolError("invalid arguments: %v", err), nil
		}
	}

	result, err := s.answerer.Answer(ctx, args.Question)
	if err != nil {
		s.logger.Error("answer failed", "err", err)
		return toolError("service unavailable"), nil
	}

	out := askResult{Status: result.Status.String(), Answer: result.Answer}
	if result.Matched() {
		confidence := result.Confidence
		out.Confidence = &confidence
		for _, m := range result.TopMatches {
			out.TopMatches = append(out.TopMatches, topMatch{Question: m.Question, Score: m.Score})
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return toolError("failed to encode result: %v", err), nil
	}
	return textResult(string(data)), nil
}

func (s *Server) handleListQuestions(_ context.Context, _ *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	if len(s.questions) == 0 {
		return textResult("The catalog is empty."), nil
	}
	var b strings.Builder
	for i, q := range s.questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return textResult(b.String()), nil
}

func textResult(text string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: text}},
	}
}

func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
