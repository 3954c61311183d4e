// Package mcp exposes question answering as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/poiesic/faqmatch/core"
)

// Answerer answers a single question.
type Answerer interface {
	Answer(ctx context.Context, question string) (*core.MatchResult, error)
}

// Server wraps the MCP server around an Answerer and the catalog questions.
type Server struct {
	mcp       *gomcp.Server
	answerer  Answerer
	questions []string
	version   string
	logger    *slog.Logger
}

// ServerOption configures optional Server settings.
type ServerOption func(*Server)

// WithVersion sets the implementation version advertised to clients.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		if version != "" {
			s.version = version
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger.With("component", "mcp")
		}
	}
}

// NewServer creates an MCP server with the ask and list_questions tools.
func NewServer(answerer Answerer, questions []string, opts ...ServerOption) (*Server, error) {
	if answerer == nil {
		return nil, fmt.Errorf("answerer is required")
	}

	s := &Server{
		answerer:  answerer,
		questions: questions,
		version:   "dev",
		logger:    slog.Default().With("component", "mcp"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "faqmatch",
			Version: s.version,
		},
		nil,
	)
	s.registerTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
