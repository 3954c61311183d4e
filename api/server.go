// Package api exposes question answering over HTTP.
//
// POST /ask accepts {"question": "..."} and always answers 200 with a JSON
// body unless the embedding service is unavailable, in which case it answers
// 503. A body that cannot be decoded is treated as an empty question.
// GET /healthz reports readiness and the catalog size.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/faqmatch/core"
)

const (
	maxBodyBytes    = 64 << 10
	requestIDHeader = "X-Request-ID"
	shutdownTimeout = 5 * time.Second
)

// Answerer answers a single question.
type Answerer interface {
	Answer(ctx context.Context, question string) (*core.MatchResult, error)
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer     string          `json:"answer"`
	Confidence *float64        `json:"confidence,omitempty"`
	TopMatches []core.TopMatch `json:"top_matches,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Entries int    `json:"entries"`
}

// Server is the HTTP adapter around an Answerer.
type Server struct {
	answerer Answerer
	entries  int
	origins  []string
	logger   *slog.Logger
	handler  http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins sets the origins allowed by CORS. "*" allows any origin.
// Default is "*".
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "api")
	}
}

// NewServer creates a server. entries is the catalog size reported by /healthz.
func NewServer(answerer Answerer, entries int, opts ...Option) *Server {
	s := &Server{
		answerer: answerer,
		entries:  entries,
		origins:  []string{"*"},
		logger:   slog.Default().With("component", "api"),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	s.handler = s.withRequestID(s.withCORS(mux))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Debug("undecodable request body, treating as empty question",
			"request_id", requestID(r), "err", err)
		req.Question = ""
	}

	result, err := s.answerer.Answer(r.Context(), req.Question)
	if err != nil {
		s.logger.Error("answer failed", "request_id", requestID(r), "err", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service unavailable"})
		return
	}

	resp := askResponse{Answer: result.Answer}
	if result.Matched() {
		confidence := result.Confidence
		resp.Confidence = &confidence
		resp.TopMatches = result.TopMatches
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Entries: s.entries})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case slices.Contains(s.origins, "*"):
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.origins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type requestIDKey struct{}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
