package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/poiesic/faqmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnswerer struct {
	fn       func(question string) (*core.MatchResult, error)
	received []string
}

func (s *stubAnswerer) Answer(_ context.Context, question string) (*core.MatchResult, error) {
	s.received = append(s.received, question)
	return s.fn(question)
}

func matchedAnswerer() *stubAnswerer {
	return &stubAnswerer{fn: func(question string) (*core.MatchResult, error) {
		switch strings.TrimSpace(question) {
		case "":
			return core.EmptyQuestionResult(), nil
		case "How can I track my order?":
			return &core.MatchResult{
				Status:     core.StatusMatched,
				Answer:     "Once shipped, you will receive a tracking number via email.",
				Confidence: 1,
				TopMatches: []core.TopMatch{
					{Question: "How can I track my order?", Answer: "Once shipped, you will receive a tracking number via email.", Score: 1},
					{Question: "Can I change or cancel my order?", Answer: "Orders can be modified within 1 hour.", Score: 0.41},
				},
			}, nil
		default:
			return core.NoMatchResult(), nil
		}
	}}
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	return rec, decoded
}

func TestAsk(t *testing.T) {
	answerer := matchedAnswerer()
	s := NewServer(answerer, 18)

	t.Run("match", func(t *testing.T) {
		rec, body := post(t, s, `{"question":"How can I track my order?"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "Once shipped, you will receive a tracking number via email.", body["answer"])
		assert.Equal(t, 1.0, body["confidence"])

		top, ok := body["top_matches"].([]any)
		require.True(t, ok)
		require.Len(t, top, 2)
		second := top[1].(map[string]any)
		assert.Equal(t, "Can I change or cancel my order?", second["question"])
		assert.Equal(t, 0.41, second["score"])
	})

	t.Run("no match carries only the answer", func(t *testing.T) {
		rec, body := post(t, s, `{"question":"asdkjh qwe zxc"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]any{"answer": core.NoMatchAnswer}, body)
	})

	t.Run("empty question", func(t *testing.T) {
		_, body := post(t, s, `{"question":"   "}`)
		assert.Equal(t, map[string]any{"answer": core.EmptyQuestionAnswer}, body)
	})

	for _, raw := range []string{``, `not json`, `{"question": 42}`, `[]`} {
		t.Run(fmt.Sprintf("malformed %q", raw), func(t *testing.T) {
			answerer.received = nil
			rec, body := post(t, s, raw)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, map[string]any{"answer": core.EmptyQuestionAnswer}, body)
			assert.Equal(t, []string{""}, answerer.received)
		})
	}

	t.Run("missing question field", func(t *testing.T) {
		_, body := post(t, s, `{"q":"hello"}`)
		assert.Equal(t, core.EmptyQuestionAnswer, body["answer"])
	})
}

func TestAsk_EmbeddingUnavailable(t *testing.T) {
	s := NewServer(&stubAnswerer{fn: func(string) (*core.MatchResult, error) {
		return nil, fmt.Errorf("%w: connection refused", core.ErrEmbeddingFailed)
	}}, 1)

	rec, body := post(t, s, `{"question":"hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, map[string]any{"error": "service unavailable"}, body)
}

func TestAsk_WrongMethod(t *testing.T) {
	s := NewServer(matchedAnswerer(), 1)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ask", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	s := NewServer(matchedAnswerer(), 18)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","entries":18}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	t.Run("preflight", func(t *testing.T) {
		s := NewServer(matchedAnswerer(), 1)
		req := httptest.NewRequest(http.MethodOptions, "/ask", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("restricted origins", func(t *testing.T) {
		s := NewServer(matchedAnswerer(), 1, WithAllowedOrigins("https://shop.example.com"), WithLogger(nil))

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec = httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestID(t *testing.T) {
	s := NewServer(matchedAnswerer(), 1)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	s := NewServer(matchedAnswerer(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	err := <-done
	assert.False(t, err != nil && !errors.Is(err, http.ErrServerClosed), "unexpected error: %v", err)
}
