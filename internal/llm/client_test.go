package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noama-samreen/dasaf-cbgpt/internal/catalog"
	"github.com/noama-samreen/dasaf-cbgpt/internal/config"
	"github.com/noama-samreen/dasaf-cbgpt/internal/foundation/errors"
	"github.com/noama-samreen/dasaf-cbgpt/internal/metrics"
)

type countingRecorder struct {
	retries  int
	observed []bool
}

func (r *countingRecorder) ObserveExportDuration(string, time.Duration)      {}
func (r *countingRecorder) IncExportResult(string, metrics.ResultLabel)      {}
func (r *countingRecorder) IncTopicsRendered(string, bool)                   {}
func (r *countingRecorder) IncAnalysisRetry()                                { r.retries++ }
func (r *countingRecorder) ObserveAnalysisDuration(_ time.Duration, ok bool) { r.observed = append(r.observed, ok) }

func noSleep(context.Context, time.Duration) error { return nil }

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(config.LLMConfig{
		URL:     srv.URL,
		APIKey:  "test-key",
		Model:   "o4-mini",
		Timeout: 5 * time.Second,
		Retry:   config.RetryConfig{Mode: config.RetryBackoffFixed, Initial: time.Millisecond, Max: time.Millisecond, MaxRetries: retries},
	}, append([]Option{WithSleeper(noSleep)}, opts...)...)
	require.NoError(t, err)
	return c
}

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func TestAnalyzeTopic_SendsPromptsAndReturnsContent(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(completion("**Finding** one")))
	}, 0)

	text, err := c.AnalyzeTopic(t.Context(), "Solana", "https://explorer.solana.com",
		catalog.Topic{Name: "Consensus", Prompt: "Explain consensus."}, "Focus on leader rotation.")
	require.NoError(t, err)
	require.Equal(t, "**Finding** one", text)

	require.Equal(t, "o4-mini", got.Model)
	require.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	require.Equal(t, "system", got.Messages[0].Role)
	require.Equal(t, StandardDisclaimer+"\n\n"+SecurityExpertPrompt, got.Messages[0].Content)
	require.Equal(t, "Analyze the security of Solana blockchain.\nUse block explorer at https://explorer.solana.com for data.\nExplain consensus. Focus on leader rotation.", got.Messages[1].Content)
}

func TestAnalyzeTopic_WrappedEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		b, _ := json.Marshal(map[string]string{"response": completion("wrapped text")})
		_, _ = w.Write(b)
	}, 0)

	text, err := c.AnalyzeTopic(t.Context(), "Chain", "", catalog.Topic{Name: "T"}, "")
	require.NoError(t, err)
	require.Equal(t, "wrapped text", text)
}

func TestAnalyzeTopic_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		category errors.ErrorCategory
		retry    bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, errors.CategoryAuth, false},
		{"forbidden", http.StatusForbidden, ``, errors.CategoryAuth, false},
		{"rate limited", http.StatusTooManyRequests, ``, errors.CategoryLLM, true},
		{"server error", http.StatusBadGateway, ``, errors.CategoryLLM, true},
		{"bad request", http.StatusBadRequest, `nope`, errors.CategoryLLM, false},
		{"malformed", http.StatusOK, `not json`, errors.CategoryLLM, false},
		{"no choices", http.StatusOK, `{"choices":[]}`, errors.CategoryLLM, false},
		{"empty content", http.StatusOK, completion("  "), errors.CategoryLLM, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, 0)

			_, err := c.AnalyzeTopic(t.Context(), "Chain", "", catalog.Topic{Name: "T", Prompt: "p"}, "")
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, tt.category), "got %v", err)
			require.Equal(t, tt.retry, errors.CanRetry(err))

			ce, _ := errors.AsClassified(err)
			topic, _ := ce.Context().GetString("topic")
			require.Equal(t, "T", topic)
		})
	}
}

func TestAnalyzeTopic_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	rec := &countingRecorder{}
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(completion("finally")))
	}, 2, WithRecorder(rec))

	text, err := c.AnalyzeTopic(t.Context(), "Chain", "", catalog.Topic{Name: "T"}, "")
	require.NoError(t, err)
	require.Equal(t, "finally", text)
	require.Equal(t, int32(3), calls.Load())
	require.Equal(t, 2, rec.retries)
	require.Equal(t, []bool{true}, rec.observed)
}

func TestAnalyzeTopic_NetworkFailureIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(config.LLMConfig{URL: url, APIKey: "k"}, WithSleeper(noSleep))
	require.NoError(t, err)
	c.policy.MaxRetries = 0

	_, err = c.AnalyzeTopic(t.Context(), "Chain", "", catalog.Topic{Name: "T"}, "")
	require.True(t, errors.HasCategory(err, errors.CategoryNetwork))
	require.True(t, errors.CanRetry(err))
}

func TestAsk(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(completion("answer")))
	}, 0)

	text, err := c.Ask(t.Context(), "Ethereum", "What is the slot time?")
	require.NoError(t, err)
	require.Equal(t, "answer", text)
	require.Equal(t, StandardDisclaimer+"\n\n"+KnowledgeExpertPrompt, got.Messages[0].Content)
	require.Equal(t, "Regarding the Ethereum blockchain: What is the slot time?", got.Messages[1].Content)

	_, err = c.Ask(t.Context(), "", "  ")
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestNew_RequiresURLAndKey(t *testing.T) {
	_, err := New(config.LLMConfig{APIKey: "k"})
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))

	_, err = New(config.LLMConfig{URL: "http://x"})
	require.True(t, errors.HasCategory(err, errors.CategoryAuth))
}

func TestPrompts(t *testing.T) {
	require.Equal(t, "Analyze the security of X blockchain.\n\nprompt", AnalysisPrompt(" X ", "", "prompt", ""))
	require.Equal(t, "plain question", QueryPrompt("", " plain question "))
	require.Equal(t, StandardDisclaimer, SystemPrompt(""))
}
