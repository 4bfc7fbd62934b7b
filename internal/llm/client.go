// Package llm talks to a chat-completions language-model service to produce
// analysis text for report topics.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/noama-samreen/dasaf-cbgpt/internal/catalog"
	"github.com/noama-samreen/dasaf-cbgpt/internal/config"
	"github.com/noama-samreen/dasaf-cbgpt/internal/foundation/errors"
	"github.com/noama-samreen/dasaf-cbgpt/internal/logfields"
	"github.com/noama-samreen/dasaf-cbgpt/internal/metrics"
	"github.com/noama-samreen/dasaf-cbgpt/internal/retry"
	"github.com/noama-samreen/dasaf-cbgpt/internal/version"
)

const maxResponseBytes = 4 << 20

// Client is a chat-completions client.
type Client struct {
	url        string
	apiKey     string
	model      string
	httpClient *http.Client
	policy     retry.Policy
	sleep      retry.Sleeper
	recorder   metrics.Recorder
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(c *Client) { c.recorder = r } }

// WithSleeper replaces the wait between retries.
func WithSleeper(s retry.Sleeper) Option { return func(c *Client) { c.sleep = s } }

// New builds a client from the llm configuration section.
func New(cfg config.LLMConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.ConfigError("llm url is required").WithContext("env", config.EnvLLMURL).Build()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.AuthError("llm api key is required").WithContext("env", config.EnvLLMAPIKey).Build()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		policy:     retry.FromConfig(cfg.Retry),
		sleep:      retry.Sleep,
		recorder:   metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AnalyzeTopic asks for the security analysis of one topic.
func (c *Client) AnalyzeTopic(ctx context.Context, subject, explorerURL string, topic catalog.Topic, extra string) (string, error) {
	prompt := topic.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = topic.Name
	}
	text, err := c.complete(ctx, SystemPrompt(SecurityExpertPrompt), AnalysisPrompt(subject, explorerURL, prompt, extra))
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return "", ce.WithContext(errors.ContextTopic, topic.Name)
		}
		return "", err
	}
	return text, nil
}

// Ask sends a free-form question, optionally about subject.
func (c *Client) Ask(ctx context.Context, subject, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", errors.ValidationError("question is empty").Build()
	}
	return c.complete(ctx, SystemPrompt(KnowledgeExpertPrompt), QueryPrompt(subject, question))
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model,omitempty"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	// Some gateways wrap the completion JSON in a string field.
	Response *string `json:"response"`
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "failed to encode request").Build()
	}

	start := time.Now()
	var text string
	err = c.policy.Do(ctx, c.sleep, func(ctx context.Context) error {
		var rerr error
		text, rerr = c.send(ctx, body)
		return rerr
	}, func(n int, err error) {
		c.recorder.IncAnalysisRetry()
		slog.Warn("Retrying language-model request", logfields.Attempt(n), logfields.Error(err))
	})
	elapsed := time.Since(start)
	c.recorder.ObserveAnalysisDuration(elapsed, err == nil)
	if err != nil {
		return "", err
	}
	slog.Debug("Language-model request completed", logfields.Duration(elapsed))
	return text, nil
}

func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryConfig, "invalid llm url").
			WithContext("url", c.url).
			Build()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "dasaf/"+version.Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.WrapError(err, errors.CategoryNetwork, "language-model request canceled").Build()
		}
		return "", errors.WrapError(err, errors.CategoryNetwork, "failed to reach language-model service").
			Retryable().
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryNetwork, "failed to read language-model response").
			Retryable().
			Build()
	}

	if err := statusError(resp.StatusCode, data); err != nil {
		return "", err
	}
	return extractContent(data)
}

func statusError(status int, body []byte) error {
	if status < 300 {
		return nil
	}
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.AuthError("language-model service rejected the api key").
			WithContext(errors.ContextStatus, status).
			WithContext("env", config.EnvLLMAPIKey).
			Build()
	case status == http.StatusTooManyRequests || status >= 500:
		return errors.LLMError(fmt.Sprintf("language-model service unavailable: %d %s", status, http.StatusText(status))).
			Retryable().
			WithContext(errors.ContextStatus, status).
			WithContext("body", snippet).
			Build()
	default:
		return errors.LLMError(fmt.Sprintf("language-model request failed: %d %s", status, http.StatusText(status))).
			WithContext(errors.ContextStatus, status).
			WithContext("body", snippet).
			Build()
	}
}

// extractContent reads choices[0].message.content, unwrapping the
// {"response": "<json>"} envelope when present.
func extractContent(data []byte) (string, error) {
	var r chatResponse
	if err := json.Unmarshal(data, &r); err != nil {
		return "", errors.WrapError(err, errors.CategoryLLM, "invalid language-model response").Build()
	}
	if len(r.Choices) == 0 && r.Response != nil {
		inner := *r.Response
		r = chatResponse{}
		if err := json.Unmarshal([]byte(inner), &r); err != nil {
			return "", errors.WrapError(err, errors.CategoryLLM, "invalid wrapped language-model response").Build()
		}
	}
	if len(r.Choices) == 0 {
		return "", errors.LLMError("language-model response has no choices").Build()
	}
	content := r.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", errors.LLMError("language-model response is empty").Build()
	}
	return content, nil
}
