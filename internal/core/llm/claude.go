package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aurelpetit/polychat/internal/core"
)

const claudeSystemPrompt = "You are Claude, an AI assistant developed by Anthropic. You are helpful, harmless, and honest. Always respond in the same language as the user's question. If the user writes in English, respond in English. If the user writes in French, respond in French."

// ClaudeProvider calls the Anthropic messages API.
type ClaudeProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
}

func NewClaudeProvider(apiKey string, timeout time.Duration) *ClaudeProvider {
	return &ClaudeProvider{
		httpClient: &http.Client{},
		baseURL:    "https://api.anthropic.com",
		apiKey:     apiKey,
		model:      "claude-3-5-sonnet-20241022",
		timeout:    timeout,
	}
}

func (p *ClaudeProvider) Name() string { return ModeClaude }

type claudeRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	System      string        `json:"system"`
	Messages    []chatMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (p *ClaudeProvider) Ask(ctx context.Context, prompt string) core.Result {
	if keyMissing(p.apiKey) {
		return core.Result{Text: "Claude API key missing. Set CLAUDE_API_KEY in .env", Seconds: 0}
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	text, err := p.call(ctx, prompt)
	if err != nil {
		return core.Result{Text: fmt.Sprintf("Claude API error: %v", err), Seconds: seconds(start)}
	}
	return core.Result{Text: text, Seconds: seconds(start)}
}

func (p *ClaudeProvider) call(ctx context.Context, prompt string) (string, error) {
	payload := claudeRequest{
		Model:       p.model,
		MaxTokens:   maxOutputTokens,
		Temperature: temperature,
		System:      claudeSystemPrompt,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &apiStatusError{Status: resp.StatusCode, Body: string(raw)}
	}

	var parsed claudeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("response contained no content")
	}
	return parsed.Content[0].Text, nil
}

var _ core.Provider = (*ClaudeProvider)(nil)
