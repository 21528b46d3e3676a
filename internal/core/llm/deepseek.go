package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aurelpetit/polychat/internal/core"
)

const deepSeekSystemPrompt = "You are DeepSeek, an AI assistant that excels in logical reasoning and code analysis. Respond thoroughly and technically in the same language as the user's question. If the user writes in English, respond in English. If the user writes in French, respond in French."

// DeepSeekProvider calls the DeepSeek API, which exposes the same
// chat-completions wire format as OpenAI.
type DeepSeekProvider struct {
	client  chatCompletionsClient
	timeout time.Duration
}

func NewDeepSeekProvider(apiKey string, timeout time.Duration) *DeepSeekProvider {
	return &DeepSeekProvider{
		client: chatCompletionsClient{
			httpClient: &http.Client{},
			baseURL:    "https://api.deepseek.com/v1",
			apiKey:     apiKey,
			model:      "deepseek-chat",
			system:     deepSeekSystemPrompt,
		},
		timeout: timeout,
	}
}

func (p *DeepSeekProvider) Name() string { return ModeDeepSeek }

func (p *DeepSeekProvider) Ask(ctx context.Context, prompt string) core.Result {
	if keyMissing(p.client.apiKey) {
		return core.Result{Text: "DeepSeek API key missing. Set DEEPSEEK_API_KEY in .env", Seconds: 0}
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	text, err := p.client.complete(ctx, prompt)
	if err != nil {
		return core.Result{Text: fmt.Sprintf("DeepSeek API error: %v", err), Seconds: seconds(start)}
	}
	return core.Result{Text: text, Seconds: seconds(start)}
}

var _ core.Provider = (*DeepSeekProvider)(nil)
