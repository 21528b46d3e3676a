package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aurelpetit/polychat/internal/core"
)

const chatGPTSystemPrompt = "You are an intelligent and helpful AI assistant. Respond clearly and precisely in the same language as the user's question. If the user writes in English, respond in English. If the user writes in French, respond in French."

// ChatGPTProvider calls the OpenAI chat-completions API with gpt-4o.
type ChatGPTProvider struct {
	client  chatCompletionsClient
	timeout time.Duration
}

func NewChatGPTProvider(apiKey string, timeout time.Duration) *ChatGPTProvider {
	return &ChatGPTProvider{
		client: chatCompletionsClient{
			httpClient: &http.Client{},
			baseURL:    "https://api.openai.com/v1",
			apiKey:     apiKey,
			model:      "gpt-4o",
			system:     chatGPTSystemPrompt,
		},
		timeout: timeout,
	}
}

func (p *ChatGPTProvider) Name() string { return ModeChatGPT }

func (p *ChatGPTProvider) Ask(ctx context.Context, prompt string) core.Result {
	if keyMissing(p.client.apiKey) {
		return core.Result{Text: "ChatGPT API key missing. Set OPENAI_API_KEY in .env", Seconds: 0}
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	text, err := p.client.complete(ctx, prompt)
	if err != nil {
		return core.Result{Text: fmt.Sprintf("ChatGPT API error: %v", err), Seconds: seconds(start)}
	}
	return core.Result{Text: text, Seconds: seconds(start)}
}

var _ core.Provider = (*ChatGPTProvider)(nil)
