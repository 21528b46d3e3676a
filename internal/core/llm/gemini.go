package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/aurelpetit/polychat/internal/core"
)

const geminiSystemPrompt = "You are an intelligent and creative AI assistant. Respond in detail and engagingly in the same language as the user's question. If the user writes in English, respond in English. If the user writes in French, respond in French."

// GeminiProvider calls the Google Generative AI SDK. When the key is absent
// the client is never created and Ask answers with the canned message.
type GeminiProvider struct {
	client    *genai.Client
	initErr   error
	modelName string
	timeout   time.Duration
}

func NewGeminiProvider(ctx context.Context, apiKey string, timeout time.Duration) *GeminiProvider {
	p := &GeminiProvider{
		modelName: "gemini-2.5-pro",
		timeout:   timeout,
	}
	if keyMissing(apiKey) {
		return p
	}
	p.client, p.initErr = genai.NewClient(ctx, option.WithAPIKey(apiKey))
	return p
}

func (p *GeminiProvider) Name() string { return ModeGemini }

func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func (p *GeminiProvider) Ask(ctx context.Context, prompt string) core.Result {
	if p.client == nil && p.initErr == nil {
		return core.Result{Text: "Gemini API key missing. Set GEMINI_API_KEY in .env", Seconds: 0}
	}

	start := time.Now()
	if p.initErr != nil {
		return core.Result{Text: fmt.Sprintf("Gemini API error: %v", p.initErr), Seconds: seconds(start)}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	m := p.client.GenerativeModel(p.modelName)
	m.SetTemperature(temperature)
	m.SetMaxOutputTokens(maxOutputTokens)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(geminiSystemPrompt)},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return core.Result{Text: fmt.Sprintf("Gemini API error: %v", err), Seconds: seconds(start)}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return core.Result{Text: "Gemini API error: empty response", Seconds: seconds(start)}
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return core.Result{Text: b.String(), Seconds: seconds(start)}
}

var _ core.Provider = (*GeminiProvider)(nil)
