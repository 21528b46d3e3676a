// Package llm holds one adapter per LLM vendor plus the gateway that resolves
// chat modes to adapters. Adapters convert every failure into response text:
// a missing key, a timeout or a vendor outage must never abort a
// multi-provider comparison.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aurelpetit/polychat/internal/core"
)

// Chat modes. The single-provider modes match the adapter names.
const (
	ModeCompare  = "compare"
	ModeChatGPT  = "chatgpt"
	ModeGemini   = "gemini"
	ModeDeepSeek = "deepseek"
	ModeClaude   = "claude"
)

// Generation settings shared by every adapter.
const (
	temperature     = 0.7
	maxOutputTokens = 1500
)

// Gateway holds the provider adapters in fixed chatgpt, gemini, deepseek,
// claude order. Compare-mode results are associated with providers by this
// position, regardless of completion order.
type Gateway struct {
	providers []core.Provider
	closers   []func() error
}

// NewGateway builds a gateway over an explicit adapter list, mainly for tests.
func NewGateway(providers ...core.Provider) *Gateway {
	return &Gateway{providers: providers}
}

// Keys configures the default adapter set. An empty or placeholder value
// degrades that provider to a canned "key missing" response.
type Keys struct {
	OpenAI   string
	Gemini   string
	DeepSeek string
	Claude   string
}

// NewDefaultGateway wires the four production adapters. It never fails
// startup over a missing key.
func NewDefaultGateway(ctx context.Context, keys Keys, timeout time.Duration) *Gateway {
	gemini := NewGeminiProvider(ctx, keys.Gemini, timeout)
	g := NewGateway(
		NewChatGPTProvider(keys.OpenAI, timeout),
		gemini,
		NewDeepSeekProvider(keys.DeepSeek, timeout),
		NewClaudeProvider(keys.Claude, timeout),
	)
	g.closers = append(g.closers, gemini.Close)
	return g
}

// Providers returns the adapters in their fixed order.
func (g *Gateway) Providers() []core.Provider {
	return g.providers
}

// ByName resolves a single-provider mode ("chatgpt", "gemini", ...) to its
// adapter.
func (g *Gateway) ByName(name string) (core.Provider, bool) {
	for _, p := range g.providers {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

func (g *Gateway) Close() error {
	var errs []error
	for _, c := range g.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// keyMissing treats empty values and the "your_..._here" placeholders that
// ship in .env templates as absent.
func keyMissing(key string) bool {
	return key == "" || (strings.HasPrefix(key, "your_") && strings.HasSuffix(key, "_here"))
}

func seconds(start time.Time) float64 {
	return time.Since(start).Seconds()
}
