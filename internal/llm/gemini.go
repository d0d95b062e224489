package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/digest-flow/internal/logger"
)

type geminiClient struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int

	model       string
	temperature float32
	timeout     time.Duration
	backendURL  string
	logger      logger.Logger
}

// GeminiOptions configures the Gemini client.
type GeminiOptions struct {
	APIKeys     []string
	Model       string
	Temperature float64
	Timeout     time.Duration
	// BaseURL overrides the Gemini API endpoint. Empty uses the default.
	BaseURL string
}

// NewGemini creates a Client that spreads calls over the supplied keys round-robin.
func NewGemini(opts GeminiOptions, log logger.Logger) Client {
	return &geminiClient{
		apiKeys:     opts.APIKeys,
		model:       opts.Model,
		temperature: float32(opts.Temperature),
		timeout:     opts.Timeout,
		backendURL:  opts.BaseURL,
		logger:      log,
	}
}

func (g *geminiClient) nextKey() (string, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx := g.currentKey
	g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	return g.apiKeys[idx], idx
}

func (g *geminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	if len(g.apiKeys) == 0 {
		return "", fmt.Errorf("%w: no gemini api keys configured", ErrTransport)
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	key, idx := g.nextKey()

	cc := &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	}
	if g.backendURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.backendURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", fmt.Errorf("%w: create client: %v", ErrTransport, err)
	}

	result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	})
	if err != nil {
		g.logger.Warn(ctx, "Gemini call with key %d failed: %v", idx+1, err)
		return "", fmt.Errorf("%w: generate content: %v", ErrTransport, err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				text += part.Text
			}
		}
		if text != "" {
			return text, nil
		}
	}

	g.logger.Warn(ctx, "Gemini response had no text parts")
	return FallbackContent, nil
}
