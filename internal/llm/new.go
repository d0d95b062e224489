package llm

import (
	"fmt"

	"github.com/nguyentantai21042004/digest-flow/internal/config"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
)

// New builds the Client selected by cfg.Provider.
func New(cfg config.LLMConfig, log logger.Logger) (Client, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAI(OpenAIOptions{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.TemperatureOrDefault(),
			Timeout:     cfg.Timeout,
		}, log), nil
	case config.ProviderGemini:
		return NewGemini(GeminiOptions{
			APIKeys:     cfg.GeminiKeys,
			Model:       cfg.Model,
			Temperature: cfg.TemperatureOrDefault(),
			Timeout:     cfg.Timeout,
		}, log), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
