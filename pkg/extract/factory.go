package extract

import (
	"fmt"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType

	// Gemini config
	GeminiAPIKey string
	GeminiModel  string

	// GetGeminiModel, when set, lets the settings API change the model at
	// runtime without restarting the process
	GetGeminiModel func() string
}

// NewInvoiceExtractor creates an InvoiceExtractor based on the config.
// This is the factory function - switch AI provider by changing config.Provider.
func NewInvoiceExtractor(cfg Config) (InvoiceExtractor, error) {
	switch cfg.Provider {
	case ProviderGemini, "":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		extractor := NewGeminiExtractor(cfg.GeminiAPIKey, cfg.GeminiModel)
		extractor.GetModel = cfg.GetGeminiModel
		return extractor, nil

	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.Provider)
	}
}
