package extract

import (
	"context"
)

// InvoiceExtractor is the interface for AI invoice extraction.
// Implement this interface to add new AI providers.
type InvoiceExtractor interface {
	// ExtractInvoice runs the extraction workflow on a PDF attachment and
	// returns the structured result as text
	ExtractInvoice(ctx context.Context, pdf []byte, filename string) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
)
