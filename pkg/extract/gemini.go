package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// extraction prompt: plain-text output so the result can be dropped
// straight into a reply body
const extractionPrompt = `You are an accounts-payable assistant. Extract the key fields from the attached vendor invoice PDF and present them as a short, readable summary:

- Vendor name
- Invoice number
- Invoice date and due date
- Line items (description, quantity, unit price, total)
- Subtotal, tax and total amount

Reply with the summary only, no preamble.`

// GeminiExtractor runs invoice extraction against the Gemini API,
// sending the PDF inline with the prompt.
type GeminiExtractor struct {
	ApiKey  string
	Model   string
	BaseURL string
	client  *http.Client

	// GetModel, when set, overrides Model per request so the model can be
	// switched at runtime through the settings API
	GetModel func() string
}

func NewGeminiExtractor(apiKey, model string) *GeminiExtractor {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiExtractor{
		ApiKey:  apiKey,
		Model:   model,
		BaseURL: defaultBaseURL,
		client:  &http.Client{},
	}
}

func (g *GeminiExtractor) ExtractInvoice(ctx context.Context, pdf []byte, filename string) (string, error) {
	model := g.Model
	if g.GetModel != nil {
		if m := g.GetModel(); m != "" {
			model = m
		}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.BaseURL, model, g.ApiKey)

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": extractionPrompt},
					{
						"inline_data": map[string]string{
							"mime_type": "application/pdf",
							"data":      base64.StdEncoding.EncodeToString(pdf),
						},
					},
				},
			},
		},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error: %s", string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}

	// Parse extraction text from response
	if c, ok := result["candidates"].([]interface{}); ok && len(c) > 0 {
		if cand, ok := c[0].(map[string]interface{}); ok {
			if content, ok := cand["content"].(map[string]interface{}); ok {
				if parts, ok := content["parts"].([]interface{}); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]interface{}); ok {
						if text, ok := part["text"].(string); ok {
							return text, nil
						}
					}
				}
			}
		}
	}
	return "", fmt.Errorf("no extraction result returned")
}
