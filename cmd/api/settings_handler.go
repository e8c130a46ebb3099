package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// RuntimeConfig holds runtime-configurable settings
type RuntimeConfig struct {
	GeminiModel  string `json:"gemini_model"`
	geminiAPIKey string
}

var (
	runtimeConfig     RuntimeConfig
	runtimeConfigLock sync.RWMutex
)

// InitRuntimeConfig initializes runtime config from static config. The API
// key is kept for the connection test only and never returned to callers.
func InitRuntimeConfig(geminiModel, geminiAPIKey string) {
	runtimeConfigLock.Lock()
	defer runtimeConfigLock.Unlock()
	runtimeConfig = RuntimeConfig{
		GeminiModel:  geminiModel,
		geminiAPIKey: geminiAPIKey,
	}
}

// GetRuntimeGeminiModel returns the current runtime Gemini model
func GetRuntimeGeminiModel() string {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.GeminiModel
}

// UpdateExtractionSettingsRequest represents the request body for updating extraction settings
type UpdateExtractionSettingsRequest struct {
	GeminiModel string `json:"gemini_model" binding:"required"`
}

// GetExtractionSettings returns current extraction configuration
// GET /api/settings/extraction
func GetExtractionSettings(c *gin.Context) {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"gemini_model": runtimeConfig.GeminiModel,
	})
}

// UpdateExtractionSettings updates extraction configuration at runtime
// PUT /api/settings/extraction
func UpdateExtractionSettings(c *gin.Context) {
	var req UpdateExtractionSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runtimeConfigLock.Lock()
	runtimeConfig.GeminiModel = req.GeminiModel
	runtimeConfigLock.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"message":      "Extraction settings updated successfully",
		"gemini_model": req.GeminiModel,
	})
}

// TestExtractionConnection checks that the Gemini API is reachable with the
// configured key and model
// POST /api/settings/extraction/test
func TestExtractionConnection(c *gin.Context) {
	runtimeConfigLock.RLock()
	model := runtimeConfig.GeminiModel
	apiKey := runtimeConfig.geminiAPIKey
	runtimeConfigLock.RUnlock()

	if apiKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"connected": false,
			"error":     "no Gemini API key configured",
		})
		return
	}

	url := "https://generativelanguage.googleapis.com/v1beta/models/" + model + "?key=" + apiKey
	resp, err := http.Get(url)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"connected": false,
			"error":     err.Error(),
		})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"connected":   false,
			"status_code": resp.StatusCode,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connected":    true,
		"gemini_model": model,
	})
}
