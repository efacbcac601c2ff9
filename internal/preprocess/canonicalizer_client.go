package preprocess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/RishiKendai/overlap/internal/models"
	"github.com/rs/zerolog/log"
)

// RemoteCanonicalizer delegates canonicalization to an external service.
type RemoteCanonicalizer struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
}

func NewRemoteCanonicalizer(baseURL, apiKey, language string) *RemoteCanonicalizer {
	return &RemoteCanonicalizer{
		baseURL:  baseURL,
		apiKey:   apiKey,
		language: language,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *RemoteCanonicalizer) Canonicalize(ctx context.Context, raw string) (string, error) {
	url := fmt.Sprintf("%s/api/v1/canonicalize", c.baseURL)

	reqBody, err := json.Marshal(models.CanonicalizeRequest{Text: raw, Language: c.language})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	log.Trace().Int("bytes", len(reqBody)).Str("url", url).Msg("Calling canonicalizer")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	// Handle error status codes
	if resp.StatusCode == http.StatusBadRequest ||
		resp.StatusCode == http.StatusUnsupportedMediaType ||
		resp.StatusCode == http.StatusUnprocessableEntity {
		var errResp models.CanonicalizeError
		if err := json.Unmarshal(body, &errResp); err != nil {
			return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
		}
		return "", fmt.Errorf("API error: %s - %s", errResp.Error, errResp.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var canonResp models.CanonicalizeResponse
	if err := json.Unmarshal(body, &canonResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return canonResp.NormalizedText, nil
}
