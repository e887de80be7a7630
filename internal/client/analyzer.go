package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/yourorg/crypto-dashboard/internal/config"
	"github.com/yourorg/crypto-dashboard/internal/model"

	"go.uber.org/zap"
)

// AnalyzerClient handles communication with the AI analysis microservice.
// Analysis runs are fire-and-forget: a 2xx means the service accepted the
// job, not that the analysis finished.
type AnalyzerClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAnalyzerClient creates a new analysis service client
func NewAnalyzerClient(cfg config.AnalyzerConfig, logger *zap.Logger) *AnalyzerClient {
	return &AnalyzerClient{
		baseURL: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// RequestAnalysis asks the service to analyze a single video.
func (c *AnalyzerClient) RequestAnalysis(ctx context.Context, req model.AnalysisRequest) error {
	return c.post(ctx, "/analyze", req, nil)
}

// RequestAutofetch asks the service to scan the given channels for new videos.
func (c *AnalyzerClient) RequestAutofetch(ctx context.Context, req model.AnalysisRequest) error {
	return c.post(ctx, "/autofetch", req, nil)
}

// FetchTranscript asks the service for a video transcript.
func (c *AnalyzerClient) FetchTranscript(ctx context.Context, videoURL string) (string, error) {
	var out struct {
		Transcript string `json:"transcript"`
	}
	err := c.post(ctx, "/transcript", map[string]string{"url": videoURL}, &out)
	if err != nil {
		return "", err
	}
	return out.Transcript, nil
}

func (c *AnalyzerClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("analyzer service URL is not configured")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to reach analyzer service",
			zap.Error(err),
			zap.String("path", path))
		return fmt.Errorf("failed to reach analyzer service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.Error("Analyzer service error response",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("path", path),
			zap.String("response", string(bodyBytes)))
		return fmt.Errorf("analyzer service returned status code %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode analyzer response: %w", err)
		}
	}

	return nil
}
