package labeling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/infrastructure/config"
)

// maxLabelResponseSize bounds the labeling service response (64KB)
const maxLabelResponseSize = 64 * 1024

// Client calls the external labeling service over HTTP. It implements the
// integration.Labeler port; callers treat failures as best-effort.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewClient creates a labeling client from configuration
func NewClient(cfg config.LabelingConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

type labelRequest struct {
	Name string `json:"name"`
}

type labelResponse struct {
	Status   string `json:"status"`
	Category string `json:"category"`
	Label    string `json:"label"`
}

// Label asks the labeling service to classify an item name. A response with
// status "insufficient_data" is not an error: the caller simply leaves the
// record unenriched.
func (c *Client) Label(ctx context.Context, name string) (*integration.LabelResult, error) {
	payload, err := json.Marshal(labelRequest{Name: name})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/label", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("labeling: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLabelResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", integration.ErrPlatformRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: labeling status %d", integration.ErrPlatformRequestFailed, resp.StatusCode)
	}

	var parsed labelResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse labeling response: %v", integration.ErrPlatformInvalidResponse, err)
	}

	result := &integration.LabelResult{
		Status:   integration.LabelStatus(parsed.Status),
		Category: parsed.Category,
		Label:    parsed.Label,
	}
	if result.Status != integration.LabelStatusOK && result.Status != integration.LabelStatusInsufficientData {
		c.logger.Warn("labeling service returned unknown status", zap.String("status", parsed.Status))
		result.Status = integration.LabelStatusInsufficientData
	}
	return result, nil
}

// NoopLabeler satisfies the Labeler port when labeling is disabled
type NoopLabeler struct{}

// Label always reports insufficient data
func (NoopLabeler) Label(_ context.Context, _ string) (*integration.LabelResult, error) {
	return &integration.LabelResult{Status: integration.LabelStatusInsufficientData}, nil
}

var (
	_ integration.Labeler = (*Client)(nil)
	_ integration.Labeler = NoopLabeler{}
)
