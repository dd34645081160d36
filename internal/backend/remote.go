package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/myproject/website/internal/models"
	"github.com/sirupsen/logrus"
)

type remoteSearchRequest struct {
	Query    string `json:"query"`
	LiveOnly bool   `json:"live_only"`
}

type remoteSearchResponse struct {
	Results []models.Document `json:"results"`
}

// StatusError is returned for non-2xx responses from the search service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// RemoteBackend delegates matching to an HTTP search service.
type RemoteBackend struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      RetryConfig
	logger     *logrus.Logger
}

func NewRemoteBackend(baseURL, apiKey string, logger *logrus.Logger) *RemoteBackend {
	return &RemoteBackend{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry:  DefaultRetryConfig(),
		logger: logger,
	}
}

// WithRetryConfig overrides the retry policy.
func (r *RemoteBackend) WithRetryConfig(cfg RetryConfig) *RemoteBackend {
	r.retry = cfg
	return r
}

func (r *RemoteBackend) Search(ctx context.Context, query string, liveOnly bool) ([]models.Document, error) {
	if len(terms(query)) == 0 {
		return []models.Document{}, nil
	}

	var response remoteSearchResponse
	err := r.retryOperation(ctx, func() error {
		response = remoteSearchResponse{}
		return r.makeRequest(ctx, http.MethodPost, "/search", remoteSearchRequest{Query: query, LiveOnly: liveOnly}, &response)
	})
	if err != nil {
		return nil, err
	}

	if response.Results == nil {
		response.Results = []models.Document{}
	}
	return response.Results, nil
}

func (r *RemoteBackend) makeRequest(ctx context.Context, method, endpoint string, payload interface{}, result interface{}) error {
	url := r.baseURL + endpoint

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	r.logger.WithFields(logrus.Fields{
		"method": method,
		"url":    url,
	}).Debug("Making search service request")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"url":           url,
		"response_size": len(responseBody),
	}).Debug("Search service response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(responseBody)}
	}

	if result != nil && len(responseBody) > 0 {
		if err := json.Unmarshal(responseBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
