// Package gliner2 is a client for GLiNER2 inference services, used for
// zero-shot topic classification and as an alternative entity recognizer.
package gliner2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/soundprediction/reviewgraph/pkg/extract"
)

const defaultTimeout = 30 * time.Second

type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
}

func NewHTTPClient(config Config) (*HTTPClient, error) {
	var baseURL, apiKey string
	timeout := defaultTimeout

	switch config.Provider {
	case ProviderLocal:
		if config.Local == nil {
			return nil, fmt.Errorf("local config required for local provider")
		}
		baseURL = config.Local.Endpoint
		if config.Local.Timeout > 0 {
			timeout = config.Local.Timeout
		}
	case ProviderFastino:
		if config.Fastino == nil {
			return nil, fmt.Errorf("fastino config required for fastino provider")
		}
		baseURL = config.Fastino.Endpoint
		apiKey = config.Fastino.APIKey
		if config.Fastino.Timeout > 0 {
			timeout = config.Fastino.Timeout
		}
	default:
		return nil, fmt.Errorf("unsupported provider: %v", config.Provider)
	}

	if baseURL == "" {
		return nil, fmt.Errorf("endpoint URL is required")
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	// Add API key header for Fastino
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}

	return nil
}

// ExtractEntities runs span extraction for the given entity labels.
func (c *HTTPClient) ExtractEntities(ctx context.Context, text string, labels []string, threshold float64) (*EntityResult, error) {
	request := ExtractRequest{
		Task:      "extract_entities",
		Text:      text,
		Schema:    labels,
		Threshold: threshold,
	}

	var result EntityResult
	if err := c.makeRequest(ctx, request, &result); err != nil {
		return nil, fmt.Errorf("entity extraction failed: %w", err)
	}

	return &result, nil
}

// ClassifyText classifies text against named tasks, each with its own
// candidate labels.
func (c *HTTPClient) ClassifyText(ctx context.Context, text string, schema map[string][]string, threshold float64) (*ClassificationResult, error) {
	request := ExtractRequest{
		Task:      "classify_text",
		Text:      text,
		Schema:    schema,
		Threshold: threshold,
	}

	var result ClassificationResult
	if err := c.makeRequest(ctx, request, &result); err != nil {
		return nil, fmt.Errorf("text classification failed: %w", err)
	}

	return &result, nil
}

// Recognizer adapts the entity endpoint to extract.Recognizer.
type Recognizer struct {
	Client    *HTTPClient
	Labels    []string
	Threshold float64
}

// Recognize implements extract.Recognizer. Entities are returned in text order.
func (r *Recognizer) Recognize(ctx context.Context, text string) ([]extract.Entity, error) {
	labels := r.Labels
	if len(labels) == 0 {
		labels = []string{"organization"}
	}
	res, err := r.Client.ExtractEntities(ctx, text, labels, r.Threshold)
	if err != nil {
		return nil, err
	}

	type span struct {
		entity extract.Entity
		start  int
	}
	var spans []span
	for _, label := range labels {
		for _, e := range res.Entities[label] {
			l := e.Label
			if l == "" {
				l = label
			}
			spans = append(spans, span{
				entity: extract.Entity{Text: e.Text, Label: l, Score: e.Confidence},
				start:  e.Start,
			})
		}
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	out := make([]extract.Entity, len(spans))
	for i, s := range spans {
		out[i] = s.entity
	}
	return out, nil
}

func (c *HTTPClient) Close() error {
	return nil
}

func (c *HTTPClient) makeRequest(ctx context.Context, request ExtractRequest, result any) error {
	reqBody, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/gliner-2", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	// Add API key header for Fastino
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiError struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(body, &apiError)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, apiError.Detail)
	}

	response := ExtractResponse{Result: result}
	return json.Unmarshal(body, &response)
}
