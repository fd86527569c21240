package reviewgraph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/soundprediction/reviewgraph/pkg/alert"
	"github.com/soundprediction/reviewgraph/pkg/classify"
	"github.com/soundprediction/reviewgraph/pkg/config"
	"github.com/soundprediction/reviewgraph/pkg/extract"
	"github.com/soundprediction/reviewgraph/pkg/gliner"
	"github.com/soundprediction/reviewgraph/pkg/gliner2"
	"github.com/soundprediction/reviewgraph/pkg/nlp"
	"github.com/soundprediction/reviewgraph/pkg/rustbert"
)

// newRecognizer builds the configured entity recognizer. The returned func
// releases the model. The gliner2 recognizer shares the classifier's service
// endpoint.
func newRecognizer(root *config.Config, logger *slog.Logger) (extract.Recognizer, func(), error) {
	cfg := root.NLP.Recognizer
	switch strings.ToLower(cfg.Provider) {
	case "", "rustbert":
		c := rustbert.NewClient(rustbert.Config{
			NERModelID: cfg.Model,
			MinScore:   cfg.Threshold,
			Logger:     logger,
		})
		if err := c.LoadNERModel(); err != nil {
			return nil, nil, fmt.Errorf("failed to load NER model: %w", err)
		}
		return c, c.Close, nil
	case "gliner":
		c, err := gliner.NewClient(cfg.Model, nil, cfg.Threshold)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	case "gliner2":
		c, err := gliner2.NewHTTPClient(gliner2.Config{
			Provider: gliner2.ProviderLocal,
			Local:    &gliner2.LocalConfig{Endpoint: root.NLP.Classifier.Endpoint, Timeout: time.Duration(root.NLP.Classifier.Timeout) * time.Second},
		})
		if err != nil {
			return nil, nil, err
		}
		r := &gliner2.Recognizer{Client: c, Threshold: cfg.Threshold}
		return r, func() { c.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown recognizer provider %q", cfg.Provider)
	}
}

// newTopicClassifier builds the configured zero-shot backend, wrapped in a
// circuit breaker when enabled. An unhealthy GLiNER2 service is logged but
// not fatal; the breaker handles it once batches start failing.
func newTopicClassifier(ctx context.Context, cfg *config.Config, alerter alert.Alerter, logger *slog.Logger) (*classify.TopicClassifier, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	cc := cfg.NLP.Classifier
	timeout := time.Duration(cc.Timeout) * time.Second

	var (
		backend classify.ZeroShot
		closer  func()
	)
	switch strings.ToLower(cc.Provider) {
	case "", "gliner2", "fastino":
		// A local service never receives the API key.
		gc := gliner2.Config{
			Provider: gliner2.ProviderLocal,
			Local:    &gliner2.LocalConfig{Endpoint: cc.Endpoint, Timeout: timeout},
		}
		if strings.EqualFold(cc.Provider, "fastino") {
			if cc.APIKey == "" {
				return nil, nil, fmt.Errorf("fastino classifier requires nlp.classifier.api_key or FASTINO_API_KEY")
			}
			gc = gliner2.Config{
				Provider: gliner2.ProviderFastino,
				Fastino:  &gliner2.FastinoConfig{Endpoint: cc.Endpoint, APIKey: cc.APIKey, Timeout: timeout},
			}
		}
		c, err := gliner2.NewHTTPClient(gc)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create GLiNER2 client: %w", err)
		}
		if err := c.Health(ctx); err != nil {
			logger.WarnContext(ctx, "GLiNER2 service is not healthy", "endpoint", cc.Endpoint, "error", err)
		}
		backend = classify.NewGLiNER2Backend(c, cc.Threshold)
		closer = func() { c.Close() }
	case "openai":
		temperature := cc.Temperature
		maxTokens := cc.MaxTokens
		c, err := nlp.NewOpenAIClient(cc.APIKey, nlp.Config{
			Model:       cc.Model,
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
			BaseURL:     cc.BaseURL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		logger.DebugContext(ctx, "Using LLM topic classifier", "model", c.Model())
		backend = classify.NewLLMBackend(c)
		closer = func() { c.Close() }
	default:
		return nil, nil, fmt.Errorf("unknown classifier provider %q", cc.Provider)
	}

	if cfg.CircuitBreaker.Enabled {
		backend = classify.NewCircuitBreaker(backend, cfg.CircuitBreaker, alerter, "topic-classifier", logger)
	}
	return classify.NewTopicClassifier(backend, cfg.Ingest.MaxClassifyChars), closer, nil
}
