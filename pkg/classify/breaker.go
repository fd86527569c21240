package classify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/soundprediction/reviewgraph/pkg/alert"
	"github.com/soundprediction/reviewgraph/pkg/config"
)

// CircuitBreaker wraps a ZeroShot backend. Once open, batches fail fast
// with gobreaker.ErrOpenState without reaching the backend. It never retries.
type CircuitBreaker struct {
	backend ZeroShot
	cb      *gobreaker.CircuitBreaker
}

// NewCircuitBreaker wraps backend with the configured breaker settings.
// alerter, when non-nil, is notified each time the breaker opens.
func NewCircuitBreaker(backend ZeroShot, cfg config.CircuitBreakerConfig, alerter alert.Alerter, name string, logger *slog.Logger) *CircuitBreaker {
	if logger == nil {
		logger = slog.Default()
	}
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logger.Error("Circuit breaker tripped", "name", name, "from", from.String(), "to", to.String())
				if alerter != nil {
					msg := fmt.Sprintf("Circuit breaker %q changed from %s to %s. Topic classification batches will be dropped until it recovers.", name, from, to)
					if err := alerter.Alert("Circuit breaker tripped: "+name, msg); err != nil {
						logger.Warn("Failed to send alert", "name", name, "error", err)
					}
				}
				return
			}
			logger.Info("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &CircuitBreaker{
		backend: backend,
		cb:      gobreaker.NewCircuitBreaker(st),
	}
}

// Classify implements ZeroShot.
func (c *CircuitBreaker) Classify(ctx context.Context, texts []string, candidates []string) ([]Ranking, error) {
	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.backend.Classify(ctx, texts, candidates)
	})
	if err != nil {
		return nil, err
	}
	return out.([]Ranking), nil
}

// State reports the breaker state.
func (c *CircuitBreaker) State() gobreaker.State {
	return c.cb.State()
}
