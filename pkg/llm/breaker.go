package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the circuit breaker around a chat client.
// Interval and Timeout are in seconds.
type BreakerConfig struct {
	Enabled          bool
	MaxRequests      uint32
	Interval         int
	Timeout          int
	ReadyToTripRatio float64
}

// DefaultBreakerConfig returns the settings used when none are configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         60,
		Timeout:          30,
		ReadyToTripRatio: 0.6,
	}
}

// BreakerClient wraps a Client with a circuit breaker so a failing
// model endpoint stops eating the per-query reasoning budget. While the
// breaker is open Chat fails immediately and the caller falls back to
// the non-reasoning strategies.
type BreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker
}

// NewBreakerClient wraps client. A disabled config returns the client
// unchanged.
func NewBreakerClient(client Client, cfg BreakerConfig, logger *slog.Logger) Client {
	if !cfg.Enabled {
		return client
	}
	if logger == nil {
		logger = slog.Default()
	}

	st := gobreaker.Settings{
		Name:        "llm-chat",
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"name", name, "from", from.String(), "to", to.String())
		},
	}

	return &BreakerClient{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(st),
	}
}

// Chat implements Client.
func (c *BreakerClient) Chat(ctx context.Context, messages []Message) (*Response, error) {
	resp, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.Chat(ctx, messages)
	})
	if err != nil {
		return nil, err
	}
	return resp.(*Response), nil
}
