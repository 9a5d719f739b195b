package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"terraai/internal/domain"
	domainllm "terraai/internal/domain/services/llm"
	"terraai/internal/metrics"
	"terraai/internal/service/llm/providers/groq"
)

// GatewayConfig holds the request settings shared by every generation.
type GatewayConfig struct {
	Model       string
	System      string
	Temperature float64
	MaxTokens   int
	HistorySize int
	Timeout     time.Duration // caps one generation; zero means no cap
}

// Gateway sends prompts with recent history to a provider and guards
// stream start with a circuit breaker.
type Gateway struct {
	provider domainllm.Provider
	cfg      GatewayConfig
	breaker  *gobreaker.CircuitBreaker[<-chan domainllm.StreamChunk]
	logger   *slog.Logger
}

// NewGateway creates a gateway for one provider.
func NewGateway(provider domainllm.Provider, cfg GatewayConfig, logger *slog.Logger) *Gateway {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 4
	}

	name := "llm-" + provider.Name()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	breaker := gobreaker.NewCircuitBreaker[<-chan domainllm.StreamChunk](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellations and a missing key say nothing about upstream health.
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, groq.ErrMissingAPIKey)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("llm circuit breaker state change",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Gateway{
		provider: provider,
		cfg:      cfg,
		breaker:  breaker,
		logger:   logger,
	}
}

// ProviderName returns the name of the underlying provider.
func (g *Gateway) ProviderName() string { return g.provider.Name() }

// Model returns the model sent with every request.
func (g *Gateway) Model() string { return g.cfg.Model }

// Stream starts a completion for history, which must already end with the
// user prompt. Only the last HistorySize messages are sent.
func (g *Gateway) Stream(ctx context.Context, history History) (<-chan domainllm.StreamChunk, error) {
	cancel := context.CancelFunc(func() {})
	if g.cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
	}

	req := &domainllm.GenerateRequest{
		Model:       g.cfg.Model,
		System:      g.cfg.System,
		Messages:    history.Recent(g.cfg.HistorySize),
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	}

	ch, err := g.breaker.Execute(func() (<-chan domainllm.StreamChunk, error) {
		return g.provider.StreamResponse(ctx, req)
	})
	if err != nil {
		cancel()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			g.logger.Warn("llm request rejected by circuit breaker", "provider", g.provider.Name())
			return nil, &domain.GenerationError{Cause: fmt.Errorf("%w: upstream temporarily disabled", domain.ErrServiceUnavailable)}
		}
		return nil, &domain.GenerationError{Cause: err}
	}

	if g.cfg.Timeout <= 0 {
		return ch, nil
	}
	return g.relay(ctx, cancel, ch), nil
}

// relay forwards in until it closes and releases the deadline afterwards.
// Providers close quietly when their context ends, so a stream cut by the
// deadline gets an explicit error chunk instead of passing for a complete
// answer.
func (g *Gateway) relay(ctx context.Context, cancel context.CancelFunc, in <-chan domainllm.StreamChunk) <-chan domainllm.StreamChunk {
	out := make(chan domainllm.StreamChunk)
	go func() {
		defer close(out)
		defer cancel()

	forward:
		for c := range in {
			select {
			case out <- c:
			case <-ctx.Done():
				go drain(in)
				break forward
			}
		}

		if errors.Is(context.Cause(ctx), context.DeadlineExceeded) {
			g.logger.Warn("llm stream exceeded its deadline", "provider", g.provider.Name(), "timeout", g.cfg.Timeout)
			cause := fmt.Errorf("generation took longer than %s: %w", g.cfg.Timeout, context.DeadlineExceeded)
			select {
			case out <- domainllm.StreamChunk{Err: &domain.GenerationError{Cause: cause}}:
			case <-time.After(time.Second):
			}
		}
	}()
	return out
}

func drain(ch <-chan domainllm.StreamChunk) {
	for range ch {
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
