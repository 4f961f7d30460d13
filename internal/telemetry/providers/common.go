package providers

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/i474232898/telemetry-gateway/internal/common"
	"github.com/i474232898/telemetry-gateway/internal/metrics"
	"github.com/i474232898/telemetry-gateway/internal/telemetry"
)

// maxBodyBytes bounds how much of an upstream body is read.
const maxBodyBytes = 1 << 20

// BreakerConfig controls the circuit breaker guarding provider calls.
// A FailureThreshold <= 0 disables the breaker.
type BreakerConfig struct {
	FailureThreshold int
	OpenTimeout      time.Duration
}

var errNoHTTPClient = errors.New("http client not configured")

// NewHTTPClient returns the client used for outbound provider calls.
// Its transport is instrumented so trace context propagates upstream.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func newCircuitBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		return nil
	}
	threshold := uint32(cfg.FailureThreshold)
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}

// doRequest executes a single request through the circuit breaker. Only
// transport failures count against the breaker; any HTTP response, whatever
// its status, is handed back to the caller. There are no retries.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	req *http.Request,
) (*http.Response, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}

	// Ensure the request obeys context cancellation.
	req = req.WithContext(ctx)

	if cb == nil {
		return client.Do(req)
	}

	result, err := cb.Execute(func() (interface{}, error) {
		return client.Do(req)
	})
	if err != nil {
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, errors.New("unexpected result type from circuit breaker")
	}
	return resp, nil
}

// outcome labels a provider call for metrics.
func outcome(err error) string {
	var statusErr *telemetry.StatusError
	var netErr net.Error

	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &statusErr):
		return metrics.OutcomeStatus
	case errors.Is(err, telemetry.ErrContractViolation):
		return metrics.OutcomeContract
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return metrics.OutcomeBreakerOpen
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return metrics.OutcomeTimeout
	case common.HasAny(err.Error(), "connection refused", "no such host", "unsupported protocol scheme"):
		return metrics.OutcomeUnreachable
	default:
		return metrics.OutcomeError
	}
}
