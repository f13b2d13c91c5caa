package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type BaseClient struct {
	http           *resty.Client
	logger         *zap.Logger
	circuitBreaker *gobreaker.CircuitBreaker
	limiter        *rate.Limiter
}

type ClientConfig struct {
	Timeout        time.Duration
	Threshold      int
	BreakerTimeout time.Duration
	RateLimit      float64 // requests per second, 0 disables throttling
	RateBurst      int
}

func NewBaseClient(name string, config ClientConfig, logger *zap.Logger) *BaseClient {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	threshold := uint32(5)
	if config.Threshold > 0 {
		threshold = uint32(config.Threshold)
	}

	httpClient := resty.New().
		SetTimeout(config.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug("API request",
			zap.String("client", name),
			zap.String("url", req.URL))
		return nil
	})
	httpClient.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("API response",
			zap.String("client", name),
			zap.String("url", resp.Request.URL),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("duration", resp.Time()),
			zap.Int("body_size", len(resp.Body())))
		return nil
	})

	// Only upstream outages trip the breaker; a wrong city name or key must not.
	breakerSettings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			kind := KindOf(err)
			return kind != KindServiceUnavailable && kind != KindNetworkFailure
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				zap.String("client", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		burst := config.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}

	return &BaseClient{
		http:           httpClient,
		logger:         logger,
		circuitBreaker: gobreaker.NewCircuitBreaker(breakerSettings),
		limiter:        limiter,
	}
}

// Get issues a single GET and returns the body of a 2xx response.
// Any failure comes back as *APIError. There are no retries.
func (c *BaseClient) Get(ctx context.Context, rawURL string, params map[string]string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &APIError{Kind: KindUnknown, Err: fmt.Errorf("rate limit wait canceled: %w", err)}
		}
	}

	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.get(ctx, rawURL, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &APIError{Kind: KindServiceUnavailable, Err: err}
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			apiErr = &APIError{Kind: KindUnknown, Err: err}
		}
		c.logger.Warn("API request failed",
			zap.String("url", rawURL),
			zap.String("kind", apiErr.Kind.String()),
			zap.String("detail", apiErr.Detail()))
		return nil, apiErr
	}

	return result.([]byte), nil
}

func (c *BaseClient) get(ctx context.Context, rawURL string, params map[string]string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(rawURL)
	if err != nil {
		return nil, classifyRequestError(err)
	}

	if !resp.IsSuccess() {
		return nil, &APIError{
			Kind:       kindForStatus(resp.StatusCode()),
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("HTTP %d: %s", resp.StatusCode(), truncate(resp.String(), 200)),
		}
	}

	return resp.Body(), nil
}

// classifyRequestError separates "sent but never answered" from failures
// that happened before anything went on the wire.
func classifyRequestError(err error) *APIError {
	if errors.Is(err, context.Canceled) {
		return &APIError{Kind: KindUnknown, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Op != "parse" {
		return &APIError{Kind: KindNetworkFailure, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Kind: KindNetworkFailure, Err: err}
	}
	return &APIError{Kind: KindUnknown, Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
