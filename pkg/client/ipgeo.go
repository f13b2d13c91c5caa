package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const DefaultGeolocationURL = "http://ip-api.com/json"

type PositionErrorCode int

const (
	PositionPermissionDenied PositionErrorCode = 1
	PositionUnavailable      PositionErrorCode = 2
	PositionTimeout          PositionErrorCode = 3
)

type PositionError struct {
	Code PositionErrorCode
	Err  error
}

func (e *PositionError) Error() string {
	switch e.Code {
	case PositionPermissionDenied:
		return "position permission denied"
	case PositionUnavailable:
		return "position unavailable"
	case PositionTimeout:
		return "position request timed out"
	default:
		return fmt.Sprintf("position error %d", e.Code)
	}
}

func (e *PositionError) Unwrap() error {
	return e.Err
}

type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

type Position struct {
	Lat       float64
	Lon       float64
	Accuracy  float64 // meters
	Timestamp time.Time
}

type IPLocatorSettings struct {
	Enabled  bool
	URL      string
	Accuracy float64
}

// IPLocator resolves the host's approximate position from its public IP.
// HighAccuracy cannot be honoured by this source and is ignored.
type IPLocator struct {
	*BaseClient
	settings  IPLocatorSettings
	positions *cache.Cache
	logger    *zap.Logger
	now       func() time.Time
}

const positionCacheKey = "position"

func NewIPLocator(settings IPLocatorSettings, config ClientConfig, logger *zap.Logger) *IPLocator {
	if settings.URL == "" {
		settings.URL = DefaultGeolocationURL
	}
	if settings.Accuracy <= 0 {
		settings.Accuracy = 5000
	}
	return &IPLocator{
		BaseClient: NewBaseClient("geolocation", config, logger),
		settings:   settings,
		positions:  cache.New(cache.NoExpiration, 10*time.Minute),
		logger:     logger,
		now:        time.Now,
	}
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (l *IPLocator) CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error) {
	if !l.settings.Enabled {
		return Position{}, &PositionError{Code: PositionPermissionDenied}
	}

	if opts.MaximumAge > 0 {
		if cached, ok := l.positions.Get(positionCacheKey); ok {
			pos := cached.(Position)
			if l.now().Sub(pos.Timestamp) <= opts.MaximumAge {
				l.logger.Debug("Using cached position", zap.Time("timestamp", pos.Timestamp))
				return pos, nil
			}
		}
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	data, err := l.Get(ctx, l.settings.URL, map[string]string{"fields": "status,message,lat,lon"})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Position{}, &PositionError{Code: PositionTimeout, Err: err}
		}
		return Position{}, &PositionError{Code: PositionUnavailable, Err: err}
	}

	var resp ipAPIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Position{}, &PositionError{Code: PositionUnavailable, Err: fmt.Errorf("failed to parse geolocation response: %w", err)}
	}
	if resp.Status != "success" {
		return Position{}, &PositionError{Code: PositionUnavailable, Err: fmt.Errorf("geolocation lookup failed: %s", resp.Message)}
	}

	pos := Position{
		Lat:       resp.Lat,
		Lon:       resp.Lon,
		Accuracy:  l.settings.Accuracy,
		Timestamp: l.now(),
	}
	if opts.MaximumAge > 0 {
		l.positions.Set(positionCacheKey, pos, opts.MaximumAge)
	}
	return pos, nil
}
