package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-lookup/internal/models"
	"github.com/bobby-s-dev/weather-lookup/pkg/client"
	"go.uber.org/zap"
)

type Positioner interface {
	CurrentPosition(ctx context.Context, opts client.PositionOptions) (client.Position, error)
}

var DefaultPositionOptions = client.PositionOptions{
	HighAccuracy: true,
	Timeout:      10 * time.Second,
	MaximumAge:   5 * time.Minute,
}

type LocationErrorKind int

const (
	LocationUnknownError LocationErrorKind = iota
	LocationPermissionDenied
	LocationPositionUnavailable
	LocationTimeout
	LocationUnsupported
)

func (k LocationErrorKind) Message() string {
	switch k {
	case LocationPermissionDenied:
		return "您拒絕了地理定位權限請求"
	case LocationPositionUnavailable:
		return "無法獲取您的位置資訊"
	case LocationTimeout:
		return "定位請求超時，請重試"
	case LocationUnsupported:
		return "此裝置不支援地理定位功能"
	default:
		return "獲取位置時發生錯誤"
	}
}

type LocationError struct {
	Kind LocationErrorKind
	Err  error
}

func (e *LocationError) Error() string {
	return e.Kind.Message()
}

func (e *LocationError) Unwrap() error {
	return e.Err
}

func locationErrorFrom(err error) *LocationError {
	var posErr *client.PositionError
	if !errors.As(err, &posErr) {
		return &LocationError{Kind: LocationUnknownError, Err: err}
	}
	switch posErr.Code {
	case client.PositionPermissionDenied:
		return &LocationError{Kind: LocationPermissionDenied, Err: err}
	case client.PositionUnavailable:
		return &LocationError{Kind: LocationPositionUnavailable, Err: err}
	case client.PositionTimeout:
		return &LocationError{Kind: LocationTimeout, Err: err}
	default:
		return &LocationError{Kind: LocationUnknownError, Err: err}
	}
}

type LocationState struct {
	UserLocation *models.UserLocation   `json:"user_location"`
	Error        string                 `json:"error,omitempty"`
	InProgress   bool                   `json:"in_progress"`
	Permission   models.PermissionState `json:"permission"`
}

func (s LocationState) HasLocation() bool {
	return s.UserLocation != nil
}

// LocationStore wraps a Positioner and remembers the last position and the
// permission outcome. Concurrent calls are not merged.
type LocationStore struct {
	positioner Positioner
	options    client.PositionOptions
	logger     *zap.Logger
	now        func() time.Time

	mu         sync.RWMutex
	location   *models.UserLocation
	lastErr    string
	inProgress bool
	permission models.PermissionState
}

// NewLocationStore accepts a nil positioner, in which case every request
// fails as unsupported.
func NewLocationStore(positioner Positioner, logger *zap.Logger) *LocationStore {
	return &LocationStore{
		positioner: positioner,
		options:    DefaultPositionOptions,
		logger:     logger,
		now:        time.Now,
		permission: models.PermissionUnknown,
	}
}

func (l *LocationStore) GetCurrentLocation(ctx context.Context) (models.UserLocation, error) {
	if l.positioner == nil {
		locErr := &LocationError{Kind: LocationUnsupported}
		l.mu.Lock()
		l.lastErr = locErr.Error()
		l.mu.Unlock()
		return models.UserLocation{}, locErr
	}

	l.mu.Lock()
	l.inProgress = true
	l.lastErr = ""
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.inProgress = false
		l.mu.Unlock()
	}()

	pos, err := l.positioner.CurrentPosition(ctx, l.options)
	if err != nil {
		locErr := locationErrorFrom(err)

		l.mu.Lock()
		l.lastErr = locErr.Error()
		if locErr.Kind == LocationPermissionDenied {
			l.permission = models.PermissionDenied
		}
		l.mu.Unlock()

		l.logger.Warn("Get location failed", zap.Error(err))
		return models.UserLocation{}, locErr
	}

	loc := models.UserLocation{
		Lat:       pos.Lat,
		Lon:       pos.Lon,
		Accuracy:  pos.Accuracy,
		Timestamp: l.now(),
	}

	l.mu.Lock()
	l.location = &loc
	l.permission = models.PermissionGranted
	l.mu.Unlock()

	l.logger.Info("Location acquired",
		zap.Float64("lat", loc.Lat),
		zap.Float64("lon", loc.Lon),
		zap.Float64("accuracy", loc.Accuracy))
	return loc, nil
}

func (l *LocationStore) ClearLocation() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.location = nil
	l.lastErr = ""
}

func (l *LocationStore) State() LocationState {
	l.mu.RLock()
	defer l.mu.RUnlock()

	state := LocationState{
		Error:      l.lastErr,
		InProgress: l.inProgress,
		Permission: l.permission,
	}
	if l.location != nil {
		loc := *l.location
		state.UserLocation = &loc
	}
	return state
}
