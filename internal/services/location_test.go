package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bobby-s-dev/weather-lookup/internal/models"
	"github.com/bobby-s-dev/weather-lookup/pkg/client"
	"go.uber.org/zap/zaptest"
)

type fakePositioner struct {
	pos  client.Position
	err  error
	opts client.PositionOptions
}

func (f *fakePositioner) CurrentPosition(ctx context.Context, opts client.PositionOptions) (client.Position, error) {
	f.opts = opts
	return f.pos, f.err
}

func TestGetCurrentLocation(t *testing.T) {
	fake := &fakePositioner{pos: client.Position{Lat: 25.05, Lon: 121.53, Accuracy: 5000}}
	l := NewLocationStore(fake, zaptest.NewLogger(t))
	l.now = func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) }

	loc, err := l.GetCurrentLocation(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Lat != 25.05 || loc.Lon != 121.53 || loc.Accuracy != 5000 {
		t.Errorf("unexpected location %+v", loc)
	}

	if !fake.opts.HighAccuracy || fake.opts.Timeout != 10*time.Second || fake.opts.MaximumAge != 5*time.Minute {
		t.Errorf("unexpected position options %+v", fake.opts)
	}

	state := l.State()
	if !state.HasLocation() || state.Permission != models.PermissionGranted || state.InProgress {
		t.Errorf("unexpected state %+v", state)
	}
}

func TestGetCurrentLocationErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		kind       LocationErrorKind
		message    string
		permission models.PermissionState
	}{
		{"denied", &client.PositionError{Code: client.PositionPermissionDenied}, LocationPermissionDenied, "您拒絕了地理定位權限請求", models.PermissionDenied},
		{"unavailable", &client.PositionError{Code: client.PositionUnavailable}, LocationPositionUnavailable, "無法獲取您的位置資訊", models.PermissionUnknown},
		{"timeout", &client.PositionError{Code: client.PositionTimeout}, LocationTimeout, "定位請求超時，請重試", models.PermissionUnknown},
		{"other", errors.New("boom"), LocationUnknownError, "獲取位置時發生錯誤", models.PermissionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLocationStore(&fakePositioner{err: tt.err}, zaptest.NewLogger(t))

			_, err := l.GetCurrentLocation(context.Background())
			var locErr *LocationError
			if !errors.As(err, &locErr) || locErr.Kind != tt.kind {
				t.Fatalf("expected kind %d, got %v", tt.kind, err)
			}
			if err.Error() != tt.message {
				t.Errorf("expected %q, got %q", tt.message, err.Error())
			}

			state := l.State()
			if state.Error != tt.message || state.Permission != tt.permission || state.HasLocation() {
				t.Errorf("unexpected state %+v", state)
			}
		})
	}
}

func TestGetCurrentLocationUnsupported(t *testing.T) {
	l := NewLocationStore(nil, zaptest.NewLogger(t))

	_, err := l.GetCurrentLocation(context.Background())
	var locErr *LocationError
	if !errors.As(err, &locErr) || locErr.Kind != LocationUnsupported {
		t.Fatalf("expected unsupported, got %v", err)
	}
	if l.State().Error != "此裝置不支援地理定位功能" {
		t.Errorf("unexpected state error %q", l.State().Error)
	}
}

func TestClearLocation(t *testing.T) {
	l := NewLocationStore(&fakePositioner{pos: client.Position{Lat: 1, Lon: 2}}, zaptest.NewLogger(t))
	l.GetCurrentLocation(context.Background())

	l.ClearLocation()
	state := l.State()
	if state.HasLocation() || state.Error != "" {
		t.Errorf("expected cleared location, got %+v", state)
	}
	if state.Permission != models.PermissionGranted {
		t.Errorf("expected permission to be kept, got %s", state.Permission)
	}
}
