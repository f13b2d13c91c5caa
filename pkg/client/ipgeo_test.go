package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func newTestLocator(t *testing.T, enabled bool, handler http.HandlerFunc) (*IPLocator, *int32) {
	t.Helper()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	l := NewIPLocator(IPLocatorSettings{
		Enabled: enabled,
		URL:     server.URL + "/json",
	}, ClientConfig{Timeout: 2 * time.Second}, zaptest.NewLogger(t))
	return l, &hits
}

func positionCode(err error) PositionErrorCode {
	var posErr *PositionError
	if errors.As(err, &posErr) {
		return posErr.Code
	}
	return 0
}

func TestCurrentPosition(t *testing.T) {
	l, _ := newTestLocator(t, true, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fields") != "status,message,lat,lon" {
			t.Errorf("unexpected fields %q", r.URL.Query().Get("fields"))
		}
		w.Write([]byte(`{"status": "success", "lat": 25.05, "lon": 121.53}`))
	})

	pos, err := l.CurrentPosition(context.Background(), PositionOptions{Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.Lat != 25.05 || pos.Lon != 121.53 {
		t.Errorf("unexpected position %+v", pos)
	}
	if pos.Accuracy != 5000 {
		t.Errorf("expected default accuracy 5000, got %v", pos.Accuracy)
	}
}

func TestCurrentPositionUsesMaximumAge(t *testing.T) {
	l, hits := newTestLocator(t, true, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "lat": 1, "lon": 2}`))
	})

	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	opts := PositionOptions{Timeout: time.Second, MaximumAge: 5 * time.Minute}

	if _, err := l.CurrentPosition(context.Background(), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	now = now.Add(4 * time.Minute)
	if _, err := l.CurrentPosition(context.Background(), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(hits) != 1 {
		t.Errorf("expected cached position within maximum age, got %d lookups", *hits)
	}

	now = now.Add(2 * time.Minute)
	if _, err := l.CurrentPosition(context.Background(), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(hits) != 2 {
		t.Errorf("expected a fresh lookup after maximum age, got %d lookups", *hits)
	}
}

func TestCurrentPositionDisabled(t *testing.T) {
	l, hits := newTestLocator(t, false, func(w http.ResponseWriter, r *http.Request) {})

	_, err := l.CurrentPosition(context.Background(), PositionOptions{})
	if positionCode(err) != PositionPermissionDenied {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Errorf("expected no lookup when disabled")
	}
}

func TestCurrentPositionTimeout(t *testing.T) {
	l, _ := newTestLocator(t, true, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	_, err := l.CurrentPosition(context.Background(), PositionOptions{Timeout: 50 * time.Millisecond})
	if positionCode(err) != PositionTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestCurrentPositionUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"failed status", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": "fail", "message": "reserved range"}`))
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLocator(t, true, tt.handler)

			_, err := l.CurrentPosition(context.Background(), PositionOptions{Timeout: time.Second})
			if positionCode(err) != PositionUnavailable {
				t.Fatalf("expected unavailable, got %v", err)
			}
		})
	}
}
