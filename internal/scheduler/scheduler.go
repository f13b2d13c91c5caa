package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher is the part of the weather store the scheduler drives.
type Refresher interface {
	FetchWeatherByCity(ctx context.Context, city string) error
	RefreshWeather(ctx context.Context) error
}

// Scheduler refreshes the current weather snapshot on a cron schedule and
// optionally loads a default city once at start.
type Scheduler struct {
	weather     Refresher
	logger      *zap.Logger
	cron        *cron.Cron
	schedule    string
	defaultCity string
	timeout     time.Duration

	mu      sync.Mutex
	running bool
	entryID cron.EntryID
	lastRun time.Time
}

func NewScheduler(weather Refresher, schedule, defaultCity string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		weather:     weather,
		logger:      logger,
		cron:        cron.New(),
		schedule:    schedule,
		defaultCity: defaultCity,
		timeout:     30 * time.Second,
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if s.defaultCity != "" {
		go s.loadDefaultCity()
	}

	if s.schedule == "" {
		s.logger.Info("Refresh schedule not configured, scheduler idle")
		s.running = true
		return nil
	}

	id, err := s.cron.AddFunc(s.schedule, s.runRefresh)
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.schedule, err)
	}
	s.entryID = id
	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started",
		zap.String("schedule", s.schedule),
		zap.Time("next_run", s.cron.Entry(id).Next))
	return nil
}

func (s *Scheduler) loadDefaultCity() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.weather.FetchWeatherByCity(ctx, s.defaultCity); err != nil {
		s.logger.Warn("Default city fetch failed",
			zap.String("city", s.defaultCity),
			zap.Error(err))
	}
}

func (s *Scheduler) runRefresh() {
	s.mu.Lock()
	s.lastRun = time.Now()
	s.mu.Unlock()

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.weather.RefreshWeather(ctx); err != nil {
		s.logger.Error("Scheduled weather refresh failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)))
		return
	}
	s.logger.Info("Scheduled weather refresh completed",
		zap.Duration("duration", time.Since(startTime)))
}

// Stop halts the schedule and waits for a running refresh to finish. The
// wait happens without mu held since runRefresh takes it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.logger.Info("Stopping scheduler")
	done := s.cron.Stop()
	s.mu.Unlock()

	<-done.Done()
}

func (s *Scheduler) ForceRun() {
	s.logger.Info("Manually triggering weather refresh")
	go s.runRefresh()
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":      s.running,
		"schedule":     s.schedule,
		"default_city": s.defaultCity,
		"last_run":     s.lastRun,
	}
	if s.entryID != 0 {
		status["next_run"] = s.cron.Entry(s.entryID).Next
	}
	return status
}
