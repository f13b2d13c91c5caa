package services

import (
	"context"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-lookup/internal/models"
	"go.uber.org/zap"
)

type WeatherClient interface {
	GetCurrentWeather(ctx context.Context, q models.LocationQuery) (*models.CurrentWeather, error)
	GetForecast(ctx context.Context, q models.LocationQuery, days int) (*models.ForecastSummary, error)
	SearchCities(ctx context.Context, query string) ([]models.CityMatch, error)
}

// WeatherState is a copy of the store's fields at one point in time.
type WeatherState struct {
	CurrentWeather *models.CurrentWeather  `json:"current_weather"`
	Forecast       *models.ForecastSummary `json:"forecast"`
	Loading        bool                    `json:"loading"`
	Error          string                  `json:"error,omitempty"`
	LastUpdated    *time.Time              `json:"last_updated,omitempty"`
}

func (s WeatherState) HasWeatherData() bool {
	return s.CurrentWeather != nil
}

// WeatherStore holds the last fetched snapshot. A failed fetch records its
// message and leaves the previous snapshot in place. Fetches are not
// cancelled by newer ones; whichever completes last wins.
type WeatherStore struct {
	client WeatherClient
	logger *zap.Logger
	days   int
	now    func() time.Time

	mu          sync.RWMutex
	current     *models.CurrentWeather
	forecast    *models.ForecastSummary
	inFlight    int
	lastErr     string
	lastUpdated time.Time
}

func NewWeatherStore(client WeatherClient, forecastDays int, logger *zap.Logger) *WeatherStore {
	return &WeatherStore{
		client: client,
		logger: logger,
		days:   forecastDays,
		now:    time.Now,
	}
}

func (w *WeatherStore) FetchWeatherByCity(ctx context.Context, city string) error {
	return w.fetch(ctx, models.CityQuery(city))
}

func (w *WeatherStore) FetchWeatherByCoords(ctx context.Context, lat, lon float64) error {
	return w.fetch(ctx, models.CoordsQuery(lat, lon))
}

// RefreshWeather refetches the city of the current snapshot. It does nothing
// when no snapshot exists.
func (w *WeatherStore) RefreshWeather(ctx context.Context) error {
	w.mu.RLock()
	current := w.current
	w.mu.RUnlock()

	if current == nil {
		w.logger.Debug("Refresh skipped, no weather data")
		return nil
	}
	return w.FetchWeatherByCity(ctx, current.City)
}

func (w *WeatherStore) SearchCities(ctx context.Context, query string) ([]models.CityMatch, error) {
	return w.client.SearchCities(ctx, query)
}

func (w *WeatherStore) fetch(ctx context.Context, q models.LocationQuery) error {
	w.mu.Lock()
	w.inFlight++
	w.lastErr = ""
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.inFlight--
		w.mu.Unlock()
	}()

	startTime := time.Now()

	var (
		wg          sync.WaitGroup
		current     *models.CurrentWeather
		forecast    *models.ForecastSummary
		currentErr  error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		current, currentErr = w.client.GetCurrentWeather(ctx, q)
	}()
	go func() {
		defer wg.Done()
		forecast, forecastErr = w.client.GetForecast(ctx, q, w.days)
	}()
	wg.Wait()

	err := currentErr
	if err == nil {
		err = forecastErr
	}
	if err != nil {
		w.mu.Lock()
		w.lastErr = err.Error()
		w.mu.Unlock()

		w.logger.Error("Fetch weather failed",
			zap.String("city", q.City),
			zap.Bool("by_coords", q.Coords != nil),
			zap.Error(err))
		return err
	}

	w.mu.Lock()
	w.current = current
	w.forecast = forecast
	w.lastUpdated = w.now()
	w.mu.Unlock()

	w.logger.Info("Weather fetch completed",
		zap.String("city", current.City),
		zap.Int("forecast_days", len(forecast.Forecasts)),
		zap.Duration("duration", time.Since(startTime)))
	return nil
}

func (w *WeatherStore) ClearWeather() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current = nil
	w.forecast = nil
	w.lastErr = ""
	w.lastUpdated = time.Time{}
}

func (w *WeatherStore) ClearError() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastErr = ""
}

func (w *WeatherStore) State() WeatherState {
	w.mu.RLock()
	defer w.mu.RUnlock()

	state := WeatherState{
		CurrentWeather: w.current,
		Forecast:       w.forecast,
		Loading:        w.inFlight > 0,
		Error:          w.lastErr,
	}
	if !w.lastUpdated.IsZero() {
		t := w.lastUpdated
		state.LastUpdated = &t
	}
	return state
}
