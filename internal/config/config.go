package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
	}

	WeatherAPI struct {
		OpenWeatherAPIKey string
		BaseURL           string
		GeoURL            string
		Units             string
		Lang              string
		Timeout           time.Duration
		ForecastDays      int
		ForecastTimezone  *time.Location
	}

	RateLimit struct {
		RPS   float64
		Burst int
	}

	CircuitBreaker struct {
		Threshold int
		Timeout   time.Duration
	}

	Storage struct {
		Path string
	}

	Geolocation struct {
		Enabled  bool
		URL      string
		Accuracy float64
	}

	Scheduler struct {
		RefreshSchedule string
		DefaultCity     string
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	cfg.Server.Port = getEnv("FIBER_PORT", "8080")
	cfg.Server.ReadTimeout = parseDuration(getEnv("FIBER_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("FIBER_WRITE_TIMEOUT", "10s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	cfg.WeatherAPI.OpenWeatherAPIKey = getEnv("OPENWEATHER_API_KEY", "")
	cfg.WeatherAPI.BaseURL = getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5")
	cfg.WeatherAPI.GeoURL = getEnv("OPENWEATHER_GEO_URL", "https://api.openweathermap.org/geo/1.0")
	cfg.WeatherAPI.Units = getEnv("WEATHER_UNITS", "metric")
	cfg.WeatherAPI.Lang = getEnv("WEATHER_LANG", "zh_tw")
	cfg.WeatherAPI.Timeout = parseDuration(getEnv("HTTP_TIMEOUT", "10s"))
	cfg.WeatherAPI.ForecastDays = parseInt(getEnv("FORECAST_DAYS", "5"))

	tz := getEnv("FORECAST_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid FORECAST_TIMEZONE %q: %w", tz, err)
	}
	cfg.WeatherAPI.ForecastTimezone = loc

	cfg.RateLimit.RPS = parseFloat(getEnv("RATE_LIMIT_RPS", "0"))
	cfg.RateLimit.Burst = parseInt(getEnv("RATE_LIMIT_BURST", "2"))

	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "5"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	cfg.Storage.Path = getEnv("STORAGE_PATH", "weather-app.db")

	cfg.Geolocation.Enabled = parseBool(getEnv("GEOLOCATION_ENABLED", "true"))
	cfg.Geolocation.URL = getEnv("GEOLOCATION_URL", "http://ip-api.com/json")
	cfg.Geolocation.Accuracy = parseFloat(getEnv("GEOLOCATION_ACCURACY", "5000"))

	cfg.Scheduler.RefreshSchedule = strings.TrimSpace(getEnv("REFRESH_SCHEDULE", ""))
	cfg.Scheduler.DefaultCity = strings.TrimSpace(getEnv("DEFAULT_CITY", ""))

	if cfg.WeatherAPI.OpenWeatherAPIKey == "" {
		zap.L().Warn("OPENWEATHER_API_KEY is not set, provider calls will be rejected")
	}

	return cfg, nil
}

// ParseLogLevel maps LOG_LEVEL to a zap level, defaulting to info.
func ParseLogLevel(value string) zap.AtomicLevel {
	level, err := zap.ParseAtomicLevel(strings.ToLower(value))
	if err != nil {
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseFloat(value string) float64 {
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Warn("Failed to parse float", zap.String("value", value), zap.Error(err))
		return 0
	}
	return floatValue
}

func parseBool(value string) bool {
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		zap.L().Warn("Failed to parse bool", zap.String("value", value), zap.Error(err))
		return false
	}
	return boolValue
}
