package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bobby-s-dev/weather-lookup/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
	DefaultGeoURL  = "https://api.openweathermap.org/geo/1.0"

	searchLimit = 5
)

// cityAliases maps local display names to queries the provider resolves
// unambiguously. Anything not listed is sent as typed.
var cityAliases = map[string]string{
	"台北":        "Taipei,TW",
	"Taipei":    "Taipei,TW",
	"高雄":        "Kaohsiung,TW",
	"Kaohsiung": "Kaohsiung,TW",
}

// ResolveCityQuery rewrites the few city names that need a country suffix.
func ResolveCityQuery(name string) string {
	if q, ok := cityAliases[name]; ok {
		return q
	}
	return name
}

type OpenWeatherSettings struct {
	APIKey   string
	BaseURL  string
	GeoURL   string
	Units    string
	Lang     string
	Location *time.Location // calendar used for day bucketing
}

type OpenWeatherClient struct {
	*BaseClient
	apiKey   string
	baseURL  string
	geoURL   string
	units    string
	lang     string
	location *time.Location
	now      func() time.Time
}

func NewOpenWeatherClient(settings OpenWeatherSettings, config ClientConfig, logger *zap.Logger) *OpenWeatherClient {
	c := &OpenWeatherClient{
		BaseClient: NewBaseClient("openweather", config, logger),
		apiKey:     settings.APIKey,
		baseURL:    strings.TrimRight(settings.BaseURL, "/"),
		geoURL:     strings.TrimRight(settings.GeoURL, "/"),
		units:      settings.Units,
		lang:       settings.Lang,
		location:   settings.Location,
		now:        time.Now,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.geoURL == "" {
		c.geoURL = DefaultGeoURL
	}
	if c.units == "" {
		c.units = "metric"
	}
	if c.lang == "" {
		c.lang = "zh_tw"
	}
	if c.location == nil {
		c.location = time.Local
	}
	return c
}

func (c *OpenWeatherClient) weatherParams(q models.LocationQuery) map[string]string {
	params := map[string]string{
		"appid": c.apiKey,
		"units": c.units,
		"lang":  c.lang,
	}
	if q.Coords != nil {
		params["lat"] = strconv.FormatFloat(q.Coords.Lat, 'f', -1, 64)
		params["lon"] = strconv.FormatFloat(q.Coords.Lon, 'f', -1, 64)
	} else {
		params["q"] = ResolveCityQuery(q.City)
	}
	return params
}

func (c *OpenWeatherClient) GetCurrentWeather(ctx context.Context, q models.LocationQuery) (*models.CurrentWeather, error) {
	data, err := c.Get(ctx, c.baseURL+"/weather", c.weatherParams(q))
	if err != nil {
		return nil, err
	}

	var response OpenWeatherCurrentResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, &APIError{Kind: KindUnknown, Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	return NormalizeCurrent(&response, c.now()), nil
}

// GetForecast fetches the 5-day/3-hour feed and reduces it to one entry per day.
func (c *OpenWeatherClient) GetForecast(ctx context.Context, q models.LocationQuery, days int) (*models.ForecastSummary, error) {
	data, err := c.Get(ctx, c.baseURL+"/forecast", c.weatherParams(q))
	if err != nil {
		return nil, err
	}

	var response OpenWeatherForecastResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, &APIError{Kind: KindUnknown, Err: fmt.Errorf("failed to parse forecast response: %w", err)}
	}

	return NormalizeForecast(&response, days, c.location), nil
}

// SearchCities asks the geocoding endpoint for up to five matches.
func (c *OpenWeatherClient) SearchCities(ctx context.Context, query string) ([]models.CityMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.CityMatch{}, nil
	}

	data, err := c.Get(ctx, c.geoURL+"/direct", map[string]string{
		"q":     query,
		"limit": strconv.Itoa(searchLimit),
		"appid": c.apiKey,
	})
	if err != nil {
		return nil, err
	}

	var entries []geoDirectEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &APIError{Kind: KindUnknown, Err: fmt.Errorf("failed to parse geocoding response: %w", err)}
	}
	if len(entries) > searchLimit {
		entries = entries[:searchLimit]
	}

	return normalizeCityMatches(entries), nil
}
