package client

import (
	"math"
	"time"

	"github.com/bobby-s-dev/weather-lookup/internal/models"
)

// DefaultForecastDays is used whenever a caller passes days <= 0.
const DefaultForecastDays = 5

type weatherCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type OpenWeatherCurrentResponse struct {
	Coord struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"coord"`
	Weather []weatherCondition `json:"weather"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Visibility int `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Dt  int64 `json:"dt"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int    `json:"timezone"`
	ID       int64  `json:"id"`
	Name     string `json:"name"`
}

// ForecastSample is one 3-hour entry of the forecast feed.
type ForecastSample struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []weatherCondition `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Pop   float64 `json:"pop"`
	DtTxt string  `json:"dt_txt"`
}

type OpenWeatherForecastResponse struct {
	Cnt  int              `json:"cnt"`
	List []ForecastSample `json:"list"`
	City struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Country string `json:"country"`
		Coord   struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Timezone int `json:"timezone"`
	} `json:"city"`
}

type geoDirectEntry struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func firstCondition(items []weatherCondition) weatherCondition {
	if len(items) == 0 {
		return weatherCondition{}
	}
	return items[0]
}

func round(v float64) int {
	return int(math.Round(v))
}

// NormalizeCurrent maps a current-conditions payload to the internal shape.
func NormalizeCurrent(data *OpenWeatherCurrentResponse, now time.Time) *models.CurrentWeather {
	cond := firstCondition(data.Weather)
	return &models.CurrentWeather{
		ID:            data.ID,
		City:          data.Name,
		Country:       data.Sys.Country,
		Temperature:   round(data.Main.Temp),
		FeelsLike:     round(data.Main.FeelsLike),
		Description:   cond.Description,
		Icon:          cond.Icon,
		Humidity:      data.Main.Humidity,
		Pressure:      data.Main.Pressure,
		WindSpeed:     data.Wind.Speed,
		WindDirection: data.Wind.Deg,
		Visibility:    data.Visibility,
		Cloudiness:    data.Clouds.All,
		Sunrise:       time.Unix(data.Sys.Sunrise, 0),
		Sunset:        time.Unix(data.Sys.Sunset, 0),
		Timezone:      data.Timezone,
		Coords: models.Coordinates{
			Lat: data.Coord.Lat,
			Lon: data.Coord.Lon,
		},
		UpdatedAt: now,
	}
}

// NormalizeForecast maps a forecast payload and buckets it into at most days entries.
func NormalizeForecast(data *OpenWeatherForecastResponse, days int, loc *time.Location) *models.ForecastSummary {
	return &models.ForecastSummary{
		City:      data.City.Name,
		Country:   data.City.Country,
		Forecasts: BucketDays(data.List, days, loc),
	}
}

// BucketDays keeps the first sample of every calendar date in loc, in feed
// order, and stops once days dates have been emitted. The per-day values are
// that one sample's values, not an aggregate over the day.
func BucketDays(samples []ForecastSample, days int, loc *time.Location) []models.DayForecast {
	if days <= 0 {
		days = DefaultForecastDays
	}
	if loc == nil {
		loc = time.Local
	}

	daily := make([]models.DayForecast, 0, days)
	seen := make(map[string]struct{}, days)

	for _, item := range samples {
		if len(daily) >= days {
			break
		}

		date := time.Unix(item.Dt, 0).In(loc)
		key := date.Format("2006-01-02")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		cond := firstCondition(item.Weather)
		daily = append(daily, models.DayForecast{
			Date: date,
			Temperature: models.TemperatureRange{
				Min: round(item.Main.TempMin),
				Max: round(item.Main.TempMax),
			},
			Description: cond.Description,
			Icon:        cond.Icon,
			Humidity:    item.Main.Humidity,
			WindSpeed:   item.Wind.Speed,
			Pop:         round(item.Pop * 100),
		})
	}

	return daily
}

func normalizeCityMatches(entries []geoDirectEntry) []models.CityMatch {
	matches := make([]models.CityMatch, 0, len(entries))
	for _, e := range entries {
		display := e.Name
		if e.State != "" {
			display += ", " + e.State
		}
		display += ", " + e.Country

		matches = append(matches, models.CityMatch{
			Name:        e.Name,
			Country:     e.Country,
			State:       e.State,
			Lat:         e.Lat,
			Lon:         e.Lon,
			DisplayName: display,
		})
	}
	return matches
}
