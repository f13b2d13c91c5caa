package models

import (
	"time"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LocationQuery identifies what to look up: a city name or a coordinate pair.
// Coords takes precedence when set.
type LocationQuery struct {
	City   string
	Coords *Coordinates
}

func CityQuery(name string) LocationQuery {
	return LocationQuery{City: name}
}

func CoordsQuery(lat, lon float64) LocationQuery {
	return LocationQuery{Coords: &Coordinates{Lat: lat, Lon: lon}}
}

type CurrentWeather struct {
	ID            int64       `json:"id"`
	City          string      `json:"city"`
	Country       string      `json:"country"`
	Temperature   int         `json:"temperature"`
	FeelsLike     int         `json:"feels_like"`
	Description   string      `json:"description"`
	Icon          string      `json:"icon"`
	Humidity      float64     `json:"humidity"`
	Pressure      float64     `json:"pressure"`
	WindSpeed     float64     `json:"wind_speed"`
	WindDirection float64     `json:"wind_direction"`
	Visibility    int         `json:"visibility"`
	Cloudiness    int         `json:"cloudiness"`
	Sunrise       time.Time   `json:"sunrise"`
	Sunset        time.Time   `json:"sunset"`
	Timezone      int         `json:"timezone"`
	Coords        Coordinates `json:"coords"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type TemperatureRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type DayForecast struct {
	Date        time.Time        `json:"date"`
	Temperature TemperatureRange `json:"temperature"`
	Description string           `json:"description"`
	Icon        string           `json:"icon"`
	Humidity    float64          `json:"humidity"`
	WindSpeed   float64          `json:"wind_speed"`
	Pop         int              `json:"pop"` // precipitation probability, percent
}

type ForecastSummary struct {
	City      string        `json:"city"`
	Country   string        `json:"country"`
	Forecasts []DayForecast `json:"forecasts"`
}

type CityMatch struct {
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	State       string  `json:"state,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}
