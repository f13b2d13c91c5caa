package models

import (
	"time"
)

// CityData is the input for adding a favorite. Name wins over City when both
// are set, so a CurrentWeather snapshot can be passed through as-is.
type CityData struct {
	Name    string       `json:"name"`
	City    string       `json:"city"`
	Country string       `json:"country"`
	Coords  *Coordinates `json:"coords,omitempty"`
}

func (c CityData) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.City
}

// CityDataFromWeather builds a favorite candidate from the current snapshot.
func CityDataFromWeather(w *CurrentWeather) CityData {
	coords := w.Coords
	return CityData{
		Name:    w.City,
		Country: w.Country,
		Coords:  &coords,
	}
}

type FavoriteCity struct {
	ID      int64        `json:"id"`
	Name    string       `json:"name"`
	Country string       `json:"country"`
	Coords  *Coordinates `json:"coords,omitempty"`
	AddedAt time.Time    `json:"added_at"`
}

type HistoryEntry struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	SearchedAt time.Time `json:"searched_at"`
}

type PermissionState string

const (
	PermissionUnknown PermissionState = "unknown"
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

type UserLocation struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}
