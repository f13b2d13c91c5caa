package api

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bobby-s-dev/weather-lookup/internal/common"
	"github.com/bobby-s-dev/weather-lookup/internal/models"
	"github.com/bobby-s-dev/weather-lookup/internal/services"
	"github.com/bobby-s-dev/weather-lookup/pkg/client"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

var validate = validator.New()

// RefreshScheduler is the view of the background refresher exposed over HTTP.
type RefreshScheduler interface {
	ForceRun()
	GetStatus() map[string]interface{}
}

type Handler struct {
	weather   *services.WeatherStore
	favorites *services.FavoritesStore
	history   *services.HistoryStore
	location  *services.LocationStore
	scheduler RefreshScheduler
	logger    *zap.Logger
	now       func() time.Time
}

func NewHandler(
	weather *services.WeatherStore,
	favorites *services.FavoritesStore,
	history *services.HistoryStore,
	location *services.LocationStore,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		weather:   weather,
		favorites: favorites,
		history:   history,
		location:  location,
		logger:    logger,
		now:       time.Now,
	}
}

// WithScheduler attaches the background refresher to the status endpoints.
func (h *Handler) WithScheduler(s RefreshScheduler) *Handler {
	h.scheduler = s
	return h
}

type dayView struct {
	models.DayForecast
	Label string `json:"label"`
}

type weatherView struct {
	services.WeatherState
	Days       []dayView `json:"days"`
	UpdatedAgo string    `json:"updated_ago,omitempty"`
	IsFavorite bool      `json:"is_favorite"`
}

func (h *Handler) weatherView() weatherView {
	state := h.weather.State()
	now := h.now()

	view := weatherView{WeatherState: state, Days: []dayView{}}
	if state.Forecast != nil {
		for _, d := range state.Forecast.Forecasts {
			view.Days = append(view.Days, dayView{DayForecast: d, Label: common.DayLabel(d.Date, now)})
		}
	}
	if state.LastUpdated != nil {
		view.UpdatedAgo = common.TimeAgo(*state.LastUpdated, now)
	}
	if state.CurrentWeather != nil {
		view.IsFavorite = h.favorites.IsFavorite(state.CurrentWeather.City)
	}
	return view
}

// GetWeather handles GET /api/v1/weather
func (h *Handler) GetWeather(c *fiber.Ctx) error {
	return c.JSON(h.weatherView())
}

// SearchWeather handles GET /api/v1/weather/search
func (h *Handler) SearchWeather(c *fiber.Ctx) error {
	var q cityQuery
	q.City = utils.CopyString(strings.TrimSpace(c.Query("city")))
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "City parameter is required")
	}

	h.logger.Info("Fetching weather by city", zap.String("city", q.City))

	if err := h.weather.FetchWeatherByCity(c.UserContext(), q.City); err != nil {
		return h.fail(c, err)
	}
	if err := h.history.Add(q.City); err != nil {
		h.logger.Warn("Failed to record search history", zap.String("city", q.City), zap.Error(err))
	}

	return c.JSON(h.weatherView())
}

// WeatherByCoords handles GET /api/v1/weather/coords
func (h *Handler) WeatherByCoords(c *fiber.Ctx) error {
	q, err := parseCoordsQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	h.logger.Info("Fetching weather by coordinates",
		zap.Float64("lat", q.Lat),
		zap.Float64("lon", q.Lon))

	if err := h.weather.FetchWeatherByCoords(c.UserContext(), q.Lat, q.Lon); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(h.weatherView())
}

// RefreshWeather handles POST /api/v1/weather/refresh
func (h *Handler) RefreshWeather(c *fiber.Ctx) error {
	if err := h.weather.RefreshWeather(c.UserContext()); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(h.weatherView())
}

// LocateWeather handles POST /api/v1/weather/locate
func (h *Handler) LocateWeather(c *fiber.Ctx) error {
	loc, err := h.location.GetCurrentLocation(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.weather.FetchWeatherByCoords(c.UserContext(), loc.Lat, loc.Lon); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(h.weatherView())
}

// ClearWeather handles DELETE /api/v1/weather
func (h *Handler) ClearWeather(c *fiber.Ctx) error {
	h.weather.ClearWeather()
	return c.SendStatus(fiber.StatusNoContent)
}

// SearchCities handles GET /api/v1/cities
func (h *Handler) SearchCities(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "q parameter is required")
	}

	matches, err := h.weather.SearchCities(c.UserContext(), query)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"cities": matches,
	})
}

// GetFavorites handles GET /api/v1/favorites
func (h *Handler) GetFavorites(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"favorites": h.favorites.List(),
		"count":     h.favorites.Count(),
	})
}

// AddFavorite handles POST /api/v1/favorites
func (h *Handler) AddFavorite(c *fiber.Ctx) error {
	var req cityRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	added, err := h.favorites.Add(req.toCityData())
	if err != nil {
		return h.fail(c, err)
	}

	status := fiber.StatusOK
	if added {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"added":     added,
		"favorites": h.favorites.List(),
	})
}

// ToggleFavorite handles POST /api/v1/favorites/toggle. An empty body toggles
// the city of the current weather snapshot.
func (h *Handler) ToggleFavorite(c *fiber.Ctx) error {
	var city models.CityData
	if len(c.Body()) > 0 {
		var req cityRequest
		if err := h.bind(c, &req); err != nil {
			return err
		}
		city = req.toCityData()
	} else {
		current := h.weather.State().CurrentWeather
		if current == nil {
			return fiber.NewError(fiber.StatusBadRequest, "No current weather to toggle")
		}
		city = models.CityDataFromWeather(current)
	}

	isFavorite, err := h.favorites.Toggle(city)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"city":        city.DisplayName(),
		"is_favorite": isFavorite,
		"favorites":   h.favorites.List(),
	})
}

// ReorderFavorites handles PUT /api/v1/favorites
func (h *Handler) ReorderFavorites(c *fiber.Ctx) error {
	var order []models.FavoriteCity
	if err := c.BodyParser(&order); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid favorites list")
	}
	for _, f := range order {
		if strings.TrimSpace(f.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Every favorite needs a name")
		}
	}

	if err := h.favorites.Reorder(order); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"favorites": h.favorites.List(),
	})
}

// RemoveFavorite handles DELETE /api/v1/favorites/:name
func (h *Handler) RemoveFavorite(c *fiber.Ctx) error {
	name, err := pathName(c)
	if err != nil {
		return err
	}
	if err := h.favorites.Remove(name); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"favorites": h.favorites.List(),
	})
}

// ClearFavorites handles DELETE /api/v1/favorites
func (h *Handler) ClearFavorites(c *fiber.Ctx) error {
	if err := h.favorites.Clear(); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetHistory handles GET /api/v1/history
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"history": h.history.List(),
	})
}

// GetRecentHistory handles GET /api/v1/history/recent
func (h *Handler) GetRecentHistory(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"history": h.history.Recent(),
	})
}

// AddHistory handles POST /api/v1/history
func (h *Handler) AddHistory(c *fiber.Ctx) error {
	var req historyRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	if err := h.history.Add(strings.TrimSpace(req.Name)); err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"history": h.history.List(),
	})
}

// RemoveHistory handles DELETE /api/v1/history/:name
func (h *Handler) RemoveHistory(c *fiber.Ctx) error {
	name, err := pathName(c)
	if err != nil {
		return err
	}
	if err := h.history.Remove(name); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"history": h.history.List(),
	})
}

// ClearHistory handles DELETE /api/v1/history
func (h *Handler) ClearHistory(c *fiber.Ctx) error {
	if err := h.history.Clear(); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetLocation handles GET /api/v1/location
func (h *Handler) GetLocation(c *fiber.Ctx) error {
	return c.JSON(h.location.State())
}

// Locate handles POST /api/v1/location
func (h *Handler) Locate(c *fiber.Ctx) error {
	if _, err := h.location.GetCurrentLocation(c.UserContext()); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(h.location.State())
}

// ClearLocation handles DELETE /api/v1/location
func (h *Handler) ClearLocation(c *fiber.Ctx) error {
	h.location.ClearLocation()
	return c.SendStatus(fiber.StatusNoContent)
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	state := h.weather.State()
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
		"stats": fiber.Map{
			"has_weather":     state.HasWeatherData(),
			"favorites_count": h.favorites.Count(),
			"history_count":   len(h.history.List()),
			"has_location":    h.location.State().HasLocation(),
		},
	})
}

// GetSchedulerStatus handles GET /api/v1/scheduler
func (h *Handler) GetSchedulerStatus(c *fiber.Ctx) error {
	if h.scheduler == nil {
		return fiber.NewError(fiber.StatusNotFound, "Scheduler not configured")
	}
	return c.JSON(h.scheduler.GetStatus())
}

// RunScheduler handles POST /api/v1/scheduler/run
func (h *Handler) RunScheduler(c *fiber.Ctx) error {
	if h.scheduler == nil {
		return fiber.NewError(fiber.StatusNotFound, "Scheduler not configured")
	}
	h.scheduler.ForceRun()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
	})
}

// fail writes a failed lookup with the user-facing message and a status
// derived from the error kind.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func statusForError(err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case client.KindNotFound:
			return fiber.StatusNotFound
		case client.KindRateLimited:
			return fiber.StatusTooManyRequests
		case client.KindUnauthorized:
			return fiber.StatusBadGateway
		case client.KindServiceUnavailable:
			return fiber.StatusServiceUnavailable
		case client.KindNetworkFailure:
			return fiber.StatusGatewayTimeout
		default:
			return fiber.StatusInternalServerError
		}
	}

	var locErr *services.LocationError
	if errors.As(err, &locErr) {
		switch locErr.Kind {
		case services.LocationPermissionDenied:
			return fiber.StatusForbidden
		case services.LocationPositionUnavailable:
			return fiber.StatusServiceUnavailable
		case services.LocationTimeout:
			return fiber.StatusGatewayTimeout
		case services.LocationUnsupported:
			return fiber.StatusNotImplemented
		default:
			return fiber.StatusInternalServerError
		}
	}

	if errors.Is(err, services.ErrEmptyCityName) {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func (h *Handler) bind(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func pathName(c *fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(utils.CopyString(c.Params("name")))
	if err != nil || strings.TrimSpace(name) == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "City name is required")
	}
	return name, nil
}

type cityQuery struct {
	City string `validate:"required,max=100"`
}

type coordsQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func parseCoordsQuery(c *fiber.Ctx) (coordsQuery, error) {
	var q coordsQuery

	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return q, errors.New("lat parameter must be a number")
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return q, errors.New("lon parameter must be a number")
	}
	q.Lat, q.Lon = lat, lon

	if err := validate.Struct(q); err != nil {
		return q, errors.New("lat must be within [-90, 90] and lon within [-180, 180]")
	}
	return q, nil
}

type coordsBody struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

type cityRequest struct {
	Name    string      `json:"name" validate:"required_without=City,max=100"`
	City    string      `json:"city" validate:"max=100"`
	Country string      `json:"country" validate:"max=10"`
	Coords  *coordsBody `json:"coords" validate:"omitempty"`
}

func (r cityRequest) toCityData() models.CityData {
	data := models.CityData{
		Name:    strings.TrimSpace(r.Name),
		City:    strings.TrimSpace(r.City),
		Country: r.Country,
	}
	if r.Coords != nil {
		data.Coords = &models.Coordinates{Lat: r.Coords.Lat, Lon: r.Coords.Lon}
	}
	return data
}

type historyRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

var startTime = time.Now()
