package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

func SetupRoutes(app *fiber.App, handler *Handler, log *zap.Logger) {
	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))

	if log.Core().Enabled(zap.DebugLevel) {
		app.Use(logger.New(logger.Config{
			Format:     "${time} ${pid} ${locals:requestid} ${status} - ${method} ${path}\n",
			TimeFormat: time.RFC3339,
		}))
	}

	api := app.Group("/api/v1")

	api.Get("/health", handler.GetHealth)

	api.Get("/cities", handler.SearchCities)

	weather := api.Group("/weather")
	weather.Get("/", handler.GetWeather)
	weather.Delete("/", handler.ClearWeather)
	weather.Get("/search", handler.SearchWeather)
	weather.Get("/coords", handler.WeatherByCoords)
	weather.Post("/refresh", handler.RefreshWeather)
	weather.Post("/locate", handler.LocateWeather)

	favorites := api.Group("/favorites")
	favorites.Get("/", handler.GetFavorites)
	favorites.Post("/", handler.AddFavorite)
	favorites.Put("/", handler.ReorderFavorites)
	favorites.Delete("/", handler.ClearFavorites)
	favorites.Post("/toggle", handler.ToggleFavorite)
	favorites.Delete("/:name", handler.RemoveFavorite)

	history := api.Group("/history")
	history.Get("/", handler.GetHistory)
	history.Post("/", handler.AddHistory)
	history.Delete("/", handler.ClearHistory)
	history.Get("/recent", handler.GetRecentHistory)
	history.Delete("/:name", handler.RemoveHistory)

	location := api.Group("/location")
	location.Get("/", handler.GetLocation)
	location.Post("/", handler.Locate)
	location.Delete("/", handler.ClearLocation)

	api.Get("/scheduler", handler.GetSchedulerStatus)
	api.Post("/scheduler/run", handler.RunScheduler)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Endpoint not found",
			"path":    c.Path(),
			"success": false,
		})
	})
}

// ErrorHandler renders errors returned from handlers as the JSON failure body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	if code >= fiber.StatusInternalServerError {
		zap.L().Error("HTTP error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
