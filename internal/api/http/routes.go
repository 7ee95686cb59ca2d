package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/urbanpulse/weather-monitor/internal/cache"
	"github.com/urbanpulse/weather-monitor/internal/insights"
	"github.com/urbanpulse/weather-monitor/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, readThrough *cache.ReadThrough, engine *insights.Engine) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/cities", func(c *fiber.Ctx) error {
		req, err := parseCitiesQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		records, err := service.MultiCityWeather(c.UserContext(), req.Limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}

		return c.JSON(fiber.Map{
			"count":  len(records),
			"cities": records,
		})
	})

	v1.Get("/weather/city", func(c *fiber.Ctx) error {
		req, err := parseCityQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		record, err := readThrough.GetCity(c.UserContext(), req.Name)
		if err != nil {
			if errors.Is(err, weather.ErrNoData) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data for requested city")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}

		return c.JSON(record)
	})

	v1.Get("/insights/global", func(c *fiber.Ctx) error {
		return c.JSON(engine.Global(c.UserContext()))
	})

	v1.Get("/insights/anomalies", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"anomalies":  engine.Anomalies(),
			"aiInsights": engine.Insights(),
		})
	})

	v1.Get("/insights/city", func(c *fiber.Ctx) error {
		req, err := parseCityQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		record, err := readThrough.GetCity(c.UserContext(), req.Name)
		if err != nil {
			if errors.Is(err, weather.ErrNoData) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data for requested city")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}

		insight, err := engine.CityInsight(c.UserContext(), *record)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to generate city insight")
		}

		return c.JSON(fiber.Map{
			"city":    record,
			"insight": insight,
		})
	})

	v1.Get("/analytics/scores", func(c *fiber.Ctx) error {
		return c.JSON(engine.Scores())
	})

	v1.Get("/analytics/dashboard", func(c *fiber.Ctx) error {
		return c.JSON(engine.Snapshot(c.UserContext()))
	})
}

// citiesQuery holds query parameters for the multi-city endpoint.
type citiesQuery struct {
	Limit int `validate:"min=1,max=20"`
}

func parseCitiesQuery(c *fiber.Ctx) (citiesQuery, error) {
	q := citiesQuery{Limit: 15}

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, errors.New("limit must be an integer")
		}
		q.Limit = n
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// cityQuery holds query parameters for the single-city endpoint.
type cityQuery struct {
	Name string `validate:"required"`
}

func parseCityQuery(c *fiber.Ctx) (cityQuery, error) {
	q := cityQuery{Name: c.Query("name")}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}
