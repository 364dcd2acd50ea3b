package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/accident-forecast/internal/model"
	"github.com/i474232898/accident-forecast/internal/prediction"
	"github.com/i474232898/accident-forecast/internal/weather"
)

var validate = validator.New()

// Predictor serves predictions for both regions.
type Predictor interface {
	PredictIsland(ctx context.Context) (prediction.Result, error)
	PredictUsa(ctx context.Context) (prediction.Result, error)
}

// History exposes stored weather snapshots.
type History interface {
	GetLatest() (weather.AggregatedWeather, error)
	GetRange(from, to time.Time) ([]weather.AggregatedWeather, error)
}

// Dependencies are the collaborators the routes need.
type Dependencies struct {
	Predictions Predictor
	History     History
	Models      map[string]model.Info
}

type islandResponse struct {
	Temp                float64 `json:"temp"`
	Wind                float64 `json:"wind"`
	Prediction          float64 `json:"prediction"`
	PercentageDeviation float64 `json:"percentage_deviation"`
}

// The USA endpoint has always answered with "percent_deviation".
type usaResponse struct {
	Temp             float64 `json:"temp"`
	Wind             float64 `json:"wind"`
	Prediction       float64 `json:"prediction"`
	PercentDeviation float64 `json:"percent_deviation"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"Hello": "World"})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "accident-forecast",
			"models":  deps.Models,
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	pred := app.Group("/prediction")

	pred.Get("/isl", func(c *fiber.Ctx) error {
		res, err := deps.Predictions.PredictIsland(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(islandResponse{
			Temp:                res.Temperature,
			Wind:                res.WindSpeed,
			Prediction:          res.Prediction,
			PercentageDeviation: res.PercentageDeviation,
		})
	})

	pred.Get("/usa", func(c *fiber.Ctx) error {
		res, err := deps.Predictions.PredictUsa(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(usaResponse{
			Temp:             res.Temperature,
			Wind:             res.WindSpeed,
			Prediction:       res.Prediction,
			PercentDeviation: res.PercentageDeviation,
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/weather/latest", func(c *fiber.Ctx) error {
		snapshot, err := deps.History.GetLatest()
		if err != nil {
			return err
		}
		return c.JSON(snapshot)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshots, err := deps.History.GetRange(req.From, req.To)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
