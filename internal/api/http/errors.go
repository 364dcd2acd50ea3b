package httpapi

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/accident-forecast/internal/model"
	"github.com/i474232898/accident-forecast/internal/store"
	"github.com/i474232898/accident-forecast/internal/weather"
)

// Stable error codes returned in the "code" field of error responses.
const (
	CodeFetchFailed      = "weather_fetch_failed"
	CodeParseFailed      = "weather_parse_failed"
	CodePredictionFailed = "prediction_failed"
	CodeModelUnavailable = "model_unavailable"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeBadRequest       = "bad_request"
	CodeClientError      = "client_error"
	CodeInternal         = "internal_error"
)

// ErrorHandler is the centralized fiber error handler. Domain errors map to a
// stable code and a fixed message; the underlying error is only logged.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, code, message := classify(err)
	if status >= fiber.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   true,
		"code":    code,
		"message": message,
	})
}

func classify(err error) (int, string, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		switch fe.Code {
		case fiber.StatusBadRequest:
			return fe.Code, CodeBadRequest, fe.Message
		case fiber.StatusNotFound:
			return fe.Code, CodeNotFound, fe.Message
		case fiber.StatusMethodNotAllowed:
			return fe.Code, CodeMethodNotAllowed, fe.Message
		default:
			if fe.Code >= fiber.StatusInternalServerError {
				return fe.Code, CodeInternal, fe.Message
			}
			return fe.Code, CodeClientError, fe.Message
		}
	case errors.Is(err, weather.ErrFetch):
		return fiber.StatusBadGateway, CodeFetchFailed, "weather feed unavailable"
	case errors.Is(err, weather.ErrParse):
		return fiber.StatusBadGateway, CodeParseFailed, "weather feed returned an unreadable document"
	case errors.Is(err, model.ErrPrediction):
		return fiber.StatusInternalServerError, CodePredictionFailed, "prediction failed"
	case errors.Is(err, model.ErrModelLoad):
		return fiber.StatusInternalServerError, CodeModelUnavailable, "model unavailable"
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound, CodeNotFound, "no weather snapshots available"
	default:
		return fiber.StatusInternalServerError, CodeInternal, "internal server error"
	}
}
