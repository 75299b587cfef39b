// Package httpapi exposes the bounded query endpoint: one request, one CSV
// attachment response.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/oceandata/argo-explorer/internal/argo"
	"github.com/oceandata/argo-explorer/internal/session"
)

var validate = validator.New()

// Runner executes one query session; satisfied by session.Orchestrator.
type Runner interface {
	Run(ctx context.Context, req argo.ProcessRequest, opts session.Options) (*session.Result, error)
}

// RegisterRoutes wires the bounded request/response endpoint into the
// Fiber app. maxProfiles caps the candidate set for this delivery mode.
func RegisterRoutes(app *fiber.App, runner Runner, maxProfiles int) {
	api := app.Group("/api")

	api.Post("/process", func(c *fiber.Ctx) error {
		req, err := BindRequest(c.Body())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := runner.Run(c.Context(), req, session.Options{Limit: maxProfiles})
		if err != nil {
			switch {
			case errors.Is(err, session.ErrNoProfiles), errors.Is(err, session.ErrNoData):
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "failed to process selection")
			}
		}

		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", res.Filename))
		return c.SendString(res.CSV)
	})
}

// BindRequest parses and validates a ProcessRequest payload. Shared with
// the progressive path so both modes accept exactly the same shape.
func BindRequest(body []byte) (argo.ProcessRequest, error) {
	var req argo.ProcessRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(req); err != nil {
		return req, err
	}
	return req, nil
}
