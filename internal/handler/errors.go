package handler

import (
	"errors"

	"go-pos-inventory/internal/middleware"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// respondError maps domain errors to a status code and the {"error": ...} envelope.
// Anything unrecognised is logged and hidden behind a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	var (
		validation *service.ValidationError
		stock      *service.InsufficientStockError
	)

	status := fiber.StatusInternalServerError
	switch {
	case errors.As(err, &validation):
		status = fiber.StatusBadRequest
	case errors.As(err, &stock):
		status = fiber.StatusConflict
	case errors.Is(err, service.ErrDuplicateUsername):
		status = fiber.StatusConflict
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrProductNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, service.ErrSelfDelete),
		errors.Is(err, service.ErrAccountPending),
		errors.Is(err, service.ErrAccountRejected),
		errors.Is(err, service.ErrRegistrationClosed),
		errors.Is(err, service.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	}

	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		return c.Status(status).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, &service.ValidationError{Field: "id", Reason: "must be a valid UUID"}
	}
	return id, nil
}

// principal is always present behind RequireAuth.
func principal(c *fiber.Ctx) model.Principal {
	p, _ := middleware.GetPrincipal(c)
	return p
}
