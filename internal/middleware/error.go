package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/gyansetu/internal/services"
)

// ErrorHandler recovers every failure at the request boundary into a JSON
// body with an error message. Domain errors map onto their HTTP statuses;
// anything unrecognized becomes a generic 500 so internals never leak.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	status := fiber.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidOrder),
		errors.Is(err, services.ErrSignatureMismatch),
		errors.Is(err, services.ErrPaymentNotVerified):
		status, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUnauthenticated):
		status, message = fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrRoleMismatch),
		errors.Is(err, services.ErrForbidden):
		status, message = fiber.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrConflict):
		status, message = fiber.StatusConflict, err.Error()
	case errors.Is(err, services.ErrNotFound):
		status, message = fiber.StatusNotFound, err.Error()
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}
