package handler

import (
	"errors"

	"github.com/aosagula/adm/internal/port"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

var validate = validator.New()

// respondError translates service errors into HTTP responses using the
// sentinel errors from internal/port.
func respondError(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, port.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, port.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, port.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, port.ErrConflict), errors.Is(err, port.ErrVersionConflict):
		status = fiber.StatusConflict
	case errors.Is(err, port.ErrInvalid), errors.Is(err, port.ErrSerialization):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// parseBody binds and validates a JSON request body.
func parseBody(c fiber.Ctx, body any) error {
	if err := c.Bind().JSON(body); err != nil {
		return errors.New("invalid body")
	}
	if err := validate.Struct(body); err != nil {
		return err
	}
	return nil
}
