package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ErrInvalidID is returned for a missing or malformed :id route parameter.
var ErrInvalidID = errors.New("invalid id")

// ParseID reads the positive :id route parameter.
func ParseID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}

	return id, nil
}

// APIError writes the JSON error body used by every endpoint.
func APIError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// APIValidationError answers 400 with the failed fields.
func APIValidationError(c *fiber.Ctx, errs []ErrorResponse) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  ValidationMessage(errs),
		"fields": errs,
	})
}
