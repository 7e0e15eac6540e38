package handlers

import (
	"errors"
	"strings"

	"linkpage/internal/types"

	"github.com/gofiber/fiber/v2"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{types.ErrValidation, fiber.StatusBadRequest},
	{types.ErrNotFound, fiber.StatusNotFound},
	{types.ErrConflict, fiber.StatusConflict},
	{types.ErrUnauthorized, fiber.StatusUnauthorized},
	{types.ErrForbidden, fiber.StatusForbidden},
	{types.ErrNotConfigured, fiber.StatusServiceUnavailable},
	{types.ErrTooLarge, fiber.StatusRequestEntityTooLarge},
}

// statusFor maps a domain error to its HTTP status and client message.
// Anything unrecognised is a 500 with a generic message.
func statusFor(err error) (int, string) {
	for _, candidate := range errorStatuses {
		if errors.Is(err, candidate.err) {
			message := strings.TrimPrefix(err.Error(), candidate.err.Error()+": ")
			return candidate.status, message
		}
	}
	return fiber.StatusInternalServerError, "Internal server error"
}

func errorResponse(c *fiber.Ctx, err error) error {
	status, message := statusFor(err)
	return c.Status(status).JSON(fiber.Map{"error": message})
}
