package controller

import (
	"lumina-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// parseBody decodes the request body into out. An empty body leaves out
// untouched so field-level validation can report what is missing.
func parseBody(ctx *fiber.Ctx, out interface{}) error {
	if len(ctx.Body()) == 0 {
		return nil
	}
	if err := ctx.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed request body")
	}
	return nil
}

// pathID parses the :id param. A malformed id answers like a missing one.
func pathID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.ErrNotFound
	}
	return id, nil
}
