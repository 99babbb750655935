package serverutils

import (
	"errors"

	"lumina-be/internal/pkg/apperror"
	"lumina-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the error
// envelope. Anything it does not recognise is a 500 and gets logged.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, log, err)
	}
}

func WriteError(ctx *fiber.Ctx, log logger.ILogger, err error) error {
	if v, ok := apperror.AsValidation(err); ok {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(ValidationErrorResponse(fiber.StatusBadRequest, "Validation failed", v.Fields()))
	}

	var fe *fiber.Error
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return writeStatus(ctx, fiber.StatusNotFound, "Not found.")
	case errors.Is(err, apperror.ErrUserNotFound):
		return writeStatus(ctx, fiber.StatusNotFound, apperror.ErrUserNotFound.Error())
	case errors.Is(err, apperror.ErrUnauthenticated):
		return writeStatus(ctx, fiber.StatusUnauthorized, "Authentication credentials were not provided.")
	case errors.Is(err, apperror.ErrInvalidToken):
		return writeStatus(ctx, fiber.StatusUnauthorized, "Invalid token.")
	case errors.Is(err, apperror.ErrInvalidCredentials):
		return writeStatus(ctx, fiber.StatusBadRequest, "Invalid credentials.")
	case errors.As(err, &fe):
		return writeStatus(ctx, fe.Code, fe.Message)
	}

	log.Error("HTTP", "Unhandled error", map[string]interface{}{
		"method": ctx.Method(),
		"path":   ctx.Path(),
		"error":  err.Error(),
	})
	return writeStatus(ctx, fiber.StatusInternalServerError, "Internal server error")
}

func writeStatus(ctx *fiber.Ctx, code int, message string) error {
	return ctx.Status(code).JSON(ErrorResponse(code, message))
}
