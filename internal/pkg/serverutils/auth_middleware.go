package serverutils

import (
	"context"
	"strings"

	"lumina-be/internal/entity"
	"lumina-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

const (
	localsUser  = "user"
	localsToken = "token"
)

// IdentityResolver maps a raw bearer token to its user.
type IdentityResolver interface {
	CurrentUser(ctx context.Context, rawToken string) (*entity.User, error)
}

// OptionalAuth resolves the caller when a bearer token is present. Requests
// without one continue as anonymous; a token that does not resolve is a 401.
func OptionalAuth(resolver IdentityResolver) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		raw, ok := BearerToken(ctx)
		if !ok {
			return ctx.Next()
		}

		user, err := resolver.CurrentUser(ctx.UserContext(), raw)
		if err != nil {
			return err
		}

		ctx.Locals(localsUser, user)
		ctx.Locals(localsToken, raw)
		return ctx.Next()
	}
}

// RequireAuth rejects anonymous callers. Mount it after OptionalAuth.
func RequireAuth(ctx *fiber.Ctx) error {
	if !CurrentCaller(ctx).IsAuthenticated() {
		return apperror.ErrUnauthenticated
	}
	return ctx.Next()
}

// BearerToken accepts both "Bearer <t>" and the "Token <t>" form older
// clients send.
func BearerToken(ctx *fiber.Ctx) (string, bool) {
	header := strings.TrimSpace(ctx.Get(fiber.HeaderAuthorization))
	if header == "" {
		return "", false
	}

	scheme, raw, found := strings.Cut(header, " ")
	if !found {
		return "", false
	}
	if !strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "Token") {
		return "", false
	}

	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func CurrentCaller(ctx *fiber.Ctx) entity.Caller {
	if user, ok := ctx.Locals(localsUser).(*entity.User); ok && user != nil {
		return entity.CallerFor(user)
	}
	return entity.Anonymous()
}

// CurrentToken is the raw token the caller authenticated with, if any.
func CurrentToken(ctx *fiber.Ctx) string {
	raw, _ := ctx.Locals(localsToken).(string)
	return raw
}
