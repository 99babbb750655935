package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenCache maps a token hash to the id of the user it authenticates, so
// that resolving a bearer token does not hit the database on every request.
type TokenCache interface {
	Get(ctx context.Context, tokenHash string) (uuid.UUID, bool)
	Set(ctx context.Context, tokenHash string, userId uuid.UUID, ttl time.Duration)
	Delete(ctx context.Context, tokenHash string)
}
