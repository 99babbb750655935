package contract

import (
	"context"
	"time"

	"lumina-be/internal/entity"
	"lumina-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type AuthTokenRepository interface {
	Create(ctx context.Context, token *entity.AuthToken) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AuthToken, error)
	// DeleteByHash reports how many tokens were removed; zero means the token
	// was already gone.
	DeleteByHash(ctx context.Context, hash string) (int64, error)
	DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error
}
