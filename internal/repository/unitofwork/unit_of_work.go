package unitofwork

import (
	"context"

	"lumina-be/internal/access"
	"lumina-be/internal/entity"
	"lumina-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	AuthTokenRepository() contract.AuthTokenRepository

	// Notes are only handed out already scoped to a caller.
	Notes(caller entity.Caller) *access.ScopedNotes
}
