package contract

import (
	"context"

	"lumina-be/internal/entity"
	"lumina-be/internal/repository/specification"
)

// NoteRepository is the raw note store. It is only reachable through the
// owner-scoped access layer; see access.ScopedNotes.
type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	// Update writes title, text and updated_at of the row matching both the
	// note id and the note owner. It reports the number of rows written.
	Update(ctx context.Context, note *entity.Note) (int64, error)
	Delete(ctx context.Context, specs ...specification.Specification) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
