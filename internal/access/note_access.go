// Package access is the only way to reach stored notes. Every query it
// issues is pinned to the calling user.
package access

import (
	"context"
	"fmt"

	"lumina-be/internal/entity"
	"lumina-be/internal/pkg/apperror"
	"lumina-be/internal/repository/contract"
	"lumina-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScopedNotes is the set of notes visible to one caller.
type ScopedNotes struct {
	notes  contract.NoteRepository
	caller entity.Caller
}

func NewScopedNotes(notes contract.NoteRepository, caller entity.Caller) *ScopedNotes {
	return &ScopedNotes{
		notes:  notes,
		caller: caller,
	}
}

func (s *ScopedNotes) Caller() entity.Caller {
	return s.caller
}

func (s *ScopedNotes) owner() specification.Specification {
	return specification.UserOwnedBy{UserID: s.caller.UserId()}
}

// All lists the caller's notes newest first. Anonymous callers get an empty
// list rather than an error.
func (s *ScopedNotes) All(ctx context.Context, filters ...specification.Specification) ([]*entity.Note, error) {
	if !s.caller.IsAuthenticated() {
		return []*entity.Note{}, nil
	}

	specs := append([]specification.Specification{s.owner()}, filters...)
	specs = append(specs, specification.NewestFirst()...)

	notes, err := s.notes.FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if notes == nil {
		notes = []*entity.Note{}
	}
	return notes, nil
}

// Get returns ErrNotFound for a missing note and for a note owned by
// someone else alike.
func (s *ScopedNotes) Get(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	if !s.caller.IsAuthenticated() {
		return nil, apperror.ErrNotFound
	}

	note, err := s.notes.FindOne(ctx, specification.ByID{ID: id}, s.owner())
	if err != nil {
		return nil, fmt.Errorf("find note %s: %w", id, err)
	}
	if note == nil {
		return nil, apperror.ErrNotFound
	}
	return note, nil
}

func (s *ScopedNotes) Count(ctx context.Context) (int64, error) {
	if !s.caller.IsAuthenticated() {
		return 0, nil
	}
	count, err := s.notes.Count(ctx, s.owner())
	if err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return count, nil
}

// Latest returns the most recently created note, or nil when there is none.
func (s *ScopedNotes) Latest(ctx context.Context) (*entity.Note, error) {
	if !s.caller.IsAuthenticated() {
		return nil, nil
	}

	specs := append([]specification.Specification{s.owner()}, specification.NewestFirst()...)
	note, err := s.notes.FindOne(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("latest note: %w", err)
	}
	return note, nil
}

// Create stores note with the caller as owner, whatever UserId it carried.
func (s *ScopedNotes) Create(ctx context.Context, note *entity.Note) error {
	if !s.caller.IsAuthenticated() {
		return apperror.ErrUnauthenticated
	}

	note.UserId = s.caller.UserId()
	if err := s.notes.Create(ctx, note); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

func (s *ScopedNotes) Save(ctx context.Context, note *entity.Note) error {
	if !s.caller.IsAuthenticated() {
		return apperror.ErrUnauthenticated
	}
	if !note.OwnedBy(s.caller.UserId()) {
		return apperror.NewValidationError("owner", apperror.OwnerMismatch, "You do not own this note.")
	}

	affected, err := s.notes.Update(ctx, note)
	if err != nil {
		return fmt.Errorf("update note %s: %w", note.Id, err)
	}
	if affected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (s *ScopedNotes) Delete(ctx context.Context, id uuid.UUID) error {
	if !s.caller.IsAuthenticated() {
		return apperror.ErrUnauthenticated
	}

	affected, err := s.notes.Delete(ctx, specification.ByID{ID: id}, s.owner())
	if err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

// DeleteAll removes every note the caller owns. Used when the owner itself
// is deleted.
func (s *ScopedNotes) DeleteAll(ctx context.Context) (int64, error) {
	if !s.caller.IsAuthenticated() {
		return 0, apperror.ErrUnauthenticated
	}
	affected, err := s.notes.Delete(ctx, s.owner())
	if err != nil {
		return 0, fmt.Errorf("delete notes of %s: %w", s.caller.UserId(), err)
	}
	return affected, nil
}
