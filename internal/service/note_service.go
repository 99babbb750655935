package service

import (
	"context"
	"strings"
	"time"

	"lumina-be/internal/dto"
	"lumina-be/internal/entity"
	"lumina-be/internal/pkg/apperror"
	"lumina-be/internal/pkg/logger"
	"lumina-be/internal/repository/specification"
	"lumina-be/internal/repository/unitofwork"
	"lumina-be/internal/serializer"
	"lumina-be/pkg/events"

	"github.com/google/uuid"
)

type INoteService interface {
	List(ctx context.Context, caller entity.Caller, search string) ([]dto.NoteListView, error)
	Get(ctx context.Context, caller entity.Caller, id uuid.UUID) (*dto.NoteDetailView, error)
	Create(ctx context.Context, caller entity.Caller, req *dto.CreateNoteRequest) (*dto.NoteDetailView, error)
	Update(ctx context.Context, caller entity.Caller, req *dto.UpdateNoteRequest) (*dto.NoteDetailView, error)
	Delete(ctx context.Context, caller entity.Caller, id uuid.UUID) error
	Statistics(ctx context.Context, caller entity.Caller) (*dto.NoteStatisticsResponse, error)
}

type noteService struct {
	uowFactory unitofwork.RepositoryFactory
	serializer *serializer.NoteSerializer
	events     eventEmitter
	log        logger.ILogger
	now        func() time.Time
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	noteSerializer *serializer.NoteSerializer,
	publisher events.Publisher,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory: uowFactory,
		serializer: noteSerializer,
		events:     eventEmitter{publisher: publisher, log: log},
		log:        log,
		now:        utcNow,
	}
}

// utcNow is truncated to what Postgres stores, so values read back compare
// equal to values written.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *noteService) List(ctx context.Context, caller entity.Caller, search string) ([]dto.NoteListView, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var filters []specification.Specification
	if q := strings.TrimSpace(search); q != "" {
		filters = append(filters, specification.NoteSearchQuery{Query: q})
	}

	notes, err := uow.Notes(caller).All(ctx, filters...)
	if err != nil {
		return nil, err
	}
	return s.serializer.ListViews(notes, caller.User), nil
}

func (s *noteService) Get(ctx context.Context, caller entity.Caller, id uuid.UUID) (*dto.NoteDetailView, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.Notes(caller).Get(ctx, id)
	if err != nil {
		return nil, err
	}

	res := s.serializer.DetailView(note, caller.User)
	return &res, nil
}

func (s *noteService) Create(ctx context.Context, caller entity.Caller, req *dto.CreateNoteRequest) (*dto.NoteDetailView, error) {
	if !caller.IsAuthenticated() {
		return nil, apperror.ErrUnauthenticated
	}

	note, err := s.serializer.BuildNote(req)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	now := s.now()
	note.Id = id
	note.CreatedAt = now
	note.UpdatedAt = now

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Notes(caller).Create(ctx, note); err != nil {
		return nil, err
	}

	s.log.Info("NOTE", "Note created", map[string]interface{}{
		"note_id": note.Id,
		"user_id": caller.UserId(),
	})
	s.events.emit(ctx, events.New(events.NoteCreated, map[string]interface{}{
		"note_id": note.Id,
		"user_id": caller.UserId(),
		"title":   note.Title,
	}, now))

	res := s.serializer.DetailView(note, caller.User)
	return &res, nil
}

func (s *noteService) Update(ctx context.Context, caller entity.Caller, req *dto.UpdateNoteRequest) (*dto.NoteDetailView, error) {
	if !caller.IsAuthenticated() {
		return nil, apperror.ErrUnauthenticated
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	notes := uow.Notes(caller)
	note, err := notes.Get(ctx, req.Id)
	if err != nil {
		return nil, err
	}

	if err := s.serializer.ApplyUpdate(note, req); err != nil {
		return nil, err
	}

	// strictly after created_at, even if the clock stepped back or did not tick
	now := s.now()
	if !now.After(note.CreatedAt) {
		now = note.CreatedAt.Add(time.Microsecond)
	}
	note.UpdatedAt = now

	if err := notes.Save(ctx, note); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.events.emit(ctx, events.New(events.NoteUpdated, map[string]interface{}{
		"note_id": note.Id,
		"user_id": caller.UserId(),
		"title":   note.Title,
	}, now))

	res := s.serializer.DetailView(note, caller.User)
	return &res, nil
}

func (s *noteService) Delete(ctx context.Context, caller entity.Caller, id uuid.UUID) error {
	if !caller.IsAuthenticated() {
		return apperror.ErrUnauthenticated
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Notes(caller).Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("NOTE", "Note deleted", map[string]interface{}{
		"note_id": id,
		"user_id": caller.UserId(),
	})
	s.events.emit(ctx, events.New(events.NoteDeleted, map[string]interface{}{
		"note_id": id,
		"user_id": caller.UserId(),
	}, s.now()))
	return nil
}

func (s *noteService) Statistics(ctx context.Context, caller entity.Caller) (*dto.NoteStatisticsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	notes := uow.Notes(caller)

	total, err := notes.Count(ctx)
	if err != nil {
		return nil, err
	}

	var latest *entity.Note
	if total > 0 {
		latest, err = notes.Latest(ctx)
		if err != nil {
			return nil, err
		}
	}

	res := s.serializer.Statistics(total, latest)
	return &res, nil
}
