package service

import (
	"context"

	"lumina-be/internal/dto"
	"lumina-be/internal/entity"
	"lumina-be/internal/pkg/apperror"
	"lumina-be/internal/pkg/logger"
	"lumina-be/internal/repository/specification"
	"lumina-be/internal/repository/unitofwork"
	"lumina-be/internal/serializer"
	"lumina-be/pkg/events"
)

type IUserService interface {
	GetProfile(ctx context.Context, caller entity.Caller) (*dto.UserProfile, error)
	// DeleteAccount removes the caller together with every note and token
	// they own, in one transaction.
	DeleteAccount(ctx context.Context, caller entity.Caller) error
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
	serializer *serializer.NoteSerializer
	events     eventEmitter
	log        logger.ILogger
}

func NewUserService(
	uowFactory unitofwork.RepositoryFactory,
	noteSerializer *serializer.NoteSerializer,
	publisher events.Publisher,
	log logger.ILogger,
) IUserService {
	return &userService{
		uowFactory: uowFactory,
		serializer: noteSerializer,
		events:     eventEmitter{publisher: publisher, log: log},
		log:        log,
	}
}

func (s *userService) GetProfile(ctx context.Context, caller entity.Caller) (*dto.UserProfile, error) {
	if !caller.IsAuthenticated() {
		return nil, apperror.ErrUnauthenticated
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: caller.UserId()})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound
	}

	res := s.serializer.Profile(user)
	return &res, nil
}

func (s *userService) DeleteAccount(ctx context.Context, caller entity.Caller) error {
	if !caller.IsAuthenticated() {
		return apperror.ErrUnauthenticated
	}
	userId := caller.UserId()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	removed, err := uow.Notes(caller).DeleteAll(ctx)
	if err != nil {
		return err
	}
	if err := uow.AuthTokenRepository().DeleteAllByUserId(ctx, userId); err != nil {
		return err
	}
	if err := uow.UserRepository().Delete(ctx, userId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.log.Info("USER", "Account deleted", map[string]interface{}{
		"user_id":       userId,
		"notes_removed": removed,
	})
	s.events.emit(ctx, events.New(events.UserDeleted, map[string]interface{}{
		"user_id": userId,
	}, utcNow()))
	return nil
}
