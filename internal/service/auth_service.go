package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"lumina-be/internal/dto"
	"lumina-be/internal/entity"
	"lumina-be/internal/pkg/apperror"
	"lumina-be/internal/pkg/logger"
	"lumina-be/internal/pkg/token"
	"lumina-be/internal/repository/cache"
	"lumina-be/internal/repository/specification"
	"lumina-be/internal/repository/unitofwork"
	"lumina-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// Logout revokes rawToken. It reports false when there was nothing to revoke.
	Logout(ctx context.Context, rawToken string) (bool, error)
	CurrentUser(ctx context.Context, rawToken string) (*entity.User, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	tokens     *token.Manager
	cache      cache.TokenCache
	cacheTTL   time.Duration
	events     eventEmitter
	log        logger.ILogger
	now        func() time.Time
	hashCost   int
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	tokens *token.Manager,
	tokenCache cache.TokenCache,
	cacheTTL time.Duration,
	publisher events.Publisher,
	log logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		tokens:     tokens,
		cache:      tokenCache,
		cacheTTL:   cacheTTL,
		events:     eventEmitter{publisher: publisher, log: log},
		log:        log,
		now:        utcNow,
		hashCost:   bcrypt.DefaultCost,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)

	verr := &apperror.ValidationError{}
	if !usernamePattern.MatchString(username) {
		verr.Add("username", apperror.FieldInvalid,
			"Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if req.Password != req.Password2 {
		verr.Add("password", apperror.PasswordMismatch, "Password fields didn't match.")
	} else {
		checkPassword(req.Password, username, verr)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	taken, err := uow.UserRepository().Count(ctx, specification.ByUsername{Username: username})
	if err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, apperror.NewValidationError("username", apperror.UsernameTaken,
			"A user with that username already exists.")
	}

	now := s.now()
	user := &entity.User{
		Id:           uuid.New(),
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hash),
		DateJoined:   now,
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	raw, err := s.issueToken(ctx, uow, user.Id, now)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.log.Info("AUTH", "User registered", map[string]interface{}{
		"user_id":  user.Id,
		"username": user.Username,
	})
	s.events.emit(ctx, events.New(events.UserRegistered, map[string]interface{}{
		"user_id":  user.Id,
		"username": user.Username,
	}, now))

	return authResponse(raw, user), nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: strings.TrimSpace(req.Username)})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.Warn("AUTH", "Failed login", map[string]interface{}{"user_id": user.Id})
		return nil, apperror.ErrInvalidCredentials
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := s.now()
	if err := uow.UserRepository().UpdateLastLogin(ctx, user.Id, now); err != nil {
		return nil, err
	}
	raw, err := s.issueToken(ctx, uow, user.Id, now)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	s.events.emit(ctx, events.New(events.UserLogin, map[string]interface{}{
		"user_id": user.Id,
	}, now))

	return authResponse(raw, user), nil
}

func (s *authService) Logout(ctx context.Context, rawToken string) (bool, error) {
	if rawToken == "" {
		return false, nil
	}

	hash := token.Hash(rawToken)
	uow := s.uowFactory.NewUnitOfWork(ctx)
	removed, err := uow.AuthTokenRepository().DeleteByHash(ctx, hash)
	if err != nil {
		return false, err
	}
	s.cache.Delete(ctx, hash)

	return removed > 0, nil
}

// CurrentUser resolves a bearer token. Any token that is malformed,
// expired, revoked or whose user is gone yields ErrInvalidToken.
func (s *authService) CurrentUser(ctx context.Context, rawToken string) (*entity.User, error) {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}
	claimedUser, err := claims.UserId()
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	hash := token.Hash(rawToken)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	userId, hit := s.cache.Get(ctx, hash)
	if !hit {
		stored, err := uow.AuthTokenRepository().FindOne(ctx, specification.ByTokenHash{Hash: hash})
		if err != nil {
			return nil, err
		}
		now := s.now()
		if stored == nil || stored.Expired(now) {
			return nil, apperror.ErrInvalidToken
		}
		userId = stored.UserId
		if ttl := s.cacheTTLFor(stored, now); ttl > 0 {
			s.cache.Set(ctx, hash, userId, ttl)
		}
	}

	if userId != claimedUser {
		return nil, apperror.ErrInvalidToken
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.cache.Delete(ctx, hash)
		return nil, apperror.ErrInvalidToken
	}
	return user, nil
}

func (s *authService) cacheTTLFor(stored *entity.AuthToken, now time.Time) time.Duration {
	ttl := s.cacheTTL
	if !stored.ExpiresAt.IsZero() {
		if left := stored.ExpiresAt.Sub(now); left < ttl {
			ttl = left
		}
	}
	return ttl
}

func (s *authService) issueToken(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, now time.Time) (string, error) {
	tokenId := uuid.New()
	raw, expiresAt, err := s.tokens.Issue(userId, tokenId, now)
	if err != nil {
		return "", err
	}

	err = uow.AuthTokenRepository().Create(ctx, &entity.AuthToken{
		Id:        tokenId,
		UserId:    userId,
		TokenHash: token.Hash(raw),
		ExpiresAt: expiresAt,
		CreatedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return raw, nil
}

func checkPassword(password, username string, verr *apperror.ValidationError) {
	if len([]rune(password)) < minPasswordLength {
		verr.Add("password", apperror.PasswordTooWeak,
			fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength))
	}
	if strings.Trim(password, "0123456789") == "" && password != "" {
		verr.Add("password", apperror.PasswordTooWeak, "This password is entirely numeric.")
	}
	if username != "" && strings.EqualFold(password, username) {
		verr.Add("password", apperror.PasswordTooWeak, "The password is too similar to the username.")
	}
}

func authResponse(raw string, user *entity.User) *dto.AuthResponse {
	return &dto.AuthResponse{
		Token: raw,
		User: dto.UserDTO{
			Id:       user.Id,
			Username: user.Username,
			Email:    user.Email,
		},
	}
}
