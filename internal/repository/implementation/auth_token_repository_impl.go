package implementation

import (
	"context"
	"errors"

	"lumina-be/internal/entity"
	"lumina-be/internal/mapper"
	"lumina-be/internal/model"
	"lumina-be/internal/repository/contract"
	"lumina-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthTokenRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewAuthTokenRepository(db *gorm.DB) contract.AuthTokenRepository {
	return &AuthTokenRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *AuthTokenRepositoryImpl) Create(ctx context.Context, token *entity.AuthToken) error {
	m := r.mapper.TokenToModel(token)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*token = *r.mapper.TokenToEntity(m)
	return nil
}

func (r *AuthTokenRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AuthToken, error) {
	var m model.AuthToken
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TokenToEntity(&m), nil
}

func (r *AuthTokenRepositoryImpl) DeleteByHash(ctx context.Context, hash string) (int64, error) {
	res := r.db.WithContext(ctx).Where("token_hash = ?", hash).Delete(&model.AuthToken{})
	return res.RowsAffected, res.Error
}

func (r *AuthTokenRepositoryImpl) DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.AuthToken{}).Error
}
