package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByUsername struct {
	Username string
}

func (s ByUsername) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("username = ?", s.Username)
}

type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// Token Specs

type ByTokenHash struct {
	Hash string
}

func (s ByTokenHash) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("token_hash = ?", s.Hash)
}
