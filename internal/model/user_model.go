package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string     `gorm:"type:varchar(150);uniqueIndex;not null"`
	Email        string     `gorm:"type:varchar(254);not null;default:''"`
	FirstName    string     `gorm:"type:varchar(150);not null;default:''"`
	LastName     string     `gorm:"type:varchar(150);not null;default:''"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	DateJoined   time.Time  `gorm:"autoCreateTime"`
	LastLogin    *time.Time
}

func (User) TableName() string {
	return "users"
}

type AuthToken struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"type:char(64);uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}
