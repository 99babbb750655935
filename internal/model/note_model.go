package model

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string    `gorm:"type:varchar(50);not null;default:'Note'"`
	Text      string    `gorm:"type:text;not null"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index:idx_notes_user_created,priority:1"`
	CreatedAt time.Time `gorm:"not null;index:idx_notes_user_created,priority:2,sort:desc"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Note) TableName() string {
	return "notes"
}
