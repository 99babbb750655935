package entity

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id        uuid.UUID
	Title     string
	Text      string
	UserId    uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (n *Note) OwnedBy(userId uuid.UUID) bool {
	return n.UserId == userId
}
