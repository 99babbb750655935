package dto

import (
	"time"

	"github.com/google/uuid"
)

// Pointers distinguish an omitted field from an empty one.
type CreateNoteRequest struct {
	Title *string `json:"title"`
	Text  *string `json:"text"`
}

type UpdateNoteRequest struct {
	Id    uuid.UUID `json:"-"`
	Title *string   `json:"title"`
	Text  *string   `json:"text"`
}

type NoteListView struct {
	Id                 uuid.UUID   `json:"id"`
	Title              string      `json:"title"`
	Preview            string      `json:"preview"`
	CreatedAt          time.Time   `json:"created_at"`
	CreatedAtFormatted string      `json:"created_at_formatted"`
	Owner              UserProfile `json:"owner_profile"`
}

type NoteDetailView struct {
	Id                 uuid.UUID   `json:"id"`
	Title              string      `json:"title"`
	Text               string      `json:"text"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	CreatedAtFormatted string      `json:"created_at_formatted"`
	UpdatedAtFormatted string      `json:"updated_at_formatted"`
	Owner              UserProfile `json:"owner_profile"`
}

type NoteStatisticsResponse struct {
	TotalNotes           int64      `json:"total_notes"`
	LastCreated          *time.Time `json:"last_created"`
	LastCreatedFormatted *string    `json:"last_created_formatted"`
}

type ListNotesQuery struct {
	Search string `query:"search"`
}
