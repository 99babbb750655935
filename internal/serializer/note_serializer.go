// Package serializer shapes notes on their way in and out of the API. Input
// rules (defaults, trimming, length limits) live here as well.
package serializer

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"lumina-be/internal/dto"
	"lumina-be/internal/entity"
	"lumina-be/internal/pkg/apperror"
)

const (
	DefaultTitle   = "Note"
	MaxTitleLength = 50
	PreviewLength  = 100

	previewSuffix = "..."
	displayLayout = "02.01.2006 15:04"
)

type NoteSerializer struct {
	loc *time.Location
}

// NewNoteSerializer renders formatted timestamps in loc; nil means UTC.
func NewNoteSerializer(loc *time.Location) *NoteSerializer {
	if loc == nil {
		loc = time.UTC
	}
	return &NoteSerializer{loc: loc}
}

// BuildNote validates a create payload and returns a note carrying only
// title and text. Owner, id and timestamps are assigned by the caller.
func (s *NoteSerializer) BuildNote(req *dto.CreateNoteRequest) (*entity.Note, error) {
	verr := &apperror.ValidationError{}

	title := DefaultTitle
	if req.Title != nil {
		if t, ok := s.cleanTitle(*req.Title, verr); ok && t != "" {
			title = t
		}
	}

	var text string
	switch {
	case req.Text == nil:
		verr.Add("text", apperror.TextRequired, "This field is required.")
	case strings.TrimSpace(*req.Text) == "":
		verr.Add("text", apperror.TextRequired, "This field may not be blank.")
	default:
		text = *req.Text
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return &entity.Note{Title: title, Text: text}, nil
}

// ApplyUpdate copies the provided fields of req onto note. Omitted fields
// are left alone and a blank title keeps the current one. note is not
// touched when validation fails.
func (s *NoteSerializer) ApplyUpdate(note *entity.Note, req *dto.UpdateNoteRequest) error {
	verr := &apperror.ValidationError{}

	title := note.Title
	if req.Title != nil {
		if t, ok := s.cleanTitle(*req.Title, verr); ok && t != "" {
			title = t
		}
	}

	text := note.Text
	if req.Text != nil {
		if strings.TrimSpace(*req.Text) == "" {
			verr.Add("text", apperror.TextRequired, "This field may not be blank.")
		} else {
			text = *req.Text
		}
	}

	if err := verr.OrNil(); err != nil {
		return err
	}
	note.Title = title
	note.Text = text
	return nil
}

func (s *NoteSerializer) cleanTitle(raw string, verr *apperror.ValidationError) (string, bool) {
	title := strings.TrimSpace(raw)
	if utf8.RuneCountInString(title) > MaxTitleLength {
		verr.Add("title", apperror.TitleTooLong,
			fmt.Sprintf("Title must not exceed %d characters.", MaxTitleLength))
		return "", false
	}
	return title, true
}

func (s *NoteSerializer) ListView(note *entity.Note, owner *entity.User) dto.NoteListView {
	return dto.NoteListView{
		Id:                 note.Id,
		Title:              note.Title,
		Preview:            Preview(note.Text),
		CreatedAt:          note.CreatedAt,
		CreatedAtFormatted: s.FormatTime(note.CreatedAt),
		Owner:              s.Profile(owner),
	}
}

func (s *NoteSerializer) ListViews(notes []*entity.Note, owner *entity.User) []dto.NoteListView {
	out := make([]dto.NoteListView, 0, len(notes))
	for _, n := range notes {
		out = append(out, s.ListView(n, owner))
	}
	return out
}

func (s *NoteSerializer) DetailView(note *entity.Note, owner *entity.User) dto.NoteDetailView {
	return dto.NoteDetailView{
		Id:                 note.Id,
		Title:              note.Title,
		Text:               note.Text,
		CreatedAt:          note.CreatedAt,
		UpdatedAt:          note.UpdatedAt,
		CreatedAtFormatted: s.FormatTime(note.CreatedAt),
		UpdatedAtFormatted: s.FormatTime(note.UpdatedAt),
		Owner:              s.Profile(owner),
	}
}

func (s *NoteSerializer) Profile(user *entity.User) dto.UserProfile {
	if user == nil {
		return dto.UserProfile{}
	}
	return dto.UserProfile{
		Id:         user.Id,
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		DateJoined: user.DateJoined,
		LastLogin:  user.LastLogin,
	}
}

// Statistics reports the newest created_at as last_created, null when
// there are no notes.
func (s *NoteSerializer) Statistics(total int64, latest *entity.Note) dto.NoteStatisticsResponse {
	res := dto.NoteStatisticsResponse{TotalNotes: total}
	if total > 0 && latest != nil {
		createdAt := latest.CreatedAt
		formatted := s.FormatTime(createdAt)
		res.LastCreated = &createdAt
		res.LastCreatedFormatted = &formatted
	}
	return res
}

func (s *NoteSerializer) FormatTime(t time.Time) string {
	return t.In(s.loc).Format(displayLayout)
}

// Preview cuts text to PreviewLength characters and marks the cut.
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= PreviewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:PreviewLength]) + previewSuffix
}
