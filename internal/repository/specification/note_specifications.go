package specification

import (
	"strings"

	"gorm.io/gorm"
)

// NewestFirst is the canonical note ordering. Ids are UUIDv7, so id DESC
// breaks created_at ties by insertion order.
func NewestFirst() []Specification {
	return []Specification{
		OrderBy{Field: "created_at", Desc: true},
		OrderBy{Field: "id", Desc: true},
	}
}

// NoteSearchQuery matches title or text, case-insensitive
type NoteSearchQuery struct {
	Query string
}

func (s NoteSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + escapeLike(strings.TrimSpace(s.Query)) + "%"
	return db.Where("(title ILIKE ? OR text ILIKE ?)", pattern, pattern)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
