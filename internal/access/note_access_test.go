package access_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lumina-be/internal/access"
	"lumina-be/internal/entity"
	"lumina-be/internal/pkg/apperror"
	"lumina-be/internal/repository/repotest"
	"lumina-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *repotest.Store
	alice *entity.User
	bob   *entity.User
}

func newFixture() *fixture {
	store := repotest.NewStore()
	return &fixture{
		store: store,
		alice: store.AddUser(&entity.User{Username: "alice"}),
		bob:   store.AddUser(&entity.User{Username: "bob"}),
	}
}

func (f *fixture) scoped(user *entity.User) *access.ScopedNotes {
	caller := entity.Anonymous()
	if user != nil {
		caller = entity.CallerFor(user)
	}
	return access.NewScopedNotes(f.store.NoteRepository(), caller)
}

func (f *fixture) note(owner *entity.User, title string, at time.Time) *entity.Note {
	return f.store.AddNote(&entity.Note{
		Title:     title,
		Text:      "text of " + title,
		UserId:    owner.Id,
		CreatedAt: at,
		UpdatedAt: at,
	})
}

func TestAll_OnlyOwnNotesNewestFirst(t *testing.T) {
	f := newFixture()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.note(f.alice, "first", base)
	f.note(f.bob, "bob's", base.Add(time.Minute))
	f.note(f.alice, "second", base.Add(2*time.Minute))

	notes, err := f.scoped(f.alice).All(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "second", notes[0].Title)
	assert.Equal(t, "first", notes[1].Title)
	for _, n := range notes {
		assert.Equal(t, f.alice.Id, n.UserId)
	}
}

func TestAll_SameTimestampFallsBackToInsertionOrder(t *testing.T) {
	f := newFixture()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.note(f.alice, "a", at)
	f.note(f.alice, "b", at)
	f.note(f.alice, "c", at)

	notes, err := f.scoped(f.alice).All(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{notes[0].Title, notes[1].Title, notes[2].Title})
}

func TestAll_Anonymous(t *testing.T) {
	f := newFixture()
	f.note(f.alice, "x", time.Now())

	notes, err := f.scoped(nil).All(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)
}

func TestAll_Search(t *testing.T) {
	f := newFixture()
	now := time.Now()
	f.note(f.alice, "Groceries", now)
	f.note(f.alice, "Work", now.Add(time.Second))

	notes, err := f.scoped(f.alice).All(context.Background(), specification.NoteSearchQuery{Query: "grocer"})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Groceries", notes[0].Title)
}

func TestGet_ForeignAndMissingLookTheSame(t *testing.T) {
	f := newFixture()
	bobs := f.note(f.bob, "secret", time.Now())

	_, errForeign := f.scoped(f.alice).Get(context.Background(), bobs.Id)
	_, errMissing := f.scoped(f.alice).Get(context.Background(), uuid.New())
	_, errAnon := f.scoped(nil).Get(context.Background(), bobs.Id)

	assert.ErrorIs(t, errForeign, apperror.ErrNotFound)
	assert.ErrorIs(t, errMissing, apperror.ErrNotFound)
	assert.ErrorIs(t, errAnon, apperror.ErrNotFound)

	got, err := f.scoped(f.bob).Get(context.Background(), bobs.Id)
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Title)
}

func TestCreate_StampsOwner(t *testing.T) {
	f := newFixture()
	note := &entity.Note{Title: "t", Text: "x", UserId: f.bob.Id}

	require.NoError(t, f.scoped(f.alice).Create(context.Background(), note))
	stored, ok := f.store.Note(note.Id)
	require.True(t, ok)
	assert.Equal(t, f.alice.Id, stored.UserId)
}

func TestCreate_Anonymous(t *testing.T) {
	f := newFixture()
	err := f.scoped(nil).Create(context.Background(), &entity.Note{Title: "t", Text: "x"})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	assert.Equal(t, 0, f.store.NoteCount())
}

func TestSave_OwnerMismatch(t *testing.T) {
	f := newFixture()
	bobs := f.note(f.bob, "bob", time.Now())

	bobs.Title = "hijacked"
	err := f.scoped(f.alice).Save(context.Background(), bobs)

	v, ok := apperror.AsValidation(err)
	require.True(t, ok)
	assert.True(t, v.Has(apperror.OwnerMismatch))

	stored, _ := f.store.Note(bobs.Id)
	assert.Equal(t, "bob", stored.Title)
}

func TestSave_MissingNote(t *testing.T) {
	f := newFixture()
	ghost := &entity.Note{Id: uuid.New(), UserId: f.alice.Id, Title: "t", Text: "x"}
	err := f.scoped(f.alice).Save(context.Background(), ghost)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDelete(t *testing.T) {
	f := newFixture()
	bobs := f.note(f.bob, "bob", time.Now())

	assert.ErrorIs(t, f.scoped(nil).Delete(context.Background(), bobs.Id), apperror.ErrUnauthenticated)
	assert.ErrorIs(t, f.scoped(f.alice).Delete(context.Background(), bobs.Id), apperror.ErrNotFound)

	require.NoError(t, f.scoped(f.bob).Delete(context.Background(), bobs.Id))
	_, ok := f.store.Note(bobs.Id)
	assert.False(t, ok)

	assert.ErrorIs(t, f.scoped(f.bob).Delete(context.Background(), bobs.Id), apperror.ErrNotFound)
}

func TestCountAndLatest(t *testing.T) {
	f := newFixture()
	base := time.Now().UTC()
	f.note(f.alice, "old", base)
	f.note(f.alice, "new", base.Add(time.Hour))
	f.note(f.bob, "bob newest", base.Add(2*time.Hour))

	count, err := f.scoped(f.alice).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	latest, err := f.scoped(f.alice).Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "new", latest.Title)

	anonCount, err := f.scoped(nil).Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, anonCount)

	anonLatest, err := f.scoped(nil).Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, anonLatest)
}

func TestDeleteAll(t *testing.T) {
	f := newFixture()
	f.note(f.alice, "a", time.Now())
	f.note(f.alice, "b", time.Now())
	f.note(f.bob, "c", time.Now())

	n, err := f.scoped(f.alice).DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, f.store.NoteCount())
}

func TestStoreErrorsAreWrapped(t *testing.T) {
	f := newFixture()
	boom := errors.New("connection reset")
	f.store.Err = boom

	_, err := f.scoped(f.alice).All(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, apperror.ErrNotFound)
}
