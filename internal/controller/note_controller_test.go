package controller

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"lumina-be/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createNote(t *testing.T, a *testApp, tok string, body map[string]string) dto.NoteDetailView {
	t.Helper()
	resp, env := a.do(t, http.MethodPost, "/api/notes/", tok, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)

	var note dto.NoteDetailView
	require.NoError(t, json.Unmarshal(env.Data, &note))
	return note
}

func TestNotes_CRUD(t *testing.T) {
	a := newTestApp(t)
	tok := a.register(t, "alice")

	note := createNote(t, a, tok, map[string]string{"text": "first body"})
	assert.Equal(t, "Note", note.Title)
	assert.Equal(t, "alice", note.Owner.Username)
	assert.NotEmpty(t, note.CreatedAtFormatted)

	resp, env := a.do(t, http.MethodGet, "/api/notes/"+note.Id.String(), tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var shown dto.NoteDetailView
	require.NoError(t, json.Unmarshal(env.Data, &shown))
	assert.Equal(t, "first body", shown.Text)

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &wire))
	assert.Contains(t, wire, "owner_profile")
	assert.NotContains(t, wire, "owner")

	resp, env = a.do(t, http.MethodPatch, "/api/notes/"+note.Id.String(), tok, map[string]string{"title": "Renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var patched dto.NoteDetailView
	require.NoError(t, json.Unmarshal(env.Data, &patched))
	assert.Equal(t, "Renamed", patched.Title)
	assert.Equal(t, "first body", patched.Text)

	resp, _ = a.do(t, http.MethodPut, "/api/notes/"+note.Id.String(), tok, map[string]string{"text": "second body"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = a.do(t, http.MethodDelete, "/api/notes/"+note.Id.String(), tok, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = a.do(t, http.MethodGet, "/api/notes/"+note.Id.String(), tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNotes_ListView(t *testing.T) {
	a := newTestApp(t)
	alice := a.register(t, "alice")
	bob := a.register(t, "bob")

	createNote(t, a, alice, map[string]string{"title": "old", "text": strings.Repeat("a", 120)})
	createNote(t, a, alice, map[string]string{"title": "new", "text": "short"})
	createNote(t, a, bob, map[string]string{"title": "bob", "text": "x"})

	resp, env := a.do(t, http.MethodGet, "/api/notes/", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0]["title"])
	assert.Equal(t, strings.Repeat("a", 100)+"...", list[1]["preview"])
	assert.NotContains(t, list[0], "text")
	assert.NotContains(t, list[0], "updated_at")

	resp, env = a.do(t, http.MethodGet, "/api/notes/?search=NEW", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
}

func TestNotes_Anonymous(t *testing.T) {
	a := newTestApp(t)
	tok := a.register(t, "alice")
	note := createNote(t, a, tok, map[string]string{"text": "x"})

	resp, env := a.do(t, http.MethodGet, "/api/notes/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "[]", string(env.Data))

	resp, _ = a.do(t, http.MethodGet, "/api/notes/"+note.Id.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/api/notes/", "", map[string]string{"text": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = a.do(t, http.MethodDelete, "/api/notes/"+note.Id.String(), "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNotes_InvalidTokenIsUnauthorized(t *testing.T) {
	a := newTestApp(t)

	resp, _ := a.do(t, http.MethodGet, "/api/notes/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNotes_ValidationErrors(t *testing.T) {
	a := newTestApp(t)
	tok := a.register(t, "alice")

	resp, env := a.do(t, http.MethodPost, "/api/notes/", tok, map[string]string{
		"title": strings.Repeat("t", 51),
		"text":  "  ",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Contains(t, env.Errors, "title")
	assert.Contains(t, env.Errors, "text")

	resp, env = a.do(t, http.MethodPost, "/api/notes/", tok, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Errors, "text")
}

func TestNotes_ForeignNoteIsNotFound(t *testing.T) {
	a := newTestApp(t)
	alice := a.register(t, "alice")
	bob := a.register(t, "bob")
	bobs := createNote(t, a, bob, map[string]string{"text": "bob's secret"})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		var body interface{}
		if method == http.MethodPut || method == http.MethodPatch {
			body = map[string]string{"text": "overwrite"}
		}
		resp, foreign := a.do(t, method, "/api/notes/"+bobs.Id.String(), alice, body)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, method)

		_, missing := a.do(t, method, "/api/notes/"+uuid.NewString(), alice, body)
		assert.Equal(t, missing.Message, foreign.Message, method)
	}

	resp, _ := a.do(t, http.MethodGet, "/api/notes/not-a-uuid", alice, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	stored, ok := a.store.Note(bobs.Id)
	require.True(t, ok)
	assert.Equal(t, "bob's secret", stored.Text)
}

func TestNotes_Statistics(t *testing.T) {
	a := newTestApp(t)
	tok := a.register(t, "alice")

	resp, env := a.do(t, http.MethodGet, "/api/notes/statistics", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"total_notes":0,"last_created":null,"last_created_formatted":null}`, string(env.Data))

	var newest dto.NoteDetailView
	for _, title := range []string{"A", "B", "C"} {
		newest = createNote(t, a, tok, map[string]string{"title": title, "text": "x"})
	}

	_, env = a.do(t, http.MethodGet, "/api/notes/statistics", tok, nil)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &raw))
	lastCreated, ok := raw["last_created"].(string)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339Nano, lastCreated)
	require.NoError(t, err)
	assert.True(t, newest.CreatedAt.Equal(parsed))
	assert.Equal(t, newest.CreatedAtFormatted, raw["last_created_formatted"])
	assert.EqualValues(t, 3, raw["total_notes"])
}

func TestNotes_LegacyCreate(t *testing.T) {
	a := newTestApp(t)
	tok := a.register(t, "alice")

	resp, env := a.do(t, http.MethodPost, "/api/notes/create_note", tok, map[string]string{"text": "legacy"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Note created successfully", env.Message)

	resp, env = a.do(t, http.MethodPost, "/api/notes/create_note", tok, map[string]string{"title": "no text"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, env.Message)
	assert.Contains(t, env.Errors, "text")
}
