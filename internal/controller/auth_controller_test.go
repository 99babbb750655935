package controller

import (
	"encoding/json"
	"net/http"
	"testing"

	"lumina-be/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_RegisterValidation(t *testing.T) {
	a := newTestApp(t)

	resp, env := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "not-an-email",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Errors, "email")
	assert.Contains(t, env.Errors, "password")
	assert.Contains(t, env.Errors, "password2")

	resp, env = a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":  "alice",
		"password":  "s3cret-pass",
		"password2": "s3cret-pasz",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Errors, "password")
}

func TestAuth_LoginFlow(t *testing.T) {
	a := newTestApp(t)
	a.register(t, "alice")

	resp, env := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Errors, "password")

	resp, _ = a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ghost", "password": "whatever1"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "wrong-pass"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var auth dto.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	require.NotEmpty(t, auth.Token)
	assert.Equal(t, "alice", auth.User.Username)

	resp, _ = a.do(t, http.MethodGet, "/api/notes/", auth.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_Logout(t *testing.T) {
	a := newTestApp(t)
	tok := a.register(t, "alice")

	resp, env := a.do(t, http.MethodPost, "/api/auth/logout", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Successfully logged out.", env.Message)

	resp, _ = a.do(t, http.MethodGet, "/api/notes/", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, env = a.do(t, http.MethodPost, "/api/auth/logout", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "No active session; already logged out.", env.Message)
}
