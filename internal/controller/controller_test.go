package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lumina-be/internal/pkg/logger"
	"lumina-be/internal/pkg/serverutils"
	"lumina-be/internal/pkg/token"
	"lumina-be/internal/repository/cache"
	"lumina-be/internal/repository/repotest"
	"lumina-be/internal/serializer"
	"lumina-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool                `json:"success"`
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

type testApp struct {
	app   *fiber.App
	store *repotest.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := repotest.NewStore()
	log := logger.NewNopLogger()
	noteSerializer := serializer.NewNoteSerializer(nil)

	authService := service.NewAuthService(store, token.NewManager("test-secret", time.Hour),
		cache.NewMemoryTokenCache(time.Minute), time.Minute, nil, log)
	noteService := service.NewNoteService(store, noteSerializer, nil, log)
	userService := service.NewUserService(store, noteSerializer, nil, log)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(log))
	api := app.Group("/api")

	auth := serverutils.OptionalAuth(authService)
	NewAuthController(authService).RegisterRoutes(api)
	NewNoteController(noteService).RegisterRoutes(api, auth)
	NewUserController(userService).RegisterRoutes(api, auth)

	return &testApp{app: app, store: store}
}

func (a *testApp) do(t *testing.T, method, path, tok string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

// register creates a user and returns their token.
func (a *testApp) register(t *testing.T, username string) string {
	t.Helper()

	resp, env := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "s3cret-pass",
		"password2": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}
