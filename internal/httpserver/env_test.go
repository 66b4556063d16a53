package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/rlammers/microblog-api/internal/db"
	"github.com/rlammers/microblog-api/internal/middleware"
	"github.com/rlammers/microblog-api/internal/repo"
	"github.com/rlammers/microblog-api/internal/search"
	"github.com/rlammers/microblog-api/internal/service"
	"github.com/rlammers/microblog-api/internal/tasks"
	"github.com/rlammers/microblog-api/internal/tokens"
)

type testEnv struct {
	E      *echo.Echo
	Repo   *repo.GormRepo
	Issuer *tokens.Issuer
	Runner *tasks.Runner
	Posts  *PostHTTP
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "api_test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	gormRepo := &repo.GormRepo{DB: gdb}

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer := &tokens.Issuer{
		Secret:     []byte("test-jwt-secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}
	runner := tasks.NewRunner(gormRepo, tasks.NewProgressStore(rdb), logger)

	posts := &PostHTTP{Repo: gormRepo}

	e := echo.New()
	Register(e, &Deps{
		Auth: &AuthHTTP{
			Svc: &service.AuthService{Repo: gormRepo, Issuer: issuer},
		},
		Tasks: &TaskHTTP{
			Svc: &service.TaskService{Repo: gormRepo, Runner: runner, Tick: time.Millisecond},
		},
		Users:    &UserHTTP{Repo: gormRepo},
		Posts:    posts,
		Comments: &CommentHTTP{Repo: gormRepo},
		AuthMW:   middleware.NewAuth(issuer, gormRepo),
	})

	return &testEnv{E: e, Repo: gormRepo, Issuer: issuer, Runner: runner, Posts: posts}
}

func (env *testEnv) setSearchIndex(idx *search.PostIndex) {
	env.Posts.Index = idx
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func registerPayload(username, email string) map[string]string {
	return map[string]string{
		"username":   username,
		"password":   "Secret123",
		"first_name": "Test",
		"last_name":  "User",
		"email":      email,
		"birthday":   "1990-04-01",
	}
}

// registerAndLogin creates a user and returns its access and refresh
// tokens.
func (env *testEnv) registerAndLogin(t *testing.T, username, email string) (string, string) {
	t.Helper()

	rec := env.do(t, "POST", "/auth/register", "", registerPayload(username, email))
	require.Equal(t, 201, rec.Code, rec.Body.String())

	rec = env.do(t, "POST", "/auth/login", "", map[string]string{
		"username": username,
		"password": "Secret123",
	})
	require.Equal(t, 200, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	access, _ := body["access_token"].(string)
	refresh, _ := body["refresh_token"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	return access, refresh
}
