package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rlammers/microblog-api/internal/db"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "repo_test.db")
	gdb, err := db.Open(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	return &GormRepo{DB: gdb}
}
