package service

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"quill-blog/internal/password"
	"quill-blog/internal/repository/sqlite"
)

var testPolicy = password.Policy{Scheme: password.SchemePBKDF2SHA256, Iterations: 1000, SaltLength: 8}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	require.NoError(t, sqlite.Migrate(context.Background(), db, logger))
	return db
}
