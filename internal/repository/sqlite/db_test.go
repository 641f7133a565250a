package sqlite

import (
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill-blog/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	require.NoError(t, Migrate(context.Background(), db, logger))
	return db
}

func createUser(t *testing.T, db *sql.DB, email string) *domain.User {
	t.Helper()

	user := &domain.User{Name: "user " + email, Email: email, PasswordHash: "hash"}
	_, err := NewUserRepository(db).Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

func TestParseDatabaseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "empty falls back", raw: "", want: DefaultPath},
		{name: "bare path", raw: "data/blog.db", want: "data/blog.db"},
		{name: "sqlalchemy relative", raw: "sqlite:///blog.db", want: "blog.db"},
		{name: "sqlalchemy absolute", raw: "sqlite:////var/lib/blog.db", want: "/var/lib/blog.db"},
		{name: "file uri with query", raw: "file:blog.db?cache=shared", want: "blog.db"},
		{name: "postgres rejected", raw: "postgres://localhost/blog", wantErr: true},
		{name: "empty sqlite path", raw: "sqlite:///", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDatabaseURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := openTestDB(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	require.NoError(t, Migrate(context.Background(), db, logger))
}

func TestSnapshot(t *testing.T) {
	db := openTestDB(t)
	createUser(t, db, "alice@x.com")

	dest := filepath.Join(t.TempDir(), "snap", "blog.db")
	require.NoError(t, Snapshot(context.Background(), db, dest))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	snap, err := Open(dest)
	require.NoError(t, err)
	defer snap.Close()

	var n int
	require.NoError(t, snap.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Equal(t, 1, n)
}
