package backup

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill-blog/internal/repository/sqlite"
	"quill-blog/internal/storage"
)

type fakeStore struct {
	uploaded map[string]int64
	objects  []storage.ObjectInfo
	deleted  []string
	listErr  error
}

func (f *fakeStore) UploadFile(_ context.Context, localPath string, opts storage.UploadOptions) (string, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return "", err
	}
	if f.uploaded == nil {
		f.uploaded = map[string]int64{}
	}
	f.uploaded[opts.Key] = info.Size()
	f.objects = append(f.objects, storage.ObjectInfo{Key: opts.Key, Size: info.Size()})
	if opts.ProgressCallback != nil {
		opts.ProgressCallback(info.Size(), info.Size())
	}
	return "s3://" + opts.Bucket + "/" + opts.Key, nil
}

func (f *fakeStore) ListObjects(context.Context, string, string) ([]storage.ObjectInfo, error) {
	return f.objects, f.listErr
}

func (f *fakeStore) DeleteObjects(_ context.Context, _ string, keys []string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

func openTestDB(t *testing.T, logger *logrus.Logger) *sql.DB {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(context.Background(), db, logger))
	return db
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRunUploadsAndPrunes(t *testing.T) {
	logger := quietLogger()
	db := openTestDB(t, logger)

	store := &fakeStore{objects: []storage.ObjectInfo{
		{Key: "backups/blog-20260101T000000Z.db"},
		{Key: "backups/blog-20260102T000000Z.db"},
		{Key: "backups/blog-20260103T000000Z.db"},
		{Key: "backups/notes.txt"},
		{Key: "backups/nested/blog-20250101T000000Z.db"},
	}}

	runner := NewRunner(db, store, Config{
		Bucket:    "bucket",
		KeyPrefix: "/backups/",
		Keep:      2,
		TempDir:   t.TempDir(),
		Logger:    logger,
	})
	runner.now = func() time.Time { return time.Date(2026, time.October, 15, 3, 4, 5, 0, time.UTC) }

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "s3://bucket/backups/blog-20261015T030405Z.db", result.Location)
	assert.Positive(t, store.uploaded["backups/blog-20261015T030405Z.db"])
	assert.ElementsMatch(t, []string{
		"backups/blog-20260102T000000Z.db",
		"backups/blog-20260101T000000Z.db",
	}, result.Pruned)
	assert.Equal(t, result.Pruned, store.deleted)
}

func TestRunWithoutPruning(t *testing.T) {
	logger := quietLogger()
	db := openTestDB(t, logger)
	store := &fakeStore{listErr: errors.New("must not list")}

	runner := NewRunner(db, store, Config{Bucket: "bucket", TempDir: t.TempDir(), Logger: logger})
	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Pruned)
	assert.Len(t, store.uploaded, 1)
}

func TestRunRequiresBucket(t *testing.T) {
	logger := quietLogger()
	db := openTestDB(t, logger)

	_, err := NewRunner(db, &fakeStore{}, Config{Logger: logger}).Run(context.Background())
	assert.Error(t, err)
}

func TestStaleSnapshotsAtBucketRoot(t *testing.T) {
	objects := []storage.ObjectInfo{
		{Key: "blog-20260101T000000Z.db"},
		{Key: "blog-20260102T000000Z.db"},
		{Key: "other/blog-20260103T000000Z.db"},
		{Key: "blog-garbage.db"},
	}

	assert.Equal(t, []string{"blog-20260101T000000Z.db"}, staleSnapshots(objects, "", 1))
	assert.Nil(t, staleSnapshots(objects, "", 5))
}
