// Package backup snapshots the blog database into object storage and keeps
// a bounded number of snapshots.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"quill-blog/internal/repository/sqlite"
	"quill-blog/internal/storage"
)

const (
	snapshotPrefix     = "blog-"
	snapshotSuffix     = ".db"
	snapshotTimeLayout = "20060102T150405Z"
)

type Config struct {
	Bucket    string
	KeyPrefix string
	// Keep is how many snapshots survive pruning; zero disables pruning.
	Keep    int
	TempDir string
	Logger  *logrus.Logger
}

// Result describes one completed backup.
type Result struct {
	Location string
	Pruned   []string
}

type Runner struct {
	db    *sql.DB
	store storage.Service
	cfg   Config
	now   func() time.Time
}

func NewRunner(db *sql.DB, store storage.Service, cfg Config) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &Runner{db: db, store: store, cfg: cfg, now: time.Now}
}

// Run snapshots the database, uploads it and prunes old snapshots.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.cfg.Bucket == "" {
		return Result{}, fmt.Errorf("backup bucket is required")
	}

	dir, err := os.MkdirTemp(r.cfg.TempDir, "blog-backup-*")
	if err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	local := filepath.Join(dir, "blog.db")
	if err := sqlite.Snapshot(ctx, r.db, local); err != nil {
		return Result{}, err
	}

	key := r.objectKey(r.now())
	log := r.cfg.Logger.WithField("key", key)
	location, err := r.store.UploadFile(ctx, local, storage.UploadOptions{
		Bucket:      r.cfg.Bucket,
		Key:         key,
		ContentType: "application/vnd.sqlite3",
		ProgressCallback: func(done, total int64) {
			log.Debugf("uploaded %d/%d bytes", done, total)
		},
	})
	if err != nil {
		return Result{}, err
	}
	log.Infof("snapshot stored at %s", location)

	result := Result{Location: location}
	if r.cfg.Keep <= 0 {
		return result, nil
	}

	objects, err := r.store.ListObjects(ctx, r.cfg.Bucket, r.listPrefix())
	if err != nil {
		return result, fmt.Errorf("list snapshots: %w", err)
	}
	stale := staleSnapshots(objects, r.cfg.KeyPrefix, r.cfg.Keep)
	if len(stale) == 0 {
		return result, nil
	}
	if err := r.store.DeleteObjects(ctx, r.cfg.Bucket, stale); err != nil {
		return result, fmt.Errorf("prune snapshots: %w", err)
	}
	r.cfg.Logger.Infof("pruned %d old snapshots", len(stale))
	result.Pruned = stale
	return result, nil
}

func (r *Runner) objectKey(at time.Time) string {
	return path.Join(r.cfg.KeyPrefix, snapshotPrefix+at.UTC().Format(snapshotTimeLayout)+snapshotSuffix)
}

func (r *Runner) listPrefix() string {
	if r.cfg.KeyPrefix == "" {
		return snapshotPrefix
	}
	return r.cfg.KeyPrefix + "/" + snapshotPrefix
}

// staleSnapshots returns the snapshot keys beyond the newest keep. Keys
// embed a sortable UTC timestamp, so lexical order is chronological.
func staleSnapshots(objects []storage.ObjectInfo, prefix string, keep int) []string {
	dir := prefix
	if dir == "" {
		dir = "."
	}

	var keys []string
	for _, obj := range objects {
		if path.Dir(obj.Key) != dir {
			continue
		}
		name := path.Base(obj.Key)
		if !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotSuffix)
		if _, err := time.Parse(snapshotTimeLayout, stamp); err != nil {
			continue
		}
		keys = append(keys, obj.Key)
	}
	if len(keys) <= keep {
		return nil
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys[keep:]
}
