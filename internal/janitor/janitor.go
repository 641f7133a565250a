// Package janitor runs periodic housekeeping for the blog server.
package janitor

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SessionPurger deletes expired login sessions.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// Janitor sweeps expired sessions on a fixed interval until shut down.
type Janitor interface {
	Start(ctx context.Context) error
	Shutdown()
}

type Config struct {
	Interval time.Duration
	Logger   *logrus.Logger
}

type janitor struct {
	cfg      Config
	sessions SessionPurger

	wg     sync.WaitGroup
	mu     sync.Mutex
	cancel context.CancelFunc
}

func New(cfg Config, sessions SessionPurger) Janitor {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &janitor{cfg: cfg, sessions: sessions}
}

// Start purges once immediately and then on every tick.
func (j *janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.sweep(ctx)

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ticker := time.NewTicker(j.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.sweep(ctx)
			}
		}
	}()

	j.cfg.Logger.Infof("session janitor started, interval %s", j.cfg.Interval)
	return nil
}

func (j *janitor) Shutdown() {
	j.mu.Lock()
	cancel := j.cancel
	j.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
	j.cfg.Logger.Info("session janitor stopped")
}

func (j *janitor) sweep(ctx context.Context) {
	n, err := j.sessions.PurgeExpiredSessions(ctx)
	if err != nil {
		if ctx.Err() == nil {
			j.cfg.Logger.Warnf("purge expired sessions: %v", err)
		}
		return
	}
	if n > 0 {
		j.cfg.Logger.WithField("count", n).Info("purged expired sessions")
	}
}
