package janitor

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) PurgeExpiredSessions(context.Context) (int64, error) {
	p.calls.Add(1)
	return 1, p.err
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestJanitorSweepsUntilShutdown(t *testing.T) {
	purger := &countingPurger{}
	j := New(Config{Interval: 5 * time.Millisecond, Logger: quietLogger()}, purger)

	require.NoError(t, j.Start(context.Background()))
	assert.GreaterOrEqual(t, purger.calls.Load(), int32(1))

	assert.Eventually(t, func() bool { return purger.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	j.Shutdown()
	stopped := purger.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, purger.calls.Load())
}

func TestJanitorStartIsIdempotent(t *testing.T) {
	purger := &countingPurger{err: errors.New("db locked")}
	j := New(Config{Interval: time.Hour, Logger: quietLogger()}, purger)

	require.NoError(t, j.Start(context.Background()))
	require.NoError(t, j.Start(context.Background()))
	j.Shutdown()

	assert.Equal(t, int32(1), purger.calls.Load())
}
