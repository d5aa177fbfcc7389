package cron

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExpirer struct {
	calls int32
	count int
	err   error
}

func (s *stubExpirer) ExpireDue(time.Time) (int, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.count, s.err
}

func TestRunNow(t *testing.T) {
	expirer := &stubExpirer{count: 3}
	svc := NewService(expirer, time.Hour)

	count, err := svc.RunNow()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, int32(1), atomic.LoadInt32(&expirer.calls))
}

func TestRunNowPropagatesErrors(t *testing.T) {
	expirer := &stubExpirer{err: errors.New("db down")}
	svc := NewService(expirer, time.Hour)

	_, err := svc.RunNow()
	assert.Error(t, err)
}

func TestStartSweepsOnInterval(t *testing.T) {
	expirer := &stubExpirer{count: 1}
	svc := NewService(expirer, 20*time.Millisecond)

	svc.Start()
	defer svc.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&expirer.calls) < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.GreaterOrEqual(t, atomic.LoadInt32(&expirer.calls), int32(2))
}

func TestDefaultInterval(t *testing.T) {
	svc := NewService(&stubExpirer{}, 0)
	assert.Equal(t, time.Hour, svc.interval)
}
