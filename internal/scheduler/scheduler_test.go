package scheduler

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestJobRunsImmediatelyOnStart(t *testing.T) {
	s := New(quietLogger())

	ran := make(chan struct{})
	s.Add("fetch", time.Hour, func(ctx context.Context) error {
		close(ran)
		return nil
	})

	s.Start(context.Background())
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
}

func TestTriggerNowUnknownJob(t *testing.T) {
	s := New(quietLogger())
	err := s.TriggerNow(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown job")
}

func TestTriggerNowRejectsOverlap(t *testing.T) {
	s := New(quietLogger())

	started := make(chan struct{})
	release := make(chan struct{})
	s.Add("fetch", time.Hour, func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})

	s.Start(context.Background())

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not start")
	}

	// First run is still in flight
	err := s.TriggerNow(context.Background(), "fetch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	close(release)
	s.Stop()
}

func TestTriggerNowRunsJob(t *testing.T) {
	s := New(quietLogger())

	var runs atomic.Int32
	first := make(chan struct{})
	s.Add("fetch", time.Hour, func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			close(first)
		}
		return nil
	})

	s.Start(context.Background())

	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatal("startup run did not happen")
	}

	// The startup run may still be flagged in flight for a moment
	require.Eventually(t, func() bool {
		return s.TriggerNow(context.Background(), "fetch") == nil
	}, 2*time.Second, 10*time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, runs.Load(), int32(2))
}

func TestStopDoesNotCancelInFlightRun(t *testing.T) {
	s := New(quietLogger())

	started := make(chan struct{})
	ctxErr := make(chan error, 1)
	s.Add("fetch", time.Hour, func(ctx context.Context) error {
		close(started)
		// Stop is called while this run is still going; its context must
		// survive so venue calls and commits can finish.
		time.Sleep(150 * time.Millisecond)
		ctxErr <- ctx.Err()
		return nil
	})

	s.Start(context.Background())
	<-started
	s.Stop()

	assert.NoError(t, <-ctxErr, "shutdown lets the in-flight run complete")
}

func TestStopWaitsForInFlightRun(t *testing.T) {
	s := New(quietLogger())

	var finished atomic.Bool
	started := make(chan struct{})
	s.Add("slow", time.Hour, func(ctx context.Context) error {
		close(started)
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	s.Start(context.Background())
	<-started
	s.Stop()

	assert.True(t, finished.Load(), "Stop returns only after the run completes")
}
