// Package scheduler runs named background jobs on fixed intervals. A job
// never runs concurrently with itself; overlapping ticks and manual triggers
// are skipped while a run is in flight.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// JobFunc is one scheduled unit of work
type JobFunc func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	fn       JobFunc
	inFlight atomic.Bool
}

// Scheduler owns a registry of interval jobs
type Scheduler struct {
	log    *logrus.Logger
	jobs   map[string]*job
	order  []string
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New creates an empty scheduler
func New(log *logrus.Logger) *Scheduler {
	return &Scheduler{
		log:  log,
		jobs: make(map[string]*job),
	}
}

// Add registers a job. Must be called before Start.
func (s *Scheduler) Add(name string, interval time.Duration, fn JobFunc) {
	s.jobs[name] = &job{name: name, interval: interval, fn: fn}
	s.order = append(s.order, name)
}

// Start launches one goroutine per job. Each job runs once immediately, then
// on every tick. Start returns right away; use Stop for a clean shutdown.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	for _, name := range s.order {
		j := s.jobs[name]
		s.wg.Add(1)
		go func(j *job) {
			defer s.wg.Done()
			s.runJob(ctx, j)

			ticker := time.NewTicker(j.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					s.runJob(ctx, j)
				}
			}
		}(j)
	}
}

// Stop halts the ticker loops and waits for in-flight runs to finish. Runs
// already started are allowed to complete; only future ticks are cancelled.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// TriggerNow runs a job immediately in a new goroutine. Returns an error for
// unknown jobs or when the job is already running. The in-flight flag is
// claimed here, before returning, so an accepted trigger always runs.
func (s *Scheduler) TriggerNow(ctx context.Context, name string) error {
	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}
	if !j.inFlight.CompareAndSwap(false, true) {
		return fmt.Errorf("job %s is already running", name)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer j.inFlight.Store(false)
		s.execute(ctx, j)
	}()
	return nil
}

func (s *Scheduler) runJob(ctx context.Context, j *job) {
	if !j.inFlight.CompareAndSwap(false, true) {
		s.log.WithField("job", j.name).Warn("Previous run still in flight, skipping")
		return
	}
	defer j.inFlight.Store(false)

	s.execute(ctx, j)
}

// execute runs the job body detached from the loop's cancellation, so a
// shutdown signal does not abort venue calls or commits mid-run.
func (s *Scheduler) execute(ctx context.Context, j *job) {
	ctx = context.WithoutCancel(ctx)

	start := time.Now()
	if err := j.fn(ctx); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"job":      j.name,
			"duration": time.Since(start).String(),
		}).Error("Job failed")
		return
	}
	s.log.WithFields(logrus.Fields{
		"job":      j.name,
		"duration": time.Since(start).String(),
	}).Debug("Job finished")
}
