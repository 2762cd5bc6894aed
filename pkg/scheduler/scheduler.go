// Package scheduler triggers periodic collection runs
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/robfig/cron/v3"

	"github.com/msaleem/trendwatch/pkg/domain"
)

// Runner starts a collection run
type Runner interface {
	Run(ctx context.Context) (*domain.Snapshot, error)
}

// Status reports the scheduler state for the API
type Status struct {
	Running   bool      `json:"running"`
	Schedule  string    `json:"schedule"`
	RunCount  int       `json:"run_count"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	NextRun   time.Time `json:"next_run,omitempty"`
}

// Scheduler fires collection runs on a cron schedule. Manual triggers go
// through the same runner, overlap protection lives in the collector.
type Scheduler struct {
	runner   Runner
	schedule string
	timeout  time.Duration

	cron    *cron.Cron
	entryID cron.EntryID
	manual  sync.WaitGroup

	mu        sync.Mutex
	started   bool
	runCount  int
	lastRun   time.Time
	lastError string
}

// New creates a scheduler. Schedule uses cron notation, including the
// "@every 6h" form.
func New(runner Runner, schedule string, timeout time.Duration) *Scheduler {
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &Scheduler{
		runner:   runner,
		schedule: schedule,
		timeout:  timeout,
		cron:     cron.New(),
	}
}

// Start registers the job and starts the cron loop
func (s *Scheduler) Start() error {
	id, err := s.cron.AddFunc(s.schedule, s.runOnce)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.schedule, err)
	}
	s.mu.Lock()
	s.entryID = id
	s.started = true
	s.mu.Unlock()
	s.cron.Start()
	lgr.Printf("[INFO] scheduler started, schedule %q", s.schedule)
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish, manually
// triggered ones included
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.manual.Wait()
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
	lgr.Printf("[INFO] scheduler stopped")
}

// TriggerNow runs a collection immediately, outside the schedule
func (s *Scheduler) TriggerNow() {
	s.manual.Add(1)
	go func() {
		defer s.manual.Done()
		s.runOnce()
	}()
}

// Status returns the current scheduler state
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Running:   s.started,
		Schedule:  s.schedule,
		RunCount:  s.runCount,
		LastRun:   s.lastRun,
		LastError: s.lastError,
	}
	if s.started {
		if entry := s.cron.Entry(s.entryID); entry.Valid() {
			st.NextRun = entry.Next
		}
	}
	return st
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	snap, err := s.runner.Run(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runCount++
	s.lastRun = time.Now()
	if err != nil {
		s.lastError = err.Error()
		lgr.Printf("[WARN] scheduled collection failed: %v", err)
		return
	}
	s.lastError = ""
	lgr.Printf("[INFO] scheduled collection %s completed, %d trending keywords", snap.RunID, len(snap.Records))
}
