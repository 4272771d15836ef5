package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	robfig "github.com/robfig/cron/v3"
)

// Job represents a scheduled job
type Job struct {
	Name     string
	Schedule string
	Fn       func(ctx context.Context) error

	entryID robfig.EntryID
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	cron   *robfig.Cron
	jobs   []Job
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// slogAdapter routes robfig/cron's logging through slog.
type slogAdapter struct{}

func (slogAdapter) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("Cron: "+msg, keysAndValues...)
}

func (slogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("Cron: "+msg, append(keysAndValues, "error", err)...)
}

// NewScheduler creates a new cron scheduler evaluating schedules in loc.
func NewScheduler(loc *time.Location) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	logger := slogAdapter{}
	return &Scheduler{
		cron: robfig.New(
			robfig.WithLocation(loc),
			robfig.WithParser(robfig.NewParser(
				robfig.SecondOptional|robfig.Minute|robfig.Hour|robfig.Dom|robfig.Month|robfig.Dow|robfig.Descriptor,
			)),
			robfig.WithLogger(logger),
			robfig.WithChain(robfig.Recover(logger), robfig.SkipIfStillRunning(logger)),
		),
		jobs:   make([]Job, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds a job to the scheduler. schedule is a cron expression with an
// optional leading seconds field, or a descriptor such as "@daily".
func (s *Scheduler) AddJob(name string, schedule string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := Job{Name: name, Schedule: schedule, Fn: fn}
	id, err := s.cron.AddFunc(schedule, func() { s.executeJob(job) })
	if err != nil {
		return fmt.Errorf("register cron job %s: %w", name, err)
	}
	job.entryID = id

	s.jobs = append(s.jobs, job)
	slog.Info("Cron job registered", "name", name, "schedule", schedule)
	return nil
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("Cron scheduler started", "job_count", len(s.Jobs()))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	<-s.cron.Stop().Done()
	slog.Info("Cron scheduler stopped")
}

// Jobs returns the registered jobs.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Job(nil), s.jobs...)
}

// NextRun returns when the named job fires next. It is the zero time before
// Start or for an unknown name.
func (s *Scheduler) NextRun(name string) time.Time {
	for _, job := range s.Jobs() {
		if job.Name == name {
			return s.cron.Entry(job.entryID).Next
		}
	}
	return time.Time{}
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(job Job) {
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	if err := job.Fn(s.ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
}
