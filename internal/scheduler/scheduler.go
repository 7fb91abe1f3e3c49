package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is a named unit of periodic work.
type Job struct {
	Name    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Scheduler runs its jobs every interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	jobs      []Job
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, jobs ...Job) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		jobs:      jobs,
		interval:  interval,
	}
}

// Start schedules the jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.jobs) == 0 {
		log.Println("scheduler: no jobs configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	for _, job := range s.jobs {
		_, err := s.scheduler.Every(interval).SingletonMode().Do(func() {
			runJob(job)
		})
		if err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func runJob(job Job) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Printf("scheduler: running %s job", job.Name)
	if err := job.Run(ctx); err != nil {
		log.Printf("scheduler: %s job failed: %v", job.Name, err)
		return
	}
	log.Printf("scheduler: completed %s job", job.Name)
}
