package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

type Scheduler struct {
	s gocron.Scheduler
}

func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{s: s}, nil
}

func (s *Scheduler) Start() {
	s.s.Start()
}

// Stop removes every job and waits for running tasks to finish.
func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

// Every runs task each interval until the returned stop function is called.
// The first run happens one interval after registration. stop is idempotent.
func (s *Scheduler) Every(interval time.Duration, task func()) (stop func(), err error) {
	job, err := s.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	id := job.ID()
	var once sync.Once
	return func() {
		once.Do(func() {
			err := s.s.RemoveJob(id)
			if err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
				slog.Error("Failed to remove job", "job", id.String(), "error", err)
			}
		})
	}, nil
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int {
	return len(s.s.Jobs())
}
