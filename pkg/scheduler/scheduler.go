package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/korjavin/ispirami/pkg/logger"
)

// JobFunc is one run of a job
type JobFunc func(ctx context.Context) error

type job struct {
	name       string
	interval   time.Duration
	runAtStart bool
	fn         JobFunc
}

// Service runs registered jobs on their intervals
type Service struct {
	jobs   []job
	logger *logger.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// New creates a new scheduler service
func New() *Service {
	return &Service{
		logger: logger.New("scheduler"),
	}
}

// Every registers fn to run every interval. When runAtStart is true the
// first run happens as soon as the scheduler starts. Jobs with a
// non-positive interval are ignored.
func (s *Service) Every(name string, interval time.Duration, runAtStart bool, fn JobFunc) {
	if interval <= 0 {
		s.logger.Info("Job %s disabled", name)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job{name: name, interval: interval, runAtStart: runAtStart, fn: fn})
}

// Jobs returns the names of the registered jobs
func (s *Service) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.jobs))
	for i, j := range s.jobs {
		names[i] = j.name
	}
	return names
}

// Start starts every job. Jobs stop when ctx is cancelled or Stop is called.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, s.cancel = context.WithCancel(ctx)
	s.logger.Info("Starting scheduler with %d jobs", len(s.jobs))
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.run(ctx, j)
	}
}

// Stop stops the jobs and waits for running ones to return
func (s *Service) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		s.logger.Info("Stopping scheduler")
		cancel()
	}
	s.wg.Wait()
}

func (s *Service) run(ctx context.Context, j job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	if j.runAtStart {
		s.runOnce(ctx, j)
	}
	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx, j)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) runOnce(ctx context.Context, j job) {
	start := time.Now()
	s.logger.Debug("Running job %s", j.name)
	if err := j.fn(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("Job %s failed: %v", j.name, err)
		return
	}
	s.logger.Info("Job %s finished in %v", j.name, time.Since(start).Round(time.Millisecond))
}
