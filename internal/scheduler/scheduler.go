// Package scheduler runs the journal's periodic reports on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/adiptan/trading-journal/internal/core"
	"github.com/adiptan/trading-journal/internal/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a scheduled task. Its context is cancelled when the scheduler stops.
type Job func(ctx context.Context) error

type entry struct {
	id   cron.EntryID
	spec string
	job  Job
}

// Scheduler runs named jobs on standard five-field cron expressions in a
// fixed time zone. A job still running when its next tick arrives is skipped.
type Scheduler struct {
	cron    *cron.Cron
	loc     *time.Location
	metrics *metrics.Registry
	logger  *zap.Logger

	mu      sync.Mutex
	entries map[string]entry
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a scheduler for loc. m may be nil.
func New(loc *time.Location, m *metrics.Registry, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{logger.Sugar()}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		loc:     loc,
		metrics: m,
		logger:  logger,
		entries: make(map[string]entry),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add schedules job under name. An invalid spec wraps core.ErrConfigInvalid.
func (s *Scheduler) Add(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("scheduler: job %q already registered", name)
	}
	id, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("job %q schedule %q: %w", name, spec, err))
	}
	s.entries[name] = entry{id: id, spec: spec, job: job}
	s.logger.Info("job scheduled", zap.String("job", name), zap.String("spec", spec), zap.String("timezone", s.loc.String()))
	return nil
}

// Jobs lists the registered job names, sorted.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Next returns the next run of a job. It is zero until the scheduler starts.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(e.id).Next, true
}

// Start begins running jobs.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.entries)))
	return nil
}

// Stop cancels running jobs and waits for them to return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow runs a job immediately, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("scheduler: unknown job %q", name)
	}
	return s.run(name, e.job)
}

func (s *Scheduler) run(name string, job Job) error {
	start := time.Now()
	err := job(s.ctx)
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordJob(name, elapsed.Seconds())
	}
	if err != nil {
		s.logger.Error("job failed", zap.String("job", name), zap.Duration("duration", elapsed), zap.Error(err))
		return err
	}
	s.logger.Info("job finished", zap.String("job", name), zap.Duration("duration", elapsed))
	return nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
