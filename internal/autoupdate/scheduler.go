package autoupdate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/logging"
)

// DefaultSchedule is how often the window is evaluated.
const DefaultSchedule = "@every 1h"

// ConfigSource returns the current auto-update settings.
type ConfigSource func() (gwcfg.AutoUpdateConfig, error)

// Listener is called when a scheduled check finds the window open.
type Listener func(now time.Time, cfg gwcfg.AutoUpdateConfig)

// Scheduler evaluates the update window on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	source   ConfigSource
	listener Listener
	now      func() time.Time

	mu      sync.Mutex
	entry   cron.EntryID
	started bool
}

// NewScheduler creates a scheduler that runs Check on spec. An empty spec
// uses DefaultSchedule.
func NewScheduler(spec string, source ConfigSource, listener Listener) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	if source == nil {
		return nil, fmt.Errorf("autoupdate: nil config source")
	}

	s := &Scheduler{
		cron:     cron.New(cron.WithLogger(cronLogger{logging.Named("cron").Sugar()})),
		spec:     spec,
		source:   source,
		listener: listener,
		now:      time.Now,
	}

	id, err := s.cron.AddFunc(spec, func() { s.Check() })
	if err != nil {
		return nil, fmt.Errorf("invalid auto-update schedule %q: %w", spec, err)
	}
	s.entry = id
	return s, nil
}

// Start begins the cron job ticker.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	logging.Info("Auto-update scheduler started", zap.String("schedule", s.spec))
}

// Stop halts the ticker and returns a context that is done once a running
// check has finished.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	ctx := s.cron.Stop()
	logging.Info("Auto-update scheduler stopped")
	return ctx
}

// Next returns the time of the next scheduled check, or the zero time when
// the scheduler is not running.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Check evaluates the window now and notifies the listener when it is open.
func (s *Scheduler) Check() bool {
	cfg, err := s.source()
	if err != nil {
		logging.Warn("Auto-update check skipped", zap.Error(err))
		return false
	}

	now := s.now()
	open := InWindow(cfg, now)
	logging.Debug("Auto-update window evaluated",
		zap.String("cycle", cfg.Cycle.String()),
		zap.Bool("open", open),
	)
	if open && s.listener != nil {
		s.listener(now, cfg)
	}
	return open
}

// cronLogger routes cron's own messages to zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
