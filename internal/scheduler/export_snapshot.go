package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/weengz-air/internal/services"
	"github.com/mrlokans/weengz-air/internal/tasks"
)

// Exporter renders the current reservations.
type Exporter interface {
	Export(ctx context.Context) (services.ExportFile, error)
}

// SnapshotStore keeps one exported document per run.
type SnapshotStore interface {
	Write(data []byte, at time.Time) (string, error)
}

// TaskEnqueuer hands work to the background queue.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

type Config struct {
	SnapshotEnabled    bool
	SnapshotSchedule   string
	CleanupSchedule    string // Empty disables audit cleanup
	AuditRetentionDays int
}

// Scheduler writes periodic export snapshots and queues audit cleanup.
type Scheduler struct {
	cfg       Config
	exporter  Exporter
	snapshots SnapshotStore
	tasks     TaskEnqueuer
	log       logrus.FieldLogger
	now       func() time.Time

	cron       *cron.Cron
	snapshotID cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc

	statusMu sync.Mutex
	lastErr  error
	lastPath string
}

func New(cfg Config, exporter Exporter, snapshots SnapshotStore, enqueuer TaskEnqueuer, log logrus.FieldLogger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{
		cfg:       cfg,
		exporter:  exporter,
		snapshots: snapshots,
		tasks:     enqueuer,
		log:       log.WithField("module", "scheduler"),
		now:       time.Now,
		cron:      cron.New(cron.WithParser(parser)),
	}
}

// Start registers the configured jobs and starts the cron loop. It is a
// no-op when there is nothing to schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	jobs := 0
	if s.cfg.SnapshotEnabled {
		if err := ValidateCronSchedule(s.cfg.SnapshotSchedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.SnapshotSchedule, err)
		}
		id, err := s.cron.AddFunc(s.cfg.SnapshotSchedule, func() {
			if _, err := s.RunSnapshot(context.Background()); err != nil {
				s.log.WithError(err).Error("Export snapshot failed")
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule snapshot job: %w", err)
		}
		s.snapshotID = id
		jobs++

		next, _ := GetNextRunTime(s.cfg.SnapshotSchedule, s.now())
		s.log.WithFields(logrus.Fields{
			"schedule":    s.cfg.SnapshotSchedule,
			"description": GetCronDescription(s.cfg.SnapshotSchedule),
			"next_run":    next,
		}).Info("Export snapshots scheduled")
	} else {
		s.log.Info("Export snapshots disabled")
	}

	if s.tasks != nil && s.cfg.CleanupSchedule != "" {
		if err := ValidateCronSchedule(s.cfg.CleanupSchedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.CleanupSchedule, err)
		}
		if _, err := s.cron.AddFunc(s.cfg.CleanupSchedule, s.enqueueCleanup); err != nil {
			return fmt.Errorf("failed to schedule audit cleanup: %w", err)
		}
		jobs++
	}

	if jobs == 0 {
		return nil
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops accepting new jobs and waits for running ones to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextSnapshot returns when the next snapshot will be written, or nil.
func (s *Scheduler) NextSnapshot() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || s.snapshotID == 0 {
		return nil
	}
	entry := s.cron.Entry(s.snapshotID)
	if !entry.Valid() {
		return nil
	}
	t := entry.Next
	return &t
}

// LastSnapshot reports the path written by the latest run and its error.
func (s *Scheduler) LastSnapshot() (string, error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.lastPath, s.lastErr
}

// RunSnapshot exports the current reservations and writes them to the
// snapshot store.
func (s *Scheduler) RunSnapshot(ctx context.Context) (string, error) {
	ctx = services.WithOrigin(ctx, "scheduler")

	path, err := s.snapshot(ctx)

	s.statusMu.Lock()
	s.lastPath, s.lastErr = path, err
	s.statusMu.Unlock()

	return path, err
}

func (s *Scheduler) snapshot(ctx context.Context) (string, error) {
	file, err := s.exporter.Export(ctx)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}

	path, err := s.snapshots.Write(file.Data, s.now())
	if err != nil {
		return "", err
	}

	s.log.WithFields(logrus.Fields{
		"path":  path,
		"count": file.Count,
	}).Info("Export snapshot written")
	return path, nil
}

func (s *Scheduler) enqueueCleanup() {
	id, err := s.tasks.Enqueue(context.Background(), tasks.CleanupAuditEventsTask{RetentionDays: s.cfg.AuditRetentionDays})
	if err != nil {
		s.log.WithError(err).Error("Failed to queue audit cleanup")
		return
	}
	s.log.WithField("task_id", id).Debug("Queued audit cleanup")
}
