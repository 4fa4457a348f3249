package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/weengz-air/internal/entities"
)

const defaultAuditRetentionDays = 30

// AuditEventCleaner expires audit events and the import payloads archived
// with them.
type AuditEventCleaner interface {
	Cleanup(retention time.Duration) (entities.AuditCleanup, error)
}

// CleanupAuditEventsTask applies the audit retention window. The scheduler
// enqueues it daily.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupAuditEventsProcessor creates a processor function for CleanupAuditEventsTask.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner, log logrus.FieldLogger) backlite.QueueProcessor[CleanupAuditEventsTask] {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return fmt.Errorf("audit event cleaner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = defaultAuditRetentionDays
		}

		result, err := cleaner.Cleanup(time.Duration(retentionDays) * 24 * time.Hour)
		if err != nil {
			return fmt.Errorf("apply audit retention of %d days: %w", retentionDays, err)
		}

		entry := log.WithFields(logrus.Fields{
			"module":           "tasks",
			"events_deleted":   result.Events,
			"payloads_removed": result.Payloads,
			"retention_days":   retentionDays,
		})
		if result.Events == 0 {
			entry.Debug("No audit events past retention")
			return nil
		}
		entry.Info("Expired audit events and archived payloads")
		return nil
	}
}

// NewCleanupAuditEventsQueue creates a backlite queue for audit cleanup tasks.
func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner, log logrus.FieldLogger) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner, log))
}
