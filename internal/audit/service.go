package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/weengz-air/internal/database/audit"
	"github.com/mrlokans/weengz-air/internal/entities"
)

// PayloadRemover deletes an archived import payload.
type PayloadRemover interface {
	Remove(ref string) error
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo     *audit.Repository
	payloads PayloadRemover
	log      logrus.FieldLogger
	wg       sync.WaitGroup
}

// NewService creates a new audit service. payloads may be nil, in which case
// Cleanup leaves archived files in place.
func NewService(repo *audit.Repository, payloads PayloadRemover, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{repo: repo, payloads: payloads, log: log}
}

// ImportRecord summarizes one import run.
type ImportRecord struct {
	Origin     string
	Dialect    string
	PayloadRef string
	OK         int
	Fail       int
	Skipped    int
	Duration   time.Duration
	Err        error
}

// ExportRecord summarizes one export run.
type ExportRecord struct {
	Origin   string
	Count    int
	Duration time.Duration
	Err      error
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			s.log.WithField("action", event.Action).WithError(err).Error("Failed to log audit event")
		}
	}()
}

// Wait blocks until every pending LogAsync write has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogImport records an import event.
func (s *Service) LogImport(rec ImportRecord) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventImport,
		Action:      "xml_import_" + rec.Dialect,
		Description: fmt.Sprintf("Import finished. Successes: %d, Failures: %d.", rec.OK, rec.Fail),
		PayloadRef:  rec.PayloadRef,
		Origin:      rec.Origin,
		Status:      entities.AuditStatusSuccess,
		DurationMs:  rec.Duration.Milliseconds(),
	}

	metadata := map[string]any{
		"ok":      rec.OK,
		"fail":    rec.Fail,
		"skipped": rec.Skipped,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	switch {
	case rec.Err != nil:
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(rec.Err.Error(), 500)
	case rec.Fail > 0:
		event.Status = entities.AuditStatusPartial
	}

	s.LogAsync(event)
}

// LogExport records an export event.
func (s *Service) LogExport(rec ExportRecord) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventExport,
		Action:      "xml_export",
		Description: fmt.Sprintf("Exported %d reservations", rec.Count),
		Origin:      rec.Origin,
		Status:      entities.AuditStatusSuccess,
		DurationMs:  rec.Duration.Milliseconds(),
	}

	if rec.Err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(rec.Err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogPurge records a purge event.
func (s *Service) LogPurge(origin string, result entities.PurgeResult, duration time.Duration, err error) {
	event := &entities.AuditEvent{
		EventType: entities.AuditEventPurge,
		Action:    "purge_data",
		Description: fmt.Sprintf("Deleted %d reservations and %d modifications, freed %d seats",
			result.Reservaciones, result.Modificaciones, result.SeatsFreed),
		Origin:     origin,
		Status:     entities.AuditStatusSuccess,
		DurationMs: duration.Milliseconds(),
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// GetEvents retrieves one page of audit events matching filter.
func (s *Service) GetEvents(filter entities.AuditFilter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.List(filter, limit, offset)
}

// GetEventByID retrieves a single audit event.
func (s *Service) GetEventByID(id uint) (*entities.AuditEvent, error) {
	return s.repo.GetByID(id)
}

// Cleanup removes events older than retention together with the archived
// payloads only they referenced. A payload that cannot be removed is logged
// and skipped.
func (s *Service) Cleanup(retention time.Duration) (entities.AuditCleanup, error) {
	var result entities.AuditCleanup
	cutoff := time.Now().Add(-retention)

	refs, err := s.repo.PayloadRefsBefore(cutoff)
	if err != nil {
		return result, fmt.Errorf("list expired payloads: %w", err)
	}

	result.Events, err = s.repo.DeleteBefore(cutoff)
	if err != nil {
		return result, fmt.Errorf("delete expired events: %w", err)
	}

	if s.payloads == nil {
		return result, nil
	}
	for _, ref := range refs {
		err := s.payloads.Remove(ref)
		switch {
		case err == nil:
			result.Payloads++
		case errors.Is(err, fs.ErrNotExist):
			// already gone
		default:
			s.log.WithField("payload_ref", ref).WithError(err).Warn("Failed to remove archived payload")
		}
	}
	return result, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
