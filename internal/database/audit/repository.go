// Package audit stores the import, export and purge event log.
package audit

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/weengz-air/internal/database/dberrors"
	"github.com/mrlokans/weengz-air/internal/entities"
)

const defaultPageSize = 50

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// List returns one page of events matching filter, newest first, and the
// total number of matches.
func (r *Repository) List(filter entities.AuditFilter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	query := r.db.Model(&entities.AuditEvent{})
	if filter.Type != "" {
		query = query.Where("event_type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Origin != "" {
		query = query.Where("origin = ?", filter.Origin)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var events []entities.AuditEvent
	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

func (r *Repository) GetByID(id uint) (*entities.AuditEvent, error) {
	var event entities.AuditEvent
	err := r.db.First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: audit event %d", dberrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// PayloadRefsBefore lists archived payloads whose every referencing event
// was created before cutoff.
func (r *Repository) PayloadRefsBefore(cutoff time.Time) ([]string, error) {
	newer := r.db.Model(&entities.AuditEvent{}).
		Select("payload_ref").
		Where("created_at >= ? AND payload_ref <> ''", cutoff)

	var refs []string
	err := r.db.Model(&entities.AuditEvent{}).
		Distinct("payload_ref").
		Where("created_at < ? AND payload_ref <> ''", cutoff).
		Where("payload_ref NOT IN (?)", newer).
		Order("payload_ref").
		Pluck("payload_ref", &refs).Error
	return refs, err
}

// DeleteBefore removes events created before cutoff and reports how many.
func (r *Repository) DeleteBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}
