package services

import (
	"context"
	"time"

	"github.com/mrlokans/weengz-air/internal/audit"
	"github.com/mrlokans/weengz-air/internal/entities"
	"github.com/mrlokans/weengz-air/internal/importers"
)

// Store is the persistence the interchange engine runs against. Every call
// is atomic on its own; nothing spans calls.
type Store interface {
	importers.Store
	ListReservations(ctx context.Context) ([]entities.Reservation, error)
	PurgeData(ctx context.Context) (entities.PurgeResult, error)
}

// ExportSerializer renders reservations to a document and reports how many
// it wrote.
type ExportSerializer interface {
	Serialize(reservations []entities.Reservation) ([]byte, int, error)
}

// AuditLogger records completed interchange runs.
type AuditLogger interface {
	LogImport(rec audit.ImportRecord)
	LogExport(rec audit.ExportRecord)
	LogPurge(origin string, result entities.PurgeResult, duration time.Duration, err error)
}

// PayloadArchiver keeps a copy of every imported document.
type PayloadArchiver interface {
	SaveXML(data []byte) (string, error)
}

type MetricsRecorder interface {
	ObserveImport(dialect, status string, elapsed time.Duration)
	ObserveExport(count int, elapsed time.Duration)
	ObservePurge(reservations, modifications, seatsFreed int64, elapsed time.Duration)
}
