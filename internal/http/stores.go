package http

import (
	"context"
	"io"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/weengz-air/internal/entities"
	"github.com/mrlokans/weengz-air/internal/services"
)

// Interchange is the XML import/export engine behind the API.
type Interchange interface {
	Import(ctx context.Context, r io.Reader) (services.ImportSummary, error)
	Export(ctx context.Context) (services.ExportFile, error)
	Purge(ctx context.Context, confirmation string) (entities.PurgeResult, error)
}

// ListingStore backs the read-only listings.
type ListingStore interface {
	ListUsers(ctx context.Context) ([]entities.User, error)
	ListSeats(ctx context.Context) ([]entities.Seat, error)
	ListReservations(ctx context.Context) ([]entities.Reservation, error)
	GetUser(ctx context.Context, email string) (*entities.User, error)
	GetSeat(ctx context.Context, numero string) (*entities.Seat, error)
	GetReservation(ctx context.Context, id uint) (*entities.Reservation, error)
	CancelReservation(ctx context.Context, id uint) error
}

// PayloadArchive stores an uploaded document for later processing.
type PayloadArchive interface {
	SaveXML(data []byte) (string, error)
}

// TaskQueue is the subset of the task client the API needs.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// AuditReader reads the audit log.
type AuditReader interface {
	GetEvents(filter entities.AuditFilter, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventByID(id uint) (*entities.AuditEvent, error)
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
