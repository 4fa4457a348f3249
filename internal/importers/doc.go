// Package importers maps interchange XML documents onto reconciliation
// operations and runs them.
//
// # Dialects
//
// Two XML dialects are understood, resolved once per document by Detect:
//
//   - Compact (compact.go): flightReservation > flightSeat records, the same
//     format the exporter writes. Each record becomes one atomic reservation
//     creation.
//   - Legacy (legacy.go): Usuarios, Asientos and Reservaciones sections. Users
//     are upserted by email, seats have their state updated by numero, and
//     reservations are created atomically.
//
// A document matching neither is DialectUnrecognized and nothing runs.
//
// # Stages
//
// An Importer yields ordered Stages. A stage plans its operations only when
// it is about to run, so the legacy reservations stage sees the users the
// users stage just created. Operations are executed by batch.Runner, which
// never aborts on a failed record.
//
// # Adding a dialect
//
//  1. Add a Dialect constant and teach Detect to recognize it
//  2. Implement Importer in a new file
//  3. Return it from ForDialect
package importers

import (
	"context"

	"github.com/mrlokans/weengz-air/internal/entities"
)

// Store is the persistence the importers reconcile against. Each call is
// atomic and reports its own failure.
type Store interface {
	ListUsers(ctx context.Context) ([]entities.User, error)
	ListSeats(ctx context.Context) ([]entities.Seat, error)
	CreateUser(ctx context.Context, user *entities.User) (*entities.User, error)
	UpdateUser(ctx context.Context, id uint, patch entities.UserPatch) (*entities.User, error)
	UpdateSeat(ctx context.Context, id uint, patch entities.SeatPatch) (*entities.Seat, error)
	CreateReservationAtomic(ctx context.Context, reservation *entities.Reservation) (*entities.Reservation, error)
}
