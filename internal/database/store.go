package database

import (
	"context"

	"github.com/mrlokans/weengz-air/internal/database/reservations"
	"github.com/mrlokans/weengz-air/internal/database/seats"
	"github.com/mrlokans/weengz-air/internal/database/users"
	"github.com/mrlokans/weengz-air/internal/entities"
)

// Store is the persistence collaborator consumed by the interchange engine.
// Every method is a single atomic operation that reports its own failure.
type Store struct {
	users        *users.Repository
	seats        *seats.Repository
	reservations *reservations.Repository
}

// NewStore builds a Store over the domain repositories.
func NewStore(d *Database) *Store {
	return &Store{
		users:        users.NewRepository(d.DB),
		seats:        seats.NewRepository(d.DB),
		reservations: reservations.NewRepository(d.DB),
	}
}

func (s *Store) ListUsers(ctx context.Context) ([]entities.User, error) {
	return s.users.List(ctx)
}

func (s *Store) ListSeats(ctx context.Context) ([]entities.Seat, error) {
	return s.seats.List(ctx)
}

func (s *Store) ListReservations(ctx context.Context) ([]entities.Reservation, error) {
	return s.reservations.List(ctx)
}

func (s *Store) CreateUser(ctx context.Context, user *entities.User) (*entities.User, error) {
	return s.users.Create(ctx, user)
}

func (s *Store) UpdateUser(ctx context.Context, id uint, patch entities.UserPatch) (*entities.User, error) {
	return s.users.Update(ctx, id, patch)
}

func (s *Store) UpdateSeat(ctx context.Context, id uint, patch entities.SeatPatch) (*entities.Seat, error) {
	return s.seats.Update(ctx, id, patch)
}

func (s *Store) CreateReservationAtomic(ctx context.Context, reservation *entities.Reservation) (*entities.Reservation, error) {
	return s.reservations.CreateAtomic(ctx, reservation)
}

func (s *Store) PurgeData(ctx context.Context) (entities.PurgeResult, error) {
	return s.reservations.Purge(ctx)
}

func (s *Store) GetUser(ctx context.Context, email string) (*entities.User, error) {
	return s.users.GetByEmail(ctx, email)
}

func (s *Store) GetSeat(ctx context.Context, numero string) (*entities.Seat, error) {
	return s.seats.GetByNumero(ctx, numero)
}

func (s *Store) GetReservation(ctx context.Context, id uint) (*entities.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

// CancelReservation is not part of the interchange contract; the admin
// listing uses it.
func (s *Store) CancelReservation(ctx context.Context, id uint) error {
	return s.reservations.Cancel(ctx, id)
}
