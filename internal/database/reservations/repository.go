// Package reservations provides database operations for reservations and
// their modification history.
//
// Creating a reservation and occupying its seat happen in one transaction:
// either both are committed or neither is.
package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/weengz-air/internal/database/dberrors"
	"github.com/mrlokans/weengz-air/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all reservations, cancelled ones included, with their
// modifications in chronological order.
func (r *Repository) List(ctx context.Context) ([]entities.Reservation, error) {
	var reservations []entities.Reservation
	err := r.db.WithContext(ctx).Preload("Modificaciones", func(db *gorm.DB) *gorm.DB {
		return db.Order("fecha ASC, id ASC")
	}).Order("id ASC").Find(&reservations).Error
	return reservations, err
}

// GetByID retrieves a reservation with its modifications.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Reservation, error) {
	var reservation entities.Reservation
	err := r.db.WithContext(ctx).Preload("Modificaciones", func(db *gorm.DB) *gorm.DB {
		return db.Order("fecha ASC, id ASC")
	}).First(&reservation, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: reservation %d", dberrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CreateAtomic creates an active reservation and marks its seat occupied.
// It fails when the user or seat does not exist, when the seat is already
// occupied, or when the details are invalid.
func (r *Repository) CreateAtomic(ctx context.Context, reservation *entities.Reservation) (*entities.Reservation, error) {
	if err := validate(reservation); err != nil {
		return nil, err
	}

	created := *reservation
	created.ID = 0
	created.Estado = entities.ReservationActive
	created.Modificaciones = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user entities.User
		if err := tx.Where("email = ?", created.Usuario).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %s", dberrors.ErrNotFound, created.Usuario)
			}
			return err
		}

		var seat entities.Seat
		if err := tx.Where("numero = ?", created.Asiento).First(&seat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: seat %s", dberrors.ErrNotFound, created.Asiento)
			}
			return err
		}

		var active int64
		if err := tx.Model(&entities.Reservation{}).
			Where("asiento = ? AND estado <> ?", seat.Numero, entities.ReservationCancelled).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%w: seat %s already has an active reservation", dberrors.ErrConflict, seat.Numero)
		}

		// Conditional update so two writers cannot both take the same free seat.
		result := tx.Model(&entities.Seat{}).
			Where("id = ? AND estado = ?", seat.ID, entities.SeatStateFree).
			Update("estado", entities.SeatStateOccupied)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return fmt.Errorf("%w: seat %s is already occupied", dberrors.ErrConflict, seat.Numero)
		}

		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// Cancel marks a reservation as cancelled and frees its seat.
func (r *Repository) Cancel(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservation entities.Reservation
		if err := tx.First(&reservation, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reservation %d", dberrors.ErrNotFound, id)
			}
			return err
		}
		if !reservation.IsActive() {
			return nil
		}

		if err := tx.Model(&reservation).Update("estado", entities.ReservationCancelled).Error; err != nil {
			return err
		}
		if err := tx.Model(&entities.Seat{}).Where("numero = ?", reservation.Asiento).
			Update("estado", entities.SeatStateFree).Error; err != nil {
			return err
		}

		return tx.Create(&entities.Modification{
			ReservationID: reservation.ID,
			Tipo:          "CANCELACION",
			Descripcion:   "Reservation cancelled",
			Fecha:         time.Now(),
		}).Error
	})
}

// Purge deletes every reservation and modification and frees all occupied
// seats in a single transaction. Users are kept.
func (r *Repository) Purge(ctx context.Context) (entities.PurgeResult, error) {
	var result entities.PurgeResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mods := tx.Where("1 = 1").Delete(&entities.Modification{})
		if mods.Error != nil {
			return fmt.Errorf("delete modifications: %w", mods.Error)
		}
		result.Modificaciones = mods.RowsAffected

		res := tx.Where("1 = 1").Delete(&entities.Reservation{})
		if res.Error != nil {
			return fmt.Errorf("delete reservations: %w", res.Error)
		}
		result.Reservaciones = res.RowsAffected

		seats := tx.Model(&entities.Seat{}).
			Where("estado = ?", entities.SeatStateOccupied).
			Update("estado", entities.SeatStateFree)
		if seats.Error != nil {
			return fmt.Errorf("free seats: %w", seats.Error)
		}
		result.SeatsFreed = seats.RowsAffected

		return nil
	})
	if err != nil {
		return entities.PurgeResult{}, err
	}

	return result, nil
}

func validate(reservation *entities.Reservation) error {
	if reservation.Usuario == "" {
		return fmt.Errorf("%w: usuario is required", dberrors.ErrInvalid)
	}
	if reservation.Asiento == "" {
		return fmt.Errorf("%w: asiento is required", dberrors.ErrInvalid)
	}
	if !reservation.Detalles.MetodoSeleccion.Valid() {
		return fmt.Errorf("%w: unknown selection method %q", dberrors.ErrInvalid, reservation.Detalles.MetodoSeleccion)
	}
	if reservation.Detalles.PrecioBase.IsNegative() {
		return fmt.Errorf("%w: precioBase must not be negative", dberrors.ErrInvalid)
	}
	return nil
}
