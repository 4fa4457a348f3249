// Package seats provides database operations for the fixed seat fleet.
package seats

import (
	"context"
	"errors"
	"fmt"

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

// List returns every seat ordered by ID.
func (r *Repository) List(ctx context.Context) ([]entities.Seat, error) {
	var seats []entities.Seat
	err := r.db.WithContext(ctx).Order("id ASC").Find(&seats).Error
	return seats, err
}

// GetByNumero retrieves a seat by its row+letter number.
func (r *Repository) GetByNumero(ctx context.Context, numero string) (*entities.Seat, error) {
	var seat entities.Seat
	err := r.db.WithContext(ctx).Where("numero = ?", numero).First(&seat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: seat %s", dberrors.ErrNotFound, numero)
	}
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

// Update changes the state of the seat with the given ID.
func (r *Repository) Update(ctx context.Context, id uint, patch entities.SeatPatch) (*entities.Seat, error) {
	if !patch.Estado.Valid() {
		return nil, fmt.Errorf("%w: unknown seat state %q", dberrors.ErrInvalid, patch.Estado)
	}

	var seat entities.Seat
	err := r.db.WithContext(ctx).First(&seat, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: seat %d", dberrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(&seat).Update("estado", patch.Estado).Error; err != nil {
		return nil, fmt.Errorf("failed to update seat %s: %w", seat.Numero, err)
	}
	seat.Estado = patch.Estado
	return &seat, nil
}

// Count returns the number of seats in the fleet.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Seat{}).Count(&count).Error
	return count, err
}

// Seed inserts the given fleet when the table is empty and reports how many
// seats were created.
func (r *Repository) Seed(ctx context.Context, fleet []entities.Seat) (int, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 || len(fleet) == 0 {
		return 0, nil
	}

	if err := r.db.WithContext(ctx).CreateInBatches(fleet, 100).Error; err != nil {
		return 0, fmt.Errorf("failed to seed seats: %w", err)
	}
	return len(fleet), nil
}

// Fleet returns the aircraft layout: business rows 1-2 (A C D F G I) and
// economy rows 3-20 (A-I), all free.
func Fleet() []entities.Seat {
	businessLetters := []string{"A", "C", "D", "F", "G", "I"}
	economyLetters := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"}

	var fleet []entities.Seat
	for row := 1; row <= 2; row++ {
		for _, letter := range businessLetters {
			fleet = append(fleet, entities.Seat{
				Numero: fmt.Sprintf("%d%s", row, letter),
				Clase:  entities.SeatClassBusiness,
				Estado: entities.SeatStateFree,
			})
		}
	}
	for row := 3; row <= 20; row++ {
		for _, letter := range economyLetters {
			fleet = append(fleet, entities.Seat{
				Numero: fmt.Sprintf("%d%s", row, letter),
				Clase:  entities.SeatClassEconomy,
				Estado: entities.SeatStateFree,
			})
		}
	}
	return fleet
}
