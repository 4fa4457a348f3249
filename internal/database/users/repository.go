// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail(ctx, "a@x.com")
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/weengz-air/internal/database/dberrors"
	"github.com/mrlokans/weengz-air/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every user ordered by ID.
func (r *Repository) List(ctx context.Context) ([]entities.User, error) {
	var users []entities.User
	err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, err
}

// Create inserts a new user. Email is required and must be unique.
func (r *Repository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	email := strings.TrimSpace(user.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", dberrors.ErrInvalid)
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: user %s already exists", dberrors.ErrConflict, email)
	}

	created := *user
	created.ID = 0
	created.Email = email
	if created.FechaCreacion.IsZero() {
		created.FechaCreacion = time.Now()
	}

	if err := r.db.WithContext(ctx).Create(&created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: user %s already exists", dberrors.ErrConflict, email)
		}
		return nil, fmt.Errorf("failed to create user %s: %w", email, err)
	}

	return &created, nil
}

// Update applies the mutable fields to the user with the given ID.
func (r *Repository) Update(ctx context.Context, id uint, patch entities.UserPatch) (*entities.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// A map keeps EsVip=false from being skipped as a zero value.
	err = r.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"nombre_completo": patch.NombreCompleto,
		"es_vip":          patch.EsVip,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}

	user.NombreCompleto = patch.NombreCompleto
	user.EsVip = patch.EsVip
	return user, nil
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", dberrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %s", dberrors.ErrNotFound, email)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
