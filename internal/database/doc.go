// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, fleet seeding
//	├── store.go         # Store used by the interchange service
//	├── dberrors/        # Sentinel errors shared by repositories
//	├── users/           # User CRUD keyed by email
//	├── seats/           # Seat fleet and state changes
//	├── reservations/    # Atomic reservation creation, cancel, purge
//	└── audit/           # Audit event log
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(database.DriverSQLite, "./weengz.db", log)
//
//	seatsRepo := seats.NewRepository(db.DB)
//	seat, err := seatsRepo.GetByNumero(ctx, "12A")
//
// Repositories wrap failures with dberrors.ErrNotFound, ErrConflict or
// ErrInvalid so callers can branch with errors.Is.
//
// # Drivers
//
// sqlite (a file path) and mysql (a go-sql-driver DSN) are supported. Both
// are migrated with gorm AutoMigrate on startup.
package database
