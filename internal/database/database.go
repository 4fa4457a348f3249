package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/weengz-air/internal/database/dberrors"
	"github.com/mrlokans/weengz-air/internal/database/seats"
	"github.com/mrlokans/weengz-air/internal/entities"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Re-exported so callers outside the database tree need a single import.
var (
	ErrNotFound = dberrors.ErrNotFound
	ErrConflict = dberrors.ErrConflict
	ErrInvalid  = dberrors.ErrInvalid
)

type Database struct {
	DB  *gorm.DB
	log logrus.FieldLogger
}

// NewDatabase opens the database, migrates every entity and seeds the seat
// fleet when the seats table is empty. For sqlite the dsn is a file path.
func NewDatabase(driver, dsn string, log logrus.FieldLogger) (*Database, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database, err := initialize(db, log)
	if err != nil {
		return nil, err
	}

	log.WithField("driver", driver).Info("Database initialized successfully")

	return database, nil
}

// initialize migrates and seeds an open connection. The pool is closed when
// either step fails, since the caller never receives it.
func initialize(db *gorm.DB, log logrus.FieldLogger) (*Database, error) {
	database := &Database{DB: db, log: log}

	err := db.AutoMigrate(
		&entities.User{},
		&entities.Seat{},
		&entities.Reservation{},
		&entities.Modification{},
		&entities.AuditEvent{},
	)
	if err != nil {
		database.closeAfter(err)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := database.seedFleet(context.Background()); err != nil {
		database.closeAfter(err)
		return nil, fmt.Errorf("failed to seed seats: %w", err)
	}

	return database, nil
}

func (d *Database) closeAfter(cause error) {
	if err := d.Close(); err != nil {
		d.log.WithError(err).WithField("cause", cause.Error()).Warn("Failed to close database after setup error")
	}
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(driver) {
	case "", DriverSQLite:
		if !strings.Contains(dsn, "?") {
			dsn += "?_journal=WAL&_timeout=5000"
		}
		return sqlite.Open(dsn), nil
	case DriverMySQL:
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks connectivity of the underlying connection pool.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) seedFleet(ctx context.Context) error {
	created, err := seats.NewRepository(d.DB).Seed(ctx, seats.Fleet())
	if err != nil {
		return err
	}
	if created > 0 {
		d.log.WithField("seats", created).Info("Seeded seat fleet")
	}
	return nil
}
