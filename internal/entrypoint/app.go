package entrypoint

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/weengz-air/internal/audit"
	"github.com/mrlokans/weengz-air/internal/batch"
	"github.com/mrlokans/weengz-air/internal/batchlock"
	"github.com/mrlokans/weengz-air/internal/config"
	"github.com/mrlokans/weengz-air/internal/database"
	auditrepo "github.com/mrlokans/weengz-air/internal/database/audit"
	"github.com/mrlokans/weengz-air/internal/datefmt"
	"github.com/mrlokans/weengz-air/internal/exporters"
	"github.com/mrlokans/weengz-air/internal/importers"
	"github.com/mrlokans/weengz-air/internal/metrics"
	"github.com/mrlokans/weengz-air/internal/services"
)

// App holds the components shared by the server and the command line.
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *database.Database
	Store       *database.Store
	Interchange *services.InterchangeService
	Audit       *audit.Service
	Auditor     *audit.Auditor
	Metrics     *metrics.Metrics
	Snapshots   *exporters.SnapshotWriter

	redis *redis.Client
}

// NewApp opens the database and wires the interchange engine. The caller
// must Close the result.
func NewApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	loc, err := cfg.Export.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid export timezone: %w", err)
	}

	formatter, err := datefmt.NewFormatter(cfg.Export.Locale, loc)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDatabase(cfg.Database.Driver, databaseDSN(cfg.Database), log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := &App{
		Config:    cfg,
		Log:       log,
		DB:        db,
		Store:     database.NewStore(db),
		Auditor:   audit.NewAuditor(cfg.Audit.Dir),
		Metrics:   metrics.New(),
		Snapshots: exporters.NewSnapshotWriter(cfg.Snapshot.Dir),
	}
	app.Audit = audit.NewService(auditrepo.NewRepository(db.DB), app.Auditor, log)

	locker, err := app.newLocker(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	runner := batch.NewRunner(
		batch.WithLogger(log),
		batch.WithObserver(app.Metrics.ObserveOperation),
	)
	pipeline := importers.NewPipeline(runner, importers.Deps{
		Store: app.Store,
		Dates: datefmt.NewNormalizer(loc),
		Log:   log,
	})

	app.Interchange = services.NewInterchangeService(services.InterchangeConfig{
		Store:      app.Store,
		Serializer: exporters.NewXMLSerializer(formatter),
		Pipeline:   pipeline,
		Locker:     locker,
		Audit:      app.Audit,
		Archive:    app.Auditor,
		Metrics:    app.Metrics,
		Log:        log,
	})

	return app, nil
}

// newLocker uses Redis when an address is configured so that several
// processes share one batch lock.
func (a *App) newLocker(ctx context.Context) (batchlock.Locker, error) {
	if a.Config.Redis.Address == "" {
		return batchlock.NewLocalLocker(), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	locker, client, err := batchlock.NewRedisLocker(connectCtx, a.Config.Redis.Address, a.Config.Redis.LockTTL, a.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.redis = client
	a.Log.WithField("address", a.Config.Redis.Address).Info("Using redis batch lock")
	return locker, nil
}

// Close waits for pending audit writes and releases connections.
func (a *App) Close() error {
	if a.Audit != nil {
		a.Audit.Wait()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.WithError(err).Warn("Error closing redis client")
		}
	}
	return a.DB.Close()
}

func databaseDSN(cfg config.Database) string {
	if cfg.Driver == database.DriverMySQL {
		return cfg.DSN
	}
	return cfg.Path
}
