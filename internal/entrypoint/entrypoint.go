package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/weengz-air/internal/config"
	http_controllers "github.com/mrlokans/weengz-air/internal/http"
	"github.com/mrlokans/weengz-air/internal/logging"
	"github.com/mrlokans/weengz-air/internal/scheduler"
	"github.com/mrlokans/weengz-air/internal/tasks"
)

// auditCleanupSchedule runs the audit retention task daily at 03:30.
const auditCleanupSchedule = "30 3 * * *"

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, log logrus.FieldLogger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
	case <-quit:
	}
	log.WithField("timeout", timeout).Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener goes away.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("Server exiting")
	return nil
}

// Run wires every component and serves HTTP until interrupted.
func Run(cfg *config.Config, version string) error {
	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	log.WithField("version", version).Info("Starting Weengz Air interchange")

	app, err := NewApp(context.Background(), cfg, log)
	if err != nil {
		logging.LogError(log, "entrypoint", "Run", "initialize application", err)
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.WithError(err).Error("Error closing database")
		}
	}()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Tasks.DatabasePath, taskCfg, log)
		if err != nil {
			logging.LogError(log, "entrypoint", "Run", "initialize task queue", err)
			return err
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.WithError(err).Error("Error closing task client")
			}
		}()

		taskClient.Register(
			tasks.NewImportXMLQueue(app.Interchange, app.Auditor, log),
			tasks.NewCleanupAuditEventsQueue(app.Audit, log),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	schedCfg := scheduler.Config{
		SnapshotEnabled:    cfg.Snapshot.Enabled,
		SnapshotSchedule:   cfg.Snapshot.Schedule,
		AuditRetentionDays: cfg.Audit.RetentionDays,
	}
	var enqueuer scheduler.TaskEnqueuer
	if taskClient != nil {
		enqueuer = taskClient
		schedCfg.CleanupSchedule = auditCleanupSchedule
	}
	sched := scheduler.New(schedCfg, app.Interchange, app.Snapshots, enqueuer, log)
	if err := sched.Start(context.Background()); err != nil {
		logging.LogError(log, "entrypoint", "Run", "start scheduler", err)
		return err
	}

	routerCfg := http_controllers.RouterConfig{
		Interchange:    app.Interchange,
		Listings:       app.Store,
		Database:       app.DB,
		Archive:        app.Auditor,
		AuditEvents:    app.Audit,
		Metrics:        app.Metrics.Handler(),
		Version:        version,
		MaxUploadBytes: http_controllers.DefaultMaxUploadBytes,
		Log:            log,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}

	if cfg.Logging.Level != "debug" && cfg.Logging.Level != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		sched.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	return Serve(router, cfg, log, onShutdown)
}
