package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/weengz-air/internal/audit"
	"github.com/mrlokans/weengz-air/internal/batchlock"
	"github.com/mrlokans/weengz-air/internal/database"
	"github.com/mrlokans/weengz-air/internal/exporters"
	"github.com/mrlokans/weengz-air/internal/http"
	"github.com/mrlokans/weengz-air/internal/importers"
	"github.com/mrlokans/weengz-air/internal/metrics"
	"github.com/mrlokans/weengz-air/internal/scheduler"
	"github.com/mrlokans/weengz-air/internal/services"
	"github.com/mrlokans/weengz-air/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Store implementations
var _ services.Store = (*database.Store)(nil)
var _ importers.Store = (*database.Store)(nil)
var _ http.ListingStore = (*database.Store)(nil)
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Import Pipeline
// =============================================================================

// Importer implementations
var _ importers.Importer = (*importers.CompactImporter)(nil)
var _ importers.Importer = (*importers.LegacyImporter)(nil)

// =============================================================================
// Export
// =============================================================================

var _ exporters.ReservationSerializer = (*exporters.XMLSerializer)(nil)
var _ services.ExportSerializer = (*exporters.XMLSerializer)(nil)
var _ scheduler.SnapshotStore = (*exporters.SnapshotWriter)(nil)

// =============================================================================
// Interchange Service
// =============================================================================

var _ http.Interchange = (*services.InterchangeService)(nil)
var _ tasks.XMLImporter = (*services.InterchangeService)(nil)
var _ scheduler.Exporter = (*services.InterchangeService)(nil)

// Batch lock implementations
var _ batchlock.Locker = (*batchlock.LocalLocker)(nil)
var _ batchlock.Locker = (*batchlock.RedisLocker)(nil)

// =============================================================================
// Audit, Metrics and Background Work
// =============================================================================

var _ services.AuditLogger = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

var _ services.PayloadArchiver = (*audit.Auditor)(nil)
var _ http.PayloadArchive = (*audit.Auditor)(nil)
var _ tasks.PayloadLocator = (*audit.Auditor)(nil)

var _ services.MetricsRecorder = (*metrics.Metrics)(nil)

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.TaskEnqueuer = (*tasks.Client)(nil)
