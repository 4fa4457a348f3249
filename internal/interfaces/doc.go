// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - importers.Store: what import operations read and write (internal/importers/doc.go)
//   - services.Store: importers.Store plus listing and purge (internal/services/interfaces.go)
//   - http.ListingStore: read-only listings and cancellation (internal/http/stores.go)
//
// All three are implemented by database.Store over the gorm repositories in
// internal/database/{users,seats,reservations}.
//
// ## Interchange Interfaces
//
//   - importers.Importer: one XML dialect, split into ordered stages (internal/importers/detect.go)
//   - batch.Operation: one record's change, applied by batch.Runner (internal/batch/runner.go)
//   - services.ExportSerializer: renders reservations to a document (internal/services/interfaces.go)
//   - batchlock.Locker: one import or purge at a time (internal/batchlock/batchlock.go)
//
// ## Ambient Interfaces
//
//   - services.AuditLogger, services.PayloadArchiver: audit trail and raw payload archive
//   - services.MetricsRecorder: Prometheus counters and timings
//   - http.TaskQueue, scheduler.TaskEnqueuer: background work on the backlite queue
//
// # Adding a New XML Dialect
//
//  1. Add a Dialect constant and teach Detect to recognize it (internal/importers/detect.go).
//
//  2. Implement Importer:
//
//     type ManifestImporter struct{ deps Deps }
//
//     func (m *ManifestImporter) Dialect() Dialect { return DialectManifest }
//     func (m *ManifestImporter) Stages(doc *xmldoc.Node) []Stage
//
//     Each Stage plans its operations only when it runs, so it sees what
//     earlier stages wrote.
//
//  3. Return it from ForDialect and add a compile-time check:
//
//     var _ importers.Importer = (*importers.ManifestImporter)(nil)
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Expose it through database.Store and add the entity to AutoMigrate.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
