package http

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// DefaultMaxUploadBytes caps an uploaded XML document.
const DefaultMaxUploadBytes int64 = 10 << 20

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Interchange Interchange
	Listings    ListingStore
	Database    Pinger
	Archive     PayloadArchive

	// Audit log (optional)
	AuditEvents AuditReader

	// Task queue client (optional); enables ?async=true imports
	TaskQueue TaskQueue

	// Prometheus handler (optional)
	Metrics http.Handler

	// Application info
	Version string

	MaxUploadBytes int64
	Log            logrus.FieldLogger
}
