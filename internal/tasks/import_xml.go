package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/weengz-air/internal/services"
)

// XMLImporter runs one XML import.
type XMLImporter interface {
	Import(ctx context.Context, r io.Reader) (services.ImportSummary, error)
}

// PayloadLocator resolves an archived payload reference to a file path.
type PayloadLocator interface {
	Path(ref string) string
}

// ImportXMLTask imports a document that was archived when it was received.
type ImportXMLTask struct {
	PayloadRef string `json:"payload_ref"`
	Origin     string `json:"origin"`
}

// Config returns the queue configuration for XML import tasks.
func (t ImportXMLTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_xml",
		MaxAttempts: 5,
		Backoff:     30 * time.Second,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportXMLProcessor creates a processor function for ImportXMLTask.
// A busy batch lock is retried. A malformed document is final, and so is an
// import that stopped after applying records, since a rerun would apply
// them again.
func ImportXMLProcessor(importer XMLImporter, payloads PayloadLocator, log logrus.FieldLogger) backlite.QueueProcessor[ImportXMLTask] {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func(ctx context.Context, task ImportXMLTask) error {
		if importer == nil || payloads == nil {
			return fmt.Errorf("xml importer not configured")
		}
		if task.PayloadRef == "" {
			return fmt.Errorf("import task has no payload reference")
		}

		f, err := os.Open(payloads.Path(task.PayloadRef))
		if err != nil {
			return fmt.Errorf("open payload %s: %w", task.PayloadRef, err)
		}
		defer f.Close()

		origin := task.Origin
		if origin == "" {
			origin = "task"
		}
		ctx = services.WithPayloadRef(services.WithOrigin(ctx, origin), task.PayloadRef)

		entry := log.WithFields(logrus.Fields{"module": "tasks", "payload_ref": task.PayloadRef})
		summary, err := importer.Import(ctx, f)
		switch {
		case errors.Is(err, services.ErrBatchInProgress):
			return err
		case errors.Is(err, services.ErrParse):
			entry.WithError(err).Warn("Queued import is not well-formed XML, dropping")
			return nil
		case err != nil && summary.OK+summary.Fail > 0:
			entry.WithFields(logrus.Fields{
				"dialect": summary.Dialect.String(),
				"ok":      summary.OK,
				"fail":    summary.Fail,
			}).WithError(err).Error("Queued import stopped after applying records, not retrying")
			return nil
		case err != nil:
			return fmt.Errorf("import %s: %w", task.PayloadRef, err)
		}

		entry.WithFields(logrus.Fields{
			"dialect": summary.Dialect.String(),
			"ok":      summary.OK,
			"fail":    summary.Fail,
		}).Info(summary.Message)
		return nil
	}
}

// NewImportXMLQueue creates a backlite queue for XML import tasks.
func NewImportXMLQueue(importer XMLImporter, payloads PayloadLocator, log logrus.FieldLogger) backlite.Queue {
	return backlite.NewQueue(ImportXMLProcessor(importer, payloads, log))
}
