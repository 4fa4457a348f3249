package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/weengz-air/internal/audit"
	"github.com/mrlokans/weengz-air/internal/batch"
	"github.com/mrlokans/weengz-air/internal/batchlock"
	"github.com/mrlokans/weengz-air/internal/entities"
	"github.com/mrlokans/weengz-air/internal/exporters"
	"github.com/mrlokans/weengz-air/internal/importers"
	"github.com/mrlokans/weengz-air/internal/xmldoc"
)

var (
	// ErrParse means the input is not well-formed XML. No record was touched.
	ErrParse = errors.New("error processing XML")
	// ErrBatchInProgress means another import or purge holds the batch lock.
	ErrBatchInProgress = batchlock.ErrBusy
	// ErrPurgeNotConfirmed means the confirmation text did not match.
	ErrPurgeNotConfirmed = errors.New("purge not confirmed")
)

// PurgeConfirmation must be typed to confirm a purge.
const PurgeConfirmation = "BORRAR"

const unrecognizedMessage = "Unrecognized XML format: expected flightReservation/flightSeat or Usuarios/Asientos/Reservaciones sections."

// ImportSummary is what an import reports back to its caller. A document in
// no known format has Recognized=false, which is not the same as a
// recognized document with no records.
type ImportSummary struct {
	Dialect    importers.Dialect `json:"dialect"`
	Recognized bool              `json:"recognized"`
	OK         int               `json:"ok"`
	Fail       int               `json:"fail"`
	Skipped    int               `json:"skipped"`
	Failures   []batch.Failure   `json:"failures,omitempty"`
	PayloadRef string            `json:"payloadRef,omitempty"`
	ElapsedMs  int64             `json:"elapsedMs"`
	Message    string            `json:"message"`
}

type ExportFile struct {
	Filename  string
	Data      []byte
	Count     int
	ElapsedMs int64
	Message   string
}

type (
	originKey     struct{}
	payloadRefKey struct{}
)

// WithOrigin tags ctx with where a request came from, for the audit log.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

// WithPayloadRef marks the document being imported as already archived
// under ref, so Import does not store a second copy.
func WithPayloadRef(ctx context.Context, ref string) context.Context {
	return context.WithValue(ctx, payloadRefKey{}, ref)
}

func originFrom(ctx context.Context) string {
	if origin, ok := ctx.Value(originKey{}).(string); ok {
		return origin
	}
	return ""
}

type InterchangeConfig struct {
	Store      Store
	Serializer ExportSerializer
	Pipeline   *importers.Pipeline
	Locker     batchlock.Locker
	Audit      AuditLogger
	Archive    PayloadArchiver
	Metrics    MetricsRecorder
	Log        logrus.FieldLogger
}

// InterchangeService runs XML imports, exports and purges. At most one
// import or purge runs at a time.
type InterchangeService struct {
	store      Store
	serializer ExportSerializer
	pipeline   *importers.Pipeline
	locker     batchlock.Locker
	audit      AuditLogger
	archive    PayloadArchiver
	metrics    MetricsRecorder
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewInterchangeService(cfg InterchangeConfig) *InterchangeService {
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	pipeline := cfg.Pipeline
	if pipeline == nil {
		pipeline = importers.NewPipeline(nil, importers.Deps{Store: cfg.Store, Log: log})
	}

	locker := cfg.Locker
	if locker == nil {
		locker = batchlock.NewLocalLocker()
	}

	return &InterchangeService{
		store:      cfg.Store,
		serializer: cfg.Serializer,
		pipeline:   pipeline,
		locker:     locker,
		audit:      cfg.Audit,
		archive:    cfg.Archive,
		metrics:    cfg.Metrics,
		log:        log,
		now:        time.Now,
	}
}

// Import reads one XML document and reconciles it against the store.
// Failed records are counted in the summary and never returned as errors.
// The errors returned are ErrBatchInProgress, ErrParse, a store failure
// that prevented planning, or ctx's error; in the last two cases the
// summary holds what was applied before the stop.
func (s *InterchangeService) Import(ctx context.Context, r io.Reader) (ImportSummary, error) {
	start := s.now()

	release, err := s.locker.Acquire(ctx)
	if err != nil {
		return ImportSummary{}, err
	}
	defer release()

	data, err := io.ReadAll(r)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("failed to read XML: %w", err)
	}

	summary := ImportSummary{}
	if ref, ok := ctx.Value(payloadRefKey{}).(string); ok && ref != "" {
		summary.PayloadRef = ref
	} else if s.archive != nil {
		ref, err := s.archive.SaveXML(data)
		if err != nil {
			s.log.WithError(err).Warn("Failed to archive import payload")
		}
		summary.PayloadRef = ref
	}

	doc, err := xmldoc.Parse(bytes.NewReader(data))
	if err != nil {
		parseErr := fmt.Errorf("%w: %w", ErrParse, err)
		summary.Message = ErrParse.Error()
		summary.ElapsedMs = s.since(start)
		s.finishImport(ctx, summary, parseErr)
		return summary, parseErr
	}

	result, err := s.pipeline.Import(ctx, doc)
	summary.Dialect = result.Dialect
	summary.Recognized = result.Recognized()
	summary.OK = result.Tally.OK
	summary.Fail = result.Tally.Fail
	summary.Skipped = result.Tally.Skipped
	summary.Failures = result.Tally.Failures
	summary.ElapsedMs = s.since(start)

	switch {
	case err != nil:
		summary.Message = fmt.Sprintf("Import stopped. Successes: %d, Failures: %d.", summary.OK, summary.Fail)
	case !summary.Recognized:
		summary.Message = unrecognizedMessage
	default:
		summary.Message = fmt.Sprintf("Import finished. Successes: %d, Failures: %d.", summary.OK, summary.Fail)
	}

	s.finishImport(ctx, summary, err)
	return summary, err
}

func (s *InterchangeService) finishImport(ctx context.Context, summary ImportSummary, err error) {
	status := "success"
	switch {
	case err != nil:
		status = "failed"
	case !summary.Recognized:
		status = "unrecognized"
	case summary.Fail > 0:
		status = "partial"
	}

	fields := logrus.Fields{
		"dialect":    summary.Dialect.String(),
		"ok":         summary.OK,
		"fail":       summary.Fail,
		"skipped":    summary.Skipped,
		"elapsed_ms": summary.ElapsedMs,
		"status":     status,
	}
	if err != nil {
		s.log.WithFields(fields).WithError(err).Error("XML import failed")
	} else {
		s.log.WithFields(fields).Info("XML import finished")
	}

	elapsed := time.Duration(summary.ElapsedMs) * time.Millisecond
	if s.metrics != nil {
		s.metrics.ObserveImport(summary.Dialect.String(), status, elapsed)
	}
	if s.audit != nil {
		s.audit.LogImport(audit.ImportRecord{
			Origin:     originFrom(ctx),
			Dialect:    summary.Dialect.String(),
			PayloadRef: summary.PayloadRef,
			OK:         summary.OK,
			Fail:       summary.Fail,
			Skipped:    summary.Skipped,
			Duration:   elapsed,
			Err:        err,
		})
	}
}

// Plan parses a document and reports what each stage would do, without
// writing anything.
func (s *InterchangeService) Plan(ctx context.Context, r io.Reader) (importers.Dialect, []importers.StagePlan, error) {
	doc, err := xmldoc.Parse(r)
	if err != nil {
		return importers.DialectUnrecognized, nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return s.pipeline.Plan(ctx, doc)
}

// Export renders every active reservation.
func (s *InterchangeService) Export(ctx context.Context) (ExportFile, error) {
	start := s.now()

	file, err := s.export(ctx)
	file.ElapsedMs = s.since(start)
	elapsed := time.Duration(file.ElapsedMs) * time.Millisecond

	if err != nil {
		s.log.WithError(err).Error("XML export failed")
	} else {
		file.Message = fmt.Sprintf("Exported %d reservations.", file.Count)
		s.log.WithFields(logrus.Fields{
			"count":      file.Count,
			"elapsed_ms": file.ElapsedMs,
		}).Info("XML export finished")
		if s.metrics != nil {
			s.metrics.ObserveExport(file.Count, elapsed)
		}
	}

	if s.audit != nil {
		s.audit.LogExport(audit.ExportRecord{
			Origin:   originFrom(ctx),
			Count:    file.Count,
			Duration: elapsed,
			Err:      err,
		})
	}
	return file, err
}

func (s *InterchangeService) export(ctx context.Context) (ExportFile, error) {
	reservations, err := s.store.ListReservations(ctx)
	if err != nil {
		return ExportFile{}, fmt.Errorf("failed to list reservations: %w", err)
	}

	data, count, err := s.serializer.Serialize(reservations)
	if err != nil {
		return ExportFile{}, err
	}

	return ExportFile{
		Filename: exporters.ExportFilename,
		Data:     data,
		Count:    count,
	}, nil
}

// Purge deletes all reservations and their history and frees every seat.
// confirmation must be PurgeConfirmation, ignoring case and surrounding
// space.
func (s *InterchangeService) Purge(ctx context.Context, confirmation string) (entities.PurgeResult, error) {
	if !strings.EqualFold(strings.TrimSpace(confirmation), PurgeConfirmation) {
		return entities.PurgeResult{}, ErrPurgeNotConfirmed
	}

	release, err := s.locker.Acquire(ctx)
	if err != nil {
		return entities.PurgeResult{}, err
	}
	defer release()

	start := s.now()
	result, err := s.store.PurgeData(ctx)
	elapsed := time.Duration(s.since(start)) * time.Millisecond

	if err != nil {
		s.log.WithError(err).Error("Purge failed")
	} else {
		s.log.WithFields(logrus.Fields{
			"reservaciones":  result.Reservaciones,
			"modificaciones": result.Modificaciones,
			"seats_freed":    result.SeatsFreed,
		}).Warn("All reservations purged")
		if s.metrics != nil {
			s.metrics.ObservePurge(result.Reservaciones, result.Modificaciones, result.SeatsFreed, elapsed)
		}
	}

	if s.audit != nil {
		s.audit.LogPurge(originFrom(ctx), result, elapsed, err)
	}
	return result, err
}

func (s *InterchangeService) since(start time.Time) int64 {
	return s.now().Sub(start).Milliseconds()
}
