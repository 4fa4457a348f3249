package importers

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/weengz-air/internal/datefmt"
	"github.com/mrlokans/weengz-air/internal/xmldoc"
)

type Dialect int

const (
	DialectUnrecognized Dialect = iota
	DialectCompact
	DialectLegacy
)

func (d Dialect) String() string {
	switch d {
	case DialectCompact:
		return "compact"
	case DialectLegacy:
		return "legacy"
	default:
		return "unrecognized"
	}
}

func (d Dialect) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

var legacySections = []string{"Usuarios", "Asientos", "Reservaciones"}

// Detect decides the dialect from element structure alone. A single
// flightReservation > flightSeat makes a document compact.
func Detect(doc *xmldoc.Node) Dialect {
	if doc == nil {
		return DialectUnrecognized
	}
	if doc.FindPath("flightReservation", "flightSeat") != nil {
		return DialectCompact
	}
	for _, section := range legacySections {
		if doc.Has(section) {
			return DialectLegacy
		}
	}
	return DialectUnrecognized
}

// Deps are the collaborators shared by every dialect importer.
type Deps struct {
	Store Store
	Dates *datefmt.Normalizer
	Now   func() time.Time
	Log   logrus.FieldLogger
}

func (d Deps) withDefaults() Deps {
	if d.Dates == nil {
		d.Dates = datefmt.NewNormalizer(time.Local)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	return d
}

// Importer turns a document of one dialect into ordered stages.
type Importer interface {
	Dialect() Dialect
	Stages(doc *xmldoc.Node) []Stage
}

// ForDialect returns the importer for d. Unrecognized has none.
func ForDialect(d Dialect, deps Deps) (Importer, bool) {
	deps = deps.withDefaults()
	switch d {
	case DialectCompact:
		return &CompactImporter{deps: deps}, true
	case DialectLegacy:
		return &LegacyImporter{deps: deps}, true
	default:
		return nil, false
	}
}
