package datefmt

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// DefaultLocale is the locale export dates are rendered in.
const DefaultLocale = "es-GT"

// exportLayout is the numeric d/M/yyyy, HH:mm:ss form. Normalize reads it
// back through the day-first pattern.
const exportLayout = "2/1/2006, 15:04:05"

var supportedLocales = []language.Tag{
	language.MustParse("es-GT"),
	language.Spanish,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// Formatter renders timestamps for export.
type Formatter struct {
	tag      language.Tag
	location *time.Location
}

// NewFormatter returns a Formatter for a BCP 47 tag. Only Spanish locales are
// supported.
func NewFormatter(tag string, loc *time.Location) (*Formatter, error) {
	if tag == "" {
		tag = DefaultLocale
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return nil, fmt.Errorf("invalid export locale %q: %w", tag, err)
	}

	_, index, confidence := localeMatcher.Match(parsed)
	if confidence == language.No {
		return nil, fmt.Errorf("unsupported export locale %q", tag)
	}

	if loc == nil {
		loc = time.Local
	}

	return &Formatter{tag: supportedLocales[index], location: loc}, nil
}

// Locale returns the matched locale tag.
func (f *Formatter) Locale() string {
	return f.tag.String()
}

func (f *Formatter) Format(t time.Time) string {
	return t.In(f.location).Format(exportLayout)
}
