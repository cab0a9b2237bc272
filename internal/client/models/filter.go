package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ExportFormat is the file format requested from the export endpoint.
type ExportFormat string

const (
	FormatJSONL ExportFormat = "jsonl"
	FormatCSV   ExportFormat = "csv"
)

var (
	ErrInvalidRange = errors.New("invalid time range")
	ErrUnknownField = errors.New("unknown filter field")
	ErrInvalidValue = errors.New("invalid filter value")
)

// Filter field names accepted by Set and Clear.
const (
	FieldStart   = "start"
	FieldEnd     = "end"
	FieldTag     = "tag"
	FieldOrigin  = "origin"
	FieldSession = "session"
	FieldFormat  = "format"
)

// isoMillis is the wire form of every time bound sent to the backend.
const isoMillis = "2006-01-02T15:04:05.000Z"

// inputLayouts are tried in order for bounds without an explicit offset.
var inputLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FilterState is the single set of query parameters shared by the export,
// stats and tail panels. Start and End hold the text as typed; they are parsed
// only when a dependent operation runs.
type FilterState struct {
	Start   string
	End     string
	Tag     string
	Origin  string
	Session string
	Format  ExportFormat
}

// Scope is the optional, range-independent part of the filter.
type Scope struct {
	Tag     string
	Origin  string
	Session string
}

// TimeRange is a validated [From, To] pair.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// NewFilterState returns a filter covering the hour before now, in loc.
func NewFilterState(now time.Time, loc *time.Location) *FilterState {
	end := now.In(loc).Truncate(time.Minute)
	start := end.Add(-time.Hour)
	return &FilterState{
		Start:  start.Format("2006-01-02T15:04"),
		End:    end.Format("2006-01-02T15:04"),
		Format: FormatJSONL,
	}
}

// ParseInstant reads an RFC 3339 timestamp, or one of the offset-less layouts
// interpreted in loc.
func ParseInstant(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrInvalidRange)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidRange, s)
}

// FormatInstant renders t as a UTC ISO-8601 instant with milliseconds.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// FromISO returns the lower bound in wire form.
func (r TimeRange) FromISO() string { return FormatInstant(r.From) }

// ToISO returns the upper bound in wire form.
func (r TimeRange) ToISO() string { return FormatInstant(r.To) }

// ValidateRange parses both bounds and checks End >= Start.
func (f *FilterState) ValidateRange(loc *time.Location) (TimeRange, error) {
	from, err := ParseInstant(f.Start, loc)
	if err != nil {
		return TimeRange{}, fmt.Errorf("start: %w", err)
	}
	to, err := ParseInstant(f.End, loc)
	if err != nil {
		return TimeRange{}, fmt.Errorf("end: %w", err)
	}
	if to.Before(from) {
		return TimeRange{}, fmt.Errorf("%w: end is before start", ErrInvalidRange)
	}
	return TimeRange{From: from, To: to}, nil
}

// Scope returns the optional tag/origin/session filters.
func (f *FilterState) Scope() Scope {
	return Scope{Tag: f.Tag, Origin: f.Origin, Session: f.Session}
}

// FormatOrDefault returns Format, defaulting to jsonl.
func (f *FilterState) FormatOrDefault() ExportFormat {
	if f.Format == "" {
		return FormatJSONL
	}
	return f.Format
}

// Set assigns one field. Time bounds are stored verbatim; session must be an
// integer and format one of jsonl or csv.
func (f *FilterState) Set(field, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(field) {
	case FieldStart, "from":
		f.Start = value
	case FieldEnd, "to":
		f.End = value
	case FieldTag:
		f.Tag = value
	case FieldOrigin:
		f.Origin = value
	case FieldSession:
		if value != "" {
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				return fmt.Errorf("%w: session must be an integer", ErrInvalidValue)
			}
		}
		f.Session = value
	case FieldFormat:
		switch ExportFormat(strings.ToLower(value)) {
		case FormatJSONL, FormatCSV:
			f.Format = ExportFormat(strings.ToLower(value))
		default:
			return fmt.Errorf("%w: format must be jsonl or csv", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// Clear resets an optional field; format goes back to jsonl. Time bounds
// cannot be cleared.
func (f *FilterState) Clear(field string) error {
	switch strings.ToLower(field) {
	case FieldTag:
		f.Tag = ""
	case FieldOrigin:
		f.Origin = ""
	case FieldSession:
		f.Session = ""
	case FieldFormat:
		f.Format = FormatJSONL
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}
