package advisor

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// DefaultIDColumn is the roster column holding the student identifier.
const DefaultIDColumn = "EMPLID"

// GuestID is the identifier value bound to the guest placeholder record.
const GuestID = "guest"

// StudentRecord is one roster row. Field values are kept verbatim as they
// appear in the source; Columns preserves the source column order.
type StudentRecord struct {
	ID      int64
	Guest   bool
	Columns []string
	Fields  map[string]string
}

// NewStudentRecord builds a record from a header and a row of values.
// Missing trailing values are treated as empty strings.
func NewStudentRecord(id int64, columns, values []string) StudentRecord {
	fields := make(map[string]string, len(columns))
	for i, c := range columns {
		if i < len(values) {
			fields[c] = values[i]
		} else {
			fields[c] = ""
		}
	}
	return StudentRecord{
		ID:      id,
		Columns: slices.Clone(columns),
		Fields:  fields,
	}
}

// GuestRecord returns the placeholder record bound by the guest bypass.
// It is never matched against a roster and never rendered into prompts.
func GuestRecord() StudentRecord {
	return StudentRecord{
		Guest:   true,
		Columns: []string{"name", DefaultIDColumn},
		Fields: map[string]string{
			"name":           "Guest User",
			DefaultIDColumn: GuestID,
		},
	}
}

// Get returns the value of a field and whether the field exists.
func (r StudentRecord) Get(field string) (string, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// Name returns a display name for the record, trying the usual roster
// column spellings before falling back to the identifier.
func (r StudentRecord) Name() string {
	for _, key := range []string{"name", "Name", "NAME", "first_name", "FIRST_NAME"} {
		if v := strings.TrimSpace(r.Fields[key]); v != "" {
			return v
		}
	}
	if r.Guest {
		return "Guest User"
	}
	return strconv.FormatInt(r.ID, 10)
}

// Clone returns a deep copy so callers cannot mutate roster data.
func (r StudentRecord) Clone() StudentRecord {
	return StudentRecord{
		ID:      r.ID,
		Guest:   r.Guest,
		Columns: slices.Clone(r.Columns),
		Fields:  maps.Clone(r.Fields),
	}
}

// ParseSubmittedID converts an identifier typed at login. Only a plain
// base-10 integer is accepted; float and exponent spellings fail.
func ParseSubmittedID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ParseRosterID converts an identifier cell read from a roster source.
// Integral float spellings such as "12345.0" are accepted because
// spreadsheet exports commonly produce them.
func ParseRosterID(s string) (int64, bool) {
	if id, ok := ParseSubmittedID(s); ok {
		return id, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}
