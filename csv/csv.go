// Package csv implements [advisor.RosterSource] for comma-separated roster
// exports with a header row.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/advisor"
)

// Interface compliance check.
var _ advisor.RosterSource = (*Source)(nil)

var (
	// ErrNoHeader indicates the file has no header row.
	ErrNoHeader = errors.New("csv: missing header row")

	// ErrMissingIDColumn indicates the header lacks the identifier column.
	ErrMissingIDColumn = errors.New("csv: identifier column not found")
)

// Source reads a roster from a CSV file on every Load.
type Source struct {
	Path     string
	IDColumn string // defaults to advisor.DefaultIDColumn
}

// Load opens and parses the file. A missing file yields an error wrapping
// fs.ErrNotExist.
func (s *Source) Load(ctx context.Context) (*advisor.Roster, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	defer f.Close()
	return Parse(ctx, f, s.IDColumn)
}

// Parse reads a roster from r. Rows whose identifier does not parse are
// skipped and counted. Column order follows the header.
func Parse(ctx context.Context, r io.Reader, idColumn string) (*advisor.Roster, error) {
	if idColumn == "" {
		idColumn = advisor.DefaultIDColumn
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	idx := columnIndex(header, idColumn)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingIDColumn, idColumn)
	}

	var (
		records []advisor.StudentRecord
		skipped int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		if idx >= len(row) {
			skipped++
			continue
		}
		id, ok := advisor.ParseRosterID(row[idx])
		if !ok {
			skipped++
			continue
		}
		records = append(records, advisor.NewStudentRecord(id, header, row))
	}
	return advisor.NewRoster(records, skipped), nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}
