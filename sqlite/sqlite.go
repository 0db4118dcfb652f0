// Package sqlite implements [advisor.RosterSource] over a table in a SQLite
// database file, using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fwojciec/advisor"
	_ "modernc.org/sqlite"
)

// Interface compliance check.
var _ advisor.RosterSource = (*Source)(nil)

// DefaultTable is the roster table name.
const DefaultTable = "students"

// Source reads every row of a roster table on each Load.
type Source struct {
	Path     string
	Table    string // defaults to DefaultTable
	IDColumn string // defaults to advisor.DefaultIDColumn
}

// Load queries the table. A missing database file yields an error wrapping
// fs.ErrNotExist rather than creating an empty database.
func (s *Source) Load(ctx context.Context) (*advisor.Roster, error) {
	if _, err := os.Stat(s.Path); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	defer db.Close()
	return Query(ctx, db, s.Table, s.IDColumn)
}

// Query reads all rows of table from db. Rows whose identifier does not
// parse are skipped and counted.
func Query(ctx context.Context, db *sql.DB, table, idColumn string) (*advisor.Roster, error) {
	if table == "" {
		table = DefaultTable
	}
	if idColumn == "" {
		idColumn = advisor.DefaultIDColumn
	}
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	idx := -1
	for i, c := range cols {
		if strings.EqualFold(c, idColumn) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("sqlite: identifier column %q not found in %s", idColumn, table)
	}

	var (
		records []advisor.StudentRecord
		skipped int
	)
	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		values := make([]string, len(cols))
		for i, v := range raw {
			values[i] = formatValue(v)
		}
		id, ok := advisor.ParseRosterID(values[idx])
		if !ok {
			skipped++
			continue
		}
		records = append(records, advisor.NewStudentRecord(id, cols, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return advisor.NewRoster(records, skipped), nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
