package csv_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/advisor"
	"github.com/fwojciec/advisor/csv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const roster = `EMPLID,name,MATH_SCORE
12345,Jordan,42
22222.0,Sam,31
,Blank,0
abc,Bad,0
`

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("loads records and skips unparseable ids", func(t *testing.T) {
		t.Parallel()
		r, err := csv.Parse(context.Background(), strings.NewReader(roster), "")
		require.NoError(t, err)
		assert.Equal(t, 2, r.Len())
		assert.Equal(t, 2, r.Skipped())

		rec, ok := r.Lookup(12345)
		require.True(t, ok)
		assert.Equal(t, []string{"EMPLID", "name", "MATH_SCORE"}, rec.Columns)
		assert.Equal(t, "Jordan", rec.Fields["name"])
		assert.Equal(t, "42", rec.Fields["MATH_SCORE"])

		rec, ok = r.Lookup(22222)
		require.True(t, ok)
		assert.Equal(t, "22222.0", rec.Fields["EMPLID"])
	})

	t.Run("byte order mark and header case are tolerated", func(t *testing.T) {
		t.Parallel()
		in := "\ufeffemplid, name\n7,Ada\n"
		r, err := csv.Parse(context.Background(), strings.NewReader(in), "EMPLID")
		require.NoError(t, err)
		rec, ok := r.Lookup(7)
		require.True(t, ok)
		assert.Equal(t, "Ada", rec.Fields["name"])
	})

	t.Run("custom id column", func(t *testing.T) {
		t.Parallel()
		in := "student_id,name\n9,Lin\n"
		r, err := csv.Parse(context.Background(), strings.NewReader(in), "student_id")
		require.NoError(t, err)
		_, ok := r.Lookup(9)
		assert.True(t, ok)
	})

	t.Run("ragged rows", func(t *testing.T) {
		t.Parallel()
		in := "name,EMPLID,term\nAda,1\nShort\n"
		r, err := csv.Parse(context.Background(), strings.NewReader(in), "")
		require.NoError(t, err)
		assert.Equal(t, 1, r.Len())
		assert.Equal(t, 1, r.Skipped())
		rec, _ := r.Lookup(1)
		assert.Equal(t, "", rec.Fields["term"])
	})

	t.Run("missing id column", func(t *testing.T) {
		t.Parallel()
		_, err := csv.Parse(context.Background(), strings.NewReader("name\nAda\n"), "")
		assert.ErrorIs(t, err, csv.ErrMissingIDColumn)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		_, err := csv.Parse(context.Background(), strings.NewReader(""), "")
		assert.ErrorIs(t, err, csv.ErrNoHeader)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := csv.Parse(ctx, strings.NewReader(roster), "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSource_Load(t *testing.T) {
	t.Parallel()

	t.Run("reads file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "roster.csv")
		require.NoError(t, os.WriteFile(path, []byte(roster), 0o600))

		src := &csv.Source{Path: path}
		r, err := src.Load(context.Background())
		require.NoError(t, err)

		rec, ok := advisor.Authenticate(r, "12345")
		require.True(t, ok)
		assert.Equal(t, "Jordan", rec.Name())
	})

	t.Run("missing file wraps not-exist", func(t *testing.T) {
		t.Parallel()
		src := &csv.Source{Path: filepath.Join(t.TempDir(), "nope.csv")}
		_, err := src.Load(context.Background())
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("missing file through cache yields empty roster", func(t *testing.T) {
		t.Parallel()
		cache := advisor.NewRosterCache(&csv.Source{Path: filepath.Join(t.TempDir(), "nope.csv")}, nil)
		r, err := cache.Get(context.Background())
		require.ErrorIs(t, err, advisor.ErrRosterUnavailable)
		assert.Equal(t, 0, r.Len())
	})
}
