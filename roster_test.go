package advisor_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/fwojciec/advisor"
	"github.com/fwojciec/advisor/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterCache_Get(t *testing.T) {
	t.Parallel()

	t.Run("memoizes the first successful load", func(t *testing.T) {
		t.Parallel()
		calls := 0
		src := &mock.RosterSource{LoadFn: func(context.Context) (*advisor.Roster, error) {
			calls++
			return testRoster(), nil
		}}
		cache := advisor.NewRosterCache(src, nil)

		r1, err := cache.Get(context.Background())
		require.NoError(t, err)
		r2, err := cache.Get(context.Background())
		require.NoError(t, err)

		assert.Same(t, r1, r2)
		assert.Equal(t, 1, calls)
		assert.True(t, cache.Loaded())
	})

	t.Run("missing source degrades to empty roster", func(t *testing.T) {
		t.Parallel()
		src := &mock.RosterSource{LoadFn: func(context.Context) (*advisor.Roster, error) {
			return nil, fmt.Errorf("open roster.csv: %w", fs.ErrNotExist)
		}}
		cache := advisor.NewRosterCache(src, nil)

		r, err := cache.Get(context.Background())
		require.ErrorIs(t, err, advisor.ErrRosterUnavailable)
		require.NotNil(t, r)
		assert.Equal(t, 0, r.Len())
		assert.False(t, cache.Loaded())

		_, ok := advisor.Authenticate(r, "12345")
		assert.False(t, ok)
		_, ok = advisor.Authenticate(r, "guest")
		assert.True(t, ok)
	})

	t.Run("missing source is retried on next call", func(t *testing.T) {
		t.Parallel()
		present := false
		src := &mock.RosterSource{LoadFn: func(context.Context) (*advisor.Roster, error) {
			if !present {
				return nil, fs.ErrNotExist
			}
			return testRoster(), nil
		}}
		cache := advisor.NewRosterCache(src, nil)

		_, err := cache.Get(context.Background())
		require.ErrorIs(t, err, advisor.ErrRosterUnavailable)

		present = true
		r, err := cache.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, r.Len())
	})

	t.Run("other errors propagate", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("bad header")
		src := &mock.RosterSource{LoadFn: func(context.Context) (*advisor.Roster, error) {
			return nil, wantErr
		}}
		cache := advisor.NewRosterCache(src, nil)
		_, err := cache.Get(context.Background())
		assert.ErrorIs(t, err, wantErr)
		assert.NotErrorIs(t, err, advisor.ErrRosterUnavailable)
	})

	t.Run("invalidate forces a reload", func(t *testing.T) {
		t.Parallel()
		calls := 0
		src := &mock.RosterSource{LoadFn: func(context.Context) (*advisor.Roster, error) {
			calls++
			return testRoster(), nil
		}}
		cache := advisor.NewRosterCache(src, nil)
		_, err := cache.Get(context.Background())
		require.NoError(t, err)

		cache.Invalidate()
		assert.False(t, cache.Loaded())

		_, err = cache.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})
}

func TestRoster_NilSafe(t *testing.T) {
	t.Parallel()
	var r *advisor.Roster
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, r.Skipped())
	assert.Nil(t, r.Duplicates())
	_, ok := r.Lookup(1)
	assert.False(t, ok)
}
