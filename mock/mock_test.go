package mock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/advisor"
	"github.com/fwojciec/advisor/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	t.Run("delegates to GenerateFn", func(t *testing.T) {
		t.Parallel()
		var got advisor.GenerationRequest
		g := mock.Generator{
			GenerateFn: func(_ context.Context, req advisor.GenerationRequest) (advisor.Answer, error) {
				got = req
				return advisor.Answer{Text: "ok"}, nil
			},
		}
		ans, err := g.Generate(context.Background(), advisor.GenerationRequest{Prompt: "p"})
		require.NoError(t, err)
		assert.Equal(t, "ok", ans.Text)
		assert.Equal(t, "p", got.Prompt)
	})

	t.Run("returns error", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("api error")
		g := mock.Generator{
			GenerateFn: func(context.Context, advisor.GenerationRequest) (advisor.Answer, error) {
				return advisor.Answer{}, wantErr
			},
		}
		_, err := g.Generate(context.Background(), advisor.GenerationRequest{})
		assert.ErrorIs(t, err, wantErr)
	})
}

func TestRosterSource_Load(t *testing.T) {
	t.Parallel()
	want := advisor.NewRoster(nil, 0)
	s := mock.RosterSource{
		LoadFn: func(context.Context) (*advisor.Roster, error) { return want, nil },
	}
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, want, got)
}
