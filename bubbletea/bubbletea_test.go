package bubbletea_test

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/advisor"
	bt "github.com/fwojciec/advisor/bubbletea"
	"github.com/fwojciec/advisor/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// testRoster returns a cache holding a single student, 12345 Jordan.
func testRoster() *advisor.RosterCache {
	cols := []string{"EMPLID", "name", "MATH_PLACEMENT"}
	roster := advisor.NewRoster([]advisor.StudentRecord{
		advisor.NewStudentRecord(12345, cols, []string{"12345", "Jordan", "MATH 141"}),
	}, 0)
	return advisor.NewRosterCache(&mock.RosterSource{
		LoadFn: func(context.Context) (*advisor.Roster, error) { return roster, nil },
	}, nil)
}

// replyWith returns a generator answering every prompt with text.
func replyWith(text string) *mock.Generator {
	return &mock.Generator{
		GenerateFn: func(context.Context, advisor.GenerationRequest) (advisor.Answer, error) {
			return advisor.Answer{Text: text}, nil
		},
	}
}

func newModel(gen advisor.Generator) (bt.Model, *advisor.Session) {
	loop := advisor.NewLoop(gen, advisor.KnowledgeBaseConfig{KnowledgeBaseID: "KB", ModelID: "m"},
		advisor.WithClock(func() time.Time { return testNow }))
	session := advisor.NewSession(testNow)
	return bt.New(loop, testRoster(), session, advisor.DefaultTheme()), session
}

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, gen advisor.Generator) (bt.Model, *advisor.Session) {
	t.Helper()
	m, session := newModel(gen)
	return updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24}), session
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// typeAndEnter types text into the input and presses Enter, running any
// command the model returns and feeding its message back.
func typeAndEnter(t *testing.T, m bt.Model, text string) bt.Model {
	t.Helper()
	m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	if cmd == nil {
		return model
	}
	switch msg := cmd().(type) {
	case bt.RosterLoadedMsg, bt.AnswerMsg:
		return updateModel(t, model, msg)
	}
	return model
}

// signIn logs the model in as 12345 Jordan.
func signIn(t *testing.T, m bt.Model) bt.Model {
	t.Helper()
	m = typeAndEnter(t, m, "12345")
	require.True(t, bt.OnChatScreen(m))
	return m
}
