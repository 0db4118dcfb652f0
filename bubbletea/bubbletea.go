// Package bubbletea provides a Bubble Tea TUI for the advisor chat.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/advisor"
)

// RosterProvider returns the roster used to authenticate logins.
// *advisor.RosterCache satisfies it.
type RosterProvider interface {
	Get(ctx context.Context) (*advisor.Roster, error)
}

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. When ctx is cancelled the program quits.
func Run(ctx context.Context, m Model) (Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		m = fm
	}
	return m, err
}

// RosterLoadedMsg carries the roster fetched for a pending login of Submitted.
type RosterLoadedMsg struct {
	Submitted string
	Roster    *advisor.Roster
	Err       error
}

// AnswerMsg signals that a turn has completed.
type AnswerMsg struct {
	Reply advisor.Message
	Err   error
}
