package bubbletea_test

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/advisor"
	bt "github.com/fwojciec/advisor/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestUserMessageBlock_View(t *testing.T) {
	t.Parallel()

	t.Run("prefixes the question with the speaker", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(advisor.DefaultTheme())
		view := ansi.Strip(bt.NewUserMessageBlock("Which course?", "Jordan", styles).View(80))
		assert.True(t, strings.HasPrefix(view, "Jordan> Which course?"), view)
	})

	t.Run("guest questions are marked", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(advisor.DefaultTheme())
		view := ansi.Strip(bt.NewUserMessageBlock("Which course?", advisor.GuestID, styles).View(80))
		assert.True(t, strings.HasPrefix(view, "guest> Which course?"), view)
	})

	t.Run("no speaker renders a bare prompt", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(advisor.DefaultTheme())
		view := ansi.Strip(bt.NewUserMessageBlock("hello world", "", styles).View(80))
		assert.True(t, strings.HasPrefix(view, "> hello world"), view)
	})

	t.Run("wraps long text to width", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(advisor.DefaultTheme())
		longText := "short words that keep going and going beyond the viewport width easily"
		block := bt.NewUserMessageBlock(longText, "", styles)
		view := block.View(30)
		assert.Contains(t, view, "easily")
		assert.Greater(t, len(strings.Split(view, "\n")), 1)
	})
}
