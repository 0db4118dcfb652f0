package bubbletea

import (
	"github.com/fwojciec/advisor"
	"github.com/fwojciec/advisor/goldmark"
)

var _ MessageBlock = (*AssistantTextBlock)(nil)

// AssistantTextBlock renders an answer with markdown formatting. Rendered
// output is cached per width since answers never change once received.
type AssistantTextBlock struct {
	text    string
	theme   advisor.Theme
	byWidth map[int]string
}

// NewAssistantTextBlock creates a block for a completed answer.
func NewAssistantTextBlock(text string, theme advisor.Theme) *AssistantTextBlock {
	return &AssistantTextBlock{
		text:    text,
		theme:   theme,
		byWidth: make(map[int]string),
	}
}

func (b *AssistantTextBlock) View(width int) string {
	if cached, ok := b.byWidth[width]; ok {
		return cached
	}
	rendered := goldmark.Render(b.text, width, b.theme)
	b.byWidth[width] = rendered
	return rendered
}
