package bubbletea

import (
	"errors"
	"fmt"

	"github.com/fwojciec/advisor"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders a failed turn. Generation failures show the
// user-facing message in place of an answer.
type ErrorBlock struct {
	err    error
	styles Styles
}

// NewErrorBlock creates an ErrorBlock.
func NewErrorBlock(err error, styles Styles) *ErrorBlock {
	return &ErrorBlock{err: err, styles: styles}
}

func (b *ErrorBlock) View(width int) string {
	text := fmt.Sprintf("Error: %v", b.err)
	var genErr *advisor.GenerationError
	if errors.As(b.err, &genErr) {
		text = genErr.UserMessage()
	}
	return b.styles.ErrorBg.Width(width).Render(b.styles.Error.Render(text))
}
