package bubbletea

var _ MessageBlock = (*UserMessageBlock)(nil)

// UserMessageBlock renders a question prefixed with who asked it, for
// example "Jordan> " or "guest> ".
type UserMessageBlock struct {
	text    string
	speaker string
	styles  Styles
}

// NewUserMessageBlock creates a UserMessageBlock. An empty speaker renders
// a bare "> " prefix.
func NewUserMessageBlock(text, speaker string, styles Styles) *UserMessageBlock {
	return &UserMessageBlock{text: text, speaker: speaker, styles: styles}
}

func (b *UserMessageBlock) View(width int) string {
	content := b.styles.UserMsg.Render(b.speaker+"> ") + b.text
	return b.styles.UserBg.Width(width).Render(content)
}
