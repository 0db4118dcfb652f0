package bubbletea

// MessageBlock is one entry in the conversation viewport. Blocks are
// immutable once created; the model re-renders them at the current width.
type MessageBlock interface {
	View(width int) string
}
