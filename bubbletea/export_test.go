package bubbletea

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// LoginError returns the message shown under the login input.
func LoginError(m Model) string {
	return m.loginErr
}

// OnChatScreen reports whether the model shows the chat screen.
func OnChatScreen(m Model) bool {
	return m.screen == screenChat
}

// SetRunning puts the model in a running state.
func SetRunning(m Model) Model {
	m.running = true
	return m
}
