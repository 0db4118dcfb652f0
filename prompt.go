package advisor

import (
	"strings"
	"time"
)

// DefaultPolicy is the system instruction block sent with every question.
const DefaultPolicy = "You are a helpful assistant for Cal Poly's math placement system. " +
	"Always respond in clear, concise sentences. " +
	"Answer questions about math placement, course prerequisites, enrollment and academic advising. " +
	"Short greetings and small talk are fine; politely decline requests unrelated to these topics. " +
	"If student data is provided, use it to give personalized assistance. " +
	"If you are unsure of the answer, ask the user to clarify their question. " +
	"After clarification, if you don't know the answer, tell the user to contact the math department. " +
	"When using the knowledge base please keep the current date and time in mind. " +
	"When you use information from the knowledge base, cite it at the end."

// DefaultGreeting is included only on the first turn of a session.
const DefaultGreeting = "This is the start of the conversation: open your reply with a brief, friendly greeting."

// DefaultWindow is the number of trailing transcript messages sent as context.
const DefaultWindow = 5

// DefaultTimeFormat renders the current time, e.g. 2025-03-14 09:26:53.
const DefaultTimeFormat = "2006-01-02 15:04:05"

// Prompt section labels.
const (
	timeLabel     = "Current date and time: "
	studentLabel  = "Student Data:"
	historyLabel  = "Recent conversation:"
	questionLabel = "User question: "
)

// Composer builds the instruction text for one turn. The zero value uses
// the defaults above.
type Composer struct {
	Policy     string
	Greeting   string
	Window     int
	TimeFormat string
}

// NewComposer returns a Composer with default settings.
func NewComposer() Composer {
	return Composer{
		Policy:     DefaultPolicy,
		Greeting:   DefaultGreeting,
		Window:     DefaultWindow,
		TimeFormat: DefaultTimeFormat,
	}
}

// Compose renders the prompt for question given the session state before the
// question is recorded. The question is always the literal suffix.
func (c Composer) Compose(s *Session, question string, now time.Time) string {
	var b strings.Builder

	b.WriteString(c.policy())

	if s.FirstTurn() {
		b.WriteString("\n\n")
		b.WriteString(c.greeting())
	}

	b.WriteString("\n\n")
	b.WriteString(timeLabel)
	b.WriteString(now.Format(c.timeFormat()))

	if rec, ok := s.Student(); ok && !rec.Guest {
		b.WriteString("\n\n")
		b.WriteString(studentLabel)
		writeRecord(&b, rec)
	}

	if window := c.Recent(s.Transcript()); len(window) > 0 {
		b.WriteString("\n\n")
		b.WriteString(historyLabel)
		for _, m := range window {
			content := m.Content
			if m.Role == RoleAssistant {
				// History carries answer text only, never its sources list.
				content = withoutSources(content)
			}
			b.WriteString("\n")
			b.WriteString(string(m.Role))
			b.WriteString(": ")
			b.WriteString(content)
		}
	}

	b.WriteString("\n\n")
	b.WriteString(questionLabel)
	b.WriteString(question)
	return b.String()
}

// Recent returns the trailing transcript window, oldest first.
func (c Composer) Recent(transcript []Message) []Message {
	n := c.Window
	if n == 0 {
		n = DefaultWindow
	}
	if n < 0 {
		return nil
	}
	if len(transcript) <= n {
		return transcript
	}
	return transcript[len(transcript)-n:]
}

func writeRecord(b *strings.Builder, rec StudentRecord) {
	for _, col := range rec.Columns {
		b.WriteString("\n")
		b.WriteString(col)
		b.WriteString(": ")
		b.WriteString(rec.Fields[col])
	}
}

func (c Composer) policy() string {
	if c.Policy == "" {
		return DefaultPolicy
	}
	return c.Policy
}

func (c Composer) greeting() string {
	if c.Greeting == "" {
		return DefaultGreeting
	}
	return c.Greeting
}

func (c Composer) timeFormat() string {
	if c.TimeFormat == "" {
		return DefaultTimeFormat
	}
	return c.TimeFormat
}
