package advisor_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/advisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var promptTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func jordan() advisor.StudentRecord {
	return advisor.NewStudentRecord(12345, []string{"EMPLID", "name", "MATH_SCORE"}, []string{"12345", "Jordan", "42"})
}

func TestComposer_Compose(t *testing.T) {
	t.Parallel()

	c := advisor.NewComposer()

	t.Run("question is the literal suffix", func(t *testing.T) {
		t.Parallel()
		s := advisor.NewSession(promptTime)
		s.Login(jordan(), promptTime)
		for _, q := range []string{"What is MATH 141?", "  spaced  ", "multi\nline", ""} {
			got := c.Compose(s, q, promptTime)
			assert.True(t, strings.HasSuffix(got, q), "prompt %q does not end with %q", got, q)
		}
	})

	t.Run("always starts with the policy block", func(t *testing.T) {
		t.Parallel()
		s := advisor.NewSession(promptTime)
		got := c.Compose(s, "q", promptTime)
		assert.True(t, strings.HasPrefix(got, advisor.DefaultPolicy))
	})

	t.Run("includes the formatted timestamp", func(t *testing.T) {
		t.Parallel()
		s := advisor.NewSession(promptTime)
		got := c.Compose(s, "q", promptTime)
		assert.Contains(t, got, "Current date and time: 2025-03-14 09:26:53")
	})

	t.Run("includes student data for roster records", func(t *testing.T) {
		t.Parallel()
		s := advisor.NewSession(promptTime)
		s.Login(jordan(), promptTime)
		got := c.Compose(s, "q", promptTime)
		assert.Contains(t, got, "Student Data:\nEMPLID: 12345\nname: Jordan\nMATH_SCORE: 42")
	})

	t.Run("omits student data for guests", func(t *testing.T) {
		t.Parallel()
		s := advisor.NewSession(promptTime)
		s.Login(advisor.GuestRecord(), promptTime)
		got := c.Compose(s, "q", promptTime)
		assert.NotContains(t, got, "Student Data:")
		assert.NotContains(t, got, "Guest User")
	})

	t.Run("greeting appears only when transcript is empty", func(t *testing.T) {
		t.Parallel()
		s := advisor.NewSession(promptTime)
		s.Login(jordan(), promptTime)

		first := c.Compose(s, "What is MATH 141?", promptTime)
		assert.Contains(t, first, advisor.DefaultGreeting)
		assert.NotContains(t, first, "Recent conversation:")

		s.Append(advisor.UserMessage("What is MATH 141?", promptTime))
		s.Append(advisor.AssistantMessage("Calculus I.", promptTime))

		second := c.Compose(s, "What about MATH 142?", promptTime)
		assert.NotContains(t, second, advisor.DefaultGreeting)
		assert.Contains(t, second, "Recent conversation:\nuser: What is MATH 141?\nassistant: Calculus I.")
		assert.True(t, strings.HasSuffix(second, "User question: What about MATH 142?"))
	})

	t.Run("greeting returns after logout", func(t *testing.T) {
		t.Parallel()
		s := advisor.NewSession(promptTime)
		s.Login(jordan(), promptTime)
		s.Append(advisor.UserMessage("hi", promptTime))
		s.Logout(promptTime)
		s.Login(jordan(), promptTime)
		assert.Contains(t, c.Compose(s, "q", promptTime), advisor.DefaultGreeting)
	})

	t.Run("history omits the sources list of earlier answers", func(t *testing.T) {
		t.Parallel()
		s := advisor.NewSession(promptTime)
		s.Login(jordan(), promptTime)
		s.Append(advisor.UserMessage("What is MATH 141?", promptTime))
		answer := advisor.Answer{
			Text:      "Calculus I.",
			Citations: []advisor.Citation{{URI: "s3://kb/catalog.pdf"}},
		}
		s.Append(advisor.AssistantMessage(answer.String(), promptTime))

		got := c.Compose(s, "And MATH 142?", promptTime)
		assert.Contains(t, got, "assistant: Calculus I.\n")
		assert.NotContains(t, got, "Sources:")
		assert.NotContains(t, got, "catalog.pdf")
	})

	t.Run("custom policy and greeting", func(t *testing.T) {
		t.Parallel()
		custom := advisor.Composer{Policy: "Be brief.", Greeting: "Say hello."}
		s := advisor.NewSession(promptTime)
		got := custom.Compose(s, "q", promptTime)
		assert.True(t, strings.HasPrefix(got, "Be brief.\n\nSay hello."))
	})
}

func TestComposer_Recent(t *testing.T) {
	t.Parallel()

	transcript := func(n int) []advisor.Message {
		var msgs []advisor.Message
		for i := range n {
			msgs = append(msgs, advisor.UserMessage(fmt.Sprintf("m%d", i), promptTime))
		}
		return msgs
	}

	t.Run("never exceeds the window and keeps order", func(t *testing.T) {
		t.Parallel()
		c := advisor.NewComposer()
		for n := range 12 {
			got := c.Recent(transcript(n))
			require.LessOrEqual(t, len(got), advisor.DefaultWindow)
			for i := 1; i < len(got); i++ {
				var prev, cur int
				fmt.Sscanf(got[i-1].Content, "m%d", &prev)
				fmt.Sscanf(got[i].Content, "m%d", &cur)
				assert.Equal(t, prev+1, cur)
			}
			if n > 0 {
				assert.Equal(t, fmt.Sprintf("m%d", n-1), got[len(got)-1].Content)
			}
		}
	})

	t.Run("short transcript is included whole", func(t *testing.T) {
		t.Parallel()
		c := advisor.NewComposer()
		assert.Len(t, c.Recent(transcript(3)), 3)
	})

	t.Run("zero window uses the default", func(t *testing.T) {
		t.Parallel()
		assert.Len(t, advisor.Composer{}.Recent(transcript(9)), advisor.DefaultWindow)
	})

	t.Run("negative window disables history", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, advisor.Composer{Window: -1}.Recent(transcript(4)))
	})

	t.Run("window counts messages in the prompt", func(t *testing.T) {
		t.Parallel()
		c := advisor.Composer{Window: 2}
		s := advisor.NewSession(promptTime)
		for _, m := range transcript(4) {
			s.Append(m)
		}
		got := c.Compose(s, "q", promptTime)
		assert.NotContains(t, got, "user: m1")
		assert.Contains(t, got, "user: m2\nuser: m3")
	})
}
