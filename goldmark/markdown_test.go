package goldmark_test

import (
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/advisor"
	"github.com/fwojciec/advisor/goldmark"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Styled output must carry escape codes for the styling assertions.
	lipgloss.SetColorProfile(termenv.ANSI)
	os.Exit(m.Run())
}

func TestRender_Content(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		width int
		want  []string
		never []string
	}{
		{
			name:  "emphasis markers are consumed",
			src:   "You placed into **MATH 141** and *may* take `MATH 118` first.",
			want:  []string{"MATH 141", "may", "MATH 118"},
			never: []string{"**", "`"},
		},
		{
			name: "bullet list uses dot markers",
			src:  "- MATH 141\n- MATH 142\n- MATH 143",
			want: []string{"• MATH 141", "• MATH 142", "• MATH 143"},
		},
		{
			name: "ordered list keeps start number",
			src:  "3. Take the ALEKS exam\n4. Register",
			want: []string{"3. Take the ALEKS exam", "4. Register"},
		},
		{
			name: "nested list is indented",
			src:  "- Calculus\n  - MATH 141\n  - MATH 142",
			want: []string{"• Calculus", "  • MATH 141"},
		},
		{
			name:  "code block is not reflowed",
			src:   "```\nscore >= 46 -> MATH 141\n```",
			width: 10,
			want:  []string{"score >= 46 -> MATH 141"},
		},
		{
			name: "fenced code shows language label",
			src:  "```text\nplacement\n```",
			want: []string{"text", "placement"},
		},
		{
			name: "indented code block",
			src:  "see below\n\n    ALEKS 46-60\n    ALEKS 61+",
			want: []string{"ALEKS 46-60", "ALEKS 61+"},
		},
		{
			name: "link shows text and URL",
			src:  "[placement page](https://math.calpoly.edu/placement)",
			want: []string{"placement page", "(https://math.calpoly.edu/placement)"},
		},
		{
			name:  "bare URL is not duplicated",
			src:   "https://math.calpoly.edu",
			want:  []string{"https://math.calpoly.edu"},
			never: []string{"(https://math.calpoly.edu)"},
		},
		{
			name:  "strikethrough markers are consumed",
			src:   "~~MATH 118~~ MATH 141",
			want:  []string{"MATH 118", "MATH 141"},
			never: []string{"~~"},
		},
		{
			name: "image renders alt text and URL",
			src:  "![flowchart](https://example.com/flow.png)",
			want: []string{"flowchart", "example.com/flow.png"},
		},
		{
			name: "blockquote gets a gutter",
			src:  "> Check with your advisor.",
			want: []string{"┃ Check with your advisor."},
		},
		{
			name: "thematic break",
			src:  "above\n\n---\n\nbelow",
			want: []string{"above", "────", "below"},
		},
		{
			name:  "width zero falls back to a default",
			src:   "Welcome to the math placement advisor.",
			width: -1,
			want:  []string{"Welcome to the math placement advisor."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			width := tt.width
			switch {
			case width == 0:
				width = 80
			case width < 0:
				width = 0
			}
			out := ansi.Strip(goldmark.Render(tt.src, width, advisor.DefaultTheme()))
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, n := range tt.never {
				assert.NotContains(t, out, n)
			}
		})
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	theme := advisor.DefaultTheme()

	t.Run("empty input returns empty string", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", goldmark.Render("", 80, theme))
	})

	t.Run("heading is styled differently from a paragraph", func(t *testing.T) {
		t.Parallel()
		heading := goldmark.Render("# Placement", 80, theme)
		paragraph := goldmark.Render("Placement", 80, theme)
		assert.Equal(t, "Placement", strings.TrimSpace(ansi.Strip(heading)))
		assert.NotEqual(t, heading, paragraph)
	})

	t.Run("paragraph wraps to width", func(t *testing.T) {
		t.Parallel()
		long := "Students who score below 46 on the ALEKS placement exam should enroll in MATH 118 before MATH 141."
		lines := strings.Split(ansi.Strip(goldmark.Render(long, 30, theme)), "\n")
		require.Greater(t, len(lines), 1)
		for _, l := range lines {
			assert.LessOrEqual(t, lipgloss.Width(l), 30)
		}
	})

	t.Run("list continuation lines align under item text", func(t *testing.T) {
		t.Parallel()
		src := "- MATH 141 requires a qualifying ALEKS score or completion of MATH 118 with a C- or better"
		lines := strings.Split(ansi.Strip(goldmark.Render(src, 30, theme)), "\n")
		require.Greater(t, len(lines), 1)
		assert.True(t, strings.HasPrefix(lines[0], "• "))
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				assert.True(t, strings.HasPrefix(line, "  "), "continuation line should be indented: %q", line)
			}
		}
	})

	t.Run("sources trailer is muted", func(t *testing.T) {
		t.Parallel()
		answer := advisor.Answer{
			Text:      "MATH 141 is Calculus I.",
			Citations: []advisor.Citation{{URI: "s3://kb/catalog.pdf"}},
		}.String()
		out := goldmark.Render(answer, 80, theme)
		stripped := ansi.Strip(out)
		assert.Contains(t, stripped, "MATH 141 is Calculus I.")
		assert.Contains(t, stripped, "Sources:")
		assert.Contains(t, stripped, "s3://kb/catalog.pdf")

		unmuted := goldmark.Render("Sources:", 80, advisor.Theme{Muted: -1, Accent: -1})
		assert.NotEqual(t, unmuted, goldmark.Render("Sources:", 80, theme))
	})

	t.Run("sources label inside a paragraph is not special", func(t *testing.T) {
		t.Parallel()
		a := goldmark.Render("Sources: the catalog", 80, theme)
		b := goldmark.Render("Sources: the catalog", 80, advisor.Theme{Muted: -1, Accent: -1})
		assert.Equal(t, a, b)
	})
}
