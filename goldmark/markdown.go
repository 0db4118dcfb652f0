// Package goldmark renders advisor answers to ANSI-styled terminal output
// using goldmark for parsing and lipgloss for styling.
package goldmark

import "github.com/fwojciec/advisor"

const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Escape sequences in source are removed before parsing. Paragraphs, list
// items and quotes are word-wrapped to width. Code blocks are rendered at
// full width without reflow. A trailing "Sources:" section
// appended to an answer is rendered in the muted color.
func Render(source string, width int, theme advisor.Theme) string {
	source = Sanitize(source)
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	r := newRenderer(theme)
	return r.render([]byte(source), width)
}
