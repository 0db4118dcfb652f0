package goldmark

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/advisor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const sourcesLabel = "Sources:"

// answerRenderer renders one parsed answer. It is not reused across calls.
type answerRenderer struct {
	src []byte

	bold      lipgloss.Style
	italic    lipgloss.Style
	strike    lipgloss.Style
	heading   lipgloss.Style
	muted     lipgloss.Style
	underline lipgloss.Style
}

func newRenderer(theme advisor.Theme) *answerRenderer {
	return &answerRenderer{
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		strike:    lipgloss.NewStyle().Strikethrough(true),
		heading:   lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		underline: lipgloss.NewStyle().Underline(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *answerRenderer) render(source []byte, width int) string {
	r.src = source
	md := goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
	doc := md.Parser().Parse(text.NewReader(source))

	var out bytes.Buffer
	r.children(&out, doc, width, false)
	return strings.TrimRight(out.String(), "\n")
}

// children renders the block children of parent. Everything from a top-level
// "Sources:" paragraph onwards is muted.
func (r *answerRenderer) children(out *bytes.Buffer, parent ast.Node, width int, muted bool) {
	top := parent.Kind() == ast.KindDocument
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if top && !muted && r.isSourcesLabel(n) {
			muted = true
		}
		if !muted {
			r.block(out, n, width)
			continue
		}
		var tmp bytes.Buffer
		r.block(&tmp, n, width)
		out.WriteString(r.mute(tmp.String()))
	}
}

func (r *answerRenderer) isSourcesLabel(n ast.Node) bool {
	p, ok := n.(*ast.Paragraph)
	if !ok {
		return false
	}
	return strings.TrimSpace(string(r.raw(p.Lines()))) == sourcesLabel
}

func (r *answerRenderer) raw(segs *text.Segments) []byte {
	var b []byte
	for i := range segs.Len() {
		seg := segs.At(i)
		b = append(b, seg.Value(r.src)...)
	}
	return b
}

func (r *answerRenderer) mute(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		if lines[i] != "" {
			lines[i] = r.muted.Render(lines[i])
		}
	}
	return strings.Join(lines, "\n")
}

func (r *answerRenderer) block(out *bytes.Buffer, n ast.Node, width int) {
	switch n := n.(type) {
	case *ast.Paragraph:
		wrap(out, r.inline(n), width)
	case *ast.Heading:
		wrap(out, r.heading.Render(r.inline(n)), width)
	case *ast.FencedCodeBlock:
		if lang := n.Language(r.src); len(lang) > 0 {
			out.WriteString(r.muted.Render(string(lang)) + "\n")
		}
		r.code(out, n.Lines())
	case *ast.CodeBlock:
		r.code(out, n.Lines())
	case *ast.Blockquote:
		var quoted bytes.Buffer
		r.children(&quoted, n, width-2, false)
		gutter := r.muted.Render("┃") + " "
		for _, line := range strings.Split(strings.TrimRight(quoted.String(), "\n"), "\n") {
			out.WriteString(gutter + line + "\n")
		}
	case *ast.List:
		r.list(out, n, width, "")
	case *ast.ThematicBreak:
		out.WriteString(r.muted.Render(strings.Repeat("─", min(width, 40))) + "\n")
	case *ast.HTMLBlock:
		out.Write(r.raw(n.Lines()))
		return
	default:
		r.children(out, n, width, false)
		return
	}
	if n.NextSibling() != nil {
		out.WriteByte('\n')
	}
}

func wrap(out *bytes.Buffer, s string, width int) {
	out.WriteString(lipgloss.NewStyle().Width(width).Render(s))
	out.WriteByte('\n')
}

// code writes verbatim lines behind a gutter. Lines are never reflowed.
func (r *answerRenderer) code(out *bytes.Buffer, segs *text.Segments) {
	gutter := r.muted.Render("│") + " "
	for i := range segs.Len() {
		seg := segs.At(i)
		out.WriteString(gutter)
		out.WriteString(strings.TrimRight(string(seg.Value(r.src)), "\n"))
		out.WriteByte('\n')
	}
}

func (r *answerRenderer) list(out *bytes.Buffer, l *ast.List, width int, indent string) {
	num := l.Start
	for c := l.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "• "
		if l.IsOrdered() {
			marker = strconv.Itoa(num) + ". "
			num++
		}

		var body bytes.Buffer
		flush := func() {
			if body.Len() == 0 {
				return
			}
			hanging(out, indent+marker, body.String(), width)
			body.Reset()
			// Later paragraphs of the same item hang under the first.
			marker = strings.Repeat(" ", lipgloss.Width(marker))
		}
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch ic := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				body.WriteString(r.inline(ic))
			case *ast.List:
				flush()
				r.list(out, ic, width, indent+"  ")
			default:
				r.block(&body, ic, width)
			}
		}
		flush()
	}
}

// hanging writes content wrapped to width with every line after the first
// aligned under the text following prefix.
func hanging(out *bytes.Buffer, prefix, content string, width int) {
	pw := lipgloss.Width(prefix)
	wrapped := lipgloss.NewStyle().Width(max(width-pw, 10)).Render(content)
	pad := strings.Repeat(" ", pw)
	for i, line := range strings.Split(wrapped, "\n") {
		if i == 0 {
			out.WriteString(prefix)
		} else {
			out.WriteString(pad)
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
}

// inline returns the styled inline content of n.
func (r *answerRenderer) inline(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		r.span(&b, c)
	}
	return b.String()
}

func (r *answerRenderer) span(b *strings.Builder, n ast.Node) {
	switch n := n.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(r.src))
		switch {
		case n.HardLineBreak():
			b.WriteByte('\n')
		case n.SoftLineBreak():
			b.WriteByte(' ')
		}
	case *ast.String:
		b.Write(n.Value)
	case *ast.Emphasis:
		style := r.bold
		if n.Level == 1 {
			style = r.italic
		}
		b.WriteString(style.Render(r.inline(n)))
	case *extast.Strikethrough:
		b.WriteString(r.strike.Render(r.inline(n)))
	case *ast.CodeSpan:
		b.WriteString(r.bold.Render(r.inline(n)))
	case *ast.Link:
		label, dest := r.inline(n), string(n.Destination)
		b.WriteString(r.underline.Render(label))
		if label != dest {
			b.WriteString(" " + r.muted.Render("("+dest+")"))
		}
	case *ast.AutoLink:
		b.WriteString(r.underline.Render(string(n.URL(r.src))))
	case *ast.Image:
		b.WriteString(r.underline.Render(r.inline(n)))
		b.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))
	case *ast.RawHTML:
		b.Write(r.raw(n.Segments))
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			r.span(b, c)
		}
	}
}
