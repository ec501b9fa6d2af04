package main

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var mathStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#F4DB53")).
	Italic(true)

// Finalizer turns a finished turn's raw markdown into styled terminal
// output. Rendering happens once per turn, at finalization; streaming text
// is shown plain so half-received markup never hits the renderer.
type Finalizer struct {
	markup *glamour.TermRenderer
	width  int
}

// NewFinalizer builds a renderer wrapped at the given width. If glamour
// fails to initialize the finalizer still works, falling back to fenced
// code highlighting on otherwise-plain text.
func NewFinalizer(width int) *Finalizer {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r = nil
	}
	return &Finalizer{markup: r, width: width}
}

// Render converts raw text to display markup: markdown first, then math
// spans over the result. The input is never modified; callers keep the
// raw text for copy-raw.
func (f *Finalizer) Render(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	out := f.renderMarkup(raw)
	return renderMathSpans(out)
}

func (f *Finalizer) renderMarkup(raw string) string {
	if f.markup == nil {
		return highlightFences(raw)
	}
	out, err := f.markup.Render(raw)
	if err != nil {
		return highlightFences(raw)
	}
	// glamour pads with trailing newlines; trim for inline display.
	return strings.TrimRight(out, "\n")
}

// highlightFences walks fenced code blocks and syntax-highlights their
// bodies, leaving the surrounding prose untouched. Used when full markdown
// rendering is unavailable and by the one-shot console output path.
func highlightFences(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	var code []string
	var lang string
	inFence := false

	flush := func() {
		out = append(out, highlightCode(strings.Join(code, "\n"), lang))
		code = nil
		lang = ""
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			if inFence {
				flush()
				inFence = false
			} else {
				lang = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				inFence = true
			}
			continue
		}
		if inFence {
			code = append(code, line)
		} else {
			out = append(out, line)
		}
	}
	if inFence && len(code) > 0 {
		flush()
	}
	return strings.Join(out, "\n")
}

func highlightCode(code, lang string) string {
	if lang == "" {
		lang = "text"
	}
	var buf strings.Builder
	if err := quick.Highlight(&buf, code, lang, "terminal256", "monokai"); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// renderMathSpans styles inline math delimited by $...$ or \(...\). The
// span text itself is kept as written; terminals have no typeset math, so
// a distinct style is the whole treatment.
func renderMathSpans(text string) string {
	text = styleDelimited(text, `\(`, `\)`)
	return styleDelimited(text, "$", "$")
}

func styleDelimited(text, open, close string) string {
	var out strings.Builder
	for {
		start := strings.Index(text, open)
		if start == -1 {
			break
		}
		rest := text[start+len(open):]
		end := strings.Index(rest, close)
		if end == -1 {
			break
		}
		span := rest[:end]
		// $$ or spans crossing lines are display math or false positives,
		// leave them alone.
		if span == "" || strings.Contains(span, "\n") {
			out.WriteString(text[:start+len(open)])
			text = rest
			continue
		}
		out.WriteString(text[:start])
		out.WriteString(mathStyle.Render(span))
		text = rest[end+len(close):]
	}
	out.WriteString(text)
	return out.String()
}
