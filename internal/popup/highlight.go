package popup

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/f3rmion/subkana/internal/subkana"
)

// WrapFunc decorates the (already escaped) text matched by a pattern.
type WrapFunc func(p subkana.GrammarPattern, text string) string

// EscapeFunc escapes sentence text that is not part of a decoration.
type EscapeFunc func(string) string

// Highlight wraps every highlightable pattern span of sentence with wrap.
// Spans are rune offsets. Out-of-range or empty spans are ignored. When
// spans overlap, the one starting first wins (the longer one on equal
// starts) and the others are left undecorated, so the output is the same
// for any input order.
func Highlight(sentence string, patterns []subkana.GrammarPattern, wrap WrapFunc, escape EscapeFunc) string {
	if escape == nil {
		escape = func(s string) string { return s }
	}

	runes := []rune(sentence)
	spans := selectSpans(patterns, len(runes))
	if len(spans) == 0 {
		return escape(sentence)
	}

	// Splice from the back so earlier offsets stay valid.
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Span.Start > spans[j].Span.Start
	})

	var tail string
	cursor := len(runes)
	for _, p := range spans {
		match := string(runes[p.Span.Start:p.Span.End])
		after := string(runes[p.Span.End:cursor])
		tail = wrap(p, escape(match)) + escape(after) + tail
		cursor = p.Span.Start
	}
	return escape(string(runes[:cursor])) + tail
}

// selectSpans returns the patterns whose spans are valid for a sentence of
// n runes and do not overlap an earlier accepted span.
func selectSpans(patterns []subkana.GrammarPattern, n int) []subkana.GrammarPattern {
	valid := make([]subkana.GrammarPattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Span.Within(n) {
			valid = append(valid, p)
		}
	}

	sort.SliceStable(valid, func(i, j int) bool {
		a, b := valid[i], valid[j]
		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}
		if a.Span.End != b.Span.End {
			return a.Span.End > b.Span.End
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Name < b.Name
	})

	accepted := valid[:0]
	end := 0
	for _, p := range valid {
		if len(accepted) > 0 && p.Span.Start < end {
			continue
		}
		accepted = append(accepted, p)
		end = p.Span.End
	}
	return accepted
}

// HTMLWrap wraps matched text in a <mark> tinted with the pattern's level
// color and titled with its name and meaning.
func HTMLWrap(p subkana.GrammarPattern, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<mark class="grammar-%s" data-grammar-id="%s" style="background: linear-gradient(to bottom, transparent 60%%, %s40 60%%); padding: 0 2px; border-radius: 2px; cursor: help" title="%s">`,
		strings.ToLower(string(p.Level)),
		html.EscapeString(p.ID),
		p.Level.Color(),
		html.EscapeString(p.Name+": "+p.Meaning),
	)
	b.WriteString(text)
	b.WriteString("</mark>")
	return b.String()
}

// HighlightHTML highlights sentence as HTML with every other character escaped.
func HighlightHTML(sentence string, patterns []subkana.GrammarPattern) string {
	return Highlight(sentence, patterns, HTMLWrap, html.EscapeString)
}
