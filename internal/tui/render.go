package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/subkana/internal/config"
	"github.com/f3rmion/subkana/internal/popup"
	"github.com/f3rmion/subkana/internal/subkana"
	"github.com/mattn/go-runewidth"
)

// Column widths of the vocabulary table, in terminal cells.
const (
	surfaceWidth = 12
	readingWidth = 12
	posWidth     = 16
)

// Breakdown renders an analysis for the terminal the way the panel shows
// it: highlighted sentence, grammar list, then vocabulary, all filtered by
// the enabled levels. width bounds the meaning column; zero means no limit.
func Breakdown(result *subkana.AnalysisResult, s config.Settings, width int) string {
	pal := PaletteFor(s.Theme)
	patterns, tokens := popup.FilterResult(result, s)

	var b strings.Builder

	b.WriteString(pal.Header.Render("Original"))
	b.WriteString("\n")
	b.WriteString(popup.Highlight(result.Sentence, patterns, func(p subkana.GrammarPattern, text string) string {
		return LevelMark(p.Level).Render(text)
	}, nil))
	b.WriteString("\n")

	if len(patterns) > 0 {
		b.WriteString("\n")
		b.WriteString(pal.Header.Render("Grammar"))
		b.WriteString("\n")
		for _, p := range patterns {
			fmt.Fprintf(&b, "%s %s %s  %s\n", LevelBadge(p.Level), pal.Muted.Render(p.Level.Description()), pal.Text.Bold(true).Render(p.Name), pal.Muted.Render(p.Meaning))
			if len(p.Structure) > 0 {
				b.WriteString(pal.Muted.Render("   Matched: " + strings.Join(p.Structure, " + ")))
				b.WriteString("\n")
			}
		}
	}

	if len(tokens) > 0 {
		b.WriteString("\n")
		b.WriteString(pal.Header.Render("Vocabulary"))
		b.WriteString("\n")
		for _, t := range tokens {
			b.WriteString(tokenLine(t, pal, width))
			b.WriteString("\n")
		}
	}

	if len(patterns) == 0 && len(tokens) == 0 {
		b.WriteString("\n")
		b.WriteString(pal.Muted.Render("No grammar or vocabulary matches the current level filters."))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func tokenLine(t subkana.Token, pal Palette, width int) string {
	reading := ""
	if subkana.HasValue(t.Reading) {
		reading = t.Reading
	}
	pos := ""
	if t.PartOfSpeech != "" {
		pos = subkana.PartOfSpeechName(t.PartOfSpeech)
	}

	cols := []string{
		pal.Text.Bold(true).Render(cell(t.Surface, surfaceWidth)),
		pal.Reading.Render(cell(reading, readingWidth)),
		pal.Muted.Render(cell(pos, posWidth)),
	}
	if t.Level != subkana.LevelNone {
		cols = append(cols, LevelBadge(t.Level))
	} else {
		cols = append(cols, strings.Repeat(" ", 4))
	}

	var extra []string
	if subkana.HasValue(t.Meaning) {
		extra = append(extra, t.Meaning)
	}
	if subkana.HasValue(t.Lemma) && t.Lemma != t.Surface {
		extra = append(extra, "base: "+t.Lemma)
	}
	if subkana.HasValue(t.ConjugationForm) {
		extra = append(extra, t.ConjugationForm)
	}
	if subkana.HasValue(t.Romanization) {
		extra = append(extra, t.Romanization)
	}
	if len(extra) > 0 {
		text := strings.Join(extra, " · ")
		if rest := width - lipgloss.Width(strings.Join(cols, " ")) - 1; width > 0 && rest > 0 {
			text = runewidth.Truncate(text, rest, "…")
		}
		cols = append(cols, pal.Text.Render(text))
	}
	return strings.Join(cols, " ")
}

// cell fits s into w terminal cells, truncating wide text.
func cell(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}

// PlainBreakdown renders an analysis without styling, for the clipboard.
func PlainBreakdown(result *subkana.AnalysisResult, s config.Settings) string {
	patterns, tokens := popup.FilterResult(result, s)

	var b strings.Builder
	b.WriteString(popup.Highlight(result.Sentence, patterns, func(p subkana.GrammarPattern, text string) string {
		return "[" + text + "]"
	}, nil))
	b.WriteString("\n")
	for _, p := range patterns {
		fmt.Fprintf(&b, "%s %s: %s\n", p.Level, p.Name, p.Meaning)
	}
	for _, t := range tokens {
		line := t.Surface
		if subkana.HasValue(t.Reading) {
			line += " (" + t.Reading + ")"
		}
		if subkana.HasValue(t.Meaning) {
			line += " - " + t.Meaning
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
