package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/subkana/internal/clipboard"
	"github.com/f3rmion/subkana/internal/config"
	"github.com/f3rmion/subkana/internal/subkana"
)

// Analyzer resolves a sentence to its breakdown.
type Analyzer interface {
	Analyze(ctx context.Context, sentence string) (*subkana.AnalysisResult, error)
}

type focusArea int

const (
	focusInput focusArea = iota
	focusResult
)

// Message types
type analysisMsg struct {
	seq      int
	sentence string
	result   *subkana.AnalysisResult
	err      error
}

type clearCopiedMsg struct{}

func clearCopiedAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearCopiedMsg{}
	})
}

// Model is the interactive analyzer: type a sentence, get the breakdown
// the caption panel would show, and flip level filters and theme live.
type Model struct {
	analyzer Analyzer
	store    *config.Store

	input   textinput.Model
	spinner spinner.Model
	focus   focusArea

	seq      int // Latest request; older answers are dropped
	loading  bool
	sentence string
	result   *subkana.AnalysisResult
	err      error

	copied  bool
	copyErr error

	width  int
	height int
}

// New creates the analyzer model.
func New(analyzer Analyzer, store *config.Store) Model {
	ti := textinput.New()
	ti.Placeholder = "Enter a Japanese sentence..."
	ti.Focus()
	ti.CharLimit = subkana.MaxCaptionLen
	ti.Width = 50
	ti.PromptStyle = lipgloss.NewStyle().Foreground(ColorSecondary)
	ti.TextStyle = lipgloss.NewStyle().Foreground(ColorAccent)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = LoadingStyle

	return Model{
		analyzer: analyzer,
		store:    store,
		input:    ti,
		spinner:  sp,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, msg.Width-10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.focus == focusResult {
				m.focusInput()
				return m, textinput.Blink
			}
			return m, tea.Quit
		case "tab":
			if m.focus == focusInput && m.result != nil {
				m.focusResult()
				return m, nil
			}
			m.focusInput()
			return m, textinput.Blink
		case "enter":
			if m.focus == focusInput {
				return m, m.submit()
			}
		}
		if m.focus == focusResult {
			return m.updateResult(msg)
		}

	case analysisMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.result, m.err = msg.result, msg.err
		if m.err == nil {
			m.focusResult()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clearCopiedMsg:
		m.copied = false
		m.copyErr = nil
		return m, nil
	}

	if m.focus != focusInput {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q":
		return m, tea.Quit
	case "1", "2", "3", "4", "5":
		level := subkana.AllLevels[int(key[0]-'1')]
		m.store.Update(ToggleLevel(m.store.Settings(), level))
	case "t":
		m.store.Update(ToggleTheme(m.store.Settings()))
	case "y":
		if m.result == nil {
			return m, nil
		}
		if err := clipboard.Copy(PlainBreakdown(m.result, m.store.Settings())); err != nil {
			m.copyErr = err
		} else {
			m.copied = true
		}
		return m, clearCopiedAfter(2 * time.Second)
	}
	return m, nil
}

func (m *Model) focusInput() {
	m.focus = focusInput
	m.input.Focus()
}

func (m *Model) focusResult() {
	m.focus = focusResult
	m.input.Blur()
}

func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	if !subkana.ContainsJapanese(text) {
		m.err = fmt.Errorf("no Japanese text in: %s", text)
		return nil
	}

	m.seq++
	seq := m.seq
	m.loading = true
	m.err = nil
	m.sentence = text

	analyzer := m.analyzer
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		r, err := analyzer.Analyze(context.Background(), text)
		return analysisMsg{seq: seq, sentence: text, result: r, err: err}
	})
}

// ToggleLevel returns s with level l switched on or off. Levels stay in
// N5..N1 order.
func ToggleLevel(s config.Settings, l subkana.Level) config.Settings {
	enabled := !s.LevelEnabled(l)
	var next []subkana.Level
	for _, lv := range subkana.AllLevels {
		on := s.LevelEnabled(lv)
		if lv == l {
			on = enabled
		}
		if on {
			next = append(next, lv)
		}
	}
	s.EnabledLevels = next
	return s
}

// ToggleTheme returns s with the other theme.
func ToggleTheme(s config.Settings) config.Settings {
	if s.Theme == config.ThemeLight {
		s.Theme = config.ThemeDark
	} else {
		s.Theme = config.ThemeLight
	}
	return s
}

// View renders the analyzer.
func (m Model) View() string {
	s := m.store.Settings()
	var b strings.Builder

	b.WriteString(TitleStyle.Render("subkana"))
	b.WriteString("  ")
	b.WriteString(m.filterBar(s))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.loading {
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString(LoadingStyle.Render(" Analyzing..."))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	if m.result != nil {
		width := m.width - 8
		box := PaletteFor(s.Theme).Box
		if m.width > 0 {
			box = box.Width(m.width - 2)
		}
		b.WriteString("\n")
		b.WriteString(box.Render(Breakdown(m.result, s, width)))
		b.WriteString("\n")
	}

	if m.copied {
		b.WriteString(CopiedStyle.Render("Copied to clipboard"))
		b.WriteString("\n")
	} else if m.copyErr != nil {
		b.WriteString(ErrorStyle.Render("Copy failed: " + m.copyErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.help()))
	return b.String()
}

func (m Model) filterBar(s config.Settings) string {
	parts := make([]string, 0, len(subkana.AllLevels))
	for i, l := range subkana.AllLevels {
		label := fmt.Sprintf("%d:%s", i+1, l)
		if s.LevelEnabled(l) {
			parts = append(parts, FilterOnStyle.Foreground(lipgloss.Color(l.Color())).Render(label))
		} else {
			parts = append(parts, FilterOffStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) help() string {
	if m.focus == focusResult {
		parts := []string{"1-5: toggle level", "t: theme", "tab/esc: edit"}
		if clipboard.Available() {
			parts = append(parts, "y: copy")
		}
		parts = append(parts, "q: quit")
		return strings.Join(parts, " • ")
	}
	if m.result != nil {
		return "enter: analyze • tab: result • esc: quit"
	}
	return "Type a sentence and press Enter to analyze • esc: quit"
}

// Run starts the analyzer in the terminal.
func Run(analyzer Analyzer, store *config.Store) error {
	p := tea.NewProgram(New(analyzer, store), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
