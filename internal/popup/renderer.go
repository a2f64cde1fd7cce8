package popup

import (
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/f3rmion/subkana/internal/config"
	"github.com/f3rmion/subkana/internal/dom"
	"github.com/f3rmion/subkana/internal/logging"
	"github.com/f3rmion/subkana/internal/loop"
	"github.com/f3rmion/subkana/internal/subkana"
	"go.uber.org/zap"
)

// PanelID is the id of the single floating panel.
const PanelID = "jp-learning-assistant-bubble"

// FadeDuration is how long the panel takes to fade out before it is hidden.
const FadeDuration = 200 * time.Millisecond

// Content is what the panel currently shows.
type Content int

const (
	ContentNone Content = iota
	ContentLoading
	ContentError
	ContentResult
)

func (c Content) String() string {
	switch c {
	case ContentLoading:
		return "loading"
	case ContentError:
		return "error"
	case ContentResult:
		return "result"
	default:
		return "none"
	}
}

// Settings supplies the current configuration.
type Settings interface {
	Settings() config.Settings
}

type palette struct {
	background, text, border string
}

var palettes = map[config.Theme]palette{
	config.ThemeDark:  {"rgba(33, 33, 33, 0.95)", "#ffffff", "rgba(255, 255, 255, 0.1)"},
	config.ThemeLight: {"rgba(255, 255, 255, 0.95)", "#333333", "rgba(0, 0, 0, 0.1)"},
}

// Renderer owns the floating panel: its content, its visibility and where
// it sits. All methods must be called from the scheduler's goroutine.
type Renderer struct {
	doc      dom.Document
	panel    dom.Panel
	sched    loop.Scheduler
	settings Settings
	log      *zap.Logger

	content  Content
	visible  bool        // Displayed, possibly fading out
	hideTask loop.Handle // Pending display:none after a fade-out
	gen      int         // Bumped on every show/hide so stale fade-ins are dropped
}

// NewRenderer creates the panel in doc, hidden. Leaving the panel with the
// pointer hides it.
func NewRenderer(doc dom.Document, sched loop.Scheduler, settings Settings, logger *zap.Logger) *Renderer {
	r := &Renderer{
		doc:      doc,
		panel:    doc.NewPanel(PanelID),
		sched:    sched,
		settings: settings,
		log:      logging.OrNop(logger).Named("popup"),
	}

	for _, kv := range [][2]string{
		{"position", "fixed"},
		{"z-index", "10000"},
		{"max-width", "500px"},
		{"max-height", "400px"},
		{"overflow-y", "auto"},
		{"border-radius", "8px"},
		{"padding", "16px"},
		{"transition", "opacity 0.2s ease"},
		{"display", "none"},
		{"opacity", "0"},
	} {
		r.panel.SetStyle(kv[0], kv[1])
	}
	r.ApplyTheme()

	r.panel.OnPointerLeave(func(dom.PointerEvent) { r.Hide() })
	return r
}

// Panel returns the element the renderer draws into.
func (r *Renderer) Panel() dom.Panel {
	return r.panel
}

// Content returns what the panel was last filled with.
func (r *Renderer) Content() Content {
	return r.content
}

// Visible reports whether the panel is displayed. A panel that is fading
// out is still visible.
func (r *Renderer) Visible() bool {
	return r.visible
}

// Show displays the panel next to anchor. The panel is laid out invisibly
// first so its real size can be used for placement, then faded in. A
// pending hide is cancelled.
func (r *Renderer) Show(anchor dom.Point) {
	r.cancelHide()
	r.gen++

	r.panel.SetStyle("visibility", "hidden")
	r.panel.SetStyle("display", "block")
	r.panel.SetStyle("opacity", "0")
	r.moveTo(dom.Point{X: anchor.X + OffsetX, Y: anchor.Y - OffsetY})

	pos := Place(anchor, r.panel.Measure(), r.doc.Viewport())
	r.moveTo(pos)
	r.panel.SetStyle("visibility", "visible")
	r.visible = true

	gen := r.gen
	r.sched.Post(func() {
		if r.gen == gen {
			r.panel.SetStyle("opacity", "1")
		}
	})
}

// Hide fades the panel out and removes it from layout once the fade ends.
func (r *Renderer) Hide() {
	if !r.visible {
		return
	}
	r.cancelHide()
	r.gen++
	r.panel.SetStyle("opacity", "0")
	r.hideTask = r.sched.After(FadeDuration, func() {
		r.hideTask = nil
		r.visible = false
		r.panel.SetStyle("display", "none")
	})
}

func (r *Renderer) cancelHide() {
	if r.hideTask != nil {
		r.hideTask.Cancel()
		r.hideTask = nil
	}
}

func (r *Renderer) moveTo(p dom.Point) {
	r.panel.SetStyle("left", px(p.X))
	r.panel.SetStyle("top", px(p.Y))
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// ShowLoading fills the panel with the loading indicator. Visibility is
// unchanged.
func (r *Renderer) ShowLoading() {
	r.fill(ContentLoading, loadingTemplate, nil)
}

// ShowError fills the panel with an error message. Visibility is unchanged.
func (r *Renderer) ShowError(msg string) {
	r.fill(ContentError, errorTemplate, msg)
}

// RenderAnalysis fills the panel with result, filtered to the enabled
// levels. Punctuation tokens are never listed. sentence is the caption text
// the result was requested for; the result's own sentence is shown when
// present since the spans index into it.
func (r *Renderer) RenderAnalysis(result *subkana.AnalysisResult, sentence string) {
	view := r.filter(result, sentence)
	r.fill(ContentResult, analysisTemplate, view)
}

func (r *Renderer) filter(result *subkana.AnalysisResult, sentence string) analysisView {
	if result.Sentence != "" {
		sentence = result.Sentence
	}
	patterns, tokens := FilterResult(result, r.settings.Settings())
	return analysisView{
		Sentence: template.HTML(HighlightHTML(sentence, patterns)),
		Patterns: patterns,
		Tokens:   tokens,
		Empty:    len(patterns) == 0 && len(tokens) == 0,
	}
}

// FilterResult returns the patterns and tokens of result that are shown
// under s. Patterns need an enabled level. Tokens are dropped when they are
// punctuation or carry a disabled level; tokens without a level stay.
func FilterResult(result *subkana.AnalysisResult, s config.Settings) ([]subkana.GrammarPattern, []subkana.Token) {
	var patterns []subkana.GrammarPattern
	for _, p := range result.GrammarPatterns {
		if s.LevelEnabled(p.Level) {
			patterns = append(patterns, p)
		}
	}

	var tokens []subkana.Token
	for _, t := range result.Tokens {
		if subkana.IsPunctuation(t.PartOfSpeech) {
			continue
		}
		if t.Level != subkana.LevelNone && !s.LevelEnabled(t.Level) {
			continue
		}
		tokens = append(tokens, t)
	}
	return patterns, tokens
}

func (r *Renderer) fill(c Content, t *template.Template, data any) {
	markup, err := execute(t, data)
	if err != nil {
		r.log.Error("render panel", zap.String("content", c.String()), zap.Error(err))
		markup = `<div class="jp-error"><strong>Analysis failed</strong></div>`
		c = ContentError
	}
	r.panel.SetHTML(markup)
	r.content = c
}

// ApplyTheme restyles the panel for the configured theme without touching
// its content or position.
func (r *Renderer) ApplyTheme() {
	theme := r.settings.Settings().Theme
	p, ok := palettes[theme]
	if !ok {
		theme, p = config.ThemeDark, palettes[config.ThemeDark]
	}
	r.panel.SetAttr("data-theme", string(theme))
	r.panel.SetStyle("background", p.background)
	r.panel.SetStyle("color", p.text)
	r.panel.SetStyle("border", fmt.Sprintf("1px solid %s", p.border))
}

// Contains reports whether el is the panel or inside it.
func (r *Renderer) Contains(el dom.Element) bool {
	return r.panel.Contains(el)
}

// Hovered reports whether the pointer is over the panel.
func (r *Renderer) Hovered() bool {
	return r.panel.Hovered()
}
