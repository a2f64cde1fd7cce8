package caption

import (
	"context"
	"strings"
	"time"

	"github.com/f3rmion/subkana/internal/dom"
	"github.com/f3rmion/subkana/internal/logging"
	"github.com/f3rmion/subkana/internal/loop"
	"github.com/f3rmion/subkana/internal/subkana"
	"go.uber.org/zap"
)

// Hover timings.
const (
	DiscoveryInterval = 1000 * time.Millisecond // Caption discovery poll
	HoverDelay        = 300 * time.Millisecond  // Pointer must rest this long before analysis
	LeaveGrace        = 200 * time.Millisecond  // Time to reach the panel after leaving a caption
)

// HoverBackground tints a caption while the pointer is over it.
const HoverBackground = "rgba(74, 144, 226, 0.2)"

// Renderer is the panel the controller drives.
type Renderer interface {
	Show(anchor dom.Point)
	Hide()
	ShowLoading()
	ShowError(msg string)
	RenderAnalysis(result *subkana.AnalysisResult, sentence string)
	Contains(el dom.Element) bool
	Hovered() bool
}

// Gateway resolves sentences, from cache when possible.
type Gateway interface {
	Cached(sentence string) (*subkana.AnalysisResult, bool)
	Analyze(ctx context.Context, sentence string) (*subkana.AnalysisResult, error)
}

// session is the state of one attached caption element.
type session struct {
	text     string          // Caption text last seen on the element
	debounce *loop.Debouncer // Pending hover trigger
	grace    *loop.Debouncer // Pending hide after the pointer left
}

// request identifies the most recently issued analysis.
type request struct {
	token int
	el    dom.Element
}

// HoverController attaches hover handlers to caption elements and turns a
// resting pointer into an analysis shown in the panel. It must be driven
// from the scheduler's goroutine.
type HoverController struct {
	doc      dom.Document
	sched    loop.Scheduler
	settings Settings
	gateway  Gateway
	renderer Renderer
	log      *zap.Logger

	attached map[dom.Element]struct{} // Never cleared
	sessions map[dom.Element]*session // Dropped once the element is detached
	current  dom.Element              // Element the pointer last entered
	seq      int
	latest   request

	running     bool
	ctx         context.Context
	cancel      context.CancelFunc
	poll        loop.Handle
	stopObserve func()
}

// NewHoverController creates a stopped controller.
func NewHoverController(doc dom.Document, sched loop.Scheduler, settings Settings, gateway Gateway, renderer Renderer, logger *zap.Logger) *HoverController {
	return &HoverController{
		doc:      doc,
		sched:    sched,
		settings: settings,
		gateway:  gateway,
		renderer: renderer,
		log:      logging.OrNop(logger).Named("hover"),
		attached: make(map[dom.Element]struct{}),
		sessions: make(map[dom.Element]*session),
	}
}

// Start runs discovery now, on every document mutation and every
// DiscoveryInterval.
func (c *HoverController) Start() {
	if c.running {
		return
	}
	c.running = true
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.stopObserve = c.doc.Observe(c.discover)
	c.poll = c.sched.Every(DiscoveryInterval, c.discover)
	c.discover()
}

// Stop stops discovery, cancels pending hover triggers and in-flight
// requests. Results that arrive afterwards are dropped. Handlers already
// attached stay attached but do nothing until the next Start.
func (c *HoverController) Stop() {
	if !c.running {
		return
	}
	c.running = false
	c.cancel()
	c.poll.Cancel()
	c.stopObserve()
	c.poll, c.stopObserve = nil, nil
	for _, s := range c.sessions {
		s.debounce.Cancel()
		s.grace.Cancel()
	}
}

// Attached returns how many elements have ever been attached.
func (c *HoverController) Attached() int {
	return len(c.attached)
}

// Sessions returns how many attached elements are still tracked.
func (c *HoverController) Sessions() int {
	return len(c.sessions)
}

// IsAttached reports whether el has hover handlers.
func (c *HoverController) IsAttached(el dom.Element) bool {
	_, ok := c.attached[el]
	return ok
}

// discover drops sessions of detached elements and attaches every new
// element that holds a plausible caption.
func (c *HoverController) discover() {
	if !c.running {
		return
	}
	c.sweep()

	s := c.settings.Settings()
	if !s.AutoAnalyze {
		return
	}
	for _, sel := range s.Selectors {
		for _, el := range c.doc.QueryAll(sel) {
			if _, ok := c.attached[el]; ok {
				continue
			}
			if !dom.InsideAny(el, s.Containers) {
				continue
			}
			text := strings.TrimSpace(el.Text())
			if !subkana.ValidCaption(text) {
				continue
			}
			c.attach(el, text)
		}
	}
}

func (c *HoverController) sweep() {
	for el, s := range c.sessions {
		if el.Connected() {
			continue
		}
		s.debounce.Cancel()
		// A hide that was waiting on this element happens now.
		if s.grace.Cancel() && !c.renderer.Hovered() {
			c.renderer.Hide()
		}
		delete(c.sessions, el)
		if c.current == el {
			c.current = nil
		}
		c.log.Debug("caption detached", zap.String("text", s.text))
	}
}

func (c *HoverController) attach(el dom.Element, text string) {
	c.attached[el] = struct{}{}
	c.sessions[el] = c.newSession(text)

	el.SetStyle("cursor", "help")
	el.SetStyle("transition", "background-color 0.2s")
	el.OnPointerEnter(func(dom.PointerEvent) { c.enter(el) })
	el.OnPointerLeave(func(ev dom.PointerEvent) { c.leave(el, ev) })

	c.log.Debug("caption attached", zap.String("text", text))
}

func (c *HoverController) newSession(text string) *session {
	return &session{
		text:     text,
		debounce: loop.NewDebouncer(c.sched),
		grace:    loop.NewDebouncer(c.sched),
	}
}

// session returns el's session, recreating it when an element that was
// swept comes back.
func (c *HoverController) session(el dom.Element) *session {
	s, ok := c.sessions[el]
	if !ok {
		s = c.newSession(strings.TrimSpace(el.Text()))
		c.sessions[el] = s
	}
	return s
}

func (c *HoverController) enter(el dom.Element) {
	if !c.running {
		return
	}
	if !dom.InsideAny(el, c.settings.Settings().Containers) {
		return
	}

	s := c.session(el)
	s.grace.Cancel()
	c.current = el
	el.SetStyle("background-color", HoverBackground)
	s.debounce.Trigger(HoverDelay, func() { c.fire(el, s) })
}

func (c *HoverController) fire(el dom.Element, s *session) {
	if !el.Connected() {
		return
	}
	rect := el.Rect()
	if rect.Empty() {
		return
	}

	if text := strings.TrimSpace(el.Text()); subkana.ValidCaption(text) {
		s.text = text
	}
	c.renderer.Show(rect.TopCenter())
	c.analyze(el, s.text)
}

func (c *HoverController) leave(el dom.Element, ev dom.PointerEvent) {
	el.SetStyle("background-color", "")
	if s, ok := c.sessions[el]; ok {
		s.debounce.Cancel()
	}
	if !c.running {
		return
	}
	if ev.Related != nil && c.renderer.Contains(ev.Related) {
		return
	}

	c.session(el).grace.Trigger(LeaveGrace, func() {
		if !c.running || c.renderer.Hovered() {
			return
		}
		if c.current == el {
			c.current = nil
		}
		c.renderer.Hide()
	})
}

// analyze shows the loading state and resolves sentence. A cached result
// is rendered at once; otherwise the request runs off the loop.
func (c *HoverController) analyze(el dom.Element, sentence string) {
	if !subkana.ContainsJapanese(sentence) {
		return
	}

	c.seq++
	token := c.seq
	c.latest = request{token: token, el: el}
	c.renderer.ShowLoading()

	if r, ok := c.gateway.Cached(sentence); ok {
		c.complete(el, token, sentence, r, nil)
		return
	}

	ctx := c.ctx
	c.sched.Go(func() func() {
		r, err := c.gateway.Analyze(ctx, sentence)
		return func() { c.complete(el, token, sentence, r, err) }
	})
}

func (c *HoverController) complete(el dom.Element, token int, sentence string, r *subkana.AnalysisResult, err error) {
	if !c.running {
		return
	}
	if token != c.latest.token && c.latest.el != el {
		c.log.Debug("dropping stale analysis", zap.String("sentence", sentence), zap.Int("token", token))
		return
	}

	if err != nil {
		c.log.Warn("analysis failed", zap.String("sentence", sentence), zap.Error(err))
		c.renderer.ShowError(err.Error())
		return
	}
	c.renderer.RenderAnalysis(r, sentence)

	// Place again now that the panel holds the result.
	if c.current == el && el.Connected() {
		if rect := el.Rect(); !rect.Empty() {
			c.renderer.Show(rect.TopCenter())
		}
	}
}
