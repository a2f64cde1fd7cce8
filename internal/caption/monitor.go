// Package caption follows the captions of a document: which text is on
// screen now, and which caption elements the user is hovering.
package caption

import (
	"strings"
	"time"

	"github.com/f3rmion/subkana/internal/config"
	"github.com/f3rmion/subkana/internal/dom"
	"github.com/f3rmion/subkana/internal/logging"
	"github.com/f3rmion/subkana/internal/loop"
	"github.com/f3rmion/subkana/internal/subkana"
	"go.uber.org/zap"
)

// PollInterval is how often the monitor re-checks the captions in case a
// mutation notification was missed.
const PollInterval = 200 * time.Millisecond

// Settings supplies the current configuration.
type Settings interface {
	Settings() config.Settings
}

// CurrentText returns the caption text currently in doc. Selectors are
// tried in order; matches without Japanese text are skipped and the rest
// are trimmed and joined with a space. The first selector yielding any text
// wins. It returns "" when none does.
func CurrentText(doc dom.Document, selectors []string) string {
	for _, sel := range selectors {
		var parts []string
		for _, el := range doc.QueryAll(sel) {
			text := strings.TrimSpace(el.Text())
			if text != "" && subkana.ContainsJapanese(text) {
				parts = append(parts, text)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	return ""
}

// Monitor reports caption text changes. It checks the document on every
// mutation notification and on a fixed poll, and calls onChange only when
// the text differs from the last reported value. An empty string means the
// captions were cleared.
type Monitor struct {
	doc      dom.Document
	sched    loop.Scheduler
	settings Settings
	onChange func(string)
	log      *zap.Logger

	last        string
	running     bool
	poll        loop.Handle
	stopObserve func()
}

// NewMonitor creates a stopped monitor.
func NewMonitor(doc dom.Document, sched loop.Scheduler, settings Settings, onChange func(string), logger *zap.Logger) *Monitor {
	return &Monitor{
		doc:      doc,
		sched:    sched,
		settings: settings,
		onChange: onChange,
		log:      logging.OrNop(logger).Named("monitor"),
	}
}

// Start subscribes to document changes, starts polling and checks once
// right away. Starting a running monitor does nothing.
func (m *Monitor) Start() {
	if m.running {
		return
	}
	m.running = true
	m.stopObserve = m.doc.Observe(m.check)
	m.poll = m.sched.Every(PollInterval, m.check)
	m.check()
}

// Stop removes both triggers. It is safe to call more than once.
func (m *Monitor) Stop() {
	if !m.running {
		return
	}
	m.running = false
	m.poll.Cancel()
	m.stopObserve()
	m.poll, m.stopObserve = nil, nil
}

// Current returns the last reported caption text.
func (m *Monitor) Current() string {
	return m.last
}

func (m *Monitor) check() {
	if !m.running {
		return
	}
	text := CurrentText(m.doc, m.settings.Settings().Selectors)
	if text == m.last {
		return
	}
	m.last = text
	m.log.Debug("caption changed", zap.String("text", text))
	if m.onChange != nil {
		m.onChange(text)
	}
}
