// Package assistant wires the caption annotation pipeline together.
package assistant

import (
	"github.com/f3rmion/subkana/internal/analysis"
	"github.com/f3rmion/subkana/internal/caption"
	"github.com/f3rmion/subkana/internal/config"
	"github.com/f3rmion/subkana/internal/dom"
	"github.com/f3rmion/subkana/internal/logging"
	"github.com/f3rmion/subkana/internal/loop"
	"github.com/f3rmion/subkana/internal/popup"
	"go.uber.org/zap"
)

// Controller owns the pipeline for one document: caption monitor, hover
// controller, panel and analysis cache.
type Controller struct {
	sched    loop.Scheduler
	store    *config.Store
	gateway  *analysis.Gateway
	renderer *popup.Renderer
	monitor  *caption.Monitor
	hover    *caption.HoverController
	log      *zap.Logger

	onCaption   func(string)
	unsubscribe func()
	running     bool
}

// New builds a controller over doc. backend answers analysis requests;
// when nil, an HTTP client for the configured service is used. All
// methods must be called on sched's goroutine.
func New(doc dom.Document, sched loop.Scheduler, store *config.Store, backend analysis.Analyzer, logger *zap.Logger) *Controller {
	log := logging.OrNop(logger)
	if backend == nil {
		backend = analysis.NewClient(store, log)
	}

	c := &Controller{
		sched:   sched,
		store:   store,
		gateway: analysis.NewGateway(backend, log),
		log:     log.Named("assistant"),
	}
	c.renderer = popup.NewRenderer(doc, sched, store, log)
	c.monitor = caption.NewMonitor(doc, sched, store, c.caption, log)
	c.hover = caption.NewHoverController(doc, sched, store, c.gateway, c.renderer, log)
	return c
}

// OnCaption registers fn to receive caption text changes. Call it before
// Start.
func (c *Controller) OnCaption(fn func(string)) {
	c.onCaption = fn
}

// Start begins watching captions and settings.
func (c *Controller) Start() {
	if c.running {
		return
	}
	c.running = true

	// Store updates may come from any goroutine.
	c.unsubscribe = c.store.Subscribe(func(config.Settings) {
		c.sched.Post(c.settingsChanged)
	})
	c.monitor.Start()
	c.hover.Start()
	c.log.Info("started")
}

// Stop tears the pipeline down and hides the panel. It is idempotent.
func (c *Controller) Stop() {
	if !c.running {
		return
	}
	c.running = false
	c.unsubscribe()
	c.monitor.Stop()
	c.hover.Stop()
	c.renderer.Hide()
	c.log.Info("stopped")
}

func (c *Controller) caption(text string) {
	if text == "" {
		c.log.Debug("captions cleared")
	} else {
		c.log.Info("caption", zap.String("text", text))
	}
	if c.onCaption != nil {
		c.onCaption(text)
	}
}

func (c *Controller) settingsChanged() {
	if !c.running {
		return
	}
	s := c.store.Settings()
	c.log.Info("settings updated",
		zap.String("theme", string(s.Theme)),
		zap.Bool("auto_analyze", s.AutoAnalyze),
		zap.Int("levels", len(s.EnabledLevels)),
	)
	c.renderer.ApplyTheme()
}

// Caption returns the caption text currently on screen.
func (c *Controller) Caption() string {
	return c.monitor.Current()
}

// Renderer returns the panel renderer.
func (c *Controller) Renderer() *popup.Renderer {
	return c.renderer
}

// Hover returns the hover controller.
func (c *Controller) Hover() *caption.HoverController {
	return c.hover
}

// Gateway returns the cached analysis gateway.
func (c *Controller) Gateway() *analysis.Gateway {
	return c.gateway
}
