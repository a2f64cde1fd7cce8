package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/f3rmion/subkana/internal/assistant"
	"github.com/f3rmion/subkana/internal/config"
	"github.com/f3rmion/subkana/internal/dom"
	"github.com/f3rmion/subkana/internal/loop"
	"github.com/f3rmion/subkana/internal/popup"
	"github.com/f3rmion/subkana/internal/tui"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// panelPoll is how often the hover report checks the panel state.
const panelPoll = 100 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <page.html>",
	Short: "Follow the captions of a saved player page",
	Long: `Load a player page snapshot and print every caption change. The page is
reloaded whenever the file changes on disk, so a tool that keeps rewriting
the snapshot drives the caption stream. Edits to the settings file apply
without a restart.

With --hover the pointer rests on the first caption after every load and
the analysis panel is printed once it shows a result.

Caption elements may carry a data-rect="x y width height" attribute for
panel placement; elements without one are placed above the bottom of the
viewport.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Bool("hover", false, "hover the first caption and print its analysis")
}

// watchSession drives the pipeline over one page; all methods run on the loop.
type watchSession struct {
	page    *dom.Page
	store   *config.Store
	ctl     *assistant.Controller
	log     *zap.Logger
	hover   bool
	hovered *dom.Node
	pending bool // Hovered caption not reported yet
	loading bool // Panel showed loading since the hover
	stale   bool // Panel error predates the hover
}

func runWatch(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving page path: %w", err)
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(false)
	defer logger.Sync()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening page: %w", err)
	}
	page, err := dom.ParsePage(f)
	f.Close()
	if err != nil {
		return err
	}

	hover, _ := cmd.Flags().GetBool("hover")
	lp := loop.New()
	store := config.NewStore(s)
	w := &watchSession{
		page:  page,
		store: store,
		ctl:   assistant.New(page, lp, store, nil, logger),
		log:   logger.Named("watch"),
		hover: hover,
	}
	w.ctl.OnCaption(w.printCaption)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()
	// Watch the directory so editors that replace the file are seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	if settingsPath := getSettingsPath(); fileExists(settingsPath) {
		err := config.Watch(settingsPath, store.Update, func(err error) {
			w.log.Warn("settings file rejected", zap.Error(err))
		})
		if err != nil {
			w.log.Warn("not watching settings", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go pumpReloads(ctx, watcher, path, lp, w)

	lp.Post(func() {
		w.ctl.Start()
		if w.hover {
			lp.Every(panelPoll, w.report)
			w.hoverFirst()
		}
	})
	fmt.Printf("Watching %s (Ctrl+C to stop)\n", path)

	err = lp.Run(ctx)
	// The loop has stopped, so this goroutine owns the pipeline now.
	w.ctl.Stop()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// pumpReloads posts a page reload for every change to path.
func pumpReloads(ctx context.Context, watcher *fsnotify.Watcher, path string, lp *loop.Loop, w *watchSession) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			lp.Post(w.reload(path))
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *watchSession) reload(path string) func() {
	return func() {
		f, err := os.Open(path)
		if err != nil {
			w.log.Warn("reopening page", zap.Error(err))
			return
		}
		defer f.Close()
		if err := w.page.Reload(f); err != nil {
			w.log.Warn("page not reloaded", zap.Error(err))
			return
		}
		w.log.Debug("page reloaded")
		if w.hover {
			w.hoverFirst()
		}
	}
}

func (w *watchSession) printCaption(text string) {
	if text == "" {
		fmt.Println("caption: (none)")
		return
	}
	fmt.Printf("caption: %s\n", text)
}

// hoverFirst rests the pointer on the first caption with hover handlers.
func (w *watchSession) hoverFirst() {
	for _, sel := range w.store.Settings().Selectors {
		for _, el := range w.page.QueryAll(sel) {
			n, ok := el.(*dom.Node)
			if !ok || !w.ctl.Hover().IsAttached(el) {
				continue
			}
			if n.Rect().Empty() {
				w.page.SetRect(n, defaultCaptionRect(w.page.Viewport()))
			}
			w.page.PointerMove(n)
			w.hovered = n
			w.pending, w.loading = true, false
			w.stale = w.ctl.Renderer().Content() == popup.ContentError
			fmt.Printf("hover: %s\n", strings.TrimSpace(n.Text()))
			return
		}
	}
	w.log.Debug("no caption to hover")
}

// defaultCaptionRect is a caption line centered near the bottom of the
// viewport.
func defaultCaptionRect(vp dom.Size) dom.Rect {
	width := vp.Width * 0.6
	const height = 40
	return dom.Rect{
		X:      (vp.Width - width) / 2,
		Y:      vp.Height - height - 60,
		Width:  width,
		Height: height,
	}
}

// report prints the hovered caption's analysis once it is available, or
// the panel error when the request failed.
func (w *watchSession) report() {
	if !w.pending || w.hovered == nil {
		return
	}
	r := w.ctl.Renderer()
	s := w.store.Settings()

	if result, ok := w.ctl.Gateway().Cached(strings.TrimSpace(w.hovered.Text())); ok {
		w.pending = false
		fmt.Println(tui.PaletteFor(s.Theme).Box.Render(tui.Breakdown(result, s, 0)))
		return
	}

	switch r.Content() {
	case popup.ContentLoading:
		w.stale = false
		if !w.loading {
			w.loading = true
			fmt.Println("panel: analyzing...")
		}
	case popup.ContentError:
		if !w.stale {
			w.pending = false
			fmt.Printf("panel: %s\n", strings.Join(strings.Fields(r.Panel().Text()), " "))
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
