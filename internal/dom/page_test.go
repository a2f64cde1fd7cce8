package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const playerHTML = `<html><body>
<div class="ytp-caption-window-container">
  <div class="ytp-caption-window">
    <span class="ytp-caption-segment" data-rect="100 600 200 40">私は学生です</span>
  </div>
</div>
<span class="ytp-caption-segment">outside</span>
</body></html>`

func mustPage(t *testing.T, s string) *Page {
	t.Helper()
	p, err := ParsePageString(s)
	require.NoError(t, err)
	return p
}

func TestQueryAllAndIdentity(t *testing.T) {
	p := mustPage(t, playerHTML)

	els := p.QueryAll(".ytp-caption-segment")
	require.Len(t, els, 2)
	assert.Equal(t, "私は学生です", els[0].Text())

	again := p.QueryAll(".ytp-caption-segment")
	assert.Same(t, els[0].(*Node), again[0].(*Node), "same node must yield the same element value")

	assert.Empty(t, p.QueryAll("[[["), "invalid selector matches nothing")
}

func TestClosestAndInsideAny(t *testing.T) {
	p := mustPage(t, playerHTML)
	els := p.QueryAll(".ytp-caption-segment")

	_, ok := els[0].Closest(".ytp-caption-window-container")
	assert.True(t, ok)
	_, ok = els[1].Closest(".ytp-caption-window-container")
	assert.False(t, ok)

	containers := []string{".nope", ".ytp-caption-window"}
	assert.True(t, InsideAny(els[0], containers))
	assert.False(t, InsideAny(els[1], containers))
}

func TestRectFromAttribute(t *testing.T) {
	p := mustPage(t, playerHTML)
	els := p.QueryAll(".ytp-caption-segment")

	assert.Equal(t, Rect{X: 100, Y: 600, Width: 200, Height: 40}, els[0].Rect())
	assert.True(t, els[1].Rect().Empty())

	n := els[1].(*Node)
	p.SetRect(n, Rect{X: 1, Y: 2, Width: 3, Height: 4})
	assert.Equal(t, Point{X: 2.5, Y: 2}, n.Rect().TopCenter())
}

func TestMutationsNotifyObservers(t *testing.T) {
	p := mustPage(t, playerHTML)
	calls := 0
	stop := p.Observe(func() { calls++ })

	seg, ok := p.Query(".ytp-caption-segment")
	require.True(t, ok)
	p.SetText(seg, "こんにちは")
	assert.Equal(t, 1, calls)
	assert.Equal(t, "こんにちは", seg.Text())

	added, err := p.Append(p.Body(), `<p class="x">a</p><p class="x">b</p>`)
	require.NoError(t, err)
	assert.Len(t, added, 2)
	assert.Equal(t, 2, calls)

	p.Remove(seg)
	assert.Equal(t, 3, calls)
	assert.False(t, seg.Connected())

	stop()
	p.Remove(added[0])
	assert.Equal(t, 3, calls)
	assert.Equal(t, 0, p.Observers())
}

func TestReloadDisconnectsOldContentKeepsPanels(t *testing.T) {
	p := mustPage(t, playerHTML)
	old, _ := p.Query(".ytp-caption-segment")
	panel := p.NewPanel("bubble")
	panel.SetHTML("<b>hi</b>")

	calls := 0
	p.Observe(func() { calls++ })

	err := p.Reload(strings.NewReader(`<html><body><div class="ytp-caption-window"><span class="ytp-caption-segment">新しい字幕</span></div></body></html>`))
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.False(t, old.Connected())
	assert.True(t, panel.Connected())

	els := p.QueryAll(".ytp-caption-segment")
	require.Len(t, els, 1)
	assert.Equal(t, "新しい字幕", els[0].Text())
	assert.NotSame(t, old, els[0].(*Node))
}

func TestReloadForgetsOldNodes(t *testing.T) {
	p := mustPage(t, playerHTML)
	snapshot := `<html><body><div class="ytp-caption-window"><span class="ytp-caption-segment">字幕</span></div></body></html>`

	require.NoError(t, p.Reload(strings.NewReader(snapshot)))
	p.QueryAll(".ytp-caption-segment")
	p.QueryAll(".ytp-caption-window")
	tracked := p.Tracked()

	for i := 0; i < 5; i++ {
		require.NoError(t, p.Reload(strings.NewReader(snapshot)))
		p.QueryAll(".ytp-caption-segment")
		p.QueryAll(".ytp-caption-window")
	}
	assert.Equal(t, tracked, p.Tracked())

	seg, ok := p.Query(".ytp-caption-segment")
	require.True(t, ok)
	p.Remove(seg)
	assert.Equal(t, tracked-1, p.Tracked())
	assert.False(t, seg.Connected())
}

func TestPointerMoveSemantics(t *testing.T) {
	p := mustPage(t, playerHTML)
	seg, _ := p.Query(".ytp-caption-segment")
	win, _ := p.Query(".ytp-caption-window")
	panel := p.NewPanel("bubble").(*Node)
	panel.SetHTML(`<div class="inner">x</div>`)
	inner, _ := p.Query("#bubble .inner")

	var log []string
	seg.OnPointerEnter(func(PointerEvent) { log = append(log, "seg:enter") })
	seg.OnPointerLeave(func(ev PointerEvent) {
		if ev.Related != nil && panel.Contains(ev.Related) {
			log = append(log, "seg:leave->panel")
			return
		}
		log = append(log, "seg:leave")
	})
	win.OnPointerEnter(func(PointerEvent) { log = append(log, "win:enter") })
	remove := panel.OnPointerLeave(func(PointerEvent) { log = append(log, "panel:leave") })

	p.PointerMove(seg)
	assert.Equal(t, []string{"win:enter", "seg:enter"}, log)

	log = nil
	p.PointerMove(inner)
	assert.Equal(t, []string{"seg:leave->panel"}, log)
	assert.True(t, panel.Hovered())

	log = nil
	p.PointerMove(nil)
	assert.Equal(t, []string{"panel:leave"}, log)
	assert.False(t, panel.Hovered())

	remove()
	enter, leave := panel.Handlers()
	assert.Equal(t, 0, enter)
	assert.Equal(t, 0, leave)
}

func TestStylesAndMarkup(t *testing.T) {
	p := mustPage(t, playerHTML)
	panel := p.NewPanel("bubble").(*Node)

	panel.SetStyle("opacity", "0")
	panel.SetStyle("display", "block")
	style, _ := panel.Attr("style")
	assert.Equal(t, "display: block; opacity: 0", style)
	panel.SetStyle("opacity", "")
	assert.Equal(t, "", panel.Style("opacity"))

	panel.SetHTML(`<div title="a &amp; b">x</div>`)
	assert.Equal(t, `<div title="a &amp; b">x</div>`, panel.InnerHTML())

	assert.Equal(t, Size{Width: 64, Height: 32}, EstimateSize(p.NewPanel("empty").(*Node)))
	sz := panel.Measure()
	assert.Greater(t, sz.Width, 0.0)
	assert.LessOrEqual(t, sz.Width, 500.0)
}
