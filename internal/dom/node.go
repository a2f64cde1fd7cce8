package dom

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Node wraps an html.Node. One Node exists per underlying node, so Nodes
// are usable as map keys.
type Node struct {
	page   *Page
	n      *html.Node
	rect   *Rect
	enter  handlers
	leave  handlers
	styles map[string]string
}

type handlers struct {
	next int
	fns  map[int]func(PointerEvent)
}

func (h *handlers) add(fn func(PointerEvent)) func() {
	if h.fns == nil {
		h.fns = make(map[int]func(PointerEvent))
	}
	id := h.next
	h.next++
	h.fns[id] = fn
	return func() { delete(h.fns, id) }
}

func (w *Node) fire(h handlers, ev PointerEvent) {
	ids := make([]int, 0, len(h.fns))
	for id := range h.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := h.fns[id]; ok {
			fn(ev)
		}
	}
}

// Handlers returns how many enter and leave handlers are registered.
func (w *Node) Handlers() (enter, leave int) {
	return len(w.enter.fns), len(w.leave.fns)
}

// Text implements Element.
func (w *Node) Text() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(w.n)
	return b.String()
}

// Closest implements Element.
func (w *Node) Closest(selector string) (Element, bool) {
	sel, ok := w.page.compile(selector)
	if !ok {
		return nil, false
	}
	for n := w.n; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && sel.Match(n) {
			return w.page.wrap(n), true
		}
	}
	return nil, false
}

// Connected implements Element.
func (w *Node) Connected() bool {
	for n := w.n; n != nil; n = n.Parent {
		if n == w.page.doc {
			return true
		}
	}
	return false
}

// Rect implements Element.
func (w *Node) Rect() Rect {
	if w.rect != nil {
		return *w.rect
	}
	if v, ok := w.Attr("data-rect"); ok {
		var r Rect
		if _, err := fmt.Sscanf(v, "%g %g %g %g", &r.X, &r.Y, &r.Width, &r.Height); err == nil {
			return r
		}
	}
	return Rect{}
}

// OnPointerEnter implements Element.
func (w *Node) OnPointerEnter(fn func(PointerEvent)) func() {
	return w.enter.add(fn)
}

// OnPointerLeave implements Element.
func (w *Node) OnPointerLeave(fn func(PointerEvent)) func() {
	return w.leave.add(fn)
}

// SetStyle implements Element.
func (w *Node) SetStyle(prop, value string) {
	if w.styles == nil {
		w.styles = make(map[string]string)
	}
	if value == "" {
		delete(w.styles, prop)
	} else {
		w.styles[prop] = value
	}

	keys := make([]string, 0, len(w.styles))
	for k := range w.styles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+w.styles[k])
	}
	w.SetAttr("style", strings.Join(parts, "; "))
}

// Style implements Element.
func (w *Node) Style(prop string) string {
	return w.styles[prop]
}

// Attr returns an attribute value.
func (w *Node) Attr(name string) (string, bool) {
	for _, a := range w.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr implements Panel. It works on any node.
func (w *Node) SetAttr(name, value string) {
	for i, a := range w.n.Attr {
		if a.Namespace == "" && a.Key == name {
			w.n.Attr[i].Val = value
			return
		}
	}
	w.n.Attr = append(w.n.Attr, html.Attribute{Key: name, Val: value})
}

// SetHTML implements Panel. Unparseable markup leaves the node empty.
func (w *Node) SetHTML(markup string) {
	removeChildren(w.n)
	nodes, err := html.ParseFragment(strings.NewReader(markup), w.n)
	if err != nil {
		return
	}
	for _, n := range nodes {
		w.n.AppendChild(n)
	}
}

// InnerHTML returns the serialized children.
func (w *Node) InnerHTML() string {
	return renderChildren(w.n)
}

// Measure implements Panel.
func (w *Node) Measure() Size {
	return w.page.measure(w)
}

// Hovered implements Panel.
func (w *Node) Hovered() bool {
	ptr := w.page.pointer
	return ptr != nil && w.contains(ptr.n)
}

// Contains implements Panel.
func (w *Node) Contains(el Element) bool {
	other, ok := el.(*Node)
	if !ok || other == nil {
		return false
	}
	return w.contains(other.n)
}

func (w *Node) contains(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == w.n {
			return true
		}
	}
	return false
}
