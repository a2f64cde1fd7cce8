package dom

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultViewport is used until SetViewport is called.
var DefaultViewport = Size{Width: 1280, Height: 720}

// Measurer computes a panel's rendered size. There is no layout engine, so
// the host decides.
type Measurer func(p *Node) Size

// Page is an in-memory Document parsed from HTML. Geometry comes from
// SetRect or a data-rect="x y w h" attribute. Page is not safe for
// concurrent use; drive it from the loop.
type Page struct {
	doc       *html.Node
	body      *html.Node
	nodes     map[*html.Node]*Node
	selectors map[string]cascadia.Selector
	observers map[int]func()
	nextObs   int
	panels    []*Node
	pointer   *Node
	viewport  Size
	measure   Measurer
}

// ParsePage parses an HTML document.
func ParsePage(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	p := &Page{
		doc:       doc,
		nodes:     make(map[*html.Node]*Node),
		selectors: make(map[string]cascadia.Selector),
		observers: make(map[int]func()),
		viewport:  DefaultViewport,
		measure:   EstimateSize,
	}
	p.body = findBody(doc)
	if p.body == nil {
		return nil, fmt.Errorf("parsing page: no body element")
	}
	return p, nil
}

// ParsePageString parses an HTML document held in a string.
func ParsePageString(s string) (*Page, error) {
	return ParsePage(strings.NewReader(s))
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

// SetViewport sets the size returned by Viewport.
func (p *Page) SetViewport(s Size) {
	p.viewport = s
}

// SetMeasurer replaces the panel size estimator.
func (p *Page) SetMeasurer(m Measurer) {
	p.measure = m
}

// Viewport implements Document.
func (p *Page) Viewport() Size {
	return p.viewport
}

// Body returns the body element.
func (p *Page) Body() *Node {
	return p.wrap(p.body)
}

func (p *Page) wrap(n *html.Node) *Node {
	if w, ok := p.nodes[n]; ok {
		return w
	}
	w := &Node{page: p, n: n}
	p.nodes[n] = w
	return w
}

func (p *Page) compile(selector string) (cascadia.Selector, bool) {
	if sel, ok := p.selectors[selector]; ok {
		return sel, sel != nil
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		p.selectors[selector] = nil
		return nil, false
	}
	p.selectors[selector] = sel
	return sel, true
}

// QueryAll implements Document.
func (p *Page) QueryAll(selector string) []Element {
	sel, ok := p.compile(selector)
	if !ok {
		return nil
	}
	matches := sel.MatchAll(p.doc)
	out := make([]Element, 0, len(matches))
	for _, n := range matches {
		out = append(out, p.wrap(n))
	}
	return out
}

// Query returns the first element matching selector.
func (p *Page) Query(selector string) (*Node, bool) {
	sel, ok := p.compile(selector)
	if !ok {
		return nil, false
	}
	n := sel.MatchFirst(p.doc)
	if n == nil {
		return nil, false
	}
	return p.wrap(n), true
}

// Observe implements Document.
func (p *Page) Observe(fn func()) func() {
	id := p.nextObs
	p.nextObs++
	p.observers[id] = fn
	return func() { delete(p.observers, id) }
}

// Observers returns the number of active observers.
func (p *Page) Observers() int {
	return len(p.observers)
}

func (p *Page) notify() {
	ids := make([]int, 0, len(p.observers))
	for id := range p.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := p.observers[id]; ok {
			fn()
		}
	}
}

// Reload replaces the body content with the body of a new snapshot, the
// way a player re-renders its markup. Elements from the old content become
// disconnected; panels stay attached.
func (p *Page) Reload(r io.Reader) error {
	doc, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("reloading page: %w", err)
	}
	body := findBody(doc)
	if body == nil {
		return fmt.Errorf("reloading page: no body element")
	}

	for c := p.body.FirstChild; c != nil; {
		next := c.NextSibling
		p.body.RemoveChild(c)
		c = next
	}
	for c := body.FirstChild; c != nil; {
		next := c.NextSibling
		body.RemoveChild(c)
		p.body.AppendChild(c)
		c = next
	}
	for _, panel := range p.panels {
		if panel.n.Parent != nil {
			panel.n.Parent.RemoveChild(panel.n)
		}
		p.body.AppendChild(panel.n)
	}

	if p.pointer != nil && !p.pointer.Connected() {
		p.pointer = nil
	}
	p.prune()
	p.notify()
	return nil
}

// prune forgets wrappers of nodes no longer in the document. Callers
// holding one still see it as disconnected.
func (p *Page) prune() {
	for n, w := range p.nodes {
		if !w.Connected() {
			delete(p.nodes, n)
		}
	}
}

// Tracked returns how many nodes have a wrapper.
func (p *Page) Tracked() int {
	return len(p.nodes)
}

// SetText replaces an element's children with a single text node.
func (p *Page) SetText(el *Node, text string) {
	removeChildren(el.n)
	el.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	p.notify()
}

// Append parses markup as children of parent and appends them. It returns
// the appended element nodes.
func (p *Page) Append(parent *Node, markup string) ([]*Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent.n)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}
	var out []*Node
	for _, n := range nodes {
		parent.n.AppendChild(n)
		if n.Type == html.ElementNode {
			out = append(out, p.wrap(n))
		}
	}
	p.notify()
	return out, nil
}

// Remove detaches an element from the document.
func (p *Page) Remove(el *Node) {
	if el.n.Parent == nil {
		return
	}
	el.n.Parent.RemoveChild(el.n)
	if p.pointer != nil && !p.pointer.Connected() {
		p.pointer = nil
	}
	p.prune()
	p.notify()
}

// SetRect sets an element's bounding box.
func (p *Page) SetRect(el *Node, r Rect) {
	el.rect = &r
}

// PointerMove moves the pointer onto to (nil for outside the viewport) and
// fires leave/enter handlers with mouseenter/mouseleave semantics: leave on
// every element of the old ancestor chain not in the new one, innermost
// first, then enter on the new chain, outermost first.
func (p *Page) PointerMove(to *Node) {
	from := p.pointer
	if from == to {
		return
	}
	p.pointer = to

	fromChain := p.chain(from)
	toChain := p.chain(to)
	inTo := make(map[*html.Node]bool, len(toChain))
	for _, n := range toChain {
		inTo[n] = true
	}
	inFrom := make(map[*html.Node]bool, len(fromChain))
	for _, n := range fromChain {
		inFrom[n] = true
	}

	var related Element
	if to != nil {
		related = to
	}
	for _, n := range fromChain {
		if inTo[n] {
			continue
		}
		if w, ok := p.nodes[n]; ok {
			w.fire(w.leave, PointerEvent{Related: related})
		}
	}

	related = nil
	if from != nil {
		related = from
	}
	for i := len(toChain) - 1; i >= 0; i-- {
		n := toChain[i]
		if inFrom[n] {
			continue
		}
		if w, ok := p.nodes[n]; ok {
			w.fire(w.enter, PointerEvent{Related: related})
		}
	}
}

// Pointer returns the element under the pointer, if any.
func (p *Page) Pointer() (*Node, bool) {
	return p.pointer, p.pointer != nil
}

// chain returns n and its ancestors, innermost first.
func (p *Page) chain(w *Node) []*html.Node {
	if w == nil {
		return nil
	}
	var out []*html.Node
	for n := w.n; n != nil; n = n.Parent {
		out = append(out, n)
	}
	return out
}

// NewPanel implements Document.
func (p *Page) NewPanel(id string) Panel {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "id", Val: id}},
	}
	p.body.AppendChild(n)
	w := p.wrap(n)
	p.panels = append(p.panels, w)
	return w
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// EstimateSize is the default Measurer: an estimate from the amount of
// text, clamped to the panel's max-width 500 and max-height 400.
func EstimateSize(p *Node) Size {
	const perLine = 28
	runes := utf8.RuneCountInString(strings.TrimSpace(p.Text()))
	if runes == 0 {
		return Size{Width: 64, Height: 32}
	}
	lines := (runes + perLine - 1) / perLine
	width := 32 + 16*float64(min(runes, perLine))
	height := 32 + 22*float64(lines)
	return Size{Width: min(width, 500), Height: min(height, 400)}
}

// renderChildren serializes n's children.
func renderChildren(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}
