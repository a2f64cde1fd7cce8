// Package dom describes the caption-bearing document the annotation pipeline
// runs against. The document is owned by someone else (a video player);
// the pipeline only queries it, listens to it and owns one floating panel.
package dom

// Point is a position in viewport pixels.
type Point struct {
	X, Y float64
}

// Size is a width and height in pixels.
type Size struct {
	Width, Height float64
}

// Rect is an element's bounding box in viewport pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// Empty reports whether the box has no rendered area.
func (r Rect) Empty() bool {
	return r.Width == 0 || r.Height == 0
}

// TopCenter returns the horizontal center of the top edge.
func (r Rect) TopCenter() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y}
}

// PointerEvent describes a pointer crossing an element boundary.
type PointerEvent struct {
	// Related is the element the pointer moved to (on leave) or came from
	// (on enter). Nil when the pointer left or entered the viewport.
	Related Element
}

// Element is a node in the document. Implementations must be comparable
// and keep one value per underlying node so elements can key maps.
type Element interface {
	// Text returns the concatenated text of the element and its descendants.
	Text() string
	// Closest returns the nearest ancestor-or-self matching selector.
	Closest(selector string) (Element, bool)
	// Connected reports whether the element is still in the document.
	Connected() bool
	// Rect returns the element's bounding box.
	Rect() Rect
	// OnPointerEnter registers fn and returns a func that removes it.
	OnPointerEnter(fn func(PointerEvent)) (remove func())
	// OnPointerLeave registers fn and returns a func that removes it.
	OnPointerLeave(fn func(PointerEvent)) (remove func())
	// SetStyle sets an inline style property; an empty value removes it.
	SetStyle(prop, value string)
	// Style returns an inline style property.
	Style(prop string) string
}

// Panel is a floating element the pipeline creates and owns.
type Panel interface {
	Element
	// SetHTML replaces the panel content.
	SetHTML(markup string)
	// SetAttr sets an attribute on the panel.
	SetAttr(name, value string)
	// Measure returns the panel's rendered size with its current content.
	Measure() Size
	// Hovered reports whether the pointer is over the panel.
	Hovered() bool
	// Contains reports whether el is the panel or inside it.
	Contains(el Element) bool
}

// Document is the page hosting the captions.
type Document interface {
	// QueryAll returns elements matching a CSS selector in document order.
	// An invalid selector matches nothing.
	QueryAll(selector string) []Element
	// Observe calls fn after any structural or text change. The returned
	// func unsubscribes.
	Observe(fn func()) (stop func())
	// Viewport returns the visible area size.
	Viewport() Size
	// NewPanel creates a floating panel attached to the document body.
	NewPanel(id string) Panel
}

// InsideAny reports whether el sits inside an element matching any selector.
func InsideAny(el Element, selectors []string) bool {
	for _, sel := range selectors {
		if _, ok := el.Closest(sel); ok {
			return true
		}
	}
	return false
}
