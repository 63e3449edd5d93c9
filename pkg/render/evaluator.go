package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/suspense/pkg/vdom"
)

// TextSeparator is written between two adjacent text leaves so that the
// browser parses them as separate text nodes. It renders as nothing.
const TextSeparator = "<!-- -->"

// RootAttr marks the first element of a non-static render.
const RootAttr = "data-vango-root"

// Namespace is the markup namespace in effect for an element.
type Namespace uint8

const (
	NamespaceHTML Namespace = iota
	NamespaceSVG
	NamespaceMathML
)

// SlotValue is one value provided for a context slot.
type SlotValue struct {
	Slot  any
	Value any
}

// State is the ambient evaluator state that components and elements observe.
// A State returned by Snapshot is independent of later evaluator mutation.
type State struct {
	// Slots holds provided context values, outermost first.
	Slots []SlotValue

	// Legacy is the aggregate legacy context. Maps are replaced, never
	// mutated in place, so sharing one between states is safe.
	Legacy map[string]any

	// Namespace is the namespace children of the current frame render in.
	Namespace Namespace

	// RootPending is true until the first intrinsic element is emitted.
	RootPending bool
}

func (s State) clone() State {
	c := State{
		Legacy:      s.Legacy,
		Namespace:   s.Namespace,
		RootPending: s.RootPending,
	}
	if len(s.Slots) > 0 {
		c.Slots = make([]SlotValue, len(s.Slots))
		copy(c.Slots, s.Slots)
	}
	return c
}

// Frame is one level of the evaluator's explicit stack: an ordered list of
// sibling nodes still to be evaluated, plus what to undo when it closes.
type Frame struct {
	// Tag is an opaque handle owned by the caller that pushed the frame.
	// FrameClosed fires only for frames with a non-nil Tag.
	Tag any

	children  []*vdom.VNode
	next      int
	closing   string
	exhausted bool

	slotLen int
	legacy  map[string]any
	ns      Namespace
}

// Exhaust makes the frame skip its remaining children.
func (f *Frame) Exhaust() { f.exhausted = true }

// Exhausted reports whether the frame has nothing left to evaluate.
func (f *Frame) Exhausted() bool {
	return f.exhausted || f.next >= len(f.children)
}

// Hooks connect the evaluator to the code driving it.
type Hooks struct {
	// Intercept is consulted before a Component or Suspense element
	// contributes output. It returns the element to evaluate in its place,
	// or nil to contribute nothing.
	Intercept func(node *vdom.VNode) *vdom.VNode

	// FrameClosed fires after a tagged frame is popped and its state undone.
	// The callback may push new frames.
	FrameClosed func(f *Frame)
}

// Evaluator is a resumable, depth-first HTML evaluator. Instead of
// recursing, it keeps an explicit stack of frames so that evaluation can
// stop between any two elements and pick up later.
//
// An Evaluator is not safe for concurrent use.
type Evaluator struct {
	ctx      context.Context
	static   bool
	hooks    Hooks
	stack    []*Frame
	state    State
	lastText bool
}

// NewEvaluator creates an evaluator. In static mode no text separators or
// root marker are emitted.
func NewEvaluator(ctx context.Context, static bool, hooks Hooks) *Evaluator {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Evaluator{
		ctx:    ctx,
		static: static,
		hooks:  hooks,
		state:  State{RootPending: !static},
	}
}

// Context implements vdom.Scope.
func (e *Evaluator) Context() context.Context { return e.ctx }

// Legacy implements vdom.Scope.
func (e *Evaluator) Legacy() map[string]any { return e.state.Legacy }

// Lookup implements vdom.Scope.
func (e *Evaluator) Lookup(slot any) (any, bool) {
	for i := len(e.state.Slots) - 1; i >= 0; i-- {
		if e.state.Slots[i].Slot == slot {
			return e.state.Slots[i].Value, true
		}
	}
	return nil, false
}

// Static reports whether the evaluator renders static markup.
func (e *Evaluator) Static() bool { return e.static }

// Depth returns the number of open frames.
func (e *Evaluator) Depth() int { return len(e.stack) }

// Top returns the innermost open frame, or nil.
func (e *Evaluator) Top() *Frame {
	if len(e.stack) == 0 {
		return nil
	}
	return e.stack[len(e.stack)-1]
}

// OnStack reports whether f is still open.
func (e *Evaluator) OnStack(f *Frame) bool {
	if f == nil {
		return false
	}
	for i := len(e.stack) - 1; i >= 0; i-- {
		if e.stack[i] == f {
			return true
		}
	}
	return false
}

// ExhaustTo exhausts every frame from the top of the stack down to and
// including f. It reports false, changing nothing, if f is not open.
func (e *Evaluator) ExhaustTo(f *Frame) bool {
	if !e.OnStack(f) {
		return false
	}
	for i := len(e.stack) - 1; i >= 0; i-- {
		e.stack[i].Exhaust()
		if e.stack[i] == f {
			break
		}
	}
	return true
}

// Snapshot captures the ambient state at the current position.
func (e *Evaluator) Snapshot() State {
	return e.state.clone()
}

// Restore discards all open frames and reinstates s verbatim.
func (e *Evaluator) Restore(s State) {
	for i := range e.stack {
		e.stack[i] = nil
	}
	e.stack = e.stack[:0]
	e.state = s.clone()
	e.lastText = false
}

// SetRootPending sets whether the next intrinsic element carries the root
// marker. It has no effect in static mode.
func (e *Evaluator) SetRootPending(pending bool) {
	e.state.RootPending = pending && !e.static
}

// ClearTextSeparator forgets that the last output was a text leaf, so the
// next text leaf is not preceded by a separator.
func (e *Evaluator) ClearTextSeparator() { e.lastText = false }

// Push opens a frame evaluating nodes in order.
func (e *Evaluator) Push(tag any, nodes ...*vdom.VNode) *Frame {
	f := &Frame{
		Tag:      tag,
		children: nodes,
		slotLen:  len(e.state.Slots),
		legacy:   e.state.Legacy,
		ns:       e.state.Namespace,
	}
	e.stack = append(e.stack, f)
	return f
}

// Step performs one bounded unit of work: it evaluates the next element of
// the innermost frame, or closes that frame if it is exhausted. Output is
// written to w. Step is a no-op on an empty stack.
func (e *Evaluator) Step(w io.Writer) error {
	top := e.Top()
	if top == nil {
		return nil
	}
	if top.Exhausted() {
		return e.pop(w)
	}
	node := top.children[top.next]
	top.next++
	return e.visit(w, node)
}

// Run steps until the stack is empty.
func (e *Evaluator) Run(w io.Writer) error {
	for len(e.stack) > 0 {
		if err := e.Step(w); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) pop(w io.Writer) error {
	n := len(e.stack) - 1
	f := e.stack[n]
	e.stack[n] = nil
	e.stack = e.stack[:n]

	if f.closing != "" {
		if _, err := io.WriteString(w, f.closing); err != nil {
			return err
		}
		e.lastText = false
	}

	e.state.Slots = e.state.Slots[:f.slotLen]
	e.state.Legacy = f.legacy
	e.state.Namespace = f.ns

	if f.Tag != nil && e.hooks.FrameClosed != nil {
		e.hooks.FrameClosed(f)
	}
	return nil
}

// visit dispatches evaluation based on node kind.
func (e *Evaluator) visit(w io.Writer, node *vdom.VNode) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindText:
		return e.writeText(w, node.Text)
	case vdom.KindRaw:
		e.lastText = false
		_, err := io.WriteString(w, node.Text)
		return err
	case vdom.KindElement:
		return e.openElement(w, node)
	case vdom.KindFragment:
		e.Push(nil, node.Children...)
		return nil
	case vdom.KindProvider:
		e.Push(nil, node.Children...)
		e.state.Slots = append(e.state.Slots, SlotValue{Slot: node.Slot, Value: node.Value})
		return nil
	case vdom.KindLegacyContext:
		e.Push(nil, node.Children...)
		e.state.Legacy = mergeLegacy(e.state.Legacy, node.Props)
		return nil
	case vdom.KindComponent, vdom.KindSuspense:
		return e.composite(w, node)
	default:
		return fmt.Errorf("unknown node kind: %d", node.Kind)
	}
}

// composite evaluates a Component or Suspense element. The result of a
// component is pushed as a frame rather than visited, so each component
// costs its own step.
func (e *Evaluator) composite(w io.Writer, node *vdom.VNode) error {
	if e.hooks.Intercept != nil {
		node = e.hooks.Intercept(node)
		if node == nil {
			return nil
		}
		if node.Kind != vdom.KindComponent && node.Kind != vdom.KindSuspense {
			return e.visit(w, node)
		}
	}

	if node.Kind == vdom.KindSuspense {
		e.Push(nil, node.Children...)
		return nil
	}
	if node.Comp == nil {
		return nil
	}

	out, err := node.Comp.Render(e)
	if err != nil {
		return err
	}
	if out != nil {
		e.Push(nil, out)
	}
	return nil
}

func (e *Evaluator) writeText(w io.Writer, text string) error {
	if text == "" {
		return nil
	}
	if !e.static && e.lastText {
		if _, err := io.WriteString(w, TextSeparator); err != nil {
			return err
		}
	}
	e.lastText = true
	_, err := io.WriteString(w, escapeHTML(text))
	return err
}

// openElement writes an element's opening tag and pushes a frame for its
// children that writes the closing tag when it pops.
func (e *Evaluator) openElement(w io.Writer, node *vdom.VNode) error {
	e.lastText = false
	tag := node.Tag

	ns := e.state.Namespace
	switch tag {
	case "svg":
		ns = NamespaceSVG
	case "math":
		ns = NamespaceMathML
	}

	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(tag)
	writeAttributes(&b, node.Props)
	if e.state.RootPending {
		b.WriteString(" " + RootAttr + `=""`)
		e.state.RootPending = false
	}

	inner, hasInner := node.Props["dangerouslySetInnerHTML"].(string)

	switch {
	case ns == NamespaceHTML && isVoidElement(tag):
		b.WriteByte('>')
		_, err := io.WriteString(w, b.String())
		return err
	case ns != NamespaceHTML && len(node.Children) == 0 && !hasInner:
		b.WriteString("/>")
		_, err := io.WriteString(w, b.String())
		return err
	case hasInner:
		b.WriteByte('>')
		b.WriteString(inner)
		b.WriteString("</" + tag + ">")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteByte('>')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	f := e.Push(nil, node.Children...)
	f.closing = "</" + tag + ">"
	if tag == "foreignObject" {
		ns = NamespaceHTML
	}
	e.state.Namespace = ns
	return nil
}

// mergeLegacy returns a new map holding base overlaid with values.
func mergeLegacy(base map[string]any, values vdom.Props) map[string]any {
	merged := make(map[string]any, len(base)+len(values))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = v
	}
	return merged
}
