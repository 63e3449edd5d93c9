package suspense

import (
	"errors"

	"github.com/vango-dev/suspense/pkg/vdom"
)

type interruptKind uint8

const (
	interruptBoundary interruptKind = iota
	interruptDeferred
)

// interrupt is what the interceptor saw while the evaluator was stepping.
type interrupt struct {
	kind    interruptKind
	element *vdom.VNode
	value   *deferredValue
}

// interceptor wraps components and records at most one interrupt per
// evaluator step. It never touches the tree itself.
type interceptor struct {
	pending *interrupt
}

// take returns and clears the recorded interrupt.
func (s *interceptor) take() *interrupt {
	in := s.pending
	s.pending = nil
	return in
}

// intercept is the evaluator's Intercept hook.
func (s *interceptor) intercept(n *vdom.VNode) *vdom.VNode {
	switch n.Kind {
	case vdom.KindSuspense:
		s.pending = &interrupt{kind: interruptBoundary, element: n}
		return &vdom.VNode{Kind: vdom.KindFragment, Children: n.Children}

	case vdom.KindComponent:
		if n.Comp == nil {
			return n
		}
		inner := n.Comp
		if sh, ok := inner.(*shimmed); ok {
			if sh.owner == s {
				return n
			}
			inner = sh.inner
		}
		wrapped := *n
		wrapped.Comp = &shimmed{inner: inner, owner: s, element: n}
		return &wrapped
	}
	return n
}

// shimmed turns a suspension signal into a recorded interrupt and an empty
// result. Other errors pass through.
type shimmed struct {
	inner   vdom.Component
	owner   *interceptor
	element *vdom.VNode
}

func (c *shimmed) Render(scope vdom.Scope) (*vdom.VNode, error) {
	out, err := c.inner.Render(scope)
	if err == nil {
		return out, nil
	}

	var sig *suspendSignal
	if !errors.As(err, &sig) {
		return nil, err
	}
	dv, ok := adapt(sig.value)
	if !ok {
		return nil, &UnknownSuspendError{Value: sig.value}
	}
	c.owner.pending = &interrupt{kind: interruptDeferred, element: c.element, value: dv}
	return nil, nil
}
