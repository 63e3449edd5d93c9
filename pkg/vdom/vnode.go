package vdom

import "context"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement       VKind = iota // <div>, <button>, etc.
	KindText                       // Plain text node
	KindFragment                   // Grouping without wrapper
	KindComponent                  // Nested component
	KindRaw                        // Raw HTML (dangerous)
	KindSuspense                   // Boundary with fallback content
	KindProvider                   // Scoped context slot value
	KindLegacyContext              // Merge into the aggregate legacy context
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindRaw:
		return "Raw"
	case KindSuspense:
		return "Suspense"
	case KindProvider:
		return "Provider"
	case KindLegacyContext:
		return "LegacyContext"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind     // Node type
	Tag      string    // Element tag name (e.g., "div")
	Props    Props     // Attributes
	Children []*VNode  // Child nodes
	Key      string    // Reconciliation key
	Text     string    // For KindText and KindRaw
	Comp     Component // For KindComponent
	Fallback *VNode    // For KindSuspense
	Slot     any       // For KindProvider: the context identity
	Value    any       // For KindProvider: the provided value
}

// Props holds attributes. For KindLegacyContext it holds the merged values.
type Props map[string]any

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// Scope is the ambient render state visible to a component while it renders.
type Scope interface {
	// Context returns the context of the render call.
	Context() context.Context

	// Lookup returns the innermost value provided for slot.
	Lookup(slot any) (any, bool)

	// Legacy returns the aggregate legacy context. Callers must not mutate it.
	Legacy() map[string]any
}

// Component is anything that can render to a VNode.
//
// Returning a non-nil error aborts rendering unless the error is a
// suspension signal understood by the renderer in use.
type Component interface {
	Render(s Scope) (*VNode, error)
}

// FuncComponent wraps a render function.
type FuncComponent struct {
	render func(Scope) (*VNode, error)
}

// Render implements Component.
func (f *FuncComponent) Render(s Scope) (*VNode, error) {
	return f.render(s)
}

// Func creates a component from a render function.
func Func(render func(s Scope) (*VNode, error)) Component {
	return &FuncComponent{render: render}
}

// Static creates a component from a render function that cannot fail and
// needs no ambient state.
func Static(render func() *VNode) Component {
	return &FuncComponent{render: func(Scope) (*VNode, error) {
		return render(), nil
	}}
}

// Comp wraps a component in a KindComponent node.
func Comp(c Component) *VNode {
	return &VNode{Kind: KindComponent, Comp: c}
}

// Suspense creates a boundary. While any deferred descendant cannot be
// rendered on the server, fallback is rendered in place of children.
func Suspense(fallback *VNode, children ...any) *VNode {
	node := Fragment(children...)
	node.Kind = KindSuspense
	node.Fallback = fallback
	return node
}

// LegacyContext merges values into the aggregate legacy context seen by
// all descendants.
func LegacyContext(values map[string]any, children ...any) *VNode {
	node := Fragment(children...)
	node.Kind = KindLegacyContext
	node.Props = Props(values)
	return node
}
