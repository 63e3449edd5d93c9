package vdom

// Context passes a typed value through the component tree.
// The zero value is not usable; create one with CreateContext.
type Context[T any] struct {
	name         string
	defaultValue T
}

// CreateContext creates a new Context with a default value.
// name is only used for debugging.
func CreateContext[T any](name string, defaultValue T) *Context[T] {
	return &Context[T]{name: name, defaultValue: defaultValue}
}

// Name returns the debug name of the context.
func (c *Context[T]) Name() string {
	return c.name
}

// Provider creates a node that provides value to its descendants.
// Siblings of the provider do not see it.
func (c *Context[T]) Provider(value T, children ...any) *VNode {
	node := Fragment(children...)
	node.Kind = KindProvider
	node.Slot = c
	node.Value = value
	return node
}

// Use returns the innermost provided value, or the default when no provider
// is found above the rendering component.
func (c *Context[T]) Use(s Scope) T {
	if s == nil {
		return c.defaultValue
	}
	v, ok := s.Lookup(c)
	if !ok {
		return c.defaultValue
	}
	typed, ok := v.(T)
	if !ok {
		return c.defaultValue
	}
	return typed
}
