// Package vdom provides the element model rendered by the server.
//
// A tree of VNode values describes the document: intrinsic elements, text,
// fragments, raw HTML, components, suspense boundaries and context
// providers. Components receive a Scope with the ambient state of the render
// and return the subtree they expand to.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	)
//
// # Suspense
//
// Suspense wraps children that may depend on asynchronous data. If a
// descendant cannot be rendered on the server, the fallback is rendered in
// the boundary's place:
//
//	Suspense(Text("Loading..."),
//	    Comp(UserCard(id)),
//	)
//
// # Context
//
// CreateContext declares a typed slot; Provider scopes a value to its
// descendants and Use reads the innermost value from a Scope.
package vdom
