// Package errors provides structured, coded errors for the renderer and its
// tooling.
//
// Every error carries a code (e.g., "E200") that maps to a registered
// template with a short message, a longer explanation and a documentation
// link. Errors wrap their cause so errors.Is and errors.As see through them.
//
// # Error Categories
//
//   - render: failures while rendering a component tree (missing boundary,
//     component errors, rejected deferred values, cancellation)
//   - config: configuration file and environment problems
//   - export: publishing rendered markup
//   - cli: command line usage
//
// # Usage
//
//	err := errors.New("E200").
//	    WithDetail("UserCard suspended outside any Suspense boundary").
//	    WithSuggestion("Wrap the component in vdom.Suspense(fallback, ...)")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E200: Component suspended while rendering, but no fallback UI was specified
//	//
//	//   UserCard suspended outside any Suspense boundary
//	//
//	//   Hint: Wrap the component in vdom.Suspense(fallback, ...)
//	//
//	//   Learn more: https://vango.dev/docs/errors/E200
package errors
