// Package render provides the HTML evaluator used for server-side rendering.
//
// The Evaluator walks a VNode tree depth-first using an explicit stack of
// frames rather than recursion, so a render can stop between any two
// elements and resume later. It exposes four capabilities to the code
// driving it:
//
//   - Step evaluates one bounded unit of work and writes its output.
//   - Hooks.Intercept sees every Component and Suspense element before it
//     contributes output.
//   - Hooks.FrameClosed fires when a tagged frame finishes.
//   - Snapshot and Restore capture and reinstate the ambient state
//     (context slots, legacy context, namespace, root marker).
//
// Renderer is the synchronous front end for trees that never wait on data:
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(ctx, node)
//
// # Documents
//
// DocumentWriter writes the document shell in parts and flushes after each,
// so the head reaches the client while the body is still rendering.
//
// # Security
//
// All text content and attribute values are escaped. Raw HTML can be
// inserted using KindRaw nodes, but should only be used with trusted content.
package render
