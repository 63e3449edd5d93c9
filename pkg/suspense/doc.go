// Package suspense renders element trees whose components may wait on
// asynchronous data.
//
// A component suspends by returning the error produced by Suspend, passing
// the pending value:
//
//	func Profile(s vdom.Scope) (*vdom.VNode, error) {
//	    user, err := suspense.Read[*User](loadUser(s.Context()))
//	    if err != nil {
//	        return nil, err
//	    }
//	    return vdom.Div(vdom.Text(user.Name)), nil
//	}
//
// Every component that suspends must sit below a vdom.Suspense boundary.
// Rendering continues past the suspended component; when its value settles,
// only that component's subtree is rendered again, with the ambient context
// it originally saw. Output is assembled in document order regardless of
// the order in which values settle.
//
// A boundary renders its fallback instead of its content when a descendant
// can only render on the client (see NewClientOnly). With
// Config.FallbackFast set, the rest of that boundary's content is not
// evaluated at all.
//
// Any component error, rejected value, or missing boundary fails the whole
// render. Every outstanding value is aborted first and no partial output is
// returned.
package suspense
