// Package resource loads keyed asynchronous data for server rendering.
//
// A Cache deduplicates fetches by key: every component that loads the same
// key during a render shares one fetch. Each Load returns its own handle,
// and the fetch is canceled only when every handle waiting on it has been
// aborted, so one boundary falling back does not fail the others.
// Resources implement
// suspense.Awaitable, so components suspend on them directly:
//
//	func UserCard(cache *resource.Cache, id string) vdom.Component {
//	    return vdom.Func(func(s vdom.Scope) (*vdom.VNode, error) {
//	        user, err := resource.Load(cache, "user:"+id, func(ctx context.Context) (*User, error) {
//	            return db.Users.Find(ctx, id)
//	        }, resource.WithRetry(2, 50*time.Millisecond)).Read()
//	        if err != nil {
//	            return nil, err
//	        }
//	        return vdom.Div(vdom.Text(user.Name)), nil
//	    })
//	}
//
// Components that must not suspend can use Match to render the current
// state instead.
package resource
