package vdom

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
)

// Templ embeds a templ component as a leaf. Its output is inserted
// unescaped, rendered with the context of the enclosing render.
func Templ(c templ.Component) *VNode {
	return Comp(Func(func(s Scope) (*VNode, error) {
		ctx := context.Background()
		if s != nil && s.Context() != nil {
			ctx = s.Context()
		}
		var buf bytes.Buffer
		if err := c.Render(ctx, &buf); err != nil {
			return nil, err
		}
		return Raw(buf.String()), nil
	}))
}
