package render

import (
	"context"
	"io"
	"strings"

	"github.com/vango-dev/suspense/pkg/vdom"
)

// RendererConfig configures the synchronous HTML renderer.
type RendererConfig struct {
	// Static renders plain markup: no text separators between adjacent text
	// nodes and no root marker attribute.
	Static bool
}

// Renderer renders fully synchronous VNode trees to HTML.
//
// Suspense boundaries render their children directly. A component that
// returns an error, including a suspension signal, fails the render with
// that error; use package suspense to render trees that wait on data.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	return &Renderer{config: config}
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(ctx context.Context, node *vdom.VNode) (string, error) {
	var buf strings.Builder
	if err := r.RenderToWriter(ctx, &buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter writes a VNode tree to w. On error, w may hold a prefix of
// the output.
func (r *Renderer) RenderToWriter(ctx context.Context, w io.Writer, node *vdom.VNode) error {
	ev := NewEvaluator(ctx, r.config.Static, Hooks{})
	ev.Push(nil, node)
	return ev.Run(w)
}
