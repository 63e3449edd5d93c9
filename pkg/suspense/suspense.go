package suspense

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/suspense/pkg/vdom"
)

// Config configures a Renderer. The zero value is ready to use.
type Config struct {
	// FallbackFast stops evaluating the rest of a boundary's content as soon
	// as the boundary is known to render its fallback.
	FallbackFast bool

	// Logger receives debug records about cycles and fallbacks.
	// Default: slog.Default()
	Logger *slog.Logger

	// Metrics, if set, receives per-render counters.
	Metrics *Metrics

	// Tracer creates the render span.
	// Default: the global OpenTelemetry tracer provider.
	Tracer trace.Tracer
}

// Renderer renders element trees that may suspend. A Renderer holds no
// per-render state and may be used concurrently.
type Renderer struct {
	cfg Config
}

// NewRenderer creates a renderer.
func NewRenderer(cfg Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// Result is the outcome of an asynchronous render.
type Result struct {
	HTML string
	Err  error
}

// RenderToString renders root to HTML, waiting for every deferred value the
// output depends on. Adjacent text from different sources is kept apart
// with separators, and the first element carries the root marker.
//
// On failure the error is an *errors.VangoError wrapping ErrMissingBoundary,
// a *RenderError, a *RejectionError or the context error, and no partial
// output is returned.
func (r *Renderer) RenderToString(ctx context.Context, root *vdom.VNode) (string, error) {
	return r.render(ctx, root, false)
}

// RenderToStaticMarkup is like RenderToString but emits no separators or
// root marker.
func (r *Renderer) RenderToStaticMarkup(ctx context.Context, root *vdom.VNode) (string, error) {
	return r.render(ctx, root, true)
}

// Start renders on a new goroutine. The channel receives exactly one Result.
func (r *Renderer) Start(ctx context.Context, root *vdom.VNode, static bool) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		html, err := r.render(ctx, root, static)
		ch <- Result{HTML: html, Err: err}
	}()
	return ch
}

// RenderToString renders root with a renderer configured by cfg.
func RenderToString(ctx context.Context, root *vdom.VNode, cfg Config) (string, error) {
	return NewRenderer(cfg).RenderToString(ctx, root)
}

// RenderToStaticMarkup renders root as static markup with a renderer
// configured by cfg.
func RenderToStaticMarkup(ctx context.Context, root *vdom.VNode, cfg Config) (string, error) {
	return NewRenderer(cfg).RenderToStaticMarkup(ctx, root)
}

func (r *Renderer) logger() *slog.Logger {
	if r.cfg.Logger != nil {
		return r.cfg.Logger
	}
	return slog.Default()
}

func (r *Renderer) render(ctx context.Context, root *vdom.VNode, static bool) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	mode := "string"
	if static {
		mode = "static"
	}
	id := uuid.NewString()
	start := time.Now()

	ctx, span := r.startSpan(ctx, id, mode)
	log := r.logger().With("render_id", id, "mode", mode)

	d := newDriver(ctx, static, r.cfg.FallbackFast, log)
	html, err := d.run(root)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.cfg.Metrics.observe(mode, outcome, time.Since(start), d.stats)
	endSpan(span, d.stats, err)
	log.Debug("render finished",
		"outcome", outcome,
		"cycles", d.stats.cycles,
		"deferred", d.stats.deferred,
		"fallbacks", d.stats.fallbacks,
		"duration", time.Since(start))

	if err != nil {
		return "", err
	}
	return html, nil
}
