package ssr

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	verrors "github.com/vango-dev/suspense/internal/errors"
	"github.com/vango-dev/suspense/pkg/render"
	"github.com/vango-dev/suspense/pkg/resource"
	"github.com/vango-dev/suspense/pkg/suspense"
	"github.com/vango-dev/suspense/pkg/vdom"
)

// PageFunc builds the document shell and the body element tree for a
// request. Resources loaded through cache are shared by every component of
// the page and aborted once the response is written.
type PageFunc func(r *http.Request, cache *resource.Cache) (render.Page, *vdom.VNode, error)

// Options configures page handlers.
type Options struct {
	// Renderer renders page bodies.
	// Default: a renderer with the zero suspense.Config.
	Renderer *suspense.Renderer

	// Static renders pages without text separators or the root marker.
	Static bool

	// Timeout bounds the render of one page. Zero means no limit beyond the
	// request context.
	Timeout time.Duration

	// Logger receives failed renders.
	// Default: slog.Default()
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Renderer == nil {
		o.Renderer = suspense.NewRenderer(suspense.Config{Logger: o.Logger})
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Handler returns an http.Handler that renders page. The body is rendered
// completely before anything is written, so a failed render becomes a 500
// response instead of a truncated document.
func Handler(page PageFunc, opts Options) http.Handler {
	opts = opts.withDefaults()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}

		cache := resource.NewCache(ctx)
		defer cache.Close()

		shell, root, err := page(r.WithContext(ctx), cache)
		if err != nil {
			fail(w, r, opts.Logger, err)
			return
		}

		var body string
		if opts.Static {
			body, err = opts.Renderer.RenderToStaticMarkup(ctx, root)
		} else {
			body, err = opts.Renderer.RenderToString(ctx, root)
		}
		if err != nil {
			fail(w, r, opts.Logger, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)

		doc := render.NewDocumentWriter(w)
		if err := doc.WriteHead(shell); err != nil {
			return
		}
		if err := doc.WriteBody(body); err != nil {
			return
		}
		doc.Close(shell)
	})
}

// fail logs a failed page and writes a plain 500 response.
func fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	log.Warn("page render failed",
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"code", verrors.CodeOf(err),
		"error", err)

	msg := http.StatusText(http.StatusInternalServerError)
	if code := verrors.CodeOf(err); code != "" {
		msg += " (" + code + ")"
	}
	http.Error(w, msg, http.StatusInternalServerError)
}
