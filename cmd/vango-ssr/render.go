package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/vango-dev/suspense/internal/config"
	"github.com/vango-dev/suspense/internal/telemetry"
	"github.com/vango-dev/suspense/pkg/export"
	"github.com/vango-dev/suspense/pkg/render"
	"github.com/vango-dev/suspense/pkg/resource"
	"github.com/vango-dev/suspense/pkg/suspense"
)

type renderOptions struct {
	configDir    string
	out          string
	static       bool
	fallbackFast bool
	lang         string
	delay        time.Duration

	// staticSet and fallbackFastSet record explicit flags, which win over
	// the configuration file.
	staticSet       bool
	fallbackFastSet bool
}

func renderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the catalog page",
		Long: `Render the built-in catalog page to a file, stdout or S3.

The render waits for every product fetch. Content that can only load in
the browser is replaced by its Suspense fallback.

Examples:
  vango-ssr render
  vango-ssr render --static --out dist/index.html
  vango-ssr render --fallback-fast --out s3://my-site/index.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.staticSet = cmd.Flags().Changed("static")
			opts.fallbackFastSet = cmd.Flags().Changed("fallback-fast")
			return runRender(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configDir, "config", "c", ".", "Directory containing vango-ssr.json")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "-", "Output: file path, '-' for stdout, or s3://bucket/key")
	cmd.Flags().BoolVar(&opts.static, "static", false, "Omit text separators and the root marker")
	cmd.Flags().BoolVar(&opts.fallbackFast, "fallback-fast", false, "Stop rendering a boundary's content once it falls back")
	cmd.Flags().StringVar(&opts.lang, "lang", "en", "Page language (en, de, fr)")
	cmd.Flags().DurationVar(&opts.delay, "delay", 100*time.Millisecond, "Simulated product query latency")

	return cmd
}

func runRender(ctx context.Context, stdout, stderr io.Writer, opts renderOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	target, err := export.ParseTarget(opts.out)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configDir)
	if err != nil {
		return err
	}
	if opts.staticSet {
		cfg.Render.Static = opts.static
	}
	if opts.fallbackFastSet {
		cfg.Render.FallbackFast = opts.fallbackFast
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	store, err := openCatalogStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := renderDocument(ctx, cfg, logger, store, matchLanguage(opts.lang), opts.delay)
	if err != nil {
		return err
	}

	switch {
	case target.Stdout:
		_, err := stdout.Write(doc)
		return err
	case target.Path != "":
		exp := export.NewDiskExporter(filepath.Dir(target.Path))
		if err := exp.Export(ctx, filepath.Base(target.Path), doc); err != nil {
			return err
		}
		success(stderr, "Wrote %s (%d bytes)", target.Path, len(doc))
		return nil
	default:
		client, err := export.NewS3Client(cfg.Export.Region)
		if err != nil {
			return err
		}
		exp := export.NewS3Exporter(client, target.Bucket, "")
		if err := exp.Export(ctx, target.Key, doc); err != nil {
			return err
		}
		success(stderr, "Uploaded s3://%s/%s (%d bytes)", target.Bucket, target.Key, len(doc))
		return nil
	}
}

// renderDocument renders the catalog into a complete HTML document.
func renderDocument(ctx context.Context, cfg *config.Config, logger *slog.Logger, store *catalogStore, lang language.Tag, delay time.Duration) ([]byte, error) {
	if timeout := cfg.RenderTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cache := resource.NewCache(ctx)
	defer cache.Close()

	renderer := suspense.NewRenderer(suspense.Config{
		FallbackFast: cfg.Render.FallbackFast,
		Logger:       logger,
	})
	page, root := catalog(cache, store, lang, delay)

	var body string
	var err error
	if cfg.Render.Static {
		body, err = renderer.RenderToStaticMarkup(ctx, root)
	} else {
		body, err = renderer.RenderToString(ctx, root)
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := render.NewDocumentWriter(&buf)
	if err := w.WriteHead(page); err != nil {
		return nil, err
	}
	if err := w.WriteBody(body); err != nil {
		return nil, err
	}
	if err := w.Close(page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
