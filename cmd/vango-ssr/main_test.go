package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vango-dev/suspense/internal/config"
	"github.com/vango-dev/suspense/internal/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCommand_Stdout(t *testing.T) {
	out, err := execute(t, "render", "--static", "--delay", "1ms", "--config", t.TempDir())
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	wants := []string{
		"<!DOCTYPE html>",
		`<html lang="en">`,
		"<title>Catalog</title>",
		`<ul class="products dark">`,
		`<li><strong>Espresso cup</strong> <span class="price">` + formatPrice(message.NewPrinter(language.English), 1200) + `</span></li>`,
		"<small>3 products</small>",
		"<p>The store map loads in your browser.</p>",
		"<footer><small>Prices include VAT</small></footer>",
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Loading products") {
		t.Error("resolved boundary should not render its fallback")
	}
	if strings.Contains(out, "data-vango-root") {
		t.Error("static output should not carry the root marker")
	}
}

func TestRenderCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site", "index.html")
	if _, err := execute(t, "render", "--delay", "1ms", "--out", path, "--config", t.TempDir()); err != nil {
		t.Fatalf("render error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `<main data-vango-root="">`) {
		t.Fatalf("first element should carry the root marker:\n%s", data)
	}
}

func TestRenderCommand_ConfigStatic(t *testing.T) {
	dir := t.TempDir()
	cfg := config.New()
	cfg.Render.Static = true
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "render", "--delay", "1ms", "--config", dir)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if strings.Contains(out, "data-vango-root") {
		t.Error("static from config should omit the root marker")
	}

	// An explicit flag wins over the file
	out, err = execute(t, "render", "--static=false", "--delay", "1ms", "--config", dir)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.Contains(out, "data-vango-root") {
		t.Error("--static=false should restore the root marker")
	}
}

func TestRenderCommand_BadTarget(t *testing.T) {
	_, err := execute(t, "render", "--out", "gs://bucket/index.html", "--config", t.TempDir())
	if errors.CodeOf(err) != "E140" {
		t.Fatalf("error = %v, want E140", err)
	}
}

func TestRenderCommand_S3NeedsRegion(t *testing.T) {
	_, err := execute(t, "render", "--delay", "1ms", "--out", "s3://bucket/index.html", "--config", t.TempDir())
	if errors.CodeOf(err) != "E180" {
		t.Fatalf("error = %v, want E180", err)
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "init", dir)
	if err != nil {
		t.Fatalf("init error: %v", err)
	}
	if !strings.Contains(out, config.ConfigFileName) {
		t.Errorf("output = %q", out)
	}
	if !config.Exists(dir) {
		t.Fatal("config file not written")
	}

	if _, err := execute(t, "init", dir); errors.CodeOf(err) != "E120" {
		t.Fatalf("second init error = %v, want E120", err)
	}
	if _, err := execute(t, "init", "--force", dir); err != nil {
		t.Fatalf("init --force error: %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if out != version+"\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestServeHandler(t *testing.T) {
	store, err := openCatalogStore(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := newHandler(config.New(), logger, prometheus.NewRegistry(), store, time.Millisecond)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Burr grinder") {
		t.Fatalf("GET / = %d\n%s", rec.Code, rec.Body.String())
	}

	if rec := get("/?delay=soon"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("GET /?delay=soon = %d", rec.Code)
	}

	if rec := get("/?lang=de"); !strings.Contains(rec.Body.String(), `<html lang="de">`) {
		t.Fatalf("GET /?lang=de:\n%s", rec.Body.String())
	}

	rec = get("/metrics")
	body := rec.Body.String()
	if !strings.Contains(body, "vango_suspense_renders_total") || !strings.Contains(body, "go_goroutines") {
		t.Fatalf("metrics output:\n%s", body)
	}
}

func TestCatalogStore(t *testing.T) {
	store, err := openCatalogStore(context.Background())
	if err != nil {
		t.Fatalf("openCatalogStore error: %v", err)
	}
	defer store.Close()

	got, err := store.Products(context.Background())
	if err != nil {
		t.Fatalf("Products error: %v", err)
	}
	if len(got) != len(seedProducts) {
		t.Fatalf("Products = %d rows, want %d", len(got), len(seedProducts))
	}
	for i := range got {
		if got[i] != seedProducts[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], seedProducts[i])
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Products(ctx); err == nil {
		t.Error("Products with a canceled context should fail")
	}
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		prefs []string
		want  language.Tag
	}{
		{nil, language.English},
		{[]string{""}, language.English},
		{[]string{"de"}, language.German},
		{[]string{"", "fr-CA,fr;q=0.9,en;q=0.5"}, language.French},
		{[]string{"ja"}, language.English},
		{[]string{"not a tag;;"}, language.English},
	}
	for _, tt := range tests {
		if got := matchLanguage(tt.prefs...); got != tt.want {
			t.Errorf("matchLanguage(%q) = %v, want %v", tt.prefs, got, tt.want)
		}
	}
}
