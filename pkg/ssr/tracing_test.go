package ssr

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/suspense/pkg/render"
	"github.com/vango-dev/suspense/pkg/resource"
	"github.com/vango-dev/suspense/pkg/suspense"
	"github.com/vango-dev/suspense/pkg/vdom"
)

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_RenderSpanIsChild(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	r := NewRouter(RouterConfig{
		Options: Options{
			Renderer: suspense.NewRenderer(suspense.Config{Logger: quiet(), Tracer: tp.Tracer("test")}),
			Logger:   quiet(),
		},
		Routes:         []Route{{Pattern: "/users/{id}", Page: greetingPage}},
		Tracing:        true,
		TracingOptions: []TracingOption{WithTracerProvider(tp)},
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/7?name=Ada", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}
	renderSpan, server := spans[0], spans[1]
	if renderSpan.Name() != "suspense.render" {
		t.Fatalf("first span = %q", renderSpan.Name())
	}
	if server.Name() != "GET /users/{id}" {
		t.Fatalf("server span name = %q", server.Name())
	}
	if renderSpan.Parent().SpanID() != server.SpanContext().SpanID() {
		t.Fatal("render span should be a child of the request span")
	}
	if v, ok := spanAttr(server, "http.response.status_code"); !ok || v.AsInt64() != 200 {
		t.Fatalf("status attribute = %v", v)
	}
	if v, ok := spanAttr(server, "http.request.id"); !ok || v.AsString() == "" {
		t.Fatal("missing request id attribute")
	}
	if server.Status().Code != codes.Ok {
		t.Fatalf("status = %v", server.Status())
	}
}

func TestTracing_ServerErrorAndFilter(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	failing := func(*http.Request, *resource.Cache) (render.Page, *vdom.VNode, error) {
		return render.Page{}, nil, http.ErrAbortHandler
	}
	r := NewRouter(RouterConfig{
		Options: Options{Logger: quiet()},
		Routes:  []Route{{Pattern: "/fail", Page: failing}},
		Tracing: true,
		TracingOptions: []TracingOption{
			WithTracerProvider(tp),
			WithRequestFilter(func(r *http.Request) bool { return r.URL.Path != "/healthz" }),
			WithAttributeExtractor(func(r *http.Request) []attribute.KeyValue {
				return []attribute.KeyValue{attribute.String("app.tenant", "acme")}
			}),
		},
	})

	for _, path := range []string{"/healthz", "/fail"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Fatalf("status = %v, want error", spans[0].Status())
	}
	if v, ok := spanAttr(spans[0], "app.tenant"); !ok || v.AsString() != "acme" {
		t.Fatal("missing extracted attribute")
	}
}
