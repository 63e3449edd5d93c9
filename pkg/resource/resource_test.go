package resource

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/suspense/pkg/suspense"
	"github.com/vango-dev/suspense/pkg/vdom"
)

func waitDone[T any](t *testing.T, r *Resource[T]) {
	t.Helper()
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for resource")
	}
}

func TestLoad_Success(t *testing.T) {
	c := NewCache(context.Background())
	r := Load(c, "greeting", func(context.Context) (string, error) {
		return "hello", nil
	})
	waitDone(t, r)

	if !r.IsReady() {
		t.Fatalf("State() = %v, want ready", r.State())
	}
	v, err := r.Read()
	if err != nil || v != "hello" {
		t.Fatalf("Read() = %q, %v", v, err)
	}
	if r.Data() != "hello" || r.Err() != nil {
		t.Fatalf("Data() = %q, Err() = %v", r.Data(), r.Err())
	}
	if r.Key() != "greeting" {
		t.Fatalf("Key() = %q", r.Key())
	}
}

func TestLoad_DeduplicatesByKey(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	c := NewCache(context.Background())
	a := Load(c, "k", fetch)
	b := Load(c, "k", fetch)
	if a == b || a.shared != b.shared {
		t.Fatal("same key should return separate handles on one fetch")
	}
	if !a.IsLoading() {
		t.Fatalf("State() = %v, want loading", a.State())
	}
	if _, err := a.Read(); !suspense.IsSuspend(err) {
		t.Fatalf("Read() while loading = %v, want suspend signal", err)
	}
	close(release)
	waitDone(t, a)

	if calls.Load() != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls.Load())
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestLoad_Retry(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(context.Background())
	r := Load(c, "flaky", func(context.Context) (string, error) {
		if calls.Add(1) < 3 {
			return "", errors.New("try again")
		}
		return "ok", nil
	}, WithRetry(3, time.Millisecond))
	waitDone(t, r)

	if !r.IsReady() || r.Data() != "ok" {
		t.Fatalf("State() = %v, Data() = %q", r.State(), r.Data())
	}
	if r.Attempts() != 3 {
		t.Fatalf("Attempts() = %d, want 3", r.Attempts())
	}
}

func TestLoad_ErrorIsNotReused(t *testing.T) {
	boom := errors.New("boom")
	var seen atomic.Value
	c := NewCache(context.Background())
	r := Load(c, "bad", func(context.Context) (string, error) {
		return "", boom
	}, WithRetry(1, time.Millisecond), OnError(func(err error) { seen.Store(err) }))
	waitDone(t, r)

	if !r.IsError() || !errors.Is(r.Err(), boom) {
		t.Fatalf("State() = %v, Err() = %v", r.State(), r.Err())
	}
	if r.Attempts() != 2 {
		t.Fatalf("Attempts() = %d, want 2", r.Attempts())
	}
	if seen.Load() != boom {
		t.Fatalf("OnError saw %v", seen.Load())
	}

	again := Load(c, "bad", func(context.Context) (string, error) { return "fixed", nil })
	if again.shared == r.shared {
		t.Fatal("a failed resource should be fetched again")
	}
	waitDone(t, again)
	if again.Data() != "fixed" {
		t.Fatalf("Data() = %q", again.Data())
	}
}

func TestLoad_StaleTime(t *testing.T) {
	var calls atomic.Int32
	fetch := func(context.Context) (int32, error) { return calls.Add(1), nil }

	c := NewCache(context.Background(), StaleTime(20*time.Millisecond))
	first := Load(c, "k", fetch)
	waitDone(t, first)
	if Load(c, "k", fetch).shared != first.shared {
		t.Fatal("fresh resource should be reused")
	}

	time.Sleep(40 * time.Millisecond)
	second := Load(c, "k", fetch)
	if second.shared == first.shared {
		t.Fatal("stale resource should be refetched")
	}
	waitDone(t, second)
	if second.Data() != 2 {
		t.Fatalf("Data() = %d, want 2", second.Data())
	}
}

func TestCache_CloseAbortsFetches(t *testing.T) {
	c := NewCache(context.Background())
	r := Load(c, "slow", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	c.Close()
	waitDone(t, r)

	if !r.IsError() || !errors.Is(r.Err(), context.Canceled) {
		t.Fatalf("State() = %v, Err() = %v", r.State(), r.Err())
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after Close", c.Len())
	}
}

func TestAbort_CancelsWhenLastHandleLeaves(t *testing.T) {
	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-ctx.Done()
		return "", ctx.Err()
	}

	c := NewCache(context.Background())
	a := Load(c, "k", fetch)
	b := Load(c, "k", fetch)

	a.Abort()
	a.Abort()
	select {
	case <-b.Done():
		t.Fatal("fetch canceled while another handle still waits on it")
	case <-time.After(20 * time.Millisecond):
	}

	b.Abort()
	waitDone(t, b)
	if !b.IsError() || !errors.Is(b.Err(), context.Canceled) {
		t.Fatalf("State() = %v, Err() = %v", b.State(), b.Err())
	}

	again := Load(c, "k", fetch)
	if again.shared == a.shared {
		t.Fatal("an abandoned fetch should not be joined")
	}
	again.Abort()
	waitDone(t, again)
	if calls.Load() != 2 {
		t.Fatalf("fetch calls = %d, want 2", calls.Load())
	}
}

func TestLoad_JoiningMergesOptions(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	boom := errors.New("boom")
	fetch := func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			<-release
		}
		return "", boom
	}
	var errs atomic.Int32
	count := func(error) { errs.Add(1) }

	c := NewCache(context.Background())
	first := Load(c, "k", fetch, OnError(count))
	second := Load(c, "k", fetch, WithRetry(2, time.Millisecond), OnError(count))
	close(release)
	waitDone(t, first)

	if first.Attempts() != 3 || second.Attempts() != 3 {
		t.Fatalf("Attempts() = %d, want 3", first.Attempts())
	}
	if errs.Load() != 2 {
		t.Fatalf("OnError calls = %d, want 2", errs.Load())
	}
}

func TestMatch(t *testing.T) {
	handlers := func() []Handler[string] {
		return []Handler[string]{
			OnLoading[string](func() *vdom.VNode { return vdom.Text("loading") }),
			OnFailed[string](func(err error) *vdom.VNode { return vdom.Text("error: " + err.Error()) }),
			OnReady[string](func(s string) *vdom.VNode { return vdom.Text(s) }),
		}
	}

	c := NewCache(context.Background())
	release := make(chan struct{})
	r := Load(c, "k", func(context.Context) (string, error) {
		<-release
		return "hello", nil
	})
	if got := r.Match(handlers()...).Text; got != "loading" {
		t.Fatalf("Match while loading = %q", got)
	}
	close(release)
	waitDone(t, r)
	if got := r.Match(handlers()...).Text; got != "hello" {
		t.Fatalf("Match when ready = %q", got)
	}

	bad := Load(c, "bad", func(context.Context) (string, error) { return "", errors.New("nope") })
	waitDone(t, bad)
	if got := bad.Match(handlers()...).Text; got != "error: nope" {
		t.Fatalf("Match on error = %q", got)
	}
}

func TestResource_SuspendsRender(t *testing.T) {
	c := NewCache(context.Background())
	var calls atomic.Int32
	user := func() vdom.Component {
		return vdom.Func(func(vdom.Scope) (*vdom.VNode, error) {
			name, err := Load(c, "user", func(context.Context) (string, error) {
				calls.Add(1)
				time.Sleep(5 * time.Millisecond)
				return "Ada", nil
			}).Read()
			if err != nil {
				return nil, err
			}
			return vdom.Span(name), nil
		})
	}
	root := vdom.Suspense(vdom.Text("loading"), vdom.Div(user(), user()))

	got, err := suspense.RenderToStaticMarkup(context.Background(), root,
		suspense.Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if want := "<div><span>Ada</span><span>Ada</span></div>"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if calls.Load() != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls.Load())
	}
}

func TestResource_ClientOnlyRendersFallback(t *testing.T) {
	c := NewCache(context.Background())
	var calls atomic.Int32
	widget := vdom.Func(func(vdom.Scope) (*vdom.VNode, error) {
		_, err := Load(c, "map", func(context.Context) (string, error) {
			calls.Add(1)
			return "map", nil
		}, WithClientOnly()).Read()
		if err != nil {
			return nil, err
		}
		return vdom.Text("map"), nil
	})
	root := vdom.Suspense(vdom.P("map loads in the browser"), widget)

	got, err := suspense.RenderToStaticMarkup(context.Background(), root,
		suspense.Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if got != "<p>map loads in the browser</p>" {
		t.Fatalf("got %q", got)
	}
	if calls.Load() != 0 {
		t.Fatal("client-only fetcher should not run on the server")
	}
}

func TestResource_SharedKeyAcrossBoundaries(t *testing.T) {
	tests := []struct {
		name string
		fast bool
	}{
		{name: "normal"},
		{name: "fallback fast", fast: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCache(context.Background())
			var calls atomic.Int32
			user := func() vdom.Component {
				return vdom.Func(func(vdom.Scope) (*vdom.VNode, error) {
					name, err := Load(c, "user", func(ctx context.Context) (string, error) {
						calls.Add(1)
						select {
						case <-time.After(20 * time.Millisecond):
							return "Ada", nil
						case <-ctx.Done():
							return "", ctx.Err()
						}
					}).Read()
					if err != nil {
						return nil, err
					}
					return vdom.Span(name), nil
				})
			}
			clientOnly := vdom.Func(func(vdom.Scope) (*vdom.VNode, error) {
				return nil, suspense.Suspend(suspense.NewClientOnly())
			})
			root := vdom.Div(
				vdom.Suspense(vdom.Text("map"), user(), clientOnly),
				vdom.Suspense(vdom.Text("loading"), user()),
			)

			got, err := suspense.RenderToStaticMarkup(context.Background(), root,
				suspense.Config{FallbackFast: tt.fast, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
			if err != nil {
				t.Fatalf("render error = %v", err)
			}
			if want := "<div>map<span>Ada</span></div>"; got != want {
				t.Fatalf("got %q, want %q", got, want)
			}
		})
	}
}

func TestResource_SharedKeySurvivesFallbackOfLaterBoundary(t *testing.T) {
	c := NewCache(context.Background())
	var calls atomic.Int32
	user := func() vdom.Component {
		return vdom.Func(func(vdom.Scope) (*vdom.VNode, error) {
			name, err := Load(c, "user", func(ctx context.Context) (string, error) {
				calls.Add(1)
				select {
				case <-time.After(20 * time.Millisecond):
					return "Ada", nil
				case <-ctx.Done():
					return "", ctx.Err()
				}
			}).Read()
			if err != nil {
				return nil, err
			}
			return vdom.Span(name), nil
		})
	}
	clientOnly := vdom.Func(func(vdom.Scope) (*vdom.VNode, error) {
		return nil, suspense.Suspend(suspense.NewClientOnly())
	})
	root := vdom.Div(
		vdom.Suspense(vdom.Text("loading"), user()),
		vdom.Suspense(vdom.Text("map"), user(), clientOnly),
	)

	got, err := suspense.RenderToStaticMarkup(context.Background(), root,
		suspense.Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if want := "<div><span>Ada</span>map</div>"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if calls.Load() != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls.Load())
	}
}
