package suspense

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDeferred_SettlesOnce(t *testing.T) {
	d := New()
	if _, err := d.Result(); !errors.Is(err, ErrNotSettled) {
		t.Fatalf("Result() before settling = %v, want ErrNotSettled", err)
	}
	if !d.Resolve("a") {
		t.Fatal("first Resolve should settle")
	}
	if d.Resolve("b") {
		t.Fatal("second Resolve should not settle")
	}
	if d.Reject(errors.New("late")) {
		t.Fatal("Reject after Resolve should not settle")
	}
	v, err := d.Result()
	if err != nil || v != "a" {
		t.Fatalf("Result() = %v, %v; want a, nil", v, err)
	}
	select {
	case <-d.Done():
	default:
		t.Fatal("Done should be closed")
	}
}

func TestDeferred_NilRejectionIsFailure(t *testing.T) {
	d := New()
	d.Reject(nil)

	_, err := d.Result()
	if err == nil {
		t.Fatal("Reject(nil) should surface as a non-nil error")
	}
	dv, _ := adapt(d)
	_, failed, cause := dv.outcome()
	if !failed {
		t.Fatal("outcome should report failure")
	}
	if cause != nil {
		t.Fatalf("cause = %v, want nil", cause)
	}
}

func TestDeferred_AbortHooksRunOnce(t *testing.T) {
	var calls atomic.Int32
	d := New(OnAbort(func() { calls.Add(1) }), OnAbort(func() { calls.Add(10) }))
	d.Abort()
	d.Abort()
	if got := calls.Load(); got != 11 {
		t.Fatalf("hook calls = %d, want 11", got)
	}
	if !d.Aborted() {
		t.Fatal("Aborted() should be true")
	}
	select {
	case <-d.Done():
		t.Fatal("Abort should not settle the value")
	default:
	}
}

func TestGo_AbortCancelsContext(t *testing.T) {
	started := make(chan struct{})
	d := Go(context.Background(), func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	<-started
	d.Abort()

	select {
	case <-d.Done():
	case <-time.After(time.Second):
		t.Fatal("Go did not settle after Abort")
	}
	_, err := d.Result()
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Result() error = %v, want context.Canceled", err)
	}
}

func TestGo_Resolves(t *testing.T) {
	d := Go(context.Background(), func(context.Context) (any, error) {
		return 42, nil
	})
	<-d.Done()
	v, err := Read[int](d)
	if err != nil || v != 42 {
		t.Fatalf("Read = %v, %v; want 42, nil", v, err)
	}
}

func TestRead(t *testing.T) {
	t.Run("pending suspends", func(t *testing.T) {
		d := New()
		_, err := Read[string](d)
		if !IsSuspend(err) {
			t.Fatalf("err = %v, want suspend signal", err)
		}
	})

	t.Run("rejected suspends", func(t *testing.T) {
		d := New()
		d.Reject(errors.New("boom"))
		_, err := Read[string](d)
		if !IsSuspend(err) {
			t.Fatalf("err = %v, want suspend signal", err)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := Read[string](Resolved(1))
		if err == nil || IsSuspend(err) {
			t.Fatalf("err = %v, want type error", err)
		}
	})

	t.Run("nil value", func(t *testing.T) {
		v, err := Read[*int](Resolved(nil))
		if err != nil || v != nil {
			t.Fatalf("Read = %v, %v; want nil, nil", v, err)
		}
	})
}

// plainAwaitable has no abort or client-only surface.
type plainAwaitable struct {
	done chan struct{}
}

func (p plainAwaitable) Done() <-chan struct{} { return p.done }
func (p plainAwaitable) Result() (any, error)  { return "plain", nil }

func TestAdapt(t *testing.T) {
	if _, ok := adapt("not deferred"); ok {
		t.Fatal("adapt should reject non-awaitables")
	}

	dv, ok := adapt(plainAwaitable{done: make(chan struct{})})
	if !ok {
		t.Fatal("adapt should accept any Awaitable")
	}
	dv.abort()
	if dv.clientOnly || dv.settled() {
		t.Fatal("plain awaitable should be pending and server-renderable")
	}

	var calls atomic.Int32
	dv, _ = adapt(NewClientOnly(OnAbort(func() { calls.Add(1) })))
	if !dv.clientOnly {
		t.Fatal("client-only flag lost")
	}
	dv.abort()
	dv.abort()
	if calls.Load() != 1 {
		t.Fatalf("abort calls = %d, want 1", calls.Load())
	}
}
