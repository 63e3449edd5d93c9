package suspense

import (
	"context"
	"log/slog"

	"github.com/vango-dev/suspense/pkg/render"
	"github.com/vango-dev/suspense/pkg/vdom"
)

type frameRole uint8

const (
	roleBoundary frameRole = iota
	roleDeferred
	roleFallback
)

// frameTag marks evaluator frames that own a tree node.
type frameTag struct {
	id   nodeID
	role frameRole
}

// renderStats are the counters reported once a render finishes.
type renderStats struct {
	cycles    int
	deferred  int
	settled   int
	aborted   int
	fallbacks int
}

// driver owns one render call: the tree, the evaluator, and the state that
// ties them together. Everything but the watcher goroutines runs on the
// goroutine that called run.
type driver struct {
	ctx    context.Context
	static bool
	fast   bool
	log    *slog.Logger

	tree *tree
	ev   *render.Evaluator
	shim *interceptor

	cursor      nodeID
	boundary    nodeID
	outstanding int
	queue       []nodeID
	terminal    bool
	settled     chan nodeID

	stats renderStats
}

func newDriver(ctx context.Context, static, fast bool, log *slog.Logger) *driver {
	d := &driver{
		ctx:      ctx,
		static:   static,
		fast:     fast,
		log:      log,
		tree:     newTree(),
		shim:     &interceptor{},
		cursor:   rootID,
		boundary: noNode,
		settled:  make(chan nodeID),
	}
	d.ev = render.NewEvaluator(ctx, static, render.Hooks{
		Intercept:   d.shim.intercept,
		FrameClosed: d.frameClosed,
	})
	// Content renders out of document order, so the serializer places the
	// root marker.
	d.ev.SetRootPending(false)
	return d
}

// Write collects evaluator output under the cursor.
func (d *driver) Write(p []byte) (int, error) {
	d.tree.appendText(d.cursor, p)
	return len(p), nil
}

// run renders root to completion and serializes the result.
func (d *driver) run(root *vdom.VNode) (string, error) {
	d.ev.Push(nil, root)
	if err := d.cycle(); err != nil {
		return "", d.fail(failureCode(err), err)
	}

	for {
		if err := d.drainQueue(); err != nil {
			return "", d.fail(failureCode(err), err)
		}
		if d.outstanding == 0 {
			break
		}

		select {
		case id := <-d.settled:
			if err := d.resume(id); err != nil {
				return "", d.fail(failureCode(err), err)
			}
		case <-d.ctx.Done():
			return "", d.fail("E204", d.ctx.Err())
		}
	}

	d.terminal = true
	d.stopWatchers()
	return d.tree.serialize(d.static), nil
}

// cycle steps the evaluator until its stack is empty, handling interrupts
// between steps. A panicking component fails the cycle.
func (d *driver) cycle() (err error) {
	d.stats.cycles++
	defer func() {
		if r := recover(); r != nil {
			err = &RenderError{Panic: r}
		}
	}()

	for d.ev.Depth() > 0 {
		if err := d.ev.Step(d); err != nil {
			d.shim.take()
			return asRenderError(err)
		}
		if in := d.shim.take(); in != nil {
			if err := d.handle(in); err != nil {
				return err
			}
		}
	}
	d.log.Debug("render cycle complete",
		"cycle", d.stats.cycles,
		"outstanding", d.outstanding,
		"queued", len(d.queue))
	return nil
}

func (d *driver) handle(in *interrupt) error {
	switch in.kind {
	case interruptBoundary:
		d.enterBoundary(in.element)
		return nil
	case interruptDeferred:
		return d.discover(in.element, in.value)
	}
	return nil
}

// createNode appends n under the cursor.
func (d *driver) createNode(n *node) nodeID {
	id := d.tree.add(d.cursor, n)
	d.ev.ClearTextSeparator()
	return id
}

// createNodeWithState appends n under the cursor with a snapshot of the
// evaluator state and the active boundary.
func (d *driver) createNodeWithState(n *node) nodeID {
	s := d.ev.Snapshot()
	n.snapshot = &s
	n.enclosing = d.boundary
	return d.createNode(n)
}

// enterBoundary records a boundary whose children the evaluator has just
// pushed as its top frame.
func (d *driver) enterBoundary(el *vdom.VNode) {
	id := d.createNodeWithState(&node{kind: kindBoundary, fallback: el.Fallback})
	b := d.tree.get(id)
	if b.enclosing != noNode {
		p := d.tree.get(b.enclosing)
		b.suspendedAbove = p.suspended || p.suspendedAbove
	}

	top := d.ev.Top()
	top.Tag = frameTag{id: id, role: roleBoundary}
	b.frame = top

	d.cursor = id
	d.boundary = id
}

// frameClosed is the evaluator's FrameClosed hook.
func (d *driver) frameClosed(f *render.Frame) {
	tag, ok := f.Tag.(frameTag)
	if !ok {
		return
	}
	n := d.tree.get(tag.id)
	d.cursor = n.parent

	if tag.role != roleBoundary {
		return
	}

	d.boundary = n.enclosing
	n.frame = nil
	if !n.suspended {
		if !n.containsDeferred {
			n.snapshot = nil
		}
		return
	}

	d.convert(tag.id)
	if n.fallback != nil {
		d.ev.ClearTextSeparator()
		d.ev.Push(frameTag{id: tag.id, role: roleFallback}, n.fallback)
		d.cursor = tag.id
	}
}

// renderDeferred pushes the element of a resolved deferred node so that its
// content renders under the node.
func (d *driver) renderDeferred(id nodeID) {
	n := d.tree.get(id)
	d.ev.Push(frameTag{id: id, role: roleDeferred}, n.element)
	d.cursor = id
}

// watch forwards the settlement of a pending deferred node to the render
// loop. The goroutine exits on settlement or when the node stops waiting.
func (d *driver) watch(id nodeID) {
	n := d.tree.get(id)
	n.stop = make(chan struct{})
	done := n.deferred.src.Done()
	stop := n.stop
	go func() {
		select {
		case <-done:
			select {
			case d.settled <- id:
			case <-stop:
			}
		case <-stop:
		}
	}()
}

func (d *driver) unwatch(n *node) {
	if n.stop != nil {
		close(n.stop)
		n.stop = nil
	}
}

func (d *driver) stopWatchers() {
	for _, n := range d.tree.nodes {
		d.unwatch(n)
	}
}

// resume continues rendering a deferred node that has settled.
func (d *driver) resume(id nodeID) error {
	n := d.tree.get(id)
	n.stop = nil

	if d.terminal || n.resolved || n.detached || !n.pending {
		if _, failed, cause := n.deferred.outcome(); failed {
			d.log.Debug("superseded deferred value rejected", "node", id, "error", cause)
		} else {
			d.log.Debug("superseded deferred value settled", "node", id)
		}
		return nil
	}

	n.pending = false
	n.resolved = true
	d.outstanding--
	d.stats.settled++

	if _, failed, cause := n.deferred.outcome(); failed {
		return &RejectionError{Err: cause}
	}

	if n.snapshot != nil {
		d.ev.Restore(*n.snapshot)
	} else {
		d.ev.Restore(render.State{})
	}
	d.boundary = n.enclosing
	d.renderDeferred(id)
	return d.cycle()
}

// drainQueue converts queued boundaries and renders their fallbacks.
func (d *driver) drainQueue() error {
	for len(d.queue) > 0 {
		id := d.queue[0]
		d.queue = d.queue[1:]

		b := d.tree.get(id)
		if b.kind != kindBoundary || b.detached {
			continue
		}
		d.convert(id)
		if b.fallback == nil {
			continue
		}

		if b.snapshot != nil {
			d.ev.Restore(*b.snapshot)
		} else {
			d.ev.Restore(render.State{})
		}
		d.cursor = id
		d.boundary = b.enclosing
		d.ev.Push(frameTag{id: id, role: roleFallback}, b.fallback)
		if err := d.cycle(); err != nil {
			return err
		}
	}
	return nil
}

// fail aborts everything still outstanding and returns the coded error.
func (d *driver) fail(code string, err error) error {
	d.terminal = true
	d.abortOutstanding(rootID)
	d.queue = nil
	d.stopWatchers()
	d.log.Debug("render failed", "code", code, "error", err)
	return fatal(code, err)
}

// abortOutstanding aborts unresolved deferred nodes below id, without
// descending past suspended boundaries.
func (d *driver) abortOutstanding(id nodeID) {
	for _, c := range d.tree.get(id).children {
		n := d.tree.get(c)
		switch n.kind {
		case kindDeferred:
			if !n.resolved {
				d.abortNode(c)
			}
		case kindBoundary:
			if n.suspended {
				continue
			}
		}
		d.abortOutstanding(c)
	}
}

func asRenderError(err error) error {
	switch err.(type) {
	case *UnknownSuspendError, *RenderError, *RejectionError:
		return err
	}
	return &RenderError{Err: err}
}
