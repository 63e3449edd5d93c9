package suspense

import "github.com/vango-dev/suspense/pkg/vdom"

// discover handles a component that suspended on dv. The owner of the new
// deferred node is the active boundary.
func (d *driver) discover(el *vdom.VNode, dv *deferredValue) error {
	d.stats.deferred++

	owner := d.boundary
	if owner == noNode {
		dv.abort()
		d.stats.aborted++
		return ErrMissingBoundary
	}

	b := d.tree.get(owner)
	if b.suspended || b.suspendedAbove {
		dv.abort()
		d.stats.aborted++
		if !d.fast {
			d.createNode(&node{kind: kindDeferred, enclosing: owner, resolved: true})
		}
		return nil
	}

	id := d.createNodeWithState(&node{kind: kindDeferred, element: el, deferred: dv})
	n := d.tree.get(id)
	d.markContainsDeferred(owner)

	if dv.clientOnly {
		dv.abort()
		d.stats.aborted++
		n.resolved = true
		d.log.Debug("client-only content suspends boundary", "boundary", owner, "node", id)
		d.suspend(owner)
		return nil
	}

	if dv.settled() {
		n.resolved = true
		d.stats.settled++
		if _, failed, cause := dv.outcome(); failed {
			return &RejectionError{Err: cause}
		}
		d.renderDeferred(id)
		return nil
	}

	n.pending = true
	d.outstanding++
	d.watch(id)
	return nil
}

// markContainsDeferred flags id and every boundary enclosing it.
func (d *driver) markContainsDeferred(id nodeID) {
	for id != noNode {
		b := d.tree.get(id)
		b.containsDeferred = true
		id = b.enclosing
	}
}

// suspend commits boundary id to its fallback and cascades to the part of
// its subtree that has already been built.
func (d *driver) suspend(id nodeID) {
	b := d.tree.get(id)
	if b.suspended {
		return
	}
	b.suspended = true

	switch {
	case d.ev.OnStack(b.frame) && d.fast:
		d.ev.ExhaustTo(b.frame)
	default:
		d.queue = append(d.queue, id)
	}
	d.cascade(id)
}

func (d *driver) cascade(id nodeID) {
	for _, c := range d.tree.get(id).children {
		n := d.tree.get(c)
		switch n.kind {
		case kindDeferred:
			if !n.resolved {
				d.abortNode(c)
			}
		case kindBoundary:
			if n.containsDeferred {
				d.suspend(c)
			} else {
				d.markSuspendedAbove(c)
			}
		}
	}
}

// markSuspendedAbove flags a boundary with no deferred descendants so that
// anything suspending under it later is aborted on contact.
func (d *driver) markSuspendedAbove(id nodeID) {
	b := d.tree.get(id)
	b.suspendedAbove = true
	for _, c := range b.children {
		if d.tree.get(c).kind == kindBoundary {
			d.markSuspendedAbove(c)
		}
	}
}

// abortNode aborts the value of an unresolved deferred node and stops
// waiting for it.
func (d *driver) abortNode(id nodeID) {
	n := d.tree.get(id)
	if n.deferred != nil {
		n.deferred.abort()
	}
	n.resolved = true
	d.stats.aborted++
	if n.pending {
		n.pending = false
		d.outstanding--
		d.unwatch(n)
	}
}

// convert replaces boundary id with a fallback node. Deferred values still
// pending anywhere in the discarded subtree are aborted.
func (d *driver) convert(id nodeID) {
	if d.tree.get(id).kind != kindBoundary {
		return
	}
	d.tree.toFallback(id, func(c nodeID, n *node) {
		if n.kind == kindDeferred && !n.resolved {
			d.abortNode(c)
		}
		n.snapshot = nil
	})
	d.stats.fallbacks++
	d.log.Debug("boundary converted to fallback", "boundary", id)
}
