package suspense

import (
	"github.com/vango-dev/suspense/pkg/render"
	"github.com/vango-dev/suspense/pkg/vdom"
)

// nodeID addresses a node in the tree arena.
type nodeID int32

const (
	noNode nodeID = -1
	rootID nodeID = 0
)

type nodeKind uint8

const (
	kindRoot nodeKind = iota
	kindText
	kindBoundary
	kindDeferred
	kindFallback
)

func (k nodeKind) String() string {
	switch k {
	case kindRoot:
		return "root"
	case kindText:
		return "text"
	case kindBoundary:
		return "boundary"
	case kindDeferred:
		return "deferred"
	case kindFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// node is one entry of the boundary tree. Which fields are meaningful
// depends on kind.
type node struct {
	kind     nodeKind
	parent   nodeID
	children []nodeID

	// text holds the accumulated markup of a text node.
	text []byte

	// enclosing is the nearest boundary above a boundary or deferred node.
	enclosing nodeID

	// snapshot is the evaluator state at the point the node was created.
	// It is dropped once nothing can resume from it.
	snapshot *render.State

	// Boundary and fallback fields.
	fallback         *vdom.VNode
	frame            *render.Frame
	suspended        bool
	suspendedAbove   bool
	containsDeferred bool
	discarded        []nodeID

	// Deferred fields.
	element  *vdom.VNode
	deferred *deferredValue
	resolved bool
	pending  bool
	stop     chan struct{}

	// detached is set on everything below a boundary that became a fallback.
	detached bool
}

// tree is an arena of nodes. Parents own their children; parent links are
// plain handles.
type tree struct {
	nodes []*node
}

func newTree() *tree {
	return &tree{nodes: []*node{{kind: kindRoot, parent: noNode, enclosing: noNode}}}
}

func (t *tree) get(id nodeID) *node {
	return t.nodes[id]
}

// add appends n as the last child of parent.
func (t *tree) add(parent nodeID, n *node) nodeID {
	id := nodeID(len(t.nodes))
	n.parent = parent
	t.nodes = append(t.nodes, n)
	p := t.nodes[parent]
	p.children = append(p.children, id)
	return id
}

// appendText adds p to parent's trailing text node, creating one if the
// last child is not text.
func (t *tree) appendText(parent nodeID, p []byte) {
	if len(p) == 0 {
		return
	}
	par := t.nodes[parent]
	if n := len(par.children); n > 0 {
		last := t.nodes[par.children[n-1]]
		if last.kind == kindText {
			last.text = append(last.text, p...)
			return
		}
	}
	text := make([]byte, len(p))
	copy(text, p)
	t.add(parent, &node{kind: kindText, text: text, enclosing: noNode})
}

// toFallback turns a boundary into a fallback node. Its children move to
// the discarded list and are marked detached; visit is called for each of
// them and their descendants.
func (t *tree) toFallback(id nodeID, visit func(nodeID, *node)) {
	b := t.nodes[id]
	b.kind = kindFallback
	b.discarded = b.children
	b.children = nil
	b.frame = nil
	for _, c := range b.discarded {
		t.detach(c, visit)
	}
}

func (t *tree) detach(id nodeID, visit func(nodeID, *node)) {
	n := t.nodes[id]
	n.detached = true
	if visit != nil {
		visit(id, n)
	}
	for _, c := range n.children {
		t.detach(c, visit)
	}
	for _, c := range n.discarded {
		t.detach(c, visit)
	}
}
