package suspense

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/suspense/pkg/vdom"
)

func TestTree_AppendTextCoalesces(t *testing.T) {
	tr := newTree()
	tr.appendText(rootID, []byte("a"))
	tr.appendText(rootID, []byte("b"))
	b := tr.add(rootID, &node{kind: kindBoundary, enclosing: noNode})
	tr.appendText(rootID, []byte("c"))
	tr.appendText(rootID, nil)

	root := tr.get(rootID)
	if len(root.children) != 3 {
		t.Fatalf("children = %d, want 3", len(root.children))
	}
	if got := string(tr.get(root.children[0]).text); got != "ab" {
		t.Fatalf("first text = %q, want ab", got)
	}
	if root.children[1] != b {
		t.Fatal("boundary should stay in place")
	}
	if got := string(tr.get(root.children[2]).text); got != "c" {
		t.Fatalf("last text = %q, want c", got)
	}
}

func TestTree_ToFallbackDetaches(t *testing.T) {
	tr := newTree()
	b := tr.add(rootID, &node{kind: kindBoundary, enclosing: noNode})
	d := tr.add(b, &node{kind: kindDeferred, enclosing: b})
	inner := tr.add(d, &node{kind: kindDeferred, enclosing: b})
	tr.appendText(inner, []byte("x"))

	var visited []nodeID
	tr.toFallback(b, func(id nodeID, _ *node) { visited = append(visited, id) })

	bn := tr.get(b)
	if bn.kind != kindFallback || len(bn.children) != 0 || len(bn.discarded) != 1 {
		t.Fatalf("boundary after conversion = %+v", bn)
	}
	if len(visited) != 3 {
		t.Fatalf("visited %d nodes, want 3", len(visited))
	}
	for _, id := range visited {
		if !tr.get(id).detached {
			t.Fatalf("node %d not detached", id)
		}
	}
	if got := tr.serialize(false); got != "" {
		t.Fatalf("discarded content serialized as %q", got)
	}
}

func TestSerialize_Separators(t *testing.T) {
	tests := []struct {
		name   string
		runs   []string
		static bool
		want   string
	}{
		{name: "text then text", runs: []string{"Before", "Loaded"}, want: "Before<!-- -->Loaded"},
		{name: "static", runs: []string{"Before", "Loaded"}, static: true, want: "BeforeLoaded"},
		{name: "markup follows", runs: []string{"a", "<b>b</b>"}, want: `a<b data-vango-root="">b</b>`},
		{name: "markup precedes", runs: []string{"<br>", "x"}, want: `<br data-vango-root="">x`},
		{name: "marker once", runs: []string{"<!-- c --><p>", "a", "</p><p>b</p>"}, want: `<!-- c --><p data-vango-root="">a</p><p>b</p>`},
		{name: "marker before slash", runs: []string{"<br/>", "<hr/>"}, want: `<br data-vango-root=""/><hr/>`},
		{name: "static has no marker", runs: []string{"<br/>"}, static: true, want: "<br/>"},
		{name: "empty run", runs: []string{"a", "", "b"}, want: "a<!-- -->b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTree()
			for _, r := range tt.runs {
				// A deferred node per run keeps the runs in separate text nodes.
				id := tr.add(rootID, &node{kind: kindDeferred, enclosing: noNode})
				tr.appendText(id, []byte(r))
			}
			if got := tr.serialize(tt.static); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSerialize_Idempotent(t *testing.T) {
	root := vdom.Suspense(vdom.Text("loading"),
		vdom.Div("Before", reader(Resolved("Loaded")), vdom.Span("after")),
	)
	d := newDriver(context.Background(), false, false, slog.New(slog.NewTextHandler(io.Discard, nil)))

	html, err := d.run(root)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	first := d.tree.serialize(false)
	second := d.tree.serialize(false)
	if first != second || first != html {
		t.Fatalf("serializations differ: %q, %q, %q", html, first, second)
	}
}
