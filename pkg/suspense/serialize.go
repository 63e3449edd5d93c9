package suspense

import (
	"strings"

	"github.com/vango-dev/suspense/pkg/render"
)

// serialize flattens the tree into markup in document order. Only text
// nodes contribute output; discarded children of fallbacks are skipped.
//
// Two runs from different text nodes would merge into one browser text
// node when the first ends in text and the second starts with text, so a
// separator is written between them unless static is set.
//
// Unless static is set, the first element in document order gets the root
// marker.
func (t *tree) serialize(static bool) string {
	var b strings.Builder
	var last byte
	wrote := false
	marked := static

	var walk func(id nodeID)
	walk = func(id nodeID) {
		n := t.nodes[id]
		if n.kind != kindText {
			for _, c := range n.children {
				walk(c)
			}
			return
		}
		if len(n.text) == 0 {
			return
		}
		if !static && wrote && last != '>' && n.text[0] != '<' {
			b.WriteString(render.TextSeparator)
		}
		text := n.text
		if !marked {
			if i := tagNameEnd(text); i >= 0 {
				b.Write(text[:i])
				b.WriteString(" " + render.RootAttr + `=""`)
				text = text[i:]
				marked = true
			}
		}
		b.Write(text)
		last = n.text[len(n.text)-1]
		wrote = true
	}
	walk(rootID)
	return b.String()
}

// tagNameEnd returns the offset just past the name of the first start tag
// in p, or -1 if p has none. Text is escaped, so every '<' opens markup.
func tagNameEnd(p []byte) int {
	for i := 0; i+1 < len(p); i++ {
		if p[i] != '<' || !isASCIILetter(p[i+1]) {
			continue
		}
		j := i + 2
		for j < len(p) && !strings.ContainsRune(" \t\n\r\f/>", rune(p[j])) {
			j++
		}
		return j
	}
	return -1
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
