package render

import (
	"io"
	"strings"
)

// textEntities maps the bytes escaped in text content. Quotes are included
// so escaped text can also be placed in the document shell's attributes.
var textEntities = [256]string{
	'&':  "&amp;",
	'<':  "&lt;",
	'>':  "&gt;",
	'"':  "&quot;",
	'\'': "&#39;",
}

// attrEntities additionally escapes whitespace that attribute
// normalization would otherwise collapse.
var attrEntities = func() [256]string {
	t := textEntities
	t['\n'] = "&#10;"
	t['\r'] = "&#13;"
	t['\t'] = "&#9;"
	return t
}()

// writeEscaped writes s to w, replacing every byte that has an entry in
// table. Escaped bytes are all ASCII, so multi-byte runes pass through.
func writeEscaped(w io.StringWriter, s string, table *[256]string) error {
	last := 0
	for i := 0; i < len(s); i++ {
		entity := table[s[i]]
		if entity == "" {
			continue
		}
		if _, err := w.WriteString(s[last:i]); err != nil {
			return err
		}
		if _, err := w.WriteString(entity); err != nil {
			return err
		}
		last = i + 1
	}
	_, err := w.WriteString(s[last:])
	return err
}

// escapeString returns s itself when nothing needs escaping.
func escapeString(s string, table *[256]string) string {
	i := 0
	for i < len(s) && table[s[i]] == "" {
		i++
	}
	if i == len(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	b.WriteString(s[:i])
	_ = writeEscaped(&b, s[i:], table)
	return b.String()
}

// escapeHTML escapes text for HTML content.
func escapeHTML(s string) string { return escapeString(s, &textEntities) }

// escapeAttr escapes text for a double-quoted attribute value.
func escapeAttr(s string) string { return escapeString(s, &attrEntities) }
