package vdom

import "strings"

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute (named to avoid conflict with Style element).
func StyleAttr(style string) Attr { return attr("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// AriaHidden sets the aria-hidden attribute.
func AriaHidden(hidden bool) Attr { return attr("aria-hidden", hidden) }

// AriaBusy sets the aria-busy attribute, useful on suspense fallbacks.
func AriaBusy(busy bool) Attr { return attr("aria-busy", busy) }

func Hidden() Attr                { return attr("hidden", true) }
func TitleAttr(title string) Attr { return attr("title", title) }
func Lang(lang string) Attr       { return attr("lang", lang) }

// Links

func Href(url string) Attr      { return attr("href", url) }
func Target(target string) Attr { return attr("target", target) }
func Rel(rel string) Attr       { return attr("rel", rel) }

// Forms

func Name(name string) Attr        { return attr("name", name) }
func Value(value string) Attr      { return attr("value", value) }
func Type(t string) Attr           { return attr("type", t) }
func Placeholder(text string) Attr { return attr("placeholder", text) }
func Disabled() Attr               { return attr("disabled", true) }
func Checked() Attr                { return attr("checked", true) }
func Selected() Attr               { return attr("selected", true) }
func For(id string) Attr           { return attr("for", id) }

// Media

func Src(url string) Attr  { return attr("src", url) }
func Alt(text string) Attr { return attr("alt", text) }
func Width(w int) Attr     { return attr("width", w) }
func Height(h int) Attr    { return attr("height", h) }

// SVG

func ViewBox(box string) Attr { return attr("viewBox", box) }
func Fill(color string) Attr  { return attr("fill", color) }
func D(path string) Attr      { return attr("d", path) }

// DangerouslySetInnerHTML renders html unescaped as the element's only
// content. Children are ignored.
func DangerouslySetInnerHTML(html string) Attr {
	return attr("dangerouslySetInnerHTML", html)
}

// Attribute creates an arbitrary attribute.
func Attribute(key string, value any) Attr { return attr(key, value) }
