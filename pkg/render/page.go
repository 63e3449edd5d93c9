package render

import (
	"fmt"
	"io"
	"net/http"
)

// Page describes the document shell around rendered body markup.
type Page struct {
	// Title is the page title
	Title string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string

	// Meta contains meta tags for the page
	Meta []MetaTag

	// StyleSheets contains paths to external stylesheets
	StyleSheets []string

	// Scripts are written at the end of the body.
	Scripts []ScriptTag
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name     string // name attribute
	Content  string // content attribute
	Property string // property attribute (for OpenGraph)
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string // src attribute
	Defer  bool   // defer attribute
	Module bool   // type="module"
	Inline string // inline script content
}

// DocumentWriter writes a complete HTML document in three parts so the head
// can reach the client while the body is still being rendered. If the
// underlying writer implements http.Flusher it is flushed after each part.
type DocumentWriter struct {
	w       io.Writer
	flusher http.Flusher
}

// NewDocumentWriter creates a DocumentWriter.
func NewDocumentWriter(w io.Writer) *DocumentWriter {
	flusher, _ := w.(http.Flusher)
	return &DocumentWriter{w: w, flusher: flusher}
}

// WriteHead writes the doctype, the html open tag, the head and the body
// open tag.
func (d *DocumentWriter) WriteHead(page Page) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := fmt.Fprintf(d.w, "<!DOCTYPE html>\n<html lang=\"%s\">\n<head>\n", escapeAttr(lang)); err != nil {
		return err
	}
	if _, err := io.WriteString(d.w, `  <meta charset="utf-8">`+"\n"); err != nil {
		return err
	}
	if page.Title != "" {
		if _, err := fmt.Fprintf(d.w, "  <title>%s</title>\n", escapeHTML(page.Title)); err != nil {
			return err
		}
	}
	for _, meta := range page.Meta {
		if err := writeMetaTag(d.w, meta); err != nil {
			return err
		}
	}
	for _, href := range page.StyleSheets {
		if _, err := fmt.Fprintf(d.w, `  <link rel="stylesheet" href="%s">`+"\n", escapeAttr(href)); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(d.w, "</head>\n<body>\n"); err != nil {
		return err
	}

	d.flush()
	return nil
}

// WriteBody writes already rendered body markup verbatim.
func (d *DocumentWriter) WriteBody(body string) error {
	if _, err := io.WriteString(d.w, body); err != nil {
		return err
	}
	d.flush()
	return nil
}

// Close writes the page scripts and closes the document.
func (d *DocumentWriter) Close(page Page) error {
	for _, script := range page.Scripts {
		if err := writeScriptTag(d.w, script); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(d.w, "</body>\n</html>\n"); err != nil {
		return err
	}
	d.flush()
	return nil
}

func (d *DocumentWriter) flush() {
	if d.flusher != nil {
		d.flusher.Flush()
	}
}

// writeMetaTag renders a meta element.
func writeMetaTag(w io.Writer, meta MetaTag) error {
	if _, err := io.WriteString(w, "  <meta"); err != nil {
		return err
	}
	if meta.Name != "" {
		if _, err := fmt.Fprintf(w, ` name="%s"`, escapeAttr(meta.Name)); err != nil {
			return err
		}
	}
	if meta.Property != "" {
		if _, err := fmt.Fprintf(w, ` property="%s"`, escapeAttr(meta.Property)); err != nil {
			return err
		}
	}
	if meta.Content != "" {
		if _, err := fmt.Fprintf(w, ` content="%s"`, escapeAttr(meta.Content)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">\n")
	return err
}

// writeScriptTag renders a script element.
func writeScriptTag(w io.Writer, script ScriptTag) error {
	if _, err := io.WriteString(w, "  <script"); err != nil {
		return err
	}
	if script.Src != "" {
		if _, err := fmt.Fprintf(w, ` src="%s"`, escapeAttr(script.Src)); err != nil {
			return err
		}
	}
	if script.Module {
		if _, err := io.WriteString(w, ` type="module"`); err != nil {
			return err
		}
	}
	if script.Defer {
		if _, err := io.WriteString(w, " defer"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, ">%s</script>\n", script.Inline); err != nil {
		return err
	}
	return nil
}

// FlushableWriter wraps an io.Writer with a flush counter.
// This is useful for testing streaming behavior without using http.ResponseWriter.
type FlushableWriter struct {
	io.Writer
	FlushCount int
}

// Flush implements http.Flusher.
func (w *FlushableWriter) Flush() {
	w.FlushCount++
}
