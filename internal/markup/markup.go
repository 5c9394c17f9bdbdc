// Package markup converts model-generated Markdown into the HTML fragments
// stored on postings.
package markup

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ToHTML renders a Markdown fragment as HTML. Hard line breaks are honored
// because the models emit single newlines between list items and paragraphs.
func ToHTML(md string) string {
	normalized := strings.ReplaceAll(md, "\r\n", "\n")

	// parser instances are single-use
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.HardLineBreak)
	doc := p.Parse([]byte(normalized))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return strings.TrimSpace(string(markdown.Render(doc, renderer)))
}
