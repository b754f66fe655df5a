package ui

import (
	"fmt"
	"html/template"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// renderPresentation turns the embedded Markdown into the landing page body
func renderPresentation() (template.HTML, error) {
	source, err := embeddedFiles.ReadFile("content/presentation.md")
	if err != nil {
		return "", fmt.Errorf("failed to read presentation: %w", err)
	}
	return markdownHTML(source), nil
}

func markdownHTML(source []byte) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(source)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	// the source is compiled in, never user input
	return template.HTML(markdown.Render(doc, renderer))
}
