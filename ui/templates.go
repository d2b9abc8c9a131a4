package ui

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"sessionresults/domain/results"
)

// renderMarkdown converts instructor-written markdown to HTML with raw HTML and unsafe link schemes stripped
func renderMarkdown(md string) template.HTML {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	flags := html.CommonFlags | html.SkipHTML | html.Safelink |
		html.HrefTargetBlank | html.NofollowLinks | html.NoreferrerLinks | html.NoopenerLinks
	renderer := html.NewRenderer(html.RendererOptions{Flags: flags})
	return template.HTML(markdown.ToHTML([]byte(md), p, renderer))
}

func variantTitle(v results.DialogVariant) string {
	if v == results.DialogUnpublish {
		return "Unpublish"
	}
	return "Publish"
}

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"markdown":     renderMarkdown,
		"variantTitle": variantTitle,
		"add":          func(a, b int) int { return a + b },
		"lower":        strings.ToLower,
		"pathEscape":   url.PathEscape,
	}
	return template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
}
