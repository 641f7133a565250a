// Package content turns stored post bodies into HTML that is safe to embed.
package content

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown, or HTML from a rich-text editor, into
// sanitized HTML.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewRenderer() *Renderer {
	md := goldmark.New(
		// editor output is raw HTML; bluemonday strips anything unsafe afterwards
		goldmark.WithRendererOptions(html.WithUnsafe()),
		goldmark.WithExtensions(extension.GFM),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "span", "p")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &Renderer{md: md, policy: policy}
}

// Render returns the body as HTML ready for a template.
func (r *Renderer) Render(body string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		// fall back to escaping the raw text
		return template.HTML(template.HTMLEscapeString(body))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

// Plain strips all markup, for previews and page titles.
func (r *Renderer) Plain(body string) string {
	return bluemonday.StrictPolicy().Sanitize(body)
}
