// Package render turns user-written markdown into HTML that is safe to embed.
package render

import (
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

const extensions = blackfriday.CommonExtensions |
	blackfriday.Autolink |
	blackfriday.HardLineBreak |
	blackfriday.NoIntraEmphasis |
	blackfriday.Strikethrough |
	blackfriday.FencedCode

// Markdown renders with blackfriday and sanitizes with bluemonday's UGC policy.
// A single value is safe for concurrent use.
type Markdown struct {
	policy *bluemonday.Policy
	params blackfriday.HTMLRendererParameters
}

func NewMarkdown() *Markdown {
	return &Markdown{
		policy: bluemonday.UGCPolicy(),
		params: blackfriday.HTMLRendererParameters{
			Flags: blackfriday.UseXHTML | blackfriday.Smartypants | blackfriday.SmartypantsFractions,
		},
	}
}

func (m *Markdown) Render(md string) string {
	if md == "" {
		return ""
	}
	// the HTML renderer keeps per-document state, so it is built per call
	unsafe := blackfriday.Run([]byte(md),
		blackfriday.WithExtensions(extensions),
		blackfriday.WithRenderer(blackfriday.NewHTMLRenderer(m.params)),
	)
	return string(m.policy.SanitizeBytes(unsafe))
}
