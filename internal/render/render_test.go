package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/forum-service/internal/render"
)

func TestMarkdown_Render(t *testing.T) {
	m := render.NewMarkdown()

	assert.Contains(t, m.Render("**bold** move"), "<strong>bold</strong>")
	assert.Contains(t, m.Render("```\nfmt.Println(1)\n```"), "<code>")
	assert.Empty(t, m.Render(""))
}

func TestMarkdown_RenderStripsScripts(t *testing.T) {
	out := render.NewMarkdown().Render("hi <script>alert(1)</script>")
	assert.NotContains(t, out, "<script")
	assert.Contains(t, out, "hi")
}

func TestMarkdown_LinksAreNofollow(t *testing.T) {
	out := render.NewMarkdown().Render("[go](https://go.dev)")
	assert.Contains(t, out, `href="https://go.dev"`)
	assert.Contains(t, out, "nofollow")
}
