// Package markdown renders bot reply text for terminal display.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// Renderer wraps glamour at a fixed wrap width. Messages are immutable once
// committed, so rendered output is cached by message id.
type Renderer struct {
	glamour *glamour.TermRenderer
	width   int
	cache   map[string]string
}

// NewRenderer creates a renderer wrapping at width columns.
func NewRenderer(width int) (*Renderer, error) {
	gr, err := glamour.NewTermRenderer(
		glamour.WithStyles(customStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		glamour: gr,
		width:   width,
		cache:   map[string]string{},
	}, nil
}

// Render renders markdown content. Pass the message id as the cache key, or
// "" to bypass the cache. Render errors fall back to the raw content.
func (r *Renderer) Render(id, content string) string {
	if id != "" {
		if rendered, ok := r.cache[id]; ok {
			return rendered
		}
	}
	rendered, err := r.glamour.Render(content)
	if err != nil {
		return content
	}
	rendered = strings.Trim(rendered, "\n")
	if id != "" {
		r.cache[id] = rendered
	}
	return rendered
}

// SetWidth rebuilds the renderer at a new wrap width, invalidating the
// cache.
func (r *Renderer) SetWidth(width int) error {
	if r.width == width {
		return nil
	}
	rebuilt, err := NewRenderer(width)
	if err != nil {
		return err
	}
	*r = *rebuilt
	return nil
}

// customStyle strips margins and prefixes so rendered replies sit flush in
// the thread bubble.
func customStyle() ansi.StyleConfig {
	style := styles.DraculaStyleConfig
	zero := uint(0)
	style.Document.Margin = &zero
	style.CodeBlock.Margin = &zero
	style.CodeBlock.Indent = &zero
	style.CodeBlock.Prefix = ""
	style.CodeBlock.BlockPrefix = ""

	style.Code.Margin = &zero
	style.Code.Indent = &zero
	style.Code.Prefix = ""
	style.Code.Suffix = ""

	style.Paragraph.BlockPrefix = ""
	style.Paragraph.BlockSuffix = ""

	return style
}
