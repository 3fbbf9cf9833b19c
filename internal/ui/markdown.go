package ui

import (
	glamour "charm.land/glamour/v2"
)

// RenderMarkdown renders markdown text using glamour with the terminal's
// auto-detected style. Returns the original text if colors are disabled or
// rendering fails, so callers never need a fallback path.
// Word wraps at terminal width, capped at 100 columns for readability.
func RenderMarkdown(markdown string) string {
	if !ShouldUseColor() {
		return markdown
	}

	const maxReadableWidth = 100
	wrapWidth := TerminalWidth(80)
	if wrapWidth > maxReadableWidth {
		wrapWidth = maxReadableWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithEnvironmentConfig(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}

	return rendered
}
