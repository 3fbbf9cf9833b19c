package ui

import (
	"os"
	"strings"
	"testing"
)

func TestRenderMarkdownPassthroughWithoutColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	input := "# Heading\n\nbody text\n"
	if got := RenderMarkdown(input); got != input {
		t.Errorf("RenderMarkdown() = %q, want unchanged input", got)
	}
}

func TestRenderMarkdownRendersWhenColorForced(t *testing.T) {
	t.Setenv("CLICOLOR_FORCE", "1")
	unsetForTest(t, "NO_COLOR")
	unsetForTest(t, "CLICOLOR")

	got := RenderMarkdown("# Heading\n\nbody text\n")
	if got == "" {
		t.Fatal("RenderMarkdown() returned empty output")
	}
	if !strings.Contains(got, "Heading") {
		t.Errorf("RenderMarkdown() = %q, want output containing %q", got, "Heading")
	}
}

// unsetForTest removes an environment variable for the duration of the test,
// using t.Setenv first so the original value is restored on cleanup.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}
