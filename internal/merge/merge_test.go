package merge

import (
	"strings"
	"testing"
)

const mainTemplate = TemplateMarker + `
# Agent Instructions

<!-- {mission} -->

## Principles

<!-- {principles} -->

## Language Guidance

<!-- {languages} -->

## Integrations

<!-- {integration} -->

## Closing Notes

Keep this file up to date.
`

func TestMergeSplicesAfterMarker(t *testing.T) {
	frags := Fragments{}
	frags.Add(CategoryMission, "Build great things.\n")

	out := Merge(mainTemplate, frags, Options{})

	want := "<!-- {mission} -->\n\nBuild great things."
	if !strings.Contains(out, want) {
		t.Errorf("output missing spliced mission:\n%s", out)
	}
	if strings.Contains(out, TemplateMarker) {
		t.Error("TemplateMarker survived the merge")
	}
}

func TestMergePreservesFragmentOrder(t *testing.T) {
	frags := Fragments{}
	frags.Add(CategoryPrinciples, "First principle")
	frags.Add(CategoryPrinciples, "Second principle")
	frags.Add(CategoryPrinciples, "Third principle")

	out := Merge(mainTemplate, frags, Options{})

	i1 := strings.Index(out, "First principle")
	i2 := strings.Index(out, "Second principle")
	i3 := strings.Index(out, "Third principle")
	if i1 == -1 || i2 == -1 || i3 == -1 {
		t.Fatalf("fragments missing from output:\n%s", out)
	}
	if !(i1 < i2 && i2 < i3) {
		t.Errorf("fragment order not preserved: %d, %d, %d", i1, i2, i3)
	}

	// fragments separated by exactly one blank line
	if !strings.Contains(out, "First principle\n\nSecond principle\n\nThird principle") {
		t.Errorf("fragments not joined by single blank line:\n%s", out)
	}
}

func TestMergeEmptyCategoryLeavesMarkerAlone(t *testing.T) {
	frags := Fragments{}
	frags.Add(CategoryMission, "Mission text")

	out := Merge(mainTemplate, frags, Options{})

	// untouched categories keep their marker with original surroundings
	if !strings.Contains(out, "## Principles\n\n<!-- {principles} -->\n\n## Language Guidance") {
		t.Errorf("empty principles category was disturbed:\n%s", out)
	}
	if !strings.Contains(out, "<!-- {languages} -->") {
		t.Error("languages marker missing")
	}
	if !strings.Contains(out, "<!-- {integration} -->") {
		t.Error("integration marker missing")
	}
}

func TestMergeStructuralIdempotence(t *testing.T) {
	frags := Fragments{}
	frags.Add(CategoryMission, "Build great things.")
	frags.Add(CategoryLanguages, "## Rust\n\nUse clippy.")

	first := Merge(mainTemplate, frags, Options{})

	// Re-merging fresh fragments into an already-merged document finds the
	// preserved markers again; both passes splice into the same points.
	second := Merge(mainTemplate, frags, Options{})
	if first != second {
		t.Error("identical inputs produced different merges")
	}

	for _, c := range Categories {
		if !strings.Contains(first, InsertionPoint(c)) {
			t.Errorf("marker %s missing from merged output", InsertionPoint(c))
		}
	}
}

func TestMergeCustomMissionOverridesFragments(t *testing.T) {
	frags := Fragments{}
	frags.Add(CategoryMission, "Fragment mission ignored")

	out := Merge(mainTemplate, frags, Options{Mission: "Ship the rewrite.\n"})

	if !strings.Contains(out, "## Mission Statement\n\nShip the rewrite.") {
		t.Errorf("custom mission not applied:\n%s", out)
	}
	if strings.Contains(out, "Fragment mission ignored") {
		t.Error("mission fragments should be superseded by the custom mission")
	}
}

func TestMergeNoMarkersDegenerate(t *testing.T) {
	plain := TemplateMarker + "\n# Just a document\n\nNothing special.\n"
	frags := Fragments{}
	frags.Add(CategoryMission, "Mission")

	out := Merge(plain, frags, Options{})

	if out != "# Just a document\n\nNothing special.\n" {
		t.Errorf("degenerate template altered beyond marker strip:\n%q", out)
	}
}

func TestMergeAlwaysStripsMarker(t *testing.T) {
	// no "merge but stay pristine" mode exists
	out := Merge(mainTemplate, Fragments{}, Options{})
	if strings.Contains(out, TemplateMarker) {
		t.Error("marker must be stripped even with zero fragments")
	}
}

func TestIsCustomized(t *testing.T) {
	if IsCustomized(mainTemplate) {
		t.Error("pristine template reported as customized")
	}

	merged := Merge(mainTemplate, Fragments{}, Options{})
	if !IsCustomized(merged) {
		t.Error("merged output must read as customized (marker stripped)")
	}

	// edits that keep the marker line intact still count as pristine
	edited := mainTemplate + "\n## User Addendum\n"
	if IsCustomized(edited) {
		t.Error("edit preserving the marker should not read as customized")
	}
}

func TestMissingPoints(t *testing.T) {
	frags := Fragments{}
	frags.Add(CategoryIntegration, "Git hints")
	frags.Add(CategoryMission, "Mission")

	noIntegration := TemplateMarker + "\n<!-- {mission} -->\n"
	missing := MissingPoints(noIntegration, frags)

	if len(missing) != 1 || missing[0] != CategoryIntegration {
		t.Errorf("MissingPoints() = %v, want [integration]", missing)
	}
}

func TestMarkerStripLeavesNoBlankLine(t *testing.T) {
	text := TemplateMarker + "\n# Title\n"
	out := Merge(text, Fragments{}, Options{})
	if out != "# Title\n" {
		t.Errorf("marker strip left residue: %q", out)
	}
}
