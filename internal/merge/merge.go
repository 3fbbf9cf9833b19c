// Package merge implements the fragment merge engine: splicing category
// fragments into the main document at marker-delimited insertion points, and
// the marker-based customization check that decides whether an installed
// document may be overwritten.
package merge

import (
	"strings"
)

// TemplateMarker is the sentinel line embedded in the unmerged main template.
// Its presence means the file is machine-generated and safe to overwrite; its
// absence means the user has customized it. This is the sole dirty-tracking
// mechanism for the main document: no hashing, no timestamps.
const TemplateMarker = "<!-- VIBE-CHECK-TEMPLATE: This marker indicates an unmerged template. Do not remove manually. -->"

// Category names the insertion points in the main document. Each corresponds
// to one marker line of the form <!-- {name} -->.
type Category string

const (
	CategoryMission     Category = "mission"
	CategoryPrinciples  Category = "principles"
	CategoryLanguages   Category = "languages"
	CategoryIntegration Category = "integration"
)

// Categories lists the insertion points in splice order.
var Categories = []Category{
	CategoryMission,
	CategoryPrinciples,
	CategoryLanguages,
	CategoryIntegration,
}

// InsertionPoint returns the literal marker line for a category.
func InsertionPoint(c Category) string {
	return "<!-- {" + string(c) + "} -->"
}

// Fragments holds the ordered fragment texts destined for each insertion
// point. Order within a category is manifest declaration order and is
// preserved verbatim in the output.
type Fragments map[Category][]string

// Add appends a fragment text to a category.
func (f Fragments) Add(c Category, text string) {
	f[c] = append(f[c], text)
}

// Options adjusts a single merge call.
type Options struct {
	// Mission, when non-empty, is literal replacement text for the mission
	// category. It takes precedence over any mission fragments for this call,
	// letting a caller inject a project-specific mission statement without
	// editing template fragments.
	Mission string
}

// Merge splices the fragments into mainText at their insertion points and
// strips the TemplateMarker, producing the installed document instance.
//
// Each marker line is preserved and re-emitted immediately before its spliced
// content so a later re-merge finds the insertion point again; the operation
// is structurally idempotent even though content differs between merges. An
// insertion point with zero fragments is left untouched. A template with no
// markers at all passes through unchanged apart from marker stripping.
func Merge(mainText string, frags Fragments, opts Options) string {
	out := stripTemplateMarker(mainText)

	for _, category := range Categories {
		contents := frags[category]
		if category == CategoryMission && opts.Mission != "" {
			contents = []string{"## Mission Statement\n\n" + strings.TrimSpace(opts.Mission)}
		}
		if len(contents) == 0 {
			continue
		}

		point := InsertionPoint(category)
		if !strings.Contains(out, point) {
			continue
		}

		trimmed := make([]string, len(contents))
		for i, c := range contents {
			trimmed[i] = strings.TrimSpace(c)
		}
		combined := strings.Join(trimmed, "\n\n")

		out = strings.Replace(out, point, point+"\n\n"+combined, 1)
	}

	return out
}

// IsCustomized reports whether an installed document has been customized.
// Detection depends solely on literal marker presence: any edit that leaves
// the marker line intact still counts as pristine.
func IsCustomized(installedText string) bool {
	return !strings.Contains(installedText, TemplateMarker)
}

// MissingPoints returns the categories that have fragments assigned but no
// insertion point in mainText, so callers can warn about template drift.
func MissingPoints(mainText string, frags Fragments) []Category {
	var missing []Category
	for _, category := range Categories {
		if len(frags[category]) == 0 {
			continue
		}
		if !strings.Contains(mainText, InsertionPoint(category)) {
			missing = append(missing, category)
		}
	}
	return missing
}

// stripTemplateMarker removes the marker line, swallowing its trailing
// newline so no blank line is left where the marker was.
func stripTemplateMarker(text string) string {
	if strings.Contains(text, TemplateMarker+"\n") {
		return strings.Replace(text, TemplateMarker+"\n", "", 1)
	}
	return strings.Replace(text, TemplateMarker, "", 1)
}
