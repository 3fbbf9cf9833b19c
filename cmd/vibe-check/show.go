package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/heikopanjas/vibe-check/internal/manifest"
	"github.com/heikopanjas/vibe-check/internal/merge"
	"github.com/heikopanjas/vibe-check/internal/placeholder"
	"github.com/heikopanjas/vibe-check/internal/reconcile"
	"github.com/heikopanjas/vibe-check/internal/ui"
)

var (
	showLangs   []string
	showMission string
)

var showCmd = &cobra.Command{
	Use:   "show [template-file]",
	Short: "Preview a template or the merged AGENTS.md",
	Long: `Render a template file from the global bundle, or preview what the
merged AGENTS.md would look like without writing anything.

With no argument, shows the merge preview for the selected languages. With
a bundle-relative path argument, renders that template file.

EXAMPLES:
Preview the merged document for Go:
  vibe-check show --lang go

Render one template file:
  vibe-check show principles/general.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newReconciler()
		if err != nil {
			return err
		}

		if len(args) == 1 {
			path := filepath.Join(r.TemplateDir, filepath.FromSlash(args[0]))
			data, err := os.ReadFile(path) // #nosec G304 - controlled template dir
			if err != nil {
				return fmt.Errorf("template %s: %w", args[0], err)
			}
			fmt.Print(ui.RenderMarkdown(string(data)))
			return nil
		}

		if r.Manifest.Main == nil {
			return fmt.Errorf("manifest declares no main document to preview")
		}
		merged, err := mergePreview(r, showLangs, showMission)
		if err != nil {
			return err
		}
		fmt.Print(ui.RenderMarkdown(merged))
		return nil
	},
}

// mergePreview runs the same fragment collection and merge as install,
// purely in memory.
func mergePreview(r *reconcile.Reconciler, langs []string, mission string) (string, error) {
	for _, lang := range langs {
		if !r.Manifest.HasLanguage(lang) {
			return "", fmt.Errorf("language %q not found", lang)
		}
	}

	frags := merge.Fragments{}
	readInto := func(category merge.Category, sources []string) error {
		for _, src := range sources {
			data, err := os.ReadFile(filepath.Join(r.TemplateDir, filepath.FromSlash(src))) // #nosec G304
			if err != nil {
				return fmt.Errorf("template %s: %w", src, err)
			}
			frags.Add(category, string(data))
		}
		return nil
	}

	// Only fragment-target mappings participate in the merge; copy-configs
	// are standalone files.
	fragmentSources := func(mappings []manifest.FileMapping) []string {
		var out []string
		for _, fm := range mappings {
			if placeholder.IsFragment(fm.Target) {
				out = append(out, fm.Source)
			}
		}
		return out
	}

	m := r.Manifest
	missionSrcs := fragmentSources(m.Mission)
	principleSrcs := fragmentSources(m.Principles)
	var langSrcs, integrationSrcs []string
	for _, lang := range langs {
		langSrcs = append(langSrcs, fragmentSources(m.Languages[lang].Files)...)
	}
	integrationNames := mapKeysOf(m.Integration)
	sort.Strings(integrationNames)
	for _, name := range integrationNames {
		integrationSrcs = append(integrationSrcs, fragmentSources(m.Integration[name].Files)...)
	}

	for _, pair := range []struct {
		category merge.Category
		sources  []string
	}{
		{merge.CategoryMission, missionSrcs},
		{merge.CategoryPrinciples, principleSrcs},
		{merge.CategoryLanguages, langSrcs},
		{merge.CategoryIntegration, integrationSrcs},
	} {
		if err := readInto(pair.category, pair.sources); err != nil {
			return "", err
		}
	}

	template, err := os.ReadFile(filepath.Join(r.TemplateDir, filepath.FromSlash(m.Main.Source))) // #nosec G304
	if err != nil {
		return "", fmt.Errorf("template %s: %w", m.Main.Source, err)
	}
	return merge.Merge(string(template), frags, merge.Options{Mission: mission}), nil
}

func init() {
	showCmd.Flags().StringSliceVar(&showLangs, "lang", nil, "Languages to include in the merge preview")
	showCmd.Flags().StringVar(&showMission, "mission", "", "Custom mission statement for the preview")
	rootCmd.AddCommand(showCmd)
}
