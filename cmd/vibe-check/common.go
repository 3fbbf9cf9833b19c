package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/heikopanjas/vibe-check/internal/configstore"
	"github.com/heikopanjas/vibe-check/internal/debug"
	"github.com/heikopanjas/vibe-check/internal/fetch"
	"github.com/heikopanjas/vibe-check/internal/manifest"
	"github.com/heikopanjas/vibe-check/internal/reconcile"
	"github.com/heikopanjas/vibe-check/internal/templates"
	"github.com/heikopanjas/vibe-check/internal/tracker"
	"github.com/heikopanjas/vibe-check/internal/ui"
)

// templateSource resolves where templates come from: an explicit --from
// value wins, then the persisted source.url config, then the default
// repository.
func templateSource(from string) fetch.Source {
	if from != "" {
		return fetch.Source{URL: from}
	}
	store, err := configstore.Open()
	if err != nil {
		debug.Logf("config: %v", err)
		return fetch.Source{URL: templates.DefaultSourceURL}
	}
	return fetch.Source{URL: store.GetDefault(configstore.KeySourceURL, templates.DefaultSourceURL)}
}

// fetchTemplates populates the global template directory from the source.
// Fetch failures are returned to the caller: an explicit update must not
// silently replace a cached bundle with the embedded defaults.
func fetchTemplates(src fetch.Source, dir string) error {
	if embeddedForced() {
		fmt.Printf("%s Using embedded templates (source.fallback is set)\n", ui.RenderAccent(ui.IconStep))
		return templates.WriteTo(dir)
	}
	f := fetch.New(nil, os.Stdout)
	return f.Fetch(context.Background(), src, dir)
}

func embeddedForced() bool {
	store, err := configstore.Open()
	if err != nil {
		return false
	}
	return store.Get(configstore.KeySourceFallback) == "true"
}

// ensureTemplates makes sure the global template directory holds a bundle,
// downloading the default source on first use. With no cached bundle an
// unreachable source is not fatal: the embedded templates serve instead.
func ensureTemplates(dir string) error {
	if manifest.Exists(dir) {
		return nil
	}
	src := templateSource("")
	fmt.Printf("%s Global templates not found, downloading from %s\n", ui.RenderAccent(ui.IconStep), src.URL)
	if err := fetchTemplates(src, dir); err != nil {
		fmt.Printf("%s Fetch failed (%v), using embedded templates\n", ui.RenderWarn(ui.IconWarn), err)
		return templates.WriteTo(dir)
	}
	return nil
}

// newReconciler loads the manifest and wires a reconciler for the current
// working directory.
func newReconciler() (*reconcile.Reconciler, error) {
	dir, err := templateDir()
	if err != nil {
		return nil, err
	}
	if err := ensureTemplates(dir); err != nil {
		return nil, err
	}
	m, err := manifest.Load(dir)
	if err != nil {
		return nil, err
	}
	workspace, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &reconcile.Reconciler{
		Manifest:    m,
		TemplateDir: dir,
		Workspace:   workspace,
		UserHome:    home,
		Tracker:     tracker.New(filepath.Dir(dir)),
	}, nil
}

// renderResult prints per-file outcomes and a summary line. Returns an
// error when any file failed, so commands exit non-zero on real failures
// while protection skips stay successful.
func renderResult(res *reconcile.Result, dryRun bool) error {
	for _, f := range res.Files {
		rel := relToCwd(f.Path)
		switch f.Outcome {
		case reconcile.OutcomeCreated:
			fmt.Printf("  %s %s\n", ui.RenderPass(ui.IconPass), rel)
		case reconcile.OutcomeOverwritten:
			fmt.Printf("  %s %s (updated)\n", ui.RenderPass(ui.IconPass), rel)
		case reconcile.OutcomeDeleted:
			fmt.Printf("  %s %s (removed)\n", ui.RenderPass(ui.IconPass), rel)
		case reconcile.OutcomeSkipped:
			fmt.Printf("  %s %s (%s)\n", ui.RenderWarn(ui.IconSkip), rel, f.Reason)
		case reconcile.OutcomeFailed:
			fmt.Printf("  %s %s: %s\n", ui.RenderFail(ui.IconFail), rel, f.Reason)
		}
	}

	if dryRun {
		fmt.Printf("\n%s Dry run complete. No files were modified.\n", ui.RenderPass(ui.IconPass))
		return nil
	}
	if n := res.ProtectedSkips(); n > 0 {
		fmt.Printf("%s %d customized file(s) left untouched, use --force to overwrite\n", ui.RenderWarn(ui.IconWarn), n)
	}
	if n := res.Failed(); n > 0 {
		return fmt.Errorf("%d file(s) failed", n)
	}
	return nil
}

func relToCwd(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || len(rel) > len(path) {
		return path
	}
	return rel
}

// confirmAction asks the user to confirm a destructive operation.
func confirmAction(title string) (bool, error) {
	var confirmed bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).Run()
	if err != nil {
		if err == huh.ErrUserAborted {
			return false, nil
		}
		return false, err
	}
	return confirmed, nil
}
