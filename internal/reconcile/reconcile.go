// Package reconcile applies install, remove, and purge operations against a
// workspace, diffing the manifest-derived file set against what is on disk.
//
// Every target file moves through a small state machine, evaluated
// independently per file: absent files are written, pristine files are
// overwritten, and a customized main document is skipped unless forced. Only
// the main document gets the customization check; agent files and language
// copy-configs are plain managed artifacts and are always overwritten or
// removed. Structural problems (bad manifest, unknown agent or language)
// abort before any mutation; per-file problems are recorded and the
// operation keeps going.
package reconcile

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/heikopanjas/vibe-check/internal/bom"
	"github.com/heikopanjas/vibe-check/internal/debug"
	"github.com/heikopanjas/vibe-check/internal/fsutil"
	"github.com/heikopanjas/vibe-check/internal/manifest"
	"github.com/heikopanjas/vibe-check/internal/merge"
	"github.com/heikopanjas/vibe-check/internal/placeholder"
	"github.com/heikopanjas/vibe-check/internal/tracker"
)

// Outcome classifies what happened to one target file.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeOverwritten
	OutcomeSkipped
	OutcomeDeleted
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeOverwritten:
		return "overwritten"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeDeleted:
		return "deleted"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileResult is the per-file outcome of an operation.
type FileResult struct {
	Path    string
	Outcome Outcome
	// Reason explains skips and failures.
	Reason string
	// Protected marks a customization-protection skip. Protection skips are
	// expected successful outcomes, not failures.
	Protected bool
}

// Result lists the per-file outcomes of one operation, in the order the
// files were processed.
type Result struct {
	Files []FileResult
}

func (r *Result) add(path string, outcome Outcome) {
	r.Files = append(r.Files, FileResult{Path: path, Outcome: outcome})
}

func (r *Result) addSkip(path, reason string, protected bool) {
	r.Files = append(r.Files, FileResult{Path: path, Outcome: OutcomeSkipped, Reason: reason, Protected: protected})
}

func (r *Result) addFailure(path string, err error) {
	r.Files = append(r.Files, FileResult{Path: path, Outcome: OutcomeFailed, Reason: err.Error()})
}

// Failed counts per-file failures. Protection skips do not count.
func (r *Result) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Outcome == OutcomeFailed {
			n++
		}
	}
	return n
}

// ProtectedSkips counts files left alone because they were customized.
func (r *Result) ProtectedSkips() int {
	n := 0
	for _, f := range r.Files {
		if f.Protected {
			n++
		}
	}
	return n
}

// Count returns how many files ended with the given outcome.
func (r *Result) Count(outcome Outcome) int {
	n := 0
	for _, f := range r.Files {
		if f.Outcome == outcome {
			n++
		}
	}
	return n
}

// UnknownLanguageError reports a request for a language the manifest does
// not declare.
type UnknownLanguageError struct {
	Name      string
	Available []string
}

func (e *UnknownLanguageError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("language %q not found: manifest declares no languages", e.Name)
	}
	return fmt.Sprintf("language %q not found\nAvailable languages: %s",
		e.Name, strings.Join(e.Available, ", "))
}

// UnknownIntegrationError reports a request for an integration the manifest
// does not declare.
type UnknownIntegrationError struct {
	Name      string
	Available []string
}

func (e *UnknownIntegrationError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("integration %q not found: manifest declares no integrations", e.Name)
	}
	return fmt.Sprintf("integration %q not found\nAvailable integrations: %s",
		e.Name, strings.Join(e.Available, ", "))
}

// Reconciler applies operations for one workspace against one template
// bundle.
type Reconciler struct {
	Manifest    *manifest.Manifest
	TemplateDir string
	Workspace   string
	UserHome    string

	// Tracker records checksums of written files. Optional; nil disables
	// tracking.
	Tracker *tracker.Tracker
}

// InstallOptions parameterizes Install.
type InstallOptions struct {
	// Agents selects which agents' file sets to install. Empty means every
	// agent the manifest declares.
	Agents []string
	// Languages selects which language fragment/file groups to include.
	Languages []string
	// Integrations selects integration groups. Empty means every declared
	// integration.
	Integrations []string
	// Mission, when non-empty, replaces the mission fragments for this merge.
	Mission string
	// Force overwrites a customized main document.
	Force bool
	// DryRun computes outcomes without touching the filesystem.
	DryRun bool
}

// RemoveOptions parameterizes Remove.
type RemoveOptions struct {
	// Agent selects a single agent. Empty means all agents.
	Agent  string
	DryRun bool
}

// PurgeOptions parameterizes Purge.
type PurgeOptions struct {
	// Force deletes a customized main document.
	Force  bool
	DryRun bool
}

// Install merges the main document and writes every in-scope file.
//
// Validation is strict and happens before any write: an unknown agent,
// language, or integration aborts the whole operation. During the apply
// phase a missing source or failed write is recorded per file and the
// remaining files are still processed.
func (r *Reconciler) Install(opts InstallOptions) (*Result, error) {
	m := r.Manifest

	agents, err := r.selectAgents(opts.Agents)
	if err != nil {
		return nil, err
	}
	for _, lang := range opts.Languages {
		if !m.HasLanguage(lang) {
			return nil, &UnknownLanguageError{Name: lang, Available: groupNames(m.Languages)}
		}
	}
	integrations, err := r.selectIntegrations(opts.Integrations)
	if err != nil {
		return nil, err
	}

	res := &Result{}

	frags, copyConfigs := r.collectFragments(res, opts.Languages, integrations)

	if m.Main != nil {
		r.installMain(res, frags, opts)
	}

	for _, name := range agents {
		entry := m.Agents[name]
		r.copyMappings(res, entry.Instructions, opts.DryRun)
		r.copyMappings(res, entry.Prompts, opts.DryRun)
	}

	// Copy-configs are inert settings files, not user-authored prose: always
	// overwritten, never customization-checked.
	r.copyMappings(res, copyConfigs, opts.DryRun)

	r.saveTracker(opts.DryRun)
	return res, nil
}

// Remove deletes the selected agents' files. The main document is never
// touched here; Purge owns that.
func (r *Reconciler) Remove(opts RemoveOptions) (*Result, error) {
	b := bom.Build(r.Manifest, r.Workspace, r.UserHome)

	var paths []string
	if opts.Agent != "" {
		var err error
		paths, err = b.ForAgent(opts.Agent)
		if err != nil {
			return nil, err
		}
	} else {
		paths = b.AllAgents()
	}

	res := &Result{}
	for _, path := range paths {
		r.deleteFile(res, path, opts.DryRun)
	}

	r.saveTracker(opts.DryRun)
	return res, nil
}

// Purge removes every agent's files plus the main document. The main
// document goes through the customization check: a customized document
// survives unless forced.
func (r *Reconciler) Purge(opts PurgeOptions) (*Result, error) {
	res, err := r.Remove(RemoveOptions{DryRun: opts.DryRun})
	if err != nil {
		return nil, err
	}

	if r.Manifest.Main == nil {
		return res, nil
	}

	mainPath := placeholder.Resolve(r.Manifest.Main.Target, r.Workspace, r.UserHome)
	data, err := os.ReadFile(mainPath) // #nosec G304 - resolved managed path
	if os.IsNotExist(err) {
		return res, nil
	}
	if err != nil {
		res.addFailure(mainPath, err)
		return res, nil
	}

	if merge.IsCustomized(string(data)) && !opts.Force {
		res.addSkip(mainPath, "customized, use --force to delete", true)
		return res, nil
	}

	r.deleteFile(res, mainPath, opts.DryRun)
	r.saveTracker(opts.DryRun)
	return res, nil
}

// PlannedFiles returns the paths an operation over the given agent selection
// would delete, for confirmation prompts. Empty agent means all agents;
// includeMain adds the main document path when the manifest declares one.
func (r *Reconciler) PlannedFiles(agent string, includeMain bool) ([]string, error) {
	b := bom.Build(r.Manifest, r.Workspace, r.UserHome)

	var paths []string
	if agent != "" {
		var err error
		paths, err = b.ForAgent(agent)
		if err != nil {
			return nil, err
		}
	} else {
		paths = b.AllAgents()
	}

	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if includeMain && r.Manifest.Main != nil {
		mainPath := placeholder.Resolve(r.Manifest.Main.Target, r.Workspace, r.UserHome)
		if _, err := os.Stat(mainPath); err == nil {
			existing = append(existing, mainPath)
		}
	}
	return existing, nil
}

// selectAgents validates and expands the agent selection. Empty selection
// means every declared agent, sorted for deterministic processing order.
func (r *Reconciler) selectAgents(requested []string) ([]string, error) {
	declared := make([]string, 0, len(r.Manifest.Agents))
	for name := range r.Manifest.Agents {
		declared = append(declared, name)
	}
	sort.Strings(declared)

	if len(requested) == 0 {
		return declared, nil
	}
	for _, name := range requested {
		if !r.Manifest.HasAgent(name) {
			return nil, &bom.UnknownAgentError{Name: name, Available: declared}
		}
	}
	return requested, nil
}

func (r *Reconciler) selectIntegrations(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return groupNames(r.Manifest.Integration), nil
	}
	for _, name := range requested {
		if _, ok := r.Manifest.Integration[name]; !ok {
			return nil, &UnknownIntegrationError{Name: name, Available: groupNames(r.Manifest.Integration)}
		}
	}
	return requested, nil
}

// collectFragments reads every fragment source destined for the merge and
// returns the non-fragment language/integration mappings as copy-configs.
// Missing fragment sources are recorded on res and skipped.
func (r *Reconciler) collectFragments(res *Result, languages, integrations []string) (merge.Fragments, []manifest.FileMapping) {
	m := r.Manifest
	frags := merge.Fragments{}
	var copyConfigs []manifest.FileMapping

	readInto := func(category merge.Category, mappings []manifest.FileMapping) {
		for _, fm := range mappings {
			if !placeholder.IsFragment(fm.Target) {
				copyConfigs = append(copyConfigs, fm)
				continue
			}
			text, err := r.readSource(fm.Source)
			if err != nil {
				res.addFailure(fm.Source, err)
				continue
			}
			frags.Add(category, text)
		}
	}

	readInto(merge.CategoryMission, m.Mission)
	readInto(merge.CategoryPrinciples, m.Principles)
	for _, lang := range languages {
		readInto(merge.CategoryLanguages, m.Languages[lang].Files)
	}
	for _, integration := range integrations {
		readInto(merge.CategoryIntegration, m.Integration[integration].Files)
	}

	return frags, copyConfigs
}

// installMain merges and writes the main document under the customization
// state machine.
func (r *Reconciler) installMain(res *Result, frags merge.Fragments, opts InstallOptions) {
	main := r.Manifest.Main
	template, err := r.readSource(main.Source)
	if err != nil {
		res.addFailure(main.Source, err)
		return
	}

	if missing := merge.MissingPoints(template, frags); len(missing) > 0 {
		debug.Logf("reconcile: template %s lacks insertion points: %v", main.Source, missing)
	}

	target := placeholder.Resolve(main.Target, r.Workspace, r.UserHome)
	existing, readErr := os.ReadFile(target) // #nosec G304 - resolved managed path
	if readErr != nil && !os.IsNotExist(readErr) {
		// An unreadable target must not pass for absent: overwriting it
		// would defeat the customization check.
		res.addFailure(target, readErr)
		return
	}
	exists := readErr == nil

	if exists && merge.IsCustomized(string(existing)) && !opts.Force {
		res.addSkip(target, "customized, use --force to overwrite", true)
		return
	}

	merged := merge.Merge(template, frags, merge.Options{Mission: opts.Mission})
	if !opts.DryRun {
		if err := fsutil.WriteFile(target, []byte(merged)); err != nil {
			res.addFailure(target, err)
			return
		}
		r.track(target, "", "main")
	}

	if exists {
		res.add(target, OutcomeOverwritten)
	} else {
		res.add(target, OutcomeCreated)
	}
}

// copyMappings straight-copies each mapping's source to its resolved target,
// overwriting whatever is there. Fragment targets have no standalone file
// and are ignored.
func (r *Reconciler) copyMappings(res *Result, mappings []manifest.FileMapping, dryRun bool) {
	for _, fm := range mappings {
		if placeholder.IsFragment(fm.Target) {
			continue
		}
		target := placeholder.Resolve(fm.Target, r.Workspace, r.UserHome)

		source, err := fsutil.JoinLocal(r.TemplateDir, fm.Source)
		if err != nil {
			res.addFailure(target, err)
			continue
		}
		if _, err := os.Stat(source); err != nil {
			res.addFailure(target, fmt.Errorf("source %s: %w", fm.Source, err))
			continue
		}

		_, statErr := os.Stat(target)
		exists := statErr == nil

		if !dryRun {
			if err := fsutil.CopyFile(source, target); err != nil {
				res.addFailure(target, err)
				continue
			}
			r.track(target, "", "file")
		}

		if exists {
			res.add(target, OutcomeOverwritten)
		} else {
			res.add(target, OutcomeCreated)
		}
	}
}

// deleteFile removes one file and prunes parent directories left empty,
// stopping at the workspace root. An absent file is a quiet no-op.
func (r *Reconciler) deleteFile(res *Result, path string, dryRun bool) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}
	if dryRun {
		res.add(path, OutcomeDeleted)
		return
	}
	if err := fsutil.RemoveFileAndCleanParents(path, r.Workspace); err != nil {
		res.addFailure(path, err)
		return
	}
	if r.Tracker != nil {
		r.Tracker.Remove(path)
	}
	res.add(path, OutcomeDeleted)
}

// readSource reads a bundle-relative source file from the template
// directory. Sources that resolve outside the directory are rejected.
func (r *Reconciler) readSource(source string) (string, error) {
	path, err := fsutil.JoinLocal(r.TemplateDir, source)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path) // #nosec G304 - confined to the template dir
	if err != nil {
		return "", fmt.Errorf("source %s: %w", source, err)
	}
	return string(data), nil
}

func (r *Reconciler) track(path, lang, category string) {
	if r.Tracker == nil {
		return
	}
	sha, err := tracker.SHA256File(path)
	if err != nil {
		debug.Logf("reconcile: checksum %s: %v", path, err)
		return
	}
	r.Tracker.Record(path, sha, r.Manifest.Version, lang, category)
}

func (r *Reconciler) saveTracker(dryRun bool) {
	if r.Tracker == nil || dryRun {
		return
	}
	if err := r.Tracker.Save(); err != nil {
		debug.Logf("reconcile: saving tracker: %v", err)
	}
}

func groupNames(groups map[string]manifest.FileGroup) []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
