// Package bom derives the Bill of Materials from a parsed manifest: the
// complete set of workspace file paths each agent's installation owns.
//
// The BoM is rebuilt from the manifest on every operation and never
// persisted. The filesystem itself, plus the marker check on the main
// document, is the authoritative record of what is installed; the BoM only
// says what an operation is responsible for.
package bom

import (
	"fmt"
	"sort"
	"strings"

	"github.com/heikopanjas/vibe-check/internal/manifest"
	"github.com/heikopanjas/vibe-check/internal/placeholder"
)

// BillOfMaterials maps agent names to the ordered list of resolved workspace
// file paths belonging to that agent: instruction files first, then prompt
// files, preserving manifest declaration order. Order matters: removal
// confirmation listings shown to the user must be deterministic.
type BillOfMaterials struct {
	agentFiles map[string][]string
}

// UnknownAgentError reports a request for an agent the manifest does not
// declare, listing the valid names so a typo'd CLI argument is actionable.
type UnknownAgentError struct {
	Name      string
	Available []string
}

func (e *UnknownAgentError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("agent %q not found: manifest declares no agents", e.Name)
	}
	return fmt.Sprintf("agent %q not found\nAvailable agents: %s",
		e.Name, strings.Join(e.Available, ", "))
}

// Build derives the BoM from a manifest, resolving every agent target path
// against the given workspace and home directories.
//
// Targets pointing at $userprofile are user-global, not project files, and
// are excluded; $instructions targets are fragments merged into the main
// document, not standalone files, and are excluded too. Build is a pure
// function of its inputs.
func Build(m *manifest.Manifest, workspace, userHome string) *BillOfMaterials {
	b := &BillOfMaterials{agentFiles: make(map[string][]string)}

	for name, agent := range m.Agents {
		var paths []string
		for _, mapping := range agent.Instructions {
			if p, ok := workspacePath(mapping.Target, workspace, userHome); ok {
				paths = append(paths, p)
			}
		}
		for _, mapping := range agent.Prompts {
			if p, ok := workspacePath(mapping.Target, workspace, userHome); ok {
				paths = append(paths, p)
			}
		}
		// Entry kept even when empty: a declared agent with only
		// user-global targets is still a known agent.
		b.agentFiles[name] = paths
	}

	return b
}

// workspacePath resolves a target to a concrete project path, or reports
// false for targets that are not project-owned files.
func workspacePath(target, workspace, userHome string) (string, bool) {
	if placeholder.IsFragment(target) {
		return "", false
	}
	if strings.HasPrefix(target, placeholder.TokenUserProfile) {
		return "", false
	}
	return placeholder.Resolve(target, workspace, userHome), true
}

// ForAgent returns the file paths owned by one agent in manifest order.
func (b *BillOfMaterials) ForAgent(name string) ([]string, error) {
	paths, ok := b.agentFiles[name]
	if !ok {
		return nil, &UnknownAgentError{Name: name, Available: b.Agents()}
	}
	out := make([]string, len(paths))
	copy(out, paths)
	return out, nil
}

// AllAgents returns the union of every agent's files, deduplicated, in
// agent-name order then manifest order. Prompt files could theoretically be
// shared between agents; each path appears exactly once.
func (b *BillOfMaterials) AllAgents() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, name := range b.Agents() {
		for _, p := range b.agentFiles[name] {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// Agents returns the sorted list of agent names present in the BoM.
func (b *BillOfMaterials) Agents() []string {
	names := make([]string, 0, len(b.agentFiles))
	for name := range b.agentFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasAgent reports whether the manifest declared the named agent.
func (b *BillOfMaterials) HasAgent(name string) bool {
	_, ok := b.agentFiles[name]
	return ok
}
