// Package manifest parses the templates.yml configuration that describes a
// template bundle: the main document, per-agent file sets, per-language and
// integration file groups, and the flat principles/mission fragment lists.
//
// Parsing is pure: referenced source files are not checked for existence
// here. Missing sources surface later, per file, during reconciliation.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the well-known name of the bundle configuration file
// inside the global template directory.
const ManifestFileName = "templates.yml"

// FileMapping maps a source file in the template bundle to a target path in
// the workspace. Target may contain placeholder tokens or the $instructions
// merge sentinel.
type FileMapping struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// AgentEntry holds the file sets belonging to one agent.
type AgentEntry struct {
	Instructions []FileMapping `yaml:"instructions"`
	Prompts      []FileMapping `yaml:"prompts"`
}

// FileGroup is a named set of file mappings (languages, integrations).
type FileGroup struct {
	Files []FileMapping `yaml:"files"`
}

// Manifest is the typed form of templates.yml.
//
// Version 1 manifests carry an agents section; version 2 manifests follow
// the agents.md standard where a single main document serves every agent, so
// agents may be absent. Either way an absent section is empty, not an error.
type Manifest struct {
	Version     int                   `yaml:"version"`
	Main        *FileMapping          `yaml:"main"`
	Agents      map[string]AgentEntry `yaml:"agents"`
	Languages   map[string]FileGroup  `yaml:"languages"`
	Integration map[string]FileGroup  `yaml:"integration"`
	Principles  []FileMapping         `yaml:"principles"`
	Mission     []FileMapping         `yaml:"mission"`
}

// ParseError wraps a YAML or structural failure. A ParseError is fatal for
// the whole operation: nothing is written when the manifest cannot be read.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", ManifestFileName, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes manifest YAML into a Manifest. A missing version field
// defaults to 1 (pre-versioned manifests); missing optional sections come
// back as empty maps or nil slices.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &ParseError{Err: err}
	}

	if m.Version == 0 {
		m.Version = 1
	}
	if m.Agents == nil {
		m.Agents = map[string]AgentEntry{}
	}
	if m.Languages == nil {
		m.Languages = map[string]FileGroup{}
	}
	if m.Integration == nil {
		m.Integration = map[string]FileGroup{}
	}

	return &m, nil
}

// Load reads and parses templates.yml from the given template directory.
func Load(templateDir string) (*Manifest, error) {
	path := filepath.Join(templateDir, ManifestFileName)
	data, err := os.ReadFile(path) // #nosec G304 - controlled template dir
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Exists reports whether templates.yml is present in templateDir.
func Exists(templateDir string) bool {
	_, err := os.Stat(filepath.Join(templateDir, ManifestFileName))
	return err == nil
}

// HasLanguage reports whether the manifest declares the named language.
func (m *Manifest) HasLanguage(name string) bool {
	_, ok := m.Languages[name]
	return ok
}

// HasAgent reports whether the manifest declares the named agent.
func (m *Manifest) HasAgent(name string) bool {
	_, ok := m.Agents[name]
	return ok
}

// Sources returns every source path the manifest references, deduplicated,
// in manifest order: main, principles, mission, then languages, integration,
// and agents with their group names sorted for stable output.
func (m *Manifest) Sources() []string {
	var out []string
	seen := map[string]bool{}
	add := func(mappings ...FileMapping) {
		for _, fm := range mappings {
			if fm.Source == "" || seen[fm.Source] {
				continue
			}
			seen[fm.Source] = true
			out = append(out, fm.Source)
		}
	}

	if m.Main != nil {
		add(*m.Main)
	}
	add(m.Principles...)
	add(m.Mission...)
	for _, name := range sortedKeys(m.Languages) {
		add(m.Languages[name].Files...)
	}
	for _, name := range sortedKeys(m.Integration) {
		add(m.Integration[name].Files...)
	}
	agentNames := make([]string, 0, len(m.Agents))
	for name := range m.Agents {
		agentNames = append(agentNames, name)
	}
	sort.Strings(agentNames)
	for _, name := range agentNames {
		add(m.Agents[name].Instructions...)
		add(m.Agents[name].Prompts...)
	}

	return out
}

func sortedKeys(groups map[string]FileGroup) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
