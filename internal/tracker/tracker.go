// Package tracker records installed template files in a JSON sidecar
// (installed_files.json in the global template directory): original SHA-256,
// template version, language, and category per file.
//
// The tracker supplements status reporting. The main document's overwrite
// protection never consults it; that decision keys on the template marker
// alone.
package tracker

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const metadataFileName = "installed_files.json"

// FileMetadata describes one installed file.
type FileMetadata struct {
	OriginalSHA     string `json:"original_sha"`
	TemplateVersion int    `json:"template_version"`
	InstalledDate   string `json:"installed_date"`
	Lang            string `json:"lang,omitempty"`
	Category        string `json:"category"`
}

// Status of a tracked file relative to its recorded checksum.
type Status int

const (
	// NotTracked means the file was never recorded by vibe-check.
	NotTracked Status = iota
	// Unmodified means the file matches its original SHA.
	Unmodified
	// Modified means the file exists but its content has changed.
	Modified
	// Deleted means the file was recorded but no longer exists on disk.
	Deleted
)

func (s Status) String() string {
	switch s {
	case Unmodified:
		return "unmodified"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "not tracked"
	}
}

// Tracker holds the installed-file metadata for one global template dir.
type Tracker struct {
	metadataPath string
	metadata     map[string]FileMetadata
}

// New loads existing metadata from dataDir, or starts empty if the sidecar
// is missing or unreadable. A corrupt sidecar is discarded, not fatal.
func New(dataDir string) *Tracker {
	t := &Tracker{
		metadataPath: filepath.Join(dataDir, metadataFileName),
		metadata:     make(map[string]FileMetadata),
	}

	data, err := os.ReadFile(t.metadataPath) // #nosec G304 - controlled data dir
	if err != nil {
		return t
	}
	if err := json.Unmarshal(data, &t.metadata); err != nil {
		t.metadata = make(map[string]FileMetadata)
	}
	return t
}

// SHA256File computes the hex SHA-256 of a file's content.
func SHA256File(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 - tracked file path
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// Record stores or replaces the installation entry for a file.
func (t *Tracker) Record(path, sha string, templateVersion int, lang, category string) {
	t.metadata[canonical(path)] = FileMetadata{
		OriginalSHA:     sha,
		TemplateVersion: templateVersion,
		InstalledDate:   time.Now().UTC().Format(time.RFC3339),
		Lang:            lang,
		Category:        category,
	}
}

// Remove drops the entry for a file, if present.
func (t *Tracker) Remove(path string) {
	delete(t.metadata, canonical(path))
}

// Get returns the metadata for a tracked file.
func (t *Tracker) Get(path string) (FileMetadata, bool) {
	meta, ok := t.metadata[canonical(path)]
	return meta, ok
}

// Check reports the modification status of a file against its record.
func (t *Tracker) Check(path string) (Status, error) {
	meta, ok := t.metadata[canonical(path)]
	if !ok {
		return NotTracked, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Deleted, nil
	}

	current, err := SHA256File(path)
	if err != nil {
		return NotTracked, err
	}
	if current == meta.OriginalSHA {
		return Unmodified, nil
	}
	return Modified, nil
}

// Paths returns every tracked path.
func (t *Tracker) Paths() []string {
	out := make([]string, 0, len(t.metadata))
	for p := range t.metadata {
		out = append(out, p)
	}
	return out
}

// Save writes the metadata sidecar, creating the data directory if needed.
func (t *Tracker) Save() error {
	if err := os.MkdirAll(filepath.Dir(t.metadataPath), 0o750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(t.metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.WriteFile(t.metadataPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", t.metadataPath, err)
	}
	return nil
}

// canonical keys entries by absolute path so lookups are stable regardless
// of the working directory the command ran from.
func canonical(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
