// Package configstore manages the persisted user configuration in
// $XDG_CONFIG_HOME/vibe-check/config.yaml (falling back to
// ~/.config/vibe-check/config.yaml).
//
// The store is a flat dotted-key space read through viper. Today the known
// keys are source.url (default template source override) and source.fallback;
// unknown keys are stored verbatim so new keys don't need a code change. A
// missing file or missing key is never an error: callers get the zero value
// and fall back to their hardcoded default.
package configstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"
)

// Known configuration keys.
const (
	KeySourceURL      = "source.url"
	KeySourceFallback = "source.fallback"
)

// Store reads and writes the persisted configuration file.
type Store struct {
	path string
	v    *viper.Viper
}

// ConfigPath returns the config file location, honoring XDG_CONFIG_HOME.
func ConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "vibe-check", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vibe-check", "config.yaml"), nil
}

// Open loads the store from the default config path. A missing file yields
// an empty store, not an error.
func Open() (*Store, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return OpenAt(path)
}

// OpenAt loads the store from an explicit path, primarily for tests.
func OpenAt(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			// File exists but is unreadable or malformed.
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	return &Store{path: path, v: v}, nil
}

// Get returns the value for a dotted key, or "" when unset.
func (s *Store) Get(key string) string {
	return s.v.GetString(key)
}

// GetDefault returns the value for key, or fallback when unset.
func (s *Store) GetDefault(key, fallback string) string {
	if val := s.v.GetString(key); val != "" {
		return val
	}
	return fallback
}

// Set stores a value for a dotted key. Save must be called to persist.
func (s *Store) Set(key, value string) {
	s.v.Set(key, value)
}

// Unset removes a key. Viper has no delete, so the settings map is rebuilt
// without the key.
func (s *Store) Unset(key string) {
	settings := s.v.AllSettings()
	deleteNested(settings, key)

	fresh := viper.New()
	fresh.SetConfigType("yaml")
	fresh.SetConfigFile(s.path)
	for k, val := range flatten("", settings) {
		fresh.Set(k, val)
	}
	s.v = fresh
}

// All returns every stored key/value pair, sorted by key.
func (s *Store) All() [][2]string {
	keys := s.v.AllKeys()
	sort.Strings(keys)

	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, s.v.GetString(k)})
	}
	return out
}

// Save writes the configuration file, creating parent directories.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("writing config %s: %w", s.path, err)
	}
	return nil
}

// deleteNested removes a dotted key from a nested settings map.
func deleteNested(settings map[string]interface{}, key string) {
	for {
		if _, ok := settings[key]; ok {
			delete(settings, key)
			return
		}
		idx := -1
		for i, r := range key {
			if r == '.' {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		sub, ok := settings[key[:idx]].(map[string]interface{})
		if !ok {
			return
		}
		settings = sub
		key = key[idx+1:]
	}
}

// flatten converts a nested settings map back to dotted keys.
func flatten(prefix string, settings map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for k, val := range settings {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		if sub, ok := val.(map[string]interface{}); ok {
			for fk, fv := range flatten(full, sub) {
				out[fk] = fv
			}
			continue
		}
		out[full] = val
	}
	return out
}
