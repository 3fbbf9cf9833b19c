// Package placeholder resolves the symbolic tokens used in manifest target
// paths to concrete filesystem paths.
//
// Exactly three tokens exist: $workspace (the project directory), $userprofile
// (the user's home directory), and $instructions (the merge sentinel, which
// has no filesystem meaning and is handled by the merge path before any
// resolution). Substitution is a single literal prefix replace; there is no
// recursive expansion and no user-defined variables. A typo'd token passes
// through unchanged and surfaces as a broken path, which is a
// manifest-authoring error, not something to recover from at runtime.
package placeholder

import (
	"path/filepath"
	"strings"
)

// Recognized tokens in manifest target paths.
const (
	TokenWorkspace    = "$workspace"
	TokenUserProfile  = "$userprofile"
	TokenInstructions = "$instructions"
)

// IsFragment reports whether the target designates a fragment to be merged
// into the main document rather than a standalone file.
func IsFragment(target string) bool {
	return strings.HasPrefix(target, TokenInstructions)
}

// Resolve rewrites a target path template into a concrete path.
// $instructions targets are returned as-is; callers on the merge path must
// detect them with IsFragment before resolving.
func Resolve(target, workspace, userHome string) string {
	switch {
	case strings.HasPrefix(target, TokenWorkspace):
		return joinSuffix(workspace, target[len(TokenWorkspace):])
	case strings.HasPrefix(target, TokenUserProfile):
		return joinSuffix(userHome, target[len(TokenUserProfile):])
	default:
		return target
	}
}

// joinSuffix joins a token suffix onto a base directory via filepath.Join,
// which keeps separators consistent across platforms.
func joinSuffix(base, suffix string) string {
	suffix = strings.TrimLeft(suffix, "/\\")
	if suffix == "" {
		return base
	}
	return filepath.Join(base, filepath.FromSlash(suffix))
}
