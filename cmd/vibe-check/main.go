// vibe-check manages AI coding agent instruction files: it installs,
// updates, and removes AGENTS.md and per-agent companion files in a project
// workspace, driven by a templates.yml manifest.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/heikopanjas/vibe-check/internal/debug"
)

// Version and Build are set at link time via -ldflags.
var (
	Version = "dev"
	Build   = "unknown"
)

var (
	verboseFlag bool
	quietFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "vibe-check",
	Short: "vibe-check - Manager for coding agent instruction files",
	Long: `Keep AGENTS.md and per-agent instruction files in sync with a shared
template bundle. Templates live in a global directory and are merged into
each project on demand; a hand-edited AGENTS.md is never overwritten unless
you force it.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("vibe-check version %s (%s)\n", Version, Build)
			return
		}
		_ = cmd.Help() // Help() always returns nil for cobra commands
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug.SetVerbose(verboseFlag)
		debug.SetQuiet(quietFlag)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")
	rootCmd.Flags().BoolP("version", "V", false, "Print version information")
}

// templateDir returns the global template directory, honoring
// XDG_CONFIG_HOME.
func templateDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "vibe-check", "templates"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vibe-check", "templates"), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
