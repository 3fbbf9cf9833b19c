package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heikopanjas/vibe-check/internal/reconcile"
	"github.com/heikopanjas/vibe-check/internal/ui"
)

var (
	initLangs    []string
	initAgents   []string
	initMission  string
	initForce    bool
	initNoLang   bool
	initDryRun   bool
	initIntegsOn []string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize agent instructions for a project",
	Long: `Merge the template bundle into the current workspace: writes AGENTS.md
with mission, principles, language, and integration fragments spliced in,
plus each selected agent's instruction and prompt files.

A customized AGENTS.md (one missing the template marker) is never
overwritten unless --force is given. Other managed files are always
refreshed.

EXAMPLES:
Initialize for Go with every agent:
  vibe-check init --lang go

Initialize for a single agent:
  vibe-check init --lang go --agent claude

Project with no language-specific templates:
  vibe-check init --no-lang

Preview without writing:
  vibe-check init --lang go --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(initLangs) == 0 && len(initAgents) == 0 && !initNoLang {
			return fmt.Errorf("specify at least one --lang or --agent, or pass --no-lang explicitly")
		}

		r, err := newReconciler()
		if err != nil {
			return err
		}

		fmt.Printf("%s Initializing project\n", ui.RenderAccent(ui.IconStep))
		res, err := r.Install(reconcile.InstallOptions{
			Agents:       initAgents,
			Languages:    initLangs,
			Integrations: initIntegsOn,
			Mission:      initMission,
			Force:        initForce,
			DryRun:       initDryRun,
		})
		if err != nil {
			return err
		}
		return renderResult(res, initDryRun)
	},
}

func init() {
	initCmd.Flags().StringSliceVar(&initLangs, "lang", nil, "Programming language or framework (repeatable)")
	initCmd.Flags().StringSliceVar(&initAgents, "agent", nil, "AI coding agent (repeatable, default: all)")
	initCmd.Flags().StringSliceVar(&initIntegsOn, "integration", nil, "Integration templates to include (default: all)")
	initCmd.Flags().StringVar(&initMission, "mission", "", "Custom mission statement text, replaces mission templates")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite a customized AGENTS.md")
	initCmd.Flags().BoolVar(&initNoLang, "no-lang", false, "Initialize without language-specific templates")
	initCmd.Flags().BoolVar(&initDryRun, "dry-run", false, "Show what would be written without writing")
	rootCmd.AddCommand(initCmd)
}
