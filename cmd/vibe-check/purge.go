package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heikopanjas/vibe-check/internal/reconcile"
	"github.com/heikopanjas/vibe-check/internal/ui"
)

var (
	purgeForce  bool
	purgeDryRun bool
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Purge all vibe-check files from the project",
	Long: `Delete every managed file from the workspace: all agents' files plus
AGENTS.md itself.

A customized AGENTS.md survives the purge unless --force is given.

EXAMPLES:
Purge with confirmation:
  vibe-check purge

Purge including a customized AGENTS.md:
  vibe-check purge --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newReconciler()
		if err != nil {
			return err
		}

		planned, err := r.PlannedFiles("", true)
		if err != nil {
			return err
		}
		if len(planned) == 0 {
			fmt.Printf("%s No vibe-check files found to purge\n", ui.RenderAccent(ui.IconStep))
			return nil
		}

		if !purgeForce && !purgeDryRun {
			fmt.Printf("%s Files to be deleted:\n", ui.RenderAccent(ui.IconStep))
			for _, f := range planned {
				fmt.Printf("  %s\n", ui.RenderMuted(relToCwd(f)))
			}
			ok, err := confirmAction("Purge all vibe-check files?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("%s Operation cancelled\n", ui.RenderAccent(ui.IconStep))
				return nil
			}
		}

		res, err := r.Purge(reconcile.PurgeOptions{Force: purgeForce, DryRun: purgeDryRun})
		if err != nil {
			return err
		}
		return renderResult(res, purgeDryRun)
	},
}

func init() {
	purgeCmd.Flags().BoolVar(&purgeForce, "force", false, "Purge without confirmation and delete a customized AGENTS.md")
	purgeCmd.Flags().BoolVar(&purgeDryRun, "dry-run", false, "Show what would be deleted without deleting")
	rootCmd.AddCommand(purgeCmd)
}
