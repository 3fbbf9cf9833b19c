package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heikopanjas/vibe-check/internal/reconcile"
	"github.com/heikopanjas/vibe-check/internal/ui"
)

var (
	removeAgent  string
	removeAll    bool
	removeForce  bool
	removeDryRun bool
)

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove agent-specific files from the current directory",
	Long: `Delete the files belonging to one agent (or every agent) from the
workspace. Directories left empty are pruned up to the workspace root.

AGENTS.md is never touched by remove; use 'vibe-check purge' to take
everything out.

EXAMPLES:
Remove one agent's files:
  vibe-check remove --agent claude

Remove every agent's files:
  vibe-check remove --all

Skip the confirmation prompt:
  vibe-check remove --all --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if removeAll && removeAgent != "" {
			return fmt.Errorf("cannot specify both --agent and --all")
		}
		if !removeAll && removeAgent == "" {
			return fmt.Errorf("must specify either --agent <name> or --all")
		}

		r, err := newReconciler()
		if err != nil {
			return err
		}

		planned, err := r.PlannedFiles(removeAgent, false)
		if err != nil {
			return err
		}
		if len(planned) == 0 {
			fmt.Printf("%s No files to remove\n", ui.RenderAccent(ui.IconStep))
			return nil
		}

		if !removeForce && !removeDryRun {
			fmt.Printf("%s Files to be deleted:\n", ui.RenderAccent(ui.IconStep))
			for _, f := range planned {
				fmt.Printf("  %s\n", ui.RenderMuted(relToCwd(f)))
			}
			ok, err := confirmAction(fmt.Sprintf("Delete %d file(s)?", len(planned)))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("%s Operation cancelled\n", ui.RenderAccent(ui.IconStep))
				return nil
			}
		}

		res, err := r.Remove(reconcile.RemoveOptions{Agent: removeAgent, DryRun: removeDryRun})
		if err != nil {
			return err
		}
		return renderResult(res, removeDryRun)
	},
}

func init() {
	removeCmd.Flags().StringVar(&removeAgent, "agent", "", "AI coding agent whose files to remove")
	removeCmd.Flags().BoolVar(&removeAll, "all", false, "Remove every agent's files (cannot be used with --agent)")
	removeCmd.Flags().BoolVar(&removeForce, "force", false, "Remove without confirmation")
	removeCmd.Flags().BoolVar(&removeDryRun, "dry-run", false, "Show what would be deleted without deleting")
	rootCmd.AddCommand(removeCmd)
}
