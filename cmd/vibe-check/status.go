package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/heikopanjas/vibe-check/internal/merge"
	"github.com/heikopanjas/vibe-check/internal/placeholder"
	"github.com/heikopanjas/vibe-check/internal/tracker"
	"github.com/heikopanjas/vibe-check/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of managed files in the current directory",
	Long: `Report the state of every managed file in the workspace: whether
AGENTS.md is pristine or customized, and whether tracked files have been
modified or deleted since installation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newReconciler()
		if err != nil {
			return err
		}

		if r.Manifest.Main != nil {
			mainPath := placeholder.Resolve(r.Manifest.Main.Target, r.Workspace, r.UserHome)
			data, err := os.ReadFile(mainPath) // #nosec G304 - resolved managed path
			switch {
			case os.IsNotExist(err):
				fmt.Printf("%s %s not installed\n", ui.RenderMuted(ui.IconSkip), relToCwd(mainPath))
			case err != nil:
				fmt.Printf("%s %s: %v\n", ui.RenderFail(ui.IconFail), relToCwd(mainPath), err)
			case merge.IsCustomized(string(data)):
				fmt.Printf("%s %s (customized)\n", ui.RenderWarn(ui.IconWarn), relToCwd(mainPath))
			default:
				fmt.Printf("%s %s (pristine)\n", ui.RenderPass(ui.IconPass), relToCwd(mainPath))
			}
		}

		paths := r.Tracker.Paths()
		sort.Strings(paths)
		if len(paths) == 0 {
			fmt.Printf("%s No tracked files\n", ui.RenderMuted(ui.IconSkip))
			return nil
		}
		for _, path := range paths {
			status, err := r.Tracker.Check(path)
			if err != nil {
				fmt.Printf("%s %s: %v\n", ui.RenderFail(ui.IconFail), relToCwd(path), err)
				continue
			}
			switch status {
			case tracker.Unmodified:
				fmt.Printf("%s %s (unmodified)\n", ui.RenderPass(ui.IconPass), relToCwd(path))
			case tracker.Modified:
				fmt.Printf("%s %s (modified)\n", ui.RenderWarn(ui.IconWarn), relToCwd(path))
			case tracker.Deleted:
				fmt.Printf("%s %s (deleted)\n", ui.RenderMuted(ui.IconSkip), relToCwd(path))
			default:
				fmt.Printf("%s %s (not tracked)\n", ui.RenderMuted(ui.IconSkip), relToCwd(path))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
