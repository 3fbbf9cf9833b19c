package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heikopanjas/vibe-check/internal/ui"
)

var updateFrom string

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update global templates from source",
	Long: `Refresh the global template directory from the configured source.

The source is a GitHub tree URL (https://github.com/owner/repo/tree/branch/path)
or a local directory. --from overrides the configured source for this run;
use 'vibe-check config set source.url <url>' to change it permanently.

After updating, re-run 'vibe-check init' in each project to pick up the new
templates.

EXAMPLES:
Update from the configured source:
  vibe-check update

Update from a fork:
  vibe-check update --from https://github.com/me/templates/tree/main/templates

Update from a local checkout:
  vibe-check update --from ~/src/templates`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := templateDir()
		if err != nil {
			return err
		}
		src := templateSource(updateFrom)
		fmt.Printf("%s Updating global templates from %s\n", ui.RenderAccent(ui.IconStep), src.URL)
		return fetchTemplates(src, dir)
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateFrom, "from", "", "Path or URL to download/copy templates from")
	rootCmd.AddCommand(updateCmd)
}
