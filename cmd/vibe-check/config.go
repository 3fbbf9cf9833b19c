package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heikopanjas/vibe-check/internal/configstore"
	"github.com/heikopanjas/vibe-check/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage persisted configuration",
	Long: `Read and write the vibe-check configuration file.

Known keys:
  source.url       Template source (GitHub tree URL or local path)
  source.fallback  "true" to always use the embedded templates

EXAMPLES:
Point at a fork:
  vibe-check config set source.url https://github.com/me/templates/tree/main/templates

Show a value:
  vibe-check config get source.url

List everything:
  vibe-check config list`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := configstore.Open()
		if err != nil {
			return err
		}
		val := store.Get(args[0])
		if val == "" {
			fmt.Printf("%s %s is not set\n", ui.RenderMuted(ui.IconSkip), args[0])
			return nil
		}
		fmt.Println(val)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := configstore.Open()
		if err != nil {
			return err
		}
		store.Set(args[0], args[1])
		if err := store.Save(); err != nil {
			return err
		}
		fmt.Printf("%s %s = %s\n", ui.RenderPass(ui.IconPass), args[0], args[1])
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := configstore.Open()
		if err != nil {
			return err
		}
		store.Unset(args[0])
		if err := store.Save(); err != nil {
			return err
		}
		fmt.Printf("%s %s removed\n", ui.RenderPass(ui.IconPass), args[0])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := configstore.Open()
		if err != nil {
			return err
		}
		all := store.All()
		if len(all) == 0 {
			fmt.Printf("%s No configuration set\n", ui.RenderMuted(ui.IconSkip))
			return nil
		}
		for _, kv := range all {
			fmt.Printf("%s = %s\n", kv[0], kv[1])
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}
