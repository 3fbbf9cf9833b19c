package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/heikopanjas/vibe-check/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available languages, integrations, and agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newReconciler()
		if err != nil {
			return err
		}
		m := r.Manifest

		fmt.Printf("%s\n", ui.RenderHeader("Languages"))
		printSorted(mapKeysOf(m.Languages))

		fmt.Printf("\n%s\n", ui.RenderHeader("Integrations"))
		printSorted(mapKeysOf(m.Integration))

		fmt.Printf("\n%s\n", ui.RenderHeader("Agents"))
		agents := make([]string, 0, len(m.Agents))
		for name := range m.Agents {
			agents = append(agents, name)
		}
		printSorted(agents)
		return nil
	},
}

func printSorted(names []string) {
	if len(names) == 0 {
		fmt.Printf("  %s\n", ui.RenderMuted("(none)"))
		return
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
}

func mapKeysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func init() {
	rootCmd.AddCommand(listCmd)
}
