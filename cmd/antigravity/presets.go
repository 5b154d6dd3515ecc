package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alucardeht/antigravity/internal/scaffold"
)

func newPresetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List saved init presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(""); err != nil {
				return err
			}
			defer a.close()

			names, err := a.cfg.Presets().List()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintf(w, "No presets saved in %s.\n", a.cfg.PresetsDir)
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(w, n)
			}
			return nil
		},
	}
}

func newBlueprintsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blueprints",
		Short: "List the built-in project blueprints",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Available Blueprints:")
			for _, b := range scaffold.Blueprints() {
				fmt.Fprintf(w, "  %-10s %s (stack: %v)\n", b.Name, b.Description, b.Stack)
			}
		},
	}
}
