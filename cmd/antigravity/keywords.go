package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

func newKeywordsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "List classification and tech stack keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup("."); err != nil {
				return err
			}
			defer a.close()

			out, err := a.env.Keywords()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(w, out)
			}

			categories := make([]string, 0, len(out.Categories))
			for c := range out.Categories {
				categories = append(categories, c)
			}
			slices.Sort(categories)
			for _, c := range categories {
				fmt.Fprintf(w, "%s: %s\n", c, strings.Join(out.Categories[c], ", "))
			}
			fmt.Fprintf(w, "stack: %s\n", strings.Join(out.Stack, ", "))

			aliases := make([]string, 0, len(out.Aliases))
			for k, v := range out.Aliases {
				aliases = append(aliases, k+"="+v)
			}
			slices.Sort(aliases)
			fmt.Fprintf(w, "aliases: %s\n", strings.Join(aliases, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the keywords as JSON")
	return cmd
}
