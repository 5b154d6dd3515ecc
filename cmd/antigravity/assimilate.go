package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alucardeht/antigravity/internal/tools/project"
)

func newAssimilateCmd(a *app) *cobra.Command {
	var (
		root   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "assimilate <file>",
		Short: "File a brain dump into rules, workflows, skills and docs",
		Long: "Splits the brain dump at Markdown headers, classifies every section by keywords\n" +
			"and writes each one as a new imported_*.md file. Nothing existing is overwritten.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(root); err != nil {
				return err
			}
			defer a.close()

			out, runErr := a.env.AssimilateFile(root, args[0])
			if out == nil {
				return runErr
			}
			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else {
				printAssimilation(cmd.OutOrStdout(), out)
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "project root")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func printAssimilation(w io.Writer, out *project.AssimilateOutput) {
	if out.Result == nil {
		return
	}
	fmt.Fprintf(w, "Raw dump kept at %s\n", out.RawPath)
	for _, art := range out.Artifacts {
		fmt.Fprintf(w, "  %-9s %s (score %d)\n", art.Category, art.RelativePath, art.Score)
	}
	for _, s := range out.Skipped {
		fmt.Fprintf(w, "  skipped section %d: %s\n", s.Order, s.Reason)
	}
	fmt.Fprintf(w, "%d sections written", len(out.Artifacts))
	if out.Defaulted > 0 {
		fmt.Fprintf(w, ", %d matched no keywords and went to docs", out.Defaulted)
	}
	fmt.Fprintln(w)
}
