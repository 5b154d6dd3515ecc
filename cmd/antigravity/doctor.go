package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alucardeht/antigravity/internal/doctor"
	"github.com/alucardeht/antigravity/internal/tools/project"
)

func newDoctorCmd(a *app) *cobra.Command {
	var (
		fix    bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "doctor [DIR]",
		Short: "Check a project against the manifest and optionally repair it",
		Long: "Reports missing and empty entries of the generated tree. With --fix, creates\n" +
			"what is missing and fills empty files; files with content are never touched.\n" +
			"Exits with status 1 when a required entry is still missing or empty.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			if err := a.setup(root); err != nil {
				return err
			}
			defer a.close()

			out, err := a.env.Doctor(root, fix)
			if err != nil {
				return err
			}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else if err := printDoctor(cmd.OutOrStdout(), out); err != nil {
				return err
			}

			if !out.Healthy {
				return errUnhealthy
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "repair missing and empty entries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printDoctor(w io.Writer, out *project.DoctorOutput) error {
	for _, a := range out.Actions {
		if a.Err != nil {
			fmt.Fprintf(w, "FAILED   %s: %v\n", a.Entry.Path, a.Err)
			continue
		}
		fmt.Fprintf(w, "%-8s %s\n", actionLabel(a.Action), a.Entry.Path)
	}
	if len(out.Actions) > 0 {
		fmt.Fprintln(w)
	}
	return out.After.Render(w)
}

func actionLabel(a doctor.Action) string {
	switch a {
	case doctor.CreatedDir, doctor.CreatedFile:
		return "CREATED"
	case doctor.Rewrote:
		return "FILLED"
	}
	return string(a)
}
