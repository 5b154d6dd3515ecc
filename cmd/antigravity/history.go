package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alucardeht/antigravity/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history [RUN_ID]",
		Short: "List recorded runs, or show the files of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup("."); err != nil {
				return err
			}
			defer a.close()
			if a.store == nil {
				return errors.New("history is disabled")
			}
			w := cmd.OutOrStdout()

			if len(args) == 1 {
				run, err := a.store.Get(args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(w, run)
				}
				return printRun(w, run)
			}

			runs, err := a.store.List(limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(w, runs)
			}
			return printRuns(w, runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func printRuns(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTARTED\tHEALTHY\tROOT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", shortID(r.ID), r.Kind, r.StartedAt.Local().Format(time.DateTime), r.Healthy, r.Root)
	}
	return tw.Flush()
}

func printRun(w io.Writer, r *history.Run) error {
	fmt.Fprintf(w, "Run %s (%s) at %s\n", r.ID, r.Kind, r.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "Root: %s\n", r.Root)
	if r.Summary != "" {
		fmt.Fprintf(w, "Summary: %s\n", r.Summary)
	}
	if r.RawPath != "" {
		fmt.Fprintf(w, "Raw dump: %s\n", r.RawPath)
	}
	if r.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", r.Error)
	}
	if len(r.Files) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTION\tCATEGORY\tPATH")
	for _, f := range r.Files {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Action, f.Category, f.Path)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
