package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/alucardeht/antigravity/internal/doctor"
	"github.com/alucardeht/antigravity/internal/sentinel"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		fix      bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Watch a project and re-run the doctor when guarded paths change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			if err := a.setup(root); err != nil {
				return err
			}
			defer a.close()

			cfg := sentinel.DefaultConfig()
			sc := a.cfg.Sentinel
			if sc.DebounceWindow > 0 {
				cfg.DebounceWindow = sc.DebounceWindow
			}
			if sc.MaxBatchSize > 0 {
				cfg.MaxBatchSize = sc.MaxBatchSize
			}
			if len(sc.IgnorePatterns) > 0 {
				cfg.IgnorePatterns = sc.IgnorePatterns
			}
			cfg.Fix = sc.Fix || fix
			if cmd.Flags().Changed("debounce") {
				cfg.DebounceWindow = debounce
			}

			lib, err := a.env.Library(root)
			if err != nil {
				return err
			}
			d := doctor.New(a.env.Manifest, lib, a.log)

			w := cmd.OutOrStdout()
			s, err := sentinel.New(root, cfg, d, func(p sentinel.Pass) {
				printPass(w, p)
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "Watching %s (fix=%t, debounce=%s)\n", s.Root(), cfg.Fix, cfg.DebounceWindow)
			return s.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "repair the project after every change")
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before a change triggers a pass")
	return cmd
}

func printPass(w io.Writer, p sentinel.Pass) {
	stamp := time.Now().Format(time.TimeOnly)
	if p.Err != nil {
		fmt.Fprintf(w, "[%s] doctor failed: %v\n", stamp, p.Err)
		return
	}
	trigger := "startup"
	if n := len(p.Trigger); n == 1 {
		trigger = p.Trigger[0].Path
	} else if n > 1 {
		trigger = fmt.Sprintf("%d changes", n)
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", stamp, trigger, p.Result.After.Summary())
	for _, act := range p.Result.Actions {
		if act.Err != nil {
			fmt.Fprintf(w, "  FAILED %s: %v\n", act.Entry.Path, act.Err)
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", actionLabel(act.Action), act.Entry.Path)
	}
}
