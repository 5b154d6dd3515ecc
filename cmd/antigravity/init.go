package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alucardeht/antigravity/internal/config"
	"github.com/alucardeht/antigravity/internal/textenc"
	"github.com/alucardeht/antigravity/internal/tools/project"
)

type initFlags struct {
	brainDump  string
	stack      string
	parent     string
	blueprint  string
	preset     string
	savePreset string
	dryRun     bool
	asJSON     bool
}

func newInitCmd(a *app) *cobra.Command {
	var f initFlags

	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Generate a new agent-first project",
		Long: "Generates the .agent tree for a new project. Settings can come from a saved\n" +
			"preset (--preset); flags given on the command line win over the preset.\n" +
			"--save-preset stores the effective settings for later runs.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(""); err != nil {
				return err
			}
			defer a.close()

			settings, err := f.settings(cmd, args, a.cfg.Presets())
			if err != nil {
				return err
			}
			if settings.Name == "" {
				return errors.New("a project name is required, as an argument or from --preset")
			}
			if f.savePreset != "" {
				file, err := a.cfg.Presets().Save(f.savePreset, settings)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Preset %s saved to %s\n", f.savePreset, file)
			}

			req := project.InitRequest{
				Name:      settings.Name,
				Parent:    settings.Parent,
				Stack:     settings.Stack,
				Blueprint: settings.Blueprint,
				DryRun:    f.dryRun,
			}
			if settings.BrainDump != "" {
				raw, detected, err := textenc.ReadFileAsUTF8(settings.BrainDump)
				if err != nil {
					return fmt.Errorf("read brain dump: %w", err)
				}
				a.log.Debug("brain dump loaded", "path", settings.BrainDump, "encoding", detected.Encoding)
				req.BrainDump = raw
			}

			out, initErr := a.env.Init(req)
			if out == nil {
				return initErr
			}
			if f.asJSON {
				if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
				return initErr
			}
			printInit(cmd.OutOrStdout(), out)
			return initErr
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.brainDump, "brain-dump", "", "brain dump file to assimilate into the new project")
	fl.StringVar(&f.stack, "stack", "", "comma separated technology keywords")
	fl.StringVar(&f.parent, "parent", ".", "directory to create the project in")
	fl.StringVar(&f.blueprint, "blueprint", "", "built-in blueprint or local blueprint file (see 'antigravity blueprints')")
	fl.StringVar(&f.preset, "preset", "", "load settings from a saved preset")
	fl.StringVar(&f.savePreset, "save-preset", "", "save the effective settings as a preset")
	fl.BoolVar(&f.dryRun, "dry-run", false, "show what would be created without writing")
	fl.BoolVar(&f.asJSON, "json", false, "print the result as JSON")
	return cmd
}

// settings merges the preset, if any, with the flags the user set.
func (f *initFlags) settings(cmd *cobra.Command, args []string, store config.Presets) (config.Preset, error) {
	var p config.Preset
	if f.preset != "" {
		loaded, err := store.Load(f.preset)
		if err != nil {
			return p, err
		}
		p = *loaded
	}

	changed := cmd.Flags().Changed
	if len(args) == 1 {
		p.Name = args[0]
	}
	if changed("parent") || p.Parent == "" {
		p.Parent = f.parent
	}
	if changed("stack") {
		p.Stack = strings.Split(f.stack, ",")
	}
	if changed("blueprint") {
		p.Blueprint = f.blueprint
	}
	if changed("brain-dump") {
		p.BrainDump = f.brainDump
	}
	return p, nil
}

func printInit(w io.Writer, out *project.InitOutput) {
	if out.DryRun {
		fmt.Fprintf(w, "Dry run for %s (%s)\n", out.Name, out.Root)
		for _, p := range out.Planned {
			fmt.Fprintf(w, "  would create %s %s\n", p.Entry.Kind, p.Entry.Path)
		}
		return
	}

	fmt.Fprintf(w, "Project %s ready at %s\n", out.Name, out.Root)
	stack := "none detected"
	if len(out.Stack) > 0 {
		stack = strings.Join(out.Stack, ", ")
	}
	fmt.Fprintf(w, "  stack: %s\n", stack)
	if out.Blueprint != "" {
		fmt.Fprintf(w, "  blueprint: %s\n", out.Blueprint)
	}
	fmt.Fprintf(w, "  %d entries created\n", len(out.Actions))
	if len(out.Links) > 0 {
		fmt.Fprintf(w, "  %d sibling projects linked in .agent/memory/links.md\n", len(out.Links))
	}
	if out.Assimilation != nil {
		fmt.Fprintf(w, "  %d sections assimilated, raw dump kept at %s\n", len(out.Assimilation.Artifacts), out.Assimilation.RawPath)
	}
	if out.Report != nil {
		fmt.Fprintf(w, "  %s\n", out.Report.Summary())
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
