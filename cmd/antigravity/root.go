package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alucardeht/antigravity/internal/config"
	"github.com/alucardeht/antigravity/internal/history"
	"github.com/alucardeht/antigravity/internal/logger"
	"github.com/alucardeht/antigravity/internal/tools/project"
	"github.com/alucardeht/antigravity/pkg/version"
)

// errUnhealthy makes the process exit non-zero without printing an error;
// the report has already been written.
var errUnhealthy = errors.New("project is unhealthy")

type globalFlags struct {
	configFile string
	logLevel   string
	logFormat  string
	templates  string
	noHistory  bool
}

type app struct {
	flags globalFlags
	cfg   *config.Config
	store *history.Store
	env   *project.Env
	log   *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "antigravity",
		Short:         "Bootstrap and maintain agent-first project trees",
		Long:          "antigravity generates .agent rules, workflows and skills for AI-assisted projects,\nassimilates brain dumps into them and keeps the tree healthy.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configFile, "config", "", "config file (default: user and project config)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "log format: text or json")
	pf.StringVar(&a.flags.templates, "templates", "", "directory of Markdown template overrides")
	pf.BoolVar(&a.flags.noHistory, "no-history", false, "do not record runs in the history ledger")

	root.AddCommand(
		newInitCmd(a),
		newAssimilateCmd(a),
		newDoctorCmd(a),
		newKeywordsCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
		newHistoryCmd(a),
		newPresetsCmd(a),
		newBlueprintsCmd(),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration for projectRoot, configures logging and opens
// the history ledger. An empty projectRoot skips the project config layer.
func (a *app) setup(projectRoot string) error {
	var (
		cfg *config.Config
		err error
	)
	if a.flags.configFile != "" {
		cfg, err = config.LoadFile(a.flags.configFile)
	} else {
		cfg, err = config.Load(projectRoot)
	}
	if err != nil {
		return err
	}

	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.logFormat != "" {
		cfg.Log.Format = a.flags.logFormat
	}
	if a.flags.templates != "" {
		cfg.Templates = a.flags.templates
	}
	if a.flags.noHistory {
		cfg.History.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Init(cfg.LoggerConfig())
	a.cfg = cfg
	a.log = logger.ForComponent("cli")

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.DBPath)
		if err != nil {
			a.log.Warn("history disabled", "path", cfg.History.DBPath, "error", err)
		} else {
			a.store = store
		}
	}

	a.env = project.NewEnv(cfg, a.store, version.Version)
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}
