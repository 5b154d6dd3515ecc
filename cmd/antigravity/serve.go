package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/alucardeht/antigravity/internal/mcp"
	"github.com/alucardeht/antigravity/internal/tools"
	"github.com/alucardeht/antigravity/internal/tools/project"
	"github.com/alucardeht/antigravity/pkg/version"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the project tools over MCP on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup("."); err != nil {
				return err
			}
			defer a.close()

			registry := newRegistry(a.env)
			a.log.Info("mcp server starting", "version", version.Version, "tools", len(registry.List()))
			err := mcp.NewServer(registry, "antigravity", version.Version).ServeStdio(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func newRegistry(env *project.Env) *tools.Registry {
	registry := tools.NewRegistry()
	registry.MustRegister(project.GetTools(env)...)
	registry.MustRegister(tools.NewHealthTool(registry, version.Version))
	return registry
}
