package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/todomvc"
	"github.com/aretw0/todomvc/internal/cli"
	"github.com/aretw0/todomvc/internal/config"
	"github.com/aretw0/todomvc/internal/presentation/tui"
	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/observability"
	"github.com/aretw0/todomvc/pkg/render"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "todomvc",
		Short:         "A server-side TodoMVC",
		Long:          `todomvc keeps a todo list in a pluggable store and serves it as HTML, JSON, MCP tools or a terminal shell.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Persistent flags (available to all commands)
	flags := root.PersistentFlags()
	flags.String("config", "", "Config file (default "+config.DefaultPath+")")
	flags.String("namespace", "", "Storage key of the list")
	flags.String("store", "", "Store driver: memory, file, redis or loam")
	flags.String("store-path", "", "Directory of the file and loam stores")
	flags.Bool("debug", false, "Enable debug logging")

	root.AddCommand(
		newServeCmd(),
		newMCPCmd(),
		newShellCmd(),
		newStoreCmd(),
		newVersionCmd(),
	)
	root.AddCommand(newTaskCmds()...)
	return root
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if v, _ := cmd.Flags().GetString("namespace"); v != "" {
		cfg.Namespace = v
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Store.Driver = v
	}
	if v, _ := cmd.Flags().GetString("store-path"); v != "" {
		cfg.Store.Path = v
	}
	return cfg, cfg.Validate()
}

// session bundles what a command needs to act on the list.
type session struct {
	cfg    config.Config
	app    *todomvc.App
	logger *slog.Logger
	close  func() error
}

// openSession loads config, opens the store and builds the app.
func openSession(cmd *cobra.Command, hooks ...domain.LifecycleHooks) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cli.NewLogger(cfg, debug)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	all := append([]domain.LifecycleHooks{observability.LoggingHooks(logger)}, hooks...)
	app, backend, err := cli.NewApp(cmd.Context(), cfg, logger, observability.Combine(all...))
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, app: app, logger: logger, close: backend.Close}, nil
}

func (s *session) Close() {
	if err := s.close(); err != nil {
		s.logger.Warn("Failed to close store", "error", err)
	}
}

// printList writes the list as markdown, styled when out is a terminal.
func printList(out io.Writer, state *domain.State) error {
	md := render.Markdown(state)
	if f, ok := out.(*os.File); ok && tui.IsTerminal(f) {
		styled, err := tui.NewRenderer()(md)
		if err == nil {
			md = styled
		}
	}
	_, err := fmt.Fprint(out, md)
	return err
}
