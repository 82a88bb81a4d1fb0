package main

import (
	"errors"
	"os"
	"strings"

	"github.com/aretw0/todomvc"
	"github.com/aretw0/todomvc/internal/cli"
	"github.com/aretw0/todomvc/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newShellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Manage the list interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			headless, _ := cmd.Flags().GetBool("headless")
			out := cmd.OutOrStdout()

			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()

			runner := todomvc.NewRunner()
			runner.Input = cli.NewInterruptibleReader(cmd.InOrStdin(), ctx.Done())
			runner.Output = out
			runner.Headless = headless

			if f, ok := out.(*os.File); ok && !headless && tui.IsTerminal(f) {
				tui.PrintBanner(out, strings.TrimSpace(todomvc.Version))
				runner.Renderer = tui.NewRenderer()
			}

			// Run returns on EOF or exit; a signal ends the shell even while
			// the runner is blocked reading input.
			done := make(chan error, 1)
			go func() { done <- runner.Run(ctx, s.app) }()

			select {
			case err := <-done:
				if errors.Is(err, cli.ErrInterrupted) {
					return nil
				}
				return err
			case <-ctx.Done():
				if sig := ctx.Signal(); sig != nil {
					cli.PrintSystemMessage(out, "Interrupted (%v)", sig)
				}
				return nil
			}
		},
	}
	cmd.Flags().Bool("headless", false, "Plain output, no banner or prompt")
	return cmd
}
