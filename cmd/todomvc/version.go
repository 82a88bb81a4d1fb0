package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/todomvc"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of todomvc",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "todomvc version %s\n", strings.TrimSpace(todomvc.Version))
		},
	}
}
