package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aretw0/todomvc/internal/cli"
	"github.com/aretw0/todomvc/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes the list as MCP tools and a markdown resource, so agents can manage it.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			transport, _ := cmd.Flags().GetString("transport")
			port, _ := cmd.Flags().GetInt("port")

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			srv := mcp.NewServer(s.app, s.logger)

			switch transport {
			case "stdio":
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				s.logger.Info("Starting TodoMVC MCP Server (Stdio)")
				return srv.ServeStdio()
			case "sse":
				ctx := cli.NewSignalContext(cmd.Context())
				defer ctx.Cancel()
				if err := srv.ServeSSE(ctx, port); err != nil {
					return err
				}
				s.logger.Info("MCP Server stopped gracefully")
				return nil
			default:
				return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
			}
		},
	}

	cmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
	return cmd
}
