package main

import (
	"os"

	"github.com/spf13/cobra"

	"mcprouter/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mcprouter",
		Short: "MCP Router - passkey auth and server directory for MCP",
		Long:  `MCP Router provides passkey-based authentication, API key management, and a session exchange endpoint for MCP servers.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
