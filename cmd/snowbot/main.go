package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/snowbot/internal/cli"
	"github.com/cloo-solutions/snowbot/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "snowbot",
		Short: "Snowbot CLI - ask questions about ServiceNow incidents",
		Long: `Snowbot CLI talks to a running snowbotd server.

Environment variables:
  SNOWBOT_API_URL       API base URL (default: http://localhost:8080)
  SNOWBOT_ADMIN_TOKEN   Admin token for the reindex command`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	rootCmd.PersistentFlags().String("admin-token", "", "Admin token (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.HealthCmd())
	rootCmd.AddCommand(client.ReindexCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
