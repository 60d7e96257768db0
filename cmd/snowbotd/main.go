package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/snowbot/internal/cli"
	"github.com/cloo-solutions/snowbot/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "snowbotd",
		Short: "Snowbot daemon",
		Long:  "Snowbot daemon for exporting ServiceNow incidents and serving the question API",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.SnapshotCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
