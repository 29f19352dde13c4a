package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parchment-ai/parchment/internal/cli"
	"github.com/parchment-ai/parchment/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "parchment",
		Short: "Parchment CLI - question answering over your documents",
		Long: `Parchment CLI ingests documents and asks questions against them.

Environment variables:
  PARCHMENT_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.IngestCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.DocsCmd())
	rootCmd.AddCommand(client.JobCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
