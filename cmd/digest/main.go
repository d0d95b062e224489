package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	if err := buildCLI().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "digest",
		Short: "Summarize documents and meeting recordings",
		Long: `digest turns long documents and recorded meetings into short summaries.

Recordings go through audio extraction, object storage, an external
transcription backend and a chunked language-model summarizer.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "config file path")

	rootCmd.AddCommand(buildServeCommand())
	rootCmd.AddCommand(buildWatchCommand())
	rootCmd.AddCommand(buildSummarizeCommand())

	return rootCmd
}
