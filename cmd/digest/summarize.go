package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/digest-flow/internal/summarizer"
)

func buildSummarizeCommand() *cobra.Command {
	var transcriptMode bool

	cmd := &cobra.Command{
		Use:   "summarize <file>",
		Short: "Summarize a text document or a transcript payload and print the result",
		Long: `Summarize reads a plain-text document, or with --transcript a
transcription payload ({"segments": [...]}), and prints the summary.
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := summarizer.ModeDocument
			if transcriptMode {
				mode = summarizer.ModeMeeting
			}
			return runSummarize(cmd.Context(), args[0], mode, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&transcriptMode, "transcript", false, "treat the file as a transcription payload")

	return cmd
}

func runSummarize(ctx context.Context, path string, mode summarizer.Mode, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	content, err := readInput(path)
	if err != nil {
		return err
	}

	sum, err := newSummarizer(cfg, nil, log)
	if err != nil {
		return err
	}

	summary, err := sum.Summarize(ctx, content, mode)
	if err != nil {
		return fmt.Errorf("summarize %s: %w", path, err)
	}

	_, err = fmt.Fprintln(out, summary)
	return err
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
