package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/meetingmesh/config"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke [transcript]",
	Short: "Process one transcript and print the outcome",
	Long: `Process a single meeting transcript and print the textual outcome.

The transcript is taken from the argument, or from stdin when the argument
is omitted or "-":

  meetingmesh invoke "Alice: file a ticket for the login bug."
  cat standup.txt | meetingmesh invoke`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transcript, err := readTranscript(args)
		if err != nil {
			return err
		}

		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}

		logger := newLogger()
		orc, err := buildOrchestrator(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), orc.Handle(cmd.Context(), transcript))
		return nil
	},
}

func readTranscript(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read transcript from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
