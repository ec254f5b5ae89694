package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "meetingmesh",
	Short: "MeetingMesh - meeting transcripts into executed follow-up actions",
	Long: `MeetingMesh interprets a meeting transcript into concrete follow-up
actions (tickets, calendar invites, notifications), executes them against the
configured collaborators with failure isolation, and reports one coherent
textual outcome.

Collaborators are enabled through configuration: Jira for ticketing, an
artifact-backed ICS calendar for scheduling, and AWS SNS for notifications.
Unconfigured collaborators are reported as unavailable rather than failing
the whole invocation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(invokeCmd)
}
