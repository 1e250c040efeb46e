package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/weiihann/ecoquest-analytics/internal"
	"github.com/weiihann/ecoquest-analytics/internal/dashboard"
	"github.com/weiihann/ecoquest-analytics/internal/logger"
	"github.com/weiihann/ecoquest-analytics/internal/poller"
	"github.com/weiihann/ecoquest-analytics/pkg/client"
)

var snapshotJSON bool

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch the analytics snapshot once and print the dashboard",
	Run:   snapshot,
}

func snapshot(cmd *cobra.Command, args []string) {
	log := logger.GetLogger("snapshot-cmd")

	config, err := loadConfig()
	if err != nil {
		log.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	c, err := client.NewClient(config.APIBaseURL, time.Duration(config.APITimeout)*time.Second)
	if err != nil {
		log.Error("Failed to create analytics client", "error", err, "api_base_url", config.APIBaseURL)
		os.Exit(1)
	}

	if err := printSnapshot(cmd.Context(), cmd.OutOrStdout(), c, config, snapshotJSON); err != nil {
		log.Error("Failed to print dashboard", "error", err)
		os.Exit(1)
	}
}

// printSnapshot runs a single poll and renders the resulting view. A failed
// fetch still renders (as the error view) rather than returning an error.
func printSnapshot(ctx context.Context, w io.Writer, c client.ClientInterface, config internal.Config, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	svc := poller.NewService(c, config)
	_ = svc.Poll(ctx)

	view := dashboard.Build(svc.State(), dashboard.Options{Goal: config.PilotGoal, TopN: config.TopN})
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	return dashboard.RenderText(w, view)
}

func init() {
	snapshotCmd.Flags().BoolVar(&snapshotJSON, "json", false, "Print the dashboard view as JSON")
	rootCmd.AddCommand(snapshotCmd)
}
