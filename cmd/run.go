package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/weiihann/ecoquest-analytics/internal/api"
	"github.com/weiihann/ecoquest-analytics/internal/dashboard"
	"github.com/weiihann/ecoquest-analytics/internal/logger"
	"github.com/weiihann/ecoquest-analytics/internal/poller"
	"github.com/weiihann/ecoquest-analytics/pkg/client"
)

var pollOnly bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the analytics poller and dashboard API server",
	Long:  `This command starts the analytics poller and the API server concurrently. The poller fetches the analytics snapshot on start and on every poll interval; the API server serves the derived dashboard. Use --poll-only to run without the API server.`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.GetLogger("run-cmd")

		config, err := loadConfig()
		if err != nil {
			log.Error("Configuration validation failed", "error", err)
			os.Exit(1)
		}

		log.Info("Configuration loaded successfully",
			"environment", config.Environment,
			"api_base_url", config.APIBaseURL,
			"poll_interval", config.PollInterval,
			"poll_skip_overlap", config.PollSkipOverlap,
			"pilot_goal", config.PilotGoal,
			"server_host", config.ServerHost,
			"server_port", config.ServerPort,
			"poll_only", pollOnly)

		analyticsClient, err := client.NewClient(config.APIBaseURL, time.Duration(config.APITimeout)*time.Second)
		if err != nil {
			log.Error("Failed to create analytics client", "error", err, "api_base_url", config.APIBaseURL)
			os.Exit(1)
		}
		log.Info("Analytics client initialized", "endpoint", analyticsClient.Endpoint())

		pollerSvc := poller.NewService(analyticsClient, config)

		var apiServer *api.Server
		if !pollOnly {
			log.Info("Initializing API server...", "host", config.ServerHost, "port", config.ServerPort)
			apiServer, err = api.NewServer(pollerSvc, dashboard.Options{Goal: config.PilotGoal, TopN: config.TopN}, config.ImpactCacheSize)
			if err != nil {
				log.Error("Failed to create API server", "error", err)
				os.Exit(1)
			}
		}

		// Setup graceful shutdown
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		var wg sync.WaitGroup

		if !pollOnly {
			wg.Add(1)
			go func() {
				defer wg.Done()

				if err := apiServer.Run(ctx, config.ServerHost, config.ServerPort); err != nil {
					log.Error("API server error", "error", err, "host", config.ServerHost, "port", config.ServerPort)
				}
			}()
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info("Starting analytics poller workflow...",
				"poll_interval", config.PollInterval)

			if err := pollerSvc.Run(ctx); err != nil {
				log.Error("Analytics poller workflow error", "error", err)
			}
			log.Info("Analytics poller workflow stopped")
		}()

		if pollOnly {
			log.Info("Service started in poll-only mode",
				"environment", config.Environment)
		} else {
			log.Info("All services started successfully",
				"api_url", fmt.Sprintf("http://%s", config.ServerAddress()),
				"environment", config.Environment)
		}
		log.Info("Press Ctrl+C to stop all services")

		<-sigChan
		log.Info("Received shutdown signal, stopping all services...")
		cancel()

		wg.Wait()
		log.Info("All services stopped gracefully")
	},
}

func init() {
	runCmd.Flags().BoolVar(&pollOnly, "poll-only", false, "Run only the analytics poller, without the API server")
	rootCmd.AddCommand(runCmd)
}
