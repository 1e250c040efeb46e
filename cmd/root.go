package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/weiihann/ecoquest-analytics/internal"
	"github.com/weiihann/ecoquest-analytics/internal/logger"
)

var (
	logLevel  string
	logFormat string
	logFile   string
	noColor   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "ecoquest-analytics",
	Short: "A CLI for the EcoQuest analytics dashboard",
	Long:  `ecoquest-analytics polls the EcoQuest analytics endpoint and serves the derived dashboard: participation totals, recycling progress and environmental impact estimates.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Initialize logger with CLI flags; loadConfig refines it once config is read
		logger.Initialize(logger.Config{
			Level:        logger.LogLevel(strings.ToLower(logLevel)),
			Format:       logFormat,
			EnableColors: !noColor,
			File:         logFile,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Set the logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Set the logging format (text, json)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file, rotated by size")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "./configs", "Directory containing config.env")
}

// loadConfig loads and validates configuration, then re-initializes the
// logger from it.
func loadConfig() (internal.Config, error) {
	config, err := internal.LoadConfig(configDir)
	if err != nil {
		return config, err
	}

	logger.Initialize(loggerConfig(config))
	return config, nil
}

// loggerConfig takes logging settings from config, except where a flag was
// given explicitly. Production disables colors.
func loggerConfig(config internal.Config) logger.Config {
	flags := rootCmd.PersistentFlags()

	lc := logger.Config{
		Level:        logger.LogLevel(strings.ToLower(config.LogLevel)),
		Format:       strings.ToLower(config.LogFormat),
		EnableColors: !noColor && !config.IsProduction(),
		File:         config.LogFile,
		MaxSizeMB:    config.LogMaxSizeMB,
		MaxBackups:   config.LogMaxBackups,
	}
	if flags.Changed("log-level") {
		lc.Level = logger.LogLevel(strings.ToLower(logLevel))
	}
	if flags.Changed("log-format") {
		lc.Format = logFormat
	}
	if flags.Changed("log-file") {
		lc.File = logFile
	}
	return lc
}

func Execute() {
	err := rootCmd.Execute()
	_ = logger.Close()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
