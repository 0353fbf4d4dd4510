package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/docpipe/searchify/internal/api"
	"github.com/docpipe/searchify/internal/config"
	"github.com/docpipe/searchify/internal/docintel"
	"github.com/docpipe/searchify/internal/poll"
	"github.com/docpipe/searchify/version"
)

var (
	cfgFile      string
	outputFormat string
	endpoint     string
	apiKey       string
)

var rootCmd = &cobra.Command{
	Use:   "searchify",
	Short: "Make scanned PDFs searchable with Azure Document Intelligence",
	Long: `Searchify submits scanned PDF documents to Azure Document Intelligence
and retrieves the results.

Two flows are supported:
  - convert: produce a searchable PDF (original pages plus an invisible,
    selectable text layer built by the service)
  - read: extract the recognized text as structured JSON and a plain-text
    transcript

All recognition happens in the remote service; searchify handles submission,
status polling, and saving the results.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.searchify/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&outputFormat, "format", "yaml", "report output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVarP(
		&endpoint, "endpoint", "e", "", "Document Intelligence endpoint",
	)
	rootCmd.PersistentFlags().StringVarP(
		&apiKey, "key", "k", "", "Document Intelligence subscription key",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig builds the effective configuration: file/env config with any
// endpoint/key flags layered on top.
func loadConfig() (*config.Config, error) {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg := cm.Get()
	if endpoint != "" {
		cfg.Service.Endpoint = endpoint
	}
	if apiKey != "" {
		cfg.Service.Key = apiKey
	}
	return cfg, nil
}

// newLogger constructs the process logger at the configured level.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// newClient constructs the service client. A failure here (missing endpoint
// or key) is the one case where the process exits non-zero.
func newClient(cfg *config.Config, logger *slog.Logger) (*docintel.Client, error) {
	return docintel.NewClient(docintel.Config{
		Endpoint:   cfg.Service.Endpoint,
		Key:        cfg.ResolvedKey(),
		APIVersion: cfg.Service.APIVersion,
		ModelID:    cfg.Service.ModelID,
		Timeout:    time.Duration(cfg.Service.TimeoutSeconds) * time.Second,
		Logger:     logger.With("component", "docintel"),
	})
}

// newPoller constructs the status poller from config.
func newPoller(cfg *config.Config, logger *slog.Logger) *poll.Poller {
	return poll.New(
		time.Duration(cfg.Polling.IntervalSeconds)*time.Second,
		cfg.Polling.MaxAttempts,
		logger.With("component", "poll"),
	)
}
