package main

import (
	"github.com/spf13/cobra"

	"github.com/docpipe/searchify/internal/analyze"
	"github.com/docpipe/searchify/internal/api"
)

var readOutputPath string

var readCmd = &cobra.Command{
	Use:   "read <file>",
	Short: "Extract text from a PDF as JSON and plain text",
	Long: `Run a read-only analysis of a PDF and save the recognized text.

Writes two files into the output path:
  output.json - per-page line data with formatted bounding boxes
  output.txt  - the full document content followed by one line per
                recognized text line, in reading order

Example:
  searchify read scan.pdf --endpoint https://myres.cognitiveservices.azure.com --key $AZURE_DI_KEY --path ./out`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg.Logging.Level)

		client, err := newClient(cfg, logger)
		if err != nil {
			return err
		}

		an, err := analyze.New(analyze.Config{
			Client: client,
			Poller: newPoller(cfg, logger),
			Logger: logger.With("component", "analyze"),
		})
		if err != nil {
			return err
		}

		reports, err := an.Run(cmd.Context(), args[0], readOutputPath)
		if err != nil {
			logger.Error("read analysis failed", "file", args[0], "error", err)
			return nil
		}

		return api.Output(map[string]any{
			"pages":  len(reports),
			"output": readOutputPath,
		})
	},
}

func init() {
	readCmd.Flags().StringVar(&readOutputPath, "path", ".", "directory for output.json and output.txt")
}
