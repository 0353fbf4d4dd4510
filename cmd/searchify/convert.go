package main

import (
	"github.com/spf13/cobra"

	"github.com/docpipe/searchify/internal/api"
	"github.com/docpipe/searchify/internal/convert"
)

var (
	convertInput  string
	convertOutput string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert scanned PDFs to searchable PDFs",
	Long: `Convert a scanned PDF (or every PDF in a directory) into a searchable
PDF using Azure Document Intelligence.

Each input produces searchable_<name>.pdf in the output directory. Directory
mode is best effort: files are processed one at a time and a failure on one
file does not stop the rest.

Examples:
  searchify convert -i scan.pdf -e https://myres.cognitiveservices.azure.com -k $AZURE_DI_KEY
  searchify convert -i ./scans -o ./searchable -e https://myres.cognitiveservices.azure.com -k $AZURE_DI_KEY`,
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

		conv, err := convert.New(convert.Config{
			Client: client,
			Poller: newPoller(cfg, logger),
			Logger: logger.With("component", "convert"),
		})
		if err != nil {
			return err
		}

		report, err := conv.Run(cmd.Context(), convertInput, convertOutput)
		if err != nil {
			// Bad input path or unreadable directory. Reported like any other
			// per-run failure; the exit code stays zero.
			logger.Error("conversion run failed", "input", convertInput, "error", err)
			return nil
		}

		return api.Output(report)
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "input PDF file or directory (required)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output directory (default: alongside input)")
	_ = convertCmd.MarkFlagRequired("input")
}
