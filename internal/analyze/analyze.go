// Package analyze runs the read-only analysis flow: submit a PDF, wait for
// the structured result, and project it into two local artifacts — a JSON
// document with per-page line data and a flat plain-text transcript.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/docpipe/searchify/internal/docintel"
	"github.com/docpipe/searchify/internal/poll"
)

const (
	JSONFileName = "output.json"
	TextFileName = "output.txt"
)

// Config holds the analyzer's dependencies.
type Config struct {
	Client *docintel.Client
	Poller *poll.Poller
	Logger *slog.Logger
}

// Analyzer runs read analyses against Document Intelligence.
type Analyzer struct {
	client *docintel.Client
	poller *poll.Poller
	logger *slog.Logger
}

// New creates an Analyzer.
func New(cfg Config) (*Analyzer, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("client is required")
	}
	poller := cfg.Poller
	if poller == nil {
		poller = poll.New(0, 0, cfg.Logger)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{client: cfg.Client, poller: poller, logger: logger}, nil
}

// LineReport is one recognized line in the JSON output.
type LineReport struct {
	LineNumber  int    `json:"line_number"`
	Content     string `json:"content"`
	BoundingBox string `json:"bounding_box"`
}

// PageReport is one page in the JSON output.
type PageReport struct {
	PageNumber int          `json:"page_number"`
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	Unit       string       `json:"unit"`
	Lines      []LineReport `json:"lines"`
}

// Run analyzes filePath and writes output.json and output.txt into outDir.
// It returns the per-page projection that was written.
func (a *Analyzer) Run(ctx context.Context, filePath, outDir string) ([]PageReport, error) {
	doc, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	opID, err := a.client.Submit(ctx, doc, false)
	if err != nil {
		return nil, err
	}
	a.logger.Info("submitted for read analysis", "file", filepath.Base(filePath), "operation_id", opID)

	op, err := a.poller.Wait(ctx, opID, func(ctx context.Context) (*docintel.Operation, error) {
		return a.client.Status(ctx, opID)
	})
	if err != nil {
		return nil, err
	}
	if op.AnalyzeResult == nil {
		return nil, fmt.Errorf("operation %s succeeded without an analyzeResult", opID)
	}
	result := op.AnalyzeResult

	a.logger.Info("analysis complete", "pages", len(result.Pages), "content_chars", len(result.Content))
	for _, style := range result.Styles {
		if style.IsHandwritten {
			a.logger.Info("document contains handwritten content", "confidence", style.Confidence)
		}
	}
	for _, page := range result.Pages {
		for _, word := range page.Words {
			a.logger.Debug("word", "page", page.PageNumber, "content", word.Content, "confidence", word.Confidence)
		}
	}

	reports := Project(result)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := writeJSON(filepath.Join(outDir, JSONFileName), reports); err != nil {
		return nil, err
	}
	if err := writeText(filepath.Join(outDir, TextFileName), result); err != nil {
		return nil, err
	}

	a.logger.Info("outputs written", "dir", outDir)
	return reports, nil
}

// Project flattens an analyze result into the per-page JSON shape. Line order
// follows the service's reading order and is preserved as-is.
func Project(result *docintel.AnalyzeResult) []PageReport {
	reports := make([]PageReport, 0, len(result.Pages))
	for _, page := range result.Pages {
		pr := PageReport{
			PageNumber: page.PageNumber,
			Width:      page.Width,
			Height:     page.Height,
			Unit:       page.Unit,
			Lines:      make([]LineReport, 0, len(page.Lines)),
		}
		for i, line := range page.Lines {
			pr.Lines = append(pr.Lines, LineReport{
				LineNumber:  i,
				Content:     line.Content,
				BoundingBox: FormatPolygon(line.Polygon),
			})
		}
		reports = append(reports, pr)
	}
	return reports
}

// FormatPolygon renders a flat x,y coordinate sequence as "[x1, y1], [x2,
// y2], ...". An absent or empty polygon renders as "N/A". A trailing
// unpaired coordinate is dropped.
func FormatPolygon(polygon []float64) string {
	if len(polygon) == 0 {
		return "N/A"
	}
	var b strings.Builder
	for i := 0; i+1 < len(polygon); i += 2 {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "[%s, %s]", formatCoord(polygon[i]), formatCoord(polygon[i+1]))
	}
	return b.String()
}

// formatCoord prints whole numbers without a decimal point.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeJSON(path string, reports []PageReport) error {
	data, err := json.MarshalIndent(reports, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeText(path string, result *docintel.AnalyzeResult) error {
	var b strings.Builder
	b.WriteString("Document contains content: " + result.Content + "\n")
	for _, page := range result.Pages {
		for _, line := range page.Lines {
			b.WriteString(line.Content + "\n")
		}
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
