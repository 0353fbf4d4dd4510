// Package convert orchestrates the searchable-PDF pipeline: submit a scanned
// PDF to Document Intelligence, poll the operation to completion, and write
// the returned searchable PDF next to the original (or into a chosen output
// directory). Directory mode is best effort: one bad file does not abort the
// batch.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/docpipe/searchify/internal/docintel"
	"github.com/docpipe/searchify/internal/poll"
)

// ErrInvalidInput indicates the input path is missing or not a PDF.
var ErrInvalidInput = errors.New("invalid input")

// OutputPrefix is prepended to each converted file's name.
const OutputPrefix = "searchable_"

// Config holds the converter's dependencies.
type Config struct {
	Client *docintel.Client
	Poller *poll.Poller
	Logger *slog.Logger
}

// Converter runs the submit/poll/fetch pipeline over files.
type Converter struct {
	client *docintel.Client
	poller *poll.Poller
	logger *slog.Logger
}

// New creates a Converter.
func New(cfg Config) (*Converter, error) {
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
	return &Converter{client: cfg.Client, poller: poller, logger: logger}, nil
}

// FileResult records the outcome of one file for the batch report.
type FileResult struct {
	Source      string `json:"source" yaml:"source"`
	Output      string `json:"output,omitempty" yaml:"output,omitempty"`
	OperationID string `json:"operation_id,omitempty" yaml:"operation_id,omitempty"`
	Status      string `json:"status" yaml:"status"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report aggregates a batch run.
type Report struct {
	Attempted int          `json:"attempted" yaml:"attempted"`
	Succeeded int          `json:"succeeded" yaml:"succeeded"`
	Files     []FileResult `json:"files" yaml:"files"`
}

// Run converts a single PDF or every PDF in a directory (non-recursive).
// outputDir may be empty: it defaults to the input file's directory, or to
// the input directory itself in batch mode. Per-file failures are logged and
// recorded in the report; only an unusable input path returns an error.
func (c *Converter) Run(ctx context.Context, input, outputDir string) (*Report, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, input)
	}

	var jobs []*Job
	switch {
	case info.IsDir():
		if outputDir == "" {
			outputDir = input
		}
		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", input, err)
		}
		for _, e := range entries {
			if e.IsDir() || !isPDF(e.Name()) {
				continue
			}
			jobs = append(jobs, NewJob(
				filepath.Join(input, e.Name()),
				filepath.Join(outputDir, OutputPrefix+e.Name()),
			))
		}
		if len(jobs) == 0 {
			c.logger.Info("no PDF files found", "dir", input)
			return &Report{}, nil
		}
	default:
		if !isPDF(input) {
			return nil, fmt.Errorf("%w: %s is not a PDF file", ErrInvalidInput, input)
		}
		if outputDir == "" {
			outputDir = filepath.Dir(input)
		}
		jobs = append(jobs, NewJob(input, filepath.Join(outputDir, OutputPrefix+filepath.Base(input))))
	}

	report := &Report{Attempted: len(jobs)}
	for _, job := range jobs {
		if err := c.ConvertFile(ctx, job); err != nil {
			c.logger.Error("conversion failed", "file", job.SourcePath, "status", job.Status, "error", err)
		} else {
			report.Succeeded++
			c.logger.Info("conversion complete", "file", job.SourcePath, "output", job.OutputPath)
		}
		report.Files = append(report.Files, fileResult(job))

		// A cancelled context would fail every remaining file the same way.
		if ctx.Err() != nil {
			break
		}
	}

	c.logger.Info("batch complete", "succeeded", report.Succeeded, "attempted", report.Attempted)
	return report, nil
}

// ConvertFile runs one job to a terminal status. The job records the
// operation ID and final state; the returned error is also stored on the job.
func (c *Converter) ConvertFile(ctx context.Context, job *Job) error {
	doc, err := os.ReadFile(job.SourcePath)
	if err != nil {
		return c.fail(job, JobFailed, fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}

	// Preflight is advisory: the service is the authority on what it will
	// accept, so a local parse failure only warns.
	if pages, err := pdfapi.PageCountFile(job.SourcePath); err != nil {
		c.logger.Warn("could not read page count", "file", job.SourcePath, "error", err)
	} else {
		c.logger.Debug("read input", "file", job.SourcePath, "bytes", len(doc), "pages", pages)
	}

	opID, err := c.client.Submit(ctx, doc, true)
	if err != nil {
		return c.fail(job, JobFailed, err)
	}
	job.OperationID = opID

	c.logger.Info("submitted", "file", filepath.Base(job.SourcePath), "operation_id", opID)

	_, err = c.poller.Wait(ctx, opID, func(ctx context.Context) (*docintel.Operation, error) {
		return c.client.Status(ctx, opID)
	})
	if err != nil {
		if errors.Is(err, poll.ErrTimedOut) {
			return c.fail(job, JobTimedOut, err)
		}
		return c.fail(job, JobFailed, err)
	}

	pdf, err := c.client.ResultPDF(ctx, opID)
	if err != nil {
		return c.fail(job, JobFailed, err)
	}

	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0755); err != nil {
		return c.fail(job, JobFailed, &docintel.DownloadError{OperationID: opID, Err: err})
	}
	if err := os.WriteFile(job.OutputPath, pdf, 0644); err != nil {
		return c.fail(job, JobFailed, &docintel.DownloadError{OperationID: opID, Err: err})
	}

	job.Status = JobSucceeded
	return nil
}

func (c *Converter) fail(job *Job, status JobStatus, err error) error {
	job.Status = status
	job.Err = err
	return err
}

func fileResult(job *Job) FileResult {
	r := FileResult{
		Source:      job.SourcePath,
		OperationID: job.OperationID,
		Status:      string(job.Status),
	}
	if job.Status == JobSucceeded {
		r.Output = job.OutputPath
	}
	if job.Err != nil {
		r.Error = job.Err.Error()
	}
	return r
}

func isPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
