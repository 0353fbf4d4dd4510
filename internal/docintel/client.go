// Package docintel is a minimal HTTP client for the Azure Document
// Intelligence prebuilt-read analyze API. It covers the three calls the
// pipeline needs: submit a document, check operation status, and fetch the
// searchable-PDF artifact.
package docintel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultAPIVersion is the service API version this client targets.
	DefaultAPIVersion = "2024-11-30"

	// DefaultModelID is the model used for all analyze calls.
	DefaultModelID = "prebuilt-read"

	keyHeader = "Ocp-Apim-Subscription-Key"
)

// Config holds configuration for the Document Intelligence client.
type Config struct {
	Endpoint   string // resource endpoint, e.g. https://myresource.cognitiveservices.azure.com
	Key        string // subscription key
	APIVersion string // defaults to DefaultAPIVersion
	ModelID    string // defaults to DefaultModelID
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Client issues analyze requests against a Document Intelligence endpoint.
type Client struct {
	endpoint   string
	key        string
	apiVersion string
	modelID    string
	client     *http.Client
	logger     *slog.Logger
}

// NewClient creates a Document Intelligence client. It returns an error when
// the endpoint or key is missing; that is the only failure callers should
// treat as fatal to the whole process.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("key is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.ModelID == "" {
		cfg.ModelID = DefaultModelID
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		key:        cfg.Key,
		apiVersion: cfg.APIVersion,
		modelID:    cfg.ModelID,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}, nil
}

// Submit uploads raw PDF bytes for analysis and returns the operation ID used
// for subsequent status and result queries. When outputPDF is set the service
// additionally builds a searchable PDF artifact. Submission is a single shot:
// any failure here is a SubmissionError with no retry.
func (c *Client) Submit(ctx context.Context, doc []byte, outputPDF bool) (string, error) {
	u := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s",
		c.endpoint, c.modelID, c.apiVersion)
	if outputPDF {
		u += "&output=pdf"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set(keyHeader, c.key)

	c.logger.Debug("submitting document", "bytes", len(doc), "output_pdf", outputPDF)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &SubmissionError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &SubmissionError{StatusCode: resp.StatusCode, Detail: excerpt(body)}
	}

	loc := resp.Header.Get("Operation-Location")
	if loc == "" {
		return "", &SubmissionError{StatusCode: resp.StatusCode, Detail: "response missing Operation-Location header"}
	}

	opID, err := ExtractOperationID(loc)
	if err != nil {
		return "", &SubmissionError{StatusCode: resp.StatusCode, Detail: err.Error()}
	}

	c.logger.Debug("document accepted", "operation_id", opID)
	return opID, nil
}

// Status fetches the current state of an analyze operation. The response body
// is validated against the analyze-result schema before decoding so that
// unexpected shapes fail here, at the service boundary, rather than deeper in
// the pipeline.
func (c *Client) Status(ctx context.Context, operationID string) (*Operation, error) {
	body, err := c.get(ctx, c.resultsURL(operationID, ""))
	if err != nil {
		return nil, err
	}
	return parseOperation(body)
}

// ResultPDF downloads the searchable-PDF artifact for a succeeded operation.
func (c *Client) ResultPDF(ctx context.Context, operationID string) ([]byte, error) {
	body, err := c.get(ctx, c.resultsURL(operationID, "/pdf"))
	if err != nil {
		return nil, &DownloadError{OperationID: operationID, Err: err}
	}
	return body, nil
}

// resultsURL builds an analyzeResults URL; suffix is appended before the
// query string (e.g. "/pdf").
func (c *Client) resultsURL(operationID, suffix string) string {
	return fmt.Sprintf("%s/documentintelligence/documentModels/%s/analyzeResults/%s%s?api-version=%s",
		c.endpoint, c.modelID, operationID, suffix, c.apiVersion)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(keyHeader, c.key)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("service error (status %d): %s", resp.StatusCode, excerpt(body))
	}
	return body, nil
}

// ExtractOperationID pulls the operation ID out of an Operation-Location
// header value: the trailing path segment with any query string stripped.
func ExtractOperationID(operationLocation string) (string, error) {
	u, err := url.Parse(operationLocation)
	if err != nil {
		return "", fmt.Errorf("invalid Operation-Location %q: %w", operationLocation, err)
	}
	segments := strings.Split(strings.TrimRight(u.Path, "/"), "/")
	id := segments[len(segments)-1]
	if id == "" {
		return "", fmt.Errorf("no operation ID in Operation-Location %q", operationLocation)
	}
	return id, nil
}

// excerpt truncates response bodies for error messages.
func excerpt(body []byte) string {
	const max = 512
	s := string(body)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
