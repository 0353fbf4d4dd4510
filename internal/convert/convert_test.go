package convert

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docpipe/searchify/internal/docintel"
	"github.com/docpipe/searchify/internal/poll"
)

// fakeService is a minimal Document Intelligence stand-in. Every submitted
// document gets operation ID op-<n>; all operations report the configured
// status sequence, then repeat the last entry.
type fakeService struct {
	mu        sync.Mutex
	submits   int
	pdfCalls  int
	statusSeq []string
	statusIdx int
	rejectAll bool
	server    *httptest.Server
}

func newFakeService(statusSeq ...string) *fakeService {
	fs := &fakeService{statusSeq: statusSeq}
	fs.server = httptest.NewServer(http.HandlerFunc(fs.handle))
	return fs
}

func (fs *fakeService) handle(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, ":analyze"):
		if fs.rejectAll {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		fs.submits++
		w.Header().Set("Operation-Location",
			fmt.Sprintf("%s/documentintelligence/documentModels/prebuilt-read/analyzeResults/op-%d?api-version=2024-11-30", fs.server.URL, fs.submits))
		w.WriteHeader(http.StatusAccepted)

	case strings.HasSuffix(r.URL.Path, "/pdf"):
		fs.pdfCalls++
		w.Write([]byte("%PDF-1.7 searchable output"))

	default:
		status := fs.statusSeq[fs.statusIdx]
		if fs.statusIdx < len(fs.statusSeq)-1 {
			fs.statusIdx++
		}
		w.Header().Set("Content-Type", "application/json")
		if status == "failed" {
			fmt.Fprintf(w, `{"status":"failed","error":{"code":"InvalidContent","message":"corrupt PDF"}}`)
			return
		}
		fmt.Fprintf(w, `{"status":%q}`, status)
	}
}

func (fs *fakeService) close() { fs.server.Close() }

func newConverter(t *testing.T, endpoint string, maxAttempts int) *Converter {
	t.Helper()
	client, err := docintel.NewClient(docintel.Config{Endpoint: endpoint, Key: "test-key"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	conv, err := New(Config{
		Client: client,
		Poller: poll.New(time.Millisecond, maxAttempts, nil),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return conv
}

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4 scanned pages"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConverter_Run_SingleFile(t *testing.T) {
	fs := newFakeService("running", "running", "succeeded")
	defer fs.close()

	dir := t.TempDir()
	input := writePDF(t, dir, "scan.pdf")

	conv := newConverter(t, fs.server.URL, 10)

	report, err := conv.Run(context.Background(), input, "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Attempted != 1 || report.Succeeded != 1 {
		t.Errorf("report = %d/%d, want 1/1", report.Succeeded, report.Attempted)
	}

	out := filepath.Join(dir, "searchable_scan.pdf")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if len(data) == 0 {
		t.Error("output file is empty")
	}
	if fs.submits != 1 {
		t.Errorf("submissions = %d, want 1", fs.submits)
	}
}

func TestConverter_Run_FailedAnalysisSkipsDownload(t *testing.T) {
	fs := newFakeService("running", "failed")
	defer fs.close()

	dir := t.TempDir()
	input := writePDF(t, dir, "scan.pdf")

	conv := newConverter(t, fs.server.URL, 10)

	report, err := conv.Run(context.Background(), input, "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Succeeded != 0 {
		t.Errorf("succeeded = %d, want 0", report.Succeeded)
	}
	if fs.pdfCalls != 0 {
		t.Errorf("pdf downloads = %d, want 0 after failed analysis", fs.pdfCalls)
	}
	if len(report.Files) != 1 || report.Files[0].Status != string(JobFailed) {
		t.Errorf("unexpected file result: %+v", report.Files)
	}
	if _, err := os.Stat(filepath.Join(dir, "searchable_scan.pdf")); !os.IsNotExist(err) {
		t.Error("no output file should exist for a failed analysis")
	}
}

func TestConverter_Run_Timeout(t *testing.T) {
	fs := newFakeService("running")
	defer fs.close()

	dir := t.TempDir()
	input := writePDF(t, dir, "scan.pdf")

	conv := newConverter(t, fs.server.URL, 3)

	report, err := conv.Run(context.Background(), input, "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Succeeded != 0 {
		t.Errorf("succeeded = %d, want 0", report.Succeeded)
	}
	if len(report.Files) != 1 || report.Files[0].Status != string(JobTimedOut) {
		t.Errorf("unexpected file result: %+v", report.Files)
	}
}

func TestConverter_Run_Directory(t *testing.T) {
	t.Run("only PDFs are submitted", func(t *testing.T) {
		fs := newFakeService("succeeded")
		defer fs.close()

		dir := t.TempDir()
		writePDF(t, dir, "a.pdf")
		writePDF(t, dir, "B.PDF") // extension match is case-insensitive
		os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a pdf"), 0644)
		os.WriteFile(filepath.Join(dir, "cover.png"), []byte("image"), 0644)
		os.Mkdir(filepath.Join(dir, "nested"), 0755)
		writePDF(t, filepath.Join(dir, "nested"), "ignored.pdf") // non-recursive

		conv := newConverter(t, fs.server.URL, 10)

		report, err := conv.Run(context.Background(), dir, "")
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if fs.submits != 2 {
			t.Errorf("submissions = %d, want 2", fs.submits)
		}
		if report.Attempted != 2 || report.Succeeded != 2 {
			t.Errorf("report = %d/%d, want 2/2", report.Succeeded, report.Attempted)
		}
		for _, name := range []string{"searchable_a.pdf", "searchable_B.PDF"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Errorf("missing output %s: %v", name, err)
			}
		}
	})

	t.Run("batch continues past failures", func(t *testing.T) {
		fs := newFakeService("succeeded")
		fs.rejectAll = true // every submit is rejected
		defer fs.close()

		dir := t.TempDir()
		writePDF(t, dir, "a.pdf")
		writePDF(t, dir, "b.pdf")

		conv := newConverter(t, fs.server.URL, 10)

		report, err := conv.Run(context.Background(), dir, "")
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if report.Attempted != 2 || report.Succeeded != 0 {
			t.Errorf("report = %d/%d, want 0/2", report.Succeeded, report.Attempted)
		}
		for _, f := range report.Files {
			if f.Status != string(JobFailed) || f.Error == "" {
				t.Errorf("unexpected file result: %+v", f)
			}
		}
	})

	t.Run("empty directory yields empty report", func(t *testing.T) {
		fs := newFakeService("succeeded")
		defer fs.close()

		dir := t.TempDir()
		os.WriteFile(filepath.Join(dir, "readme.md"), []byte("no pdfs here"), 0644)

		conv := newConverter(t, fs.server.URL, 10)

		report, err := conv.Run(context.Background(), dir, "")
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if report.Attempted != 0 || fs.submits != 0 {
			t.Errorf("expected no submissions, got %d attempted / %d submits", report.Attempted, fs.submits)
		}
	})

	t.Run("separate output directory", func(t *testing.T) {
		fs := newFakeService("succeeded")
		defer fs.close()

		inDir := t.TempDir()
		outDir := filepath.Join(t.TempDir(), "converted")
		writePDF(t, inDir, "scan.pdf")

		conv := newConverter(t, fs.server.URL, 10)

		if _, err := conv.Run(context.Background(), inDir, outDir); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(outDir, "searchable_scan.pdf")); err != nil {
			t.Errorf("missing output in %s: %v", outDir, err)
		}
	})
}

func TestConverter_Run_InvalidInput(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		fs := newFakeService("succeeded")
		defer fs.close()

		conv := newConverter(t, fs.server.URL, 10)

		_, err := conv.Run(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"), "")
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("not a PDF", func(t *testing.T) {
		fs := newFakeService("succeeded")
		defer fs.close()

		dir := t.TempDir()
		path := filepath.Join(dir, "notes.txt")
		os.WriteFile(path, []byte("text"), 0644)

		conv := newConverter(t, fs.server.URL, 10)

		_, err := conv.Run(context.Background(), path, "")
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if fs.submits != 0 {
			t.Errorf("submissions = %d, want 0", fs.submits)
		}
	})
}
