// Package ingest resolves extraction input (raw bytes, a local path, or an
// HTTP(S) URL) into page image bytes, rendering the first PDF page when the
// input is a PDF.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Kind is a sniffed content type.
type Kind string

const (
	KindPDF     Kind = "pdf"
	KindJPEG    Kind = "jpeg"
	KindPNG     Kind = "png"
	KindUnknown Kind = "unknown"
)

var (
	pdfMagic  = []byte("%PDF")
	jpegMagic = []byte{0xff, 0xd8, 0xff}
	pngMagic  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
)

// Sniff identifies the content type from magic bytes.
func Sniff(data []byte) Kind {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return KindPDF
	case bytes.HasPrefix(data, jpegMagic):
		return KindJPEG
	case bytes.HasPrefix(data, pngMagic):
		return KindPNG
	default:
		return KindUnknown
	}
}

const defaultMaxBytes = 50 << 20 // 50 MiB

// Resolver turns input sources into page image bytes.
type Resolver struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// NewResolver builds a Resolver with a 30s download timeout and a 50 MiB
// download cap.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: defaultMaxBytes,
		logger:   logger.With("component", "ingest"),
	}
}

// Resolve dispatches on the source string: http(s) URLs are downloaded,
// anything else is treated as a local path.
func (r *Resolver) Resolve(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return r.FromURL(ctx, source)
	}
	return r.FromPath(source)
}

// FromBytes returns image bytes for uploaded content, rendering the first
// page when the content is a PDF.
func (r *Resolver) FromBytes(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("ingest: empty input")
	}
	if Sniff(data) == KindPDF {
		r.logger.Debug("rendering first PDF page", "pdf_bytes", len(data))
		return FirstPageImage(data)
	}
	return data, nil
}

// FromPath reads a local file and resolves it like FromBytes.
func (r *Resolver) FromPath(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}
	return r.FromBytes(data)
}

// FromURL downloads a URL and resolves the body like FromBytes. Downloads
// are capped at the resolver's byte limit.
func (r *Resolver) FromURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ingest: build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ingest: download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ingest: download %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("ingest: read body: %w", err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, fmt.Errorf("ingest: download exceeds %d byte limit", r.maxBytes)
	}

	r.logger.Debug("downloaded source", "url", url, "bytes", len(data), "content_type", resp.Header.Get("Content-Type"))
	return r.FromBytes(data)
}

// FirstPageImage renders the first page of a PDF to PNG bytes. The PDF is
// validated with pdfcpu; rendering goes through pdftoppm (poppler-utils),
// which rasterizes the page instead of extracting embedded images.
func FirstPageImage(pdf []byte) ([]byte, error) {
	pageCount, err := api.PageCount(bytes.NewReader(pdf), nil)
	if err != nil {
		return nil, fmt.Errorf("ingest: invalid PDF: %w", err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("ingest: PDF has no pages")
	}

	tmpDir, err := os.MkdirTemp("", "veridoc-page-*")
	if err != nil {
		return nil, fmt.Errorf("ingest: create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
		return nil, fmt.Errorf("ingest: write temp PDF: %w", err)
	}

	outputPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.Command("pdftoppm",
		"-png",
		"-f", "1",
		"-l", "1",
		"-r", "300",
		"-singlefile",
		pdfPath,
		outputPrefix,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ingest: pdftoppm failed: %w (output: %s)", err, string(output))
	}

	data, err := os.ReadFile(outputPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("ingest: read rendered page: %w", err)
	}
	return data, nil
}
