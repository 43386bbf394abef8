package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackzampolin/veridoc/internal/api"
	"github.com/jackzampolin/veridoc/internal/docmodel"
	"github.com/jackzampolin/veridoc/internal/extract"
	"github.com/jackzampolin/veridoc/internal/pipeline"
	"github.com/jackzampolin/veridoc/internal/providers"
	"github.com/jackzampolin/veridoc/internal/recognize"
)

const scanText = `PASSPORT
Surname: OKAFOR
Given Names: CHINEDU EMEKA
Passport No: A1234567
Date of Birth: 1985-03-15
Nationality: EXAMPLIAN`

var passportReply = json.RawMessage(`{
	"document_type": {"value": "international_passport", "confidence": 0.95},
	"surname": {"value": "OKAFOR", "confidence": 0.9},
	"given_names": {"value": "CHINEDU EMEKA", "confidence": 0.9},
	"document_number": {"value": "A1234567", "confidence": 0.92},
	"date_of_birth": {"value": "1985-03-15", "confidence": 0.88}
}`)

var jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func newTestServer(t *testing.T, textClient, visionClient *providers.MockClient) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pipe, err := pipeline.New(pipeline.Config{
		Text:    extract.NewTextStrategy(textClient, "test-model", logger),
		Vision:  extract.NewVisionStrategy(visionClient, "test-vision", logger),
		Options: pipeline.Options{KeepRawCandidates: true},
		Logger:  logger,
	})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}

	ocr := providers.NewMockOCRProvider()
	ocr.ResponseText = scanText

	srv, err := New(Config{
		Pipeline: pipe,
		Engine:   recognize.NewEngine(ocr, logger),
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	return srv
}

func defaultClients() (*providers.MockClient, *providers.MockClient) {
	text := providers.NewMockClient()
	text.ResponseJSON = passportReply
	vision := providers.NewMockClient()
	vision.ShouldFail = true
	return text, vision
}

func multipartRequest(t *testing.T, url string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "scan.jpg")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(jpegBytes)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	text, vision := defaultClients()
	srv := newTestServer(t, text, vision)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" {
		t.Errorf("health status = %q", health.Status)
	}
}

func TestStatus(t *testing.T) {
	text, vision := defaultClients()
	srv := newTestServer(t, text, vision)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.OCRProvider != "mock-ocr" {
		t.Errorf("ocr provider = %q", status.OCRProvider)
	}
}

func TestExtractMultipart(t *testing.T) {
	text, vision := defaultClients()
	srv := newTestServer(t, text, vision)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.DefaultClient.Do(multipartRequest(t, ts.URL+"/v1/extract", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var extraction api.ExtractionResponse
	if err := json.NewDecoder(resp.Body).Decode(&extraction); err != nil {
		t.Fatal(err)
	}
	if len(extraction.Documents) != 1 {
		t.Fatalf("documents = %d, want 1", len(extraction.Documents))
	}
	doc := extraction.Documents[0]
	if doc.Status != docmodel.StatusSuccess {
		t.Fatalf("status = %s, error = %s", doc.Status, doc.Error)
	}
	if doc.Document.TypeLabel() != "international_passport" {
		t.Errorf("type = %q", doc.Document.TypeLabel())
	}
	if len(doc.CategorizedFields) == 0 {
		t.Error("categorized fields missing from structured response")
	}
	if doc.RawCandidate != nil {
		t.Error("raw candidate returned without include_raw")
	}
	if extraction.Metadata.SuccessCount != 1 {
		t.Errorf("success count = %d", extraction.Metadata.SuccessCount)
	}
}

func TestExtractIncludeRaw(t *testing.T) {
	text, vision := defaultClients()
	srv := newTestServer(t, text, vision)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	req := multipartRequest(t, ts.URL+"/v1/extract", map[string]string{"include_raw": "true"})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var extraction api.ExtractionResponse
	if err := json.NewDecoder(resp.Body).Decode(&extraction); err != nil {
		t.Fatal(err)
	}
	if extraction.Documents[0].RawCandidate == nil {
		t.Error("raw candidate missing with include_raw=true")
	}
}

func TestExtractOCRMode(t *testing.T) {
	text, vision := defaultClients()
	srv := newTestServer(t, text, vision)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	req := multipartRequest(t, ts.URL+"/v1/extract", map[string]string{"mode": "ocr"})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var ocr OCRResponse
	if err := json.NewDecoder(resp.Body).Decode(&ocr); err != nil {
		t.Fatal(err)
	}
	if len(ocr.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(ocr.Pages))
	}
	if !strings.Contains(ocr.Pages[0].Text, "PASSPORT") {
		t.Errorf("page text = %q", ocr.Pages[0].Text)
	}
}

func TestExtractJSONPath(t *testing.T) {
	text, vision := defaultClients()
	srv := newTestServer(t, text, vision)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "scan.jpg")
	if err := os.WriteFile(path, jpegBytes, 0o644); err != nil {
		t.Fatal(err)
	}

	body, _ := json.Marshal(map[string]string{"path": path})
	resp, err := http.Post(ts.URL+"/v1/extract", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body = %s", resp.StatusCode, raw)
	}
}

func TestExtractMissingInput(t *testing.T) {
	text, vision := defaultClients()
	srv := newTestServer(t, text, vision)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/extract", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestExtractCompleteFailure(t *testing.T) {
	text := providers.NewMockClient()
	text.ShouldFail = true
	vision := providers.NewMockClient()
	vision.ShouldFail = true
	srv := newTestServer(t, text, vision)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.DefaultClient.Do(multipartRequest(t, ts.URL+"/v1/extract", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}
