package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/jackzampolin/veridoc/internal/api"
	"github.com/jackzampolin/veridoc/internal/pipeline"
	"github.com/jackzampolin/veridoc/internal/recognize"
)

const maxUploadBytes = 64 << 20

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /v1/extract", s.handleExtract)
}

// HealthResponse is the response for the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatusResponse reports server and provider status.
type StatusResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	OCRProvider   string  `json:"ocr_provider"`
}

// OCRResponse is the OCR-only extraction response. This is the only place
// raw recognized lines leave the server.
type OCRResponse struct {
	Pages []recognize.Page `json:"pages"`
}

// ErrorResponse carries a request failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// extractRequest is the JSON body for non-multipart extract requests.
type extractRequest struct {
	URL        string `json:"url,omitempty"`
	Path       string `json:"path,omitempty"`
	Mode       string `json:"mode,omitempty"` // "structured" (default) or "ocr"
	IncludeRaw bool   `json:"include_raw,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:        "ok",
		UptimeSeconds: s.Uptime().Seconds(),
		OCRProvider:   s.engine.Name(),
	})
}

// handleExtract accepts a multipart file upload or a JSON body naming a URL
// or local path, recognizes the page, and either returns the recognized
// lines (mode=ocr) or runs the full pipeline.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	image, req, err := s.readExtractInput(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	page, err := s.engine.RecognizePage(ctx, image, 1)
	if err != nil {
		s.logger.Error("recognition failed", "error", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		return
	}

	if req.Mode == "ocr" {
		writeJSON(w, http.StatusOK, OCRResponse{Pages: []recognize.Page{*page}})
		return
	}

	result, err := s.pipe.ProcessPage(ctx, image, page.Lines)
	if err != nil {
		if errors.Is(err, pipeline.ErrCompleteExtractionFailure) {
			writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
			return
		}
		s.logger.Error("pipeline failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, api.BuildExtractionResponse(result, req.IncludeRaw))
}

// readExtractInput resolves the request into page image bytes plus the
// request options, from either a multipart upload or a JSON body.
func (s *Server) readExtractInput(r *http.Request) ([]byte, extractRequest, error) {
	var req extractRequest

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, req, errors.New("invalid multipart form")
		}
		req.Mode = r.FormValue("mode")
		req.IncludeRaw = r.FormValue("include_raw") == "true"

		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, req, errors.New("multipart request requires a 'file' field")
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			return nil, req, errors.New("failed to read upload")
		}
		image, err := s.resolver.FromBytes(data)
		if err != nil {
			return nil, req, err
		}
		return image, req, nil
	}

	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return nil, req, errors.New("invalid JSON body")
		}
	}

	source := req.URL
	if source == "" {
		source = req.Path
	}
	if source == "" {
		return nil, req, errors.New("request requires a file upload, url, or path")
	}

	image, err := s.resolver.Resolve(r.Context(), source)
	if err != nil {
		return nil, req, err
	}
	return image, req, nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
