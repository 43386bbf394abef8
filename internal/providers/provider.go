// Package providers holds the external service clients the extraction
// pipeline depends on: chat/vision LLM clients and OCR providers, plus the
// rate limiting and structured-output plumbing shared between them.
package providers

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// LLMClient is the interface for chat and vision completion requests.
type LLMClient interface {
	// Chat sends a chat completion request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the client identifier (e.g., "openrouter").
	Name() string

	// Rate limiting properties
	RequestsPerMinute() int
	MaxRetries() int
	RetryDelayBase() time.Duration
}

// OCRProvider handles image-to-text recognition. Separate from LLMClient
// because it has different rate limiting, retry patterns, and result
// handling (recognized lines vs chat completions).
type OCRProvider interface {
	// Name returns the provider identifier (e.g., "mistral-ocr").
	Name() string

	// ProcessImage extracts text from an image.
	ProcessImage(ctx context.Context, image []byte, pageNum int) (*OCRResult, error)

	// Rate limiting properties
	RequestsPerSecond() float64
	MaxRetries() int
	RetryDelayBase() time.Duration
}

// Message represents a chat message.
type Message struct {
	Role    string   `json:"role"` // "system", "user", "assistant"
	Content string   `json:"content"`
	Images  [][]byte `json:"-"` // For vision models (base64 encoded in request)
}

// ResponseFormat specifies structured output format.
type ResponseFormat struct {
	Type       string          `json:"type"` // "json_schema"
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// ChatRequest is a request to an LLM.
type ChatRequest struct {
	Messages []Message `json:"messages"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	// Generation parameters
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Timeout     time.Duration `json:"-"`

	// Structured output
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// ChatResult is the complete response from an LLM call.
type ChatResult struct {
	Content    string          `json:"content"`
	ParsedJSON json.RawMessage `json:"parsed_json,omitempty"` // Set when ResponseFormat was requested

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Timing
	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`
}

// OCRLine is one recognized text line with its confidence and optional
// bounding geometry (corner points in page coordinates).
type OCRLine struct {
	Text       string       `json:"text"`
	Confidence float64      `json:"confidence"`
	Geometry   [][2]float64 `json:"geometry,omitempty"`
	Page       int          `json:"page"`
}

// OCRResult is the response from an OCR provider.
type OCRResult struct {
	Lines         []OCRLine     `json:"lines"`
	Provider      string        `json:"provider"`
	ExecutionTime time.Duration `json:"execution_time"`
}

// Text joins the recognized lines with newlines.
func (r *OCRResult) Text() string {
	parts := make([]string, 0, len(r.Lines))
	for _, line := range r.Lines {
		parts = append(parts, line.Text)
	}
	return strings.Join(parts, "\n")
}
