package recognize

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackzampolin/veridoc/internal/providers"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecognizePage(t *testing.T) {
	t.Run("returns lines and joined text", func(t *testing.T) {
		mock := providers.NewMockOCRProvider()
		mock.ResponseText = "PASSPORT\nSurname: DOE"
		e := NewEngine(mock, discardLogger())

		page, err := e.RecognizePage(context.Background(), []byte("img"), 3)
		if err != nil {
			t.Fatalf("RecognizePage: %v", err)
		}
		if page.Number != 3 {
			t.Errorf("page number = %d, want 3", page.Number)
		}
		if len(page.Lines) != 1 {
			t.Fatalf("lines = %d, want 1", len(page.Lines))
		}
		if page.Text != mock.ResponseText {
			t.Errorf("text = %q", page.Text)
		}
		if mock.RequestCount() != 1 {
			t.Errorf("request count = %d, want 1", mock.RequestCount())
		}
	})

	t.Run("rejects empty image without a provider call", func(t *testing.T) {
		mock := providers.NewMockOCRProvider()
		e := NewEngine(mock, discardLogger())

		if _, err := e.RecognizePage(context.Background(), nil, 1); err == nil {
			t.Fatal("expected error for empty image")
		}
		if mock.RequestCount() != 0 {
			t.Errorf("provider called %d times on empty image", mock.RequestCount())
		}
	})

	t.Run("retries up to the provider budget", func(t *testing.T) {
		mock := providers.NewMockOCRProvider()
		mock.ShouldFail = true
		mock.Retries = 1
		mock.RetryDelay = time.Millisecond
		e := NewEngine(mock, discardLogger())

		if _, err := e.RecognizePage(context.Background(), []byte("img"), 1); err == nil {
			t.Fatal("expected error when the provider keeps failing")
		}
		if mock.RequestCount() != 2 {
			t.Errorf("request count = %d, want 2 (initial + one retry)", mock.RequestCount())
		}
	})
}
