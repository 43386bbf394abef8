package ingest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

var (
	jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	pngBytes  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00, 0x00}
)

func testResolver() *Resolver {
	return NewResolver(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Kind
	}{
		{"pdf", []byte("%PDF-1.7 rest"), KindPDF},
		{"jpeg", jpegBytes, KindJPEG},
		{"png", pngBytes, KindPNG},
		{"text", []byte("hello"), KindUnknown},
		{"empty", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.data); got != tt.want {
				t.Errorf("Sniff() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFromBytes(t *testing.T) {
	r := testResolver()

	t.Run("image bytes pass through", func(t *testing.T) {
		got, err := r.FromBytes(jpegBytes)
		if err != nil {
			t.Fatalf("FromBytes: %v", err)
		}
		if string(got) != string(jpegBytes) {
			t.Error("image bytes should be returned unchanged")
		}
	})

	t.Run("empty input rejected", func(t *testing.T) {
		if _, err := r.FromBytes(nil); err == nil {
			t.Fatal("expected error for empty input")
		}
	})

	t.Run("malformed PDF rejected", func(t *testing.T) {
		if _, err := r.FromBytes([]byte("%PDF-1.7 not a real pdf")); err == nil {
			t.Fatal("expected error for malformed PDF")
		}
	})
}

func TestFromPath(t *testing.T) {
	r := testResolver()

	path := filepath.Join(t.TempDir(), "scan.png")
	if err := os.WriteFile(path, pngBytes, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := r.FromPath(path)
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}
	if string(got) != string(pngBytes) {
		t.Error("file bytes should be returned unchanged")
	}

	if _, err := r.FromPath(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFromURL(t *testing.T) {
	r := testResolver()

	t.Run("downloads image bytes", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write(jpegBytes)
		}))
		defer srv.Close()

		got, err := r.FromURL(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("FromURL: %v", err)
		}
		if string(got) != string(jpegBytes) {
			t.Error("downloaded bytes should be returned unchanged")
		}
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer srv.Close()

		if _, err := r.FromURL(context.Background(), srv.URL); err == nil {
			t.Fatal("expected error for 404 response")
		}
	})

	t.Run("oversized download rejected", func(t *testing.T) {
		r := testResolver()
		r.maxBytes = 4
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write(jpegBytes)
		}))
		defer srv.Close()

		if _, err := r.FromURL(context.Background(), srv.URL); err == nil {
			t.Fatal("expected error for oversized download")
		}
	})
}

func TestResolveDispatch(t *testing.T) {
	r := testResolver()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(pngBytes)
	}))
	defer srv.Close()

	got, err := r.Resolve(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Resolve(url): %v", err)
	}
	if Sniff(got) != KindPNG {
		t.Error("URL source should resolve to the served bytes")
	}

	path := filepath.Join(t.TempDir(), "scan.jpg")
	if err := os.WriteFile(path, jpegBytes, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = r.Resolve(context.Background(), path)
	if err != nil {
		t.Fatalf("Resolve(path): %v", err)
	}
	if Sniff(got) != KindJPEG {
		t.Error("path source should resolve to the file bytes")
	}
}
