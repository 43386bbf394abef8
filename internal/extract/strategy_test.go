package extract

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackzampolin/veridoc/internal/docmodel"
	"github.com/jackzampolin/veridoc/internal/providers"
)

var passportReply = json.RawMessage(`{
	"document_type": {"value": "international_passport", "confidence": 0.95},
	"surname": {"value": "OKAFOR", "confidence": 0.9},
	"given_names": {"value": "CHINEDU EMEKA", "confidence": 0.9},
	"document_number": {"value": "A1234567", "confidence": 0.92},
	"date_of_birth": {"value": "1985-03-15", "confidence": 0.88}
}`)

func TestTextStrategy(t *testing.T) {
	t.Run("successful extraction", func(t *testing.T) {
		client := providers.NewMockClient()
		client.ResponseJSON = passportReply

		s := NewTextStrategy(client, "test-model", nil)
		doc, err := s.Extract(context.Background(), Input{
			Text: "PASSPORT\nSurname: OKAFOR\nGiven Names: CHINEDU EMEKA\nPassport No: A1234567\nDate of Birth: 15 MAR 1985",
		})
		if err != nil {
			t.Fatal(err)
		}
		if doc.TypeLabel() != "international_passport" {
			t.Errorf("type = %q", doc.TypeLabel())
		}
		if _, ok := doc.Field("surname"); !ok {
			t.Error("surname missing")
		}
		method := doc.ExtractionMethod.Text()
		if method == "" {
			t.Error("extraction method must be set")
		}
	})

	t.Run("empty text rejected without provider call", func(t *testing.T) {
		client := providers.NewMockClient()
		s := NewTextStrategy(client, "", nil)
		if _, err := s.Extract(context.Background(), Input{Text: "   "}); err == nil {
			t.Fatal("expected error")
		}
		if client.RequestCount() != 0 {
			t.Errorf("provider should not be called, got %d requests", client.RequestCount())
		}
	})

	t.Run("provider failure propagates", func(t *testing.T) {
		client := providers.NewMockClient()
		client.ShouldFail = true
		s := NewTextStrategy(client, "", nil)
		if _, err := s.Extract(context.Background(), Input{Text: "PASSPORT"}); err == nil {
			t.Fatal("expected provider error")
		}
	})

	t.Run("reply violating the response schema rejected", func(t *testing.T) {
		client := providers.NewMockClient()
		// No document_type and a wrapped field without confidence.
		client.ResponseJSON = json.RawMessage(`{"surname": {"value": "OKAFOR"}}`)

		s := NewTextStrategy(client, "", nil)
		if _, err := s.Extract(context.Background(), Input{Text: "PASSPORT\nSurname: OKAFOR"}); err == nil {
			t.Fatal("expected validation error for schema-violating reply")
		}
	})

	t.Run("name", func(t *testing.T) {
		if got := NewTextStrategy(providers.NewMockClient(), "", nil).Name(); got != MethodText {
			t.Errorf("Name() = %q", got)
		}
	})
}

func TestVisionStrategy(t *testing.T) {
	t.Run("successful extraction", func(t *testing.T) {
		client := providers.NewMockClient()
		client.ResponseJSON = passportReply

		s := NewVisionStrategy(client, "vision-model", nil)
		doc, err := s.Extract(context.Background(), Input{Image: []byte{0xff, 0xd8, 0xff, 0xe0}})
		if err != nil {
			t.Fatal(err)
		}
		if doc.TypeLabel() != "international_passport" {
			t.Errorf("type = %q", doc.TypeLabel())
		}
	})

	t.Run("missing image rejected", func(t *testing.T) {
		s := NewVisionStrategy(providers.NewMockClient(), "", nil)
		if _, err := s.Extract(context.Background(), Input{Text: "some text"}); err == nil {
			t.Fatal("expected error for missing image")
		}
	})

	t.Run("name", func(t *testing.T) {
		if got := NewVisionStrategy(providers.NewMockClient(), "", nil).Name(); got != MethodVision {
			t.Errorf("Name() = %q", got)
		}
	})
}

func TestIsSufficient(t *testing.T) {
	mk := func(docType string, fields map[string]string) *docmodel.ExtractedDocument {
		doc := &docmodel.ExtractedDocument{
			Fields:      make(map[string]docmodel.FieldValue),
			ExtraFields: make(map[string]docmodel.FieldValue),
		}
		if docType != "" {
			doc.Type = docmodel.NewField(docType, 0.9)
		}
		for name, value := range fields {
			doc.SetField(name, docmodel.NewField(value, 0.9))
		}
		return doc
	}

	t.Run("core plus supporting passes", func(t *testing.T) {
		doc := mk("international_passport", map[string]string{
			"document_number": "A1234567",
			"date_of_birth":   "1985-03-15",
		})
		if !IsSufficient(doc) {
			t.Error("expected sufficient")
		}
	})

	t.Run("name counts as core", func(t *testing.T) {
		doc := mk("", map[string]string{
			"surname":     "OKAFOR",
			"nationality": "EXAMPLIAN",
		})
		if !IsSufficient(doc) {
			t.Error("surname plus nationality should pass")
		}
	})

	t.Run("core without supporting fails", func(t *testing.T) {
		doc := mk("international_passport", map[string]string{
			"document_number": "A1234567",
		})
		if IsSufficient(doc) {
			t.Error("no supporting field, expected insufficient")
		}
	})

	t.Run("type plus extra fields passes", func(t *testing.T) {
		doc := mk("contract", nil)
		doc.ExtraFields["effective_date"] = docmodel.NewField("2024-01-01", 0.9)
		if !IsSufficient(doc) {
			t.Error("contract with extra field should pass")
		}
	})

	t.Run("nil and empty fail", func(t *testing.T) {
		if IsSufficient(nil) {
			t.Error("nil document cannot be sufficient")
		}
		if IsSufficient(mk("", nil)) {
			t.Error("empty document cannot be sufficient")
		}
	})
}
