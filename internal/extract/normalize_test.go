package extract

import (
	"encoding/json"
	"testing"

	"github.com/jackzampolin/veridoc/internal/docmodel"
)

func TestNormalize(t *testing.T) {
	t.Run("wrapped and bare values", func(t *testing.T) {
		raw := json.RawMessage(`{
			"document_type": {"value": "international_passport", "confidence": 0.95},
			"surname": "OKAFOR",
			"document_number": {"value": "A1234567"},
			"nationality": null
		}`)
		doc, err := Normalize(raw)
		if err != nil {
			t.Fatal(err)
		}
		if doc.DocumentID == "" {
			t.Error("document id should be assigned")
		}
		if doc.TypeLabel() != "international_passport" {
			t.Errorf("type = %q", doc.TypeLabel())
		}
		if doc.Type.Confidence != 0.95 {
			t.Errorf("type confidence = %.2f, want 0.95", doc.Type.Confidence)
		}

		surname, ok := doc.Field("surname")
		if !ok {
			t.Fatal("surname missing")
		}
		if surname.Confidence != 0.7 {
			t.Errorf("bare value confidence = %.2f, want 0.7", surname.Confidence)
		}

		number, ok := doc.Field("document_number")
		if !ok {
			t.Fatal("document_number missing")
		}
		if number.Confidence != 0.8 {
			t.Errorf("wrapped value missing confidence = %.2f, want 0.8", number.Confidence)
		}

		if _, ok := doc.Field("nationality"); ok {
			t.Error("null field should be dropped")
		}
	})

	t.Run("unknown keys move to extra fields", func(t *testing.T) {
		raw := json.RawMessage(`{
			"document_type": {"value": "contract", "confidence": 0.9},
			"grantor_name": {"value": "ACME HOLDINGS", "confidence": 0.85},
			"extra_fields": {
				"effective_date": {"value": "2024-01-01", "confidence": 0.9}
			}
		}`)
		doc, err := Normalize(raw)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := doc.ExtraFields["grantor_name"]; !ok {
			t.Error("unknown top-level key should land in extra fields")
		}
		if _, ok := doc.ExtraFields["effective_date"]; !ok {
			t.Error("declared extra field should survive")
		}
		if _, ok := doc.Field("grantor_name"); ok {
			t.Error("unknown key must not appear among schema fields")
		}
	})

	t.Run("page number stripped", func(t *testing.T) {
		raw := json.RawMessage(`{"document_type": "receipt", "page_number": 3}`)
		doc, err := Normalize(raw)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := doc.ExtraFields["page_number"]; ok {
			t.Error("page_number must be stripped")
		}
	})

	t.Run("list field always a list", func(t *testing.T) {
		raw := json.RawMessage(`{"mrz_lines": {"value": ["P<EXAOKAFOR<<", "A1234567<8EXA"], "confidence": 0.9}}`)
		doc, err := Normalize(raw)
		if err != nil {
			t.Fatal(err)
		}
		f, ok := doc.Field("mrz_lines")
		if !ok {
			t.Fatal("mrz_lines missing")
		}
		items, ok := f.Value.([]docmodel.FieldValue)
		if !ok {
			t.Fatalf("mrz_lines value is %T, want list", f.Value)
		}
		if len(items) != 2 {
			t.Fatalf("len = %d, want 2", len(items))
		}
		if items[0].Confidence != 0.9 {
			t.Errorf("list items should inherit wrapper confidence, got %.2f", items[0].Confidence)
		}
	})

	t.Run("dates standardized", func(t *testing.T) {
		raw := json.RawMessage(`{"date_of_birth": {"value": "15/03/1985", "confidence": 0.9}}`)
		doc, err := Normalize(raw)
		if err != nil {
			t.Fatal(err)
		}
		f, _ := doc.Field("date_of_birth")
		if f.Value != "1985-03-15" {
			t.Errorf("date = %v, want 1985-03-15", f.Value)
		}
	})

	t.Run("plain confidence score", func(t *testing.T) {
		raw := json.RawMessage(`{"document_type": "invoice", "confidence_score": 0.82}`)
		doc, err := Normalize(raw)
		if err != nil {
			t.Fatal(err)
		}
		if doc.ConfidenceScore != 0.82 {
			t.Errorf("confidence score = %.2f, want 0.82", doc.ConfidenceScore)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := Normalize(json.RawMessage(`not json`)); err == nil {
			t.Error("expected error for invalid json")
		}
	})
}
