package docmodel

import (
	"encoding/json"
	"testing"
)

func TestResponseSchemaCompiles(t *testing.T) {
	var v any
	if err := json.Unmarshal(ResponseSchemaJSON(), &v); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
}

func TestValidateResponse(t *testing.T) {
	t.Run("wrapped fields pass", func(t *testing.T) {
		raw := json.RawMessage(`{
			"document_type": {"value": "passport", "confidence": 0.95},
			"surname": {"value": "OKAFOR", "confidence": 0.9},
			"mrz_lines": ["P<NGAOKAFOR<<ADA", "A12345678NGA"]
		}`)
		if err := ValidateResponse(raw); err != nil {
			t.Errorf("ValidateResponse: %v", err)
		}
	})

	t.Run("bare scalars pass", func(t *testing.T) {
		raw := json.RawMessage(`{"document_type": "drivers_license", "surname": "BELLO"}`)
		if err := ValidateResponse(raw); err != nil {
			t.Errorf("ValidateResponse: %v", err)
		}
	})

	t.Run("missing document_type fails", func(t *testing.T) {
		raw := json.RawMessage(`{"surname": "BELLO"}`)
		if err := ValidateResponse(raw); err == nil {
			t.Error("expected error for missing document_type")
		}
	})

	t.Run("out of range confidence fails", func(t *testing.T) {
		raw := json.RawMessage(`{"document_type": {"value": "passport", "confidence": 1.5}}`)
		if err := ValidateResponse(raw); err == nil {
			t.Error("expected error for confidence > 1")
		}
	})
}
