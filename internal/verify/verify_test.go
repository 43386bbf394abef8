package verify

import (
	"testing"

	"github.com/jackzampolin/veridoc/internal/docmodel"
)

const sourceText = `FEDERAL REPUBLIC OF EXAMPLIA
PASSPORT
Passport No: A1234567
Surname: OKAFOR
Given Names: CHINEDU EMEKA
Date of Birth: 15/03/1985
Nationality: EXAMPLIAN`

func TestFieldGrounded(t *testing.T) {
	cases := []struct {
		name      string
		fieldName string
		value     string
		want      bool
	}{
		{"exact substring", "surname", "OKAFOR", true},
		{"case insensitive", "surname", "okafor", true},
		{"whitespace normalized", "given_names", "CHINEDU  EMEKA", true},
		{"no-space containment", "document_number", "A 1234567", true},
		{"date components", "date_of_birth", "1985-03-15", true},
		{"name tokens", "full_name", "CHINEDU OKAFOR", true},
		{"id digit runs", "document_number", "No. 1234567", true},
		{"word overlap", "issuing_country", "FEDERAL REPUBLIC OF UTOPIA", true},
		{"insufficient overlap", "remarks", "HOLDER OF DIPLOMATIC STATUS", false},
		{"absent value", "address", "123 Fake St, Nowhere", false},
		{"fabricated date", "date_of_expiry", "2035-12-31", false},
		{"partially fabricated name", "full_name", "CHINEDU SMITH", false},
		{"empty value", "surname", "   ", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FieldGrounded(tc.fieldName, tc.value, sourceText); got != tc.want {
				t.Errorf("FieldGrounded(%q, %q) = %v, want %v", tc.fieldName, tc.value, got, tc.want)
			}
		})
	}
}

func TestVerifierDowngrades(t *testing.T) {
	doc := &docmodel.ExtractedDocument{
		Type:             docmodel.NewField("international_passport", 0.95),
		ExtractionMethod: docmodel.NewField("ocr+llm (test)", 1.0),
		Fields: map[string]docmodel.FieldValue{
			"surname": docmodel.NewField("OKAFOR", 0.9),
			"address": docmodel.NewField("123 Fake St, Nowhere", 0.9),
		},
		ExtraFields: map[string]docmodel.FieldValue{
			"observed_stamp": docmodel.NewField("not in the text", 0.8),
		},
	}

	NewVerifier(TextUngroundedMultiplier).Verify(doc, sourceText)

	if got := doc.Fields["surname"].Confidence; got != 0.9 {
		t.Errorf("grounded field confidence changed: %.2f", got)
	}
	if got := doc.Fields["address"].Confidence; got != 0.45 {
		t.Errorf("ungrounded field confidence = %.2f, want 0.45", got)
	}
	if got := doc.ExtraFields["observed_stamp"].Confidence; got != 0.4 {
		t.Errorf("ungrounded extra field confidence = %.2f, want 0.4", got)
	}
	if len(doc.Fields) != 2 {
		t.Error("verification must not delete fields")
	}
	if doc.Type.Confidence != 0.95 {
		t.Error("document type must be exempt from verification")
	}
}

func TestVerifierEmptySource(t *testing.T) {
	doc := &docmodel.ExtractedDocument{
		Fields: map[string]docmodel.FieldValue{
			"surname": docmodel.NewField("OKAFOR", 0.9),
		},
	}
	NewVerifier(TextUngroundedMultiplier).Verify(doc, "  ")
	if got := doc.Fields["surname"].Confidence; got != 0.9 {
		t.Errorf("empty source must not downgrade, got %.2f", got)
	}
}

func TestFilterByConfidence(t *testing.T) {
	t.Run("removes below threshold", func(t *testing.T) {
		doc := &docmodel.ExtractedDocument{
			Type:             docmodel.NewField("international_passport", 0.95),
			ExtractionMethod: docmodel.NewField("ocr+llm (test)", 1.0),
			Fields: map[string]docmodel.FieldValue{
				"surname": docmodel.NewField("OKAFOR", 0.9),
				"address": docmodel.NewField("123 Fake St", 0.45),
			},
			ExtraFields: map[string]docmodel.FieldValue{
				"stamp": docmodel.NewField("blurry", 0.3),
			},
		}

		FilterByConfidence(doc, TextConfidenceThreshold)

		if _, ok := doc.Fields["surname"]; !ok {
			t.Error("high-confidence field removed")
		}
		if _, ok := doc.Fields["address"]; ok {
			t.Error("low-confidence field kept")
		}
		if len(doc.ExtraFields) != 0 {
			t.Error("low-confidence extra field kept")
		}
		if doc.TypeLabel() != "international_passport" {
			t.Error("type must survive filtering")
		}
		if doc.ExtractionMethod.IsEmpty() {
			t.Error("extraction method must survive filtering")
		}
	})

	t.Run("prunes emptied lists", func(t *testing.T) {
		doc := &docmodel.ExtractedDocument{
			Fields: map[string]docmodel.FieldValue{
				"mrz_lines": docmodel.NewField([]docmodel.FieldValue{
					docmodel.NewField("P<EXAOKAFOR<<", 0.3),
					docmodel.NewField("A1234567<8EXA", 0.2),
				}, 0.9),
			},
		}
		FilterByConfidence(doc, 0.65)
		if _, ok := doc.Fields["mrz_lines"]; ok {
			t.Error("list emptied by filtering should be pruned")
		}
	})

	t.Run("keeps surviving list items", func(t *testing.T) {
		doc := &docmodel.ExtractedDocument{
			Fields: map[string]docmodel.FieldValue{
				"mrz_lines": docmodel.NewField([]docmodel.FieldValue{
					docmodel.NewField("P<EXAOKAFOR<<", 0.9),
					docmodel.NewField("A1234567<8EXA", 0.2),
				}, 0.9),
			},
		}
		FilterByConfidence(doc, 0.65)
		f, ok := doc.Fields["mrz_lines"]
		if !ok {
			t.Fatal("list with surviving items should be kept")
		}
		items := f.Value.([]docmodel.FieldValue)
		if len(items) != 1 {
			t.Fatalf("len = %d, want 1", len(items))
		}
	})

	t.Run("boundary is inclusive", func(t *testing.T) {
		doc := &docmodel.ExtractedDocument{
			Fields: map[string]docmodel.FieldValue{
				"surname": docmodel.NewField("OKAFOR", 0.65),
			},
		}
		FilterByConfidence(doc, 0.65)
		if _, ok := doc.Fields["surname"]; !ok {
			t.Error("field exactly at threshold must be kept")
		}
	})
}
