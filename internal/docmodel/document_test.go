package docmodel

import "testing"

func TestExtractedDocumentFields(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		doc := &ExtractedDocument{}
		doc.SetField("surname", NewField("OKAFOR", 0.9))
		f, ok := doc.Field("surname")
		if !ok {
			t.Fatal("surname missing after SetField")
		}
		if f.Value != "OKAFOR" {
			t.Errorf("value = %v", f.Value)
		}
	})

	t.Run("empty values are dropped", func(t *testing.T) {
		doc := &ExtractedDocument{}
		doc.SetField("surname", NewField("  ", 0.9))
		if _, ok := doc.Field("surname"); ok {
			t.Error("blank surname should not be stored")
		}
	})

	t.Run("extra field does not overwrite", func(t *testing.T) {
		doc := &ExtractedDocument{}
		if !doc.AddExtraField("blood_group", NewField("O+", 0.8)) {
			t.Fatal("first add should succeed")
		}
		if doc.AddExtraField("blood_group", NewField("A-", 0.9)) {
			t.Error("second add should be rejected")
		}
		if doc.ExtraFields["blood_group"].Value != "O+" {
			t.Errorf("value = %v, want O+", doc.ExtraFields["blood_group"].Value)
		}
	})
}

func TestTypeLabel(t *testing.T) {
	doc := &ExtractedDocument{Type: NewField("  International Passport ", 0.9)}
	if got := doc.TypeLabel(); got != "international passport" {
		t.Errorf("TypeLabel() = %q", got)
	}

	doc = &ExtractedDocument{}
	if got := doc.TypeLabel(); got != "" {
		t.Errorf("TypeLabel() on unset type = %q, want empty", got)
	}
}

func TestSchemaFieldSets(t *testing.T) {
	if !IsSchemaField("document_number") {
		t.Error("document_number should be a schema field")
	}
	if IsSchemaField("blood_group") {
		t.Error("blood_group should not be a schema field")
	}
	if !IsListField("mrz_lines") {
		t.Error("mrz_lines should be a list field")
	}
	if IsListField("surname") {
		t.Error("surname should not be a list field")
	}
	if !IsPlainField("confidence_score") {
		t.Error("confidence_score should be a plain field")
	}
}
