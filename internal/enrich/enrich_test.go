package enrich

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jackzampolin/veridoc/internal/docmodel"
	"github.com/jackzampolin/veridoc/internal/providers"
)

func newDoc(docType string) *docmodel.ExtractedDocument {
	return &docmodel.ExtractedDocument{
		Type:        docmodel.NewField(docType, 0.9),
		Fields:      make(map[string]docmodel.FieldValue),
		ExtraFields: make(map[string]docmodel.FieldValue),
	}
}

func TestKeyValueMiner(t *testing.T) {
	text := `LAND USE RESTRICTION AGREEMENT
Grantor: ACME HOLDINGS LTD
Grantee: JOHN OBI
Agreement Number: LURA-2024-0091
payment of $5,000 due on signing
property located at 15 Ridge Road, Hill Station`

	doc := newDoc("land_use_restriction_agreement")
	if err := (KeyValueMiner{}).Enrich(context.Background(), doc, text); err != nil {
		t.Fatal(err)
	}

	if f, ok := doc.ExtraFields["grantor"]; !ok || !strings.Contains(f.Text(), "ACME") {
		t.Errorf("grantor not mined: %v", doc.ExtraFields)
	}
	if _, ok := doc.ExtraFields["payment_amount"]; !ok {
		t.Errorf("payment amount not mined: %v", doc.ExtraFields)
	}
	if f, ok := doc.ExtraFields["property_location"]; !ok || !strings.Contains(f.Text(), "Ridge Road") {
		t.Errorf("property location not mined: %v", doc.ExtraFields)
	}
}

func TestKeyValueMinerSkipsExisting(t *testing.T) {
	doc := newDoc("contract")
	doc.ExtraFields["grantor"] = docmodel.NewField("ORIGINAL VALUE", 0.9)

	if err := (KeyValueMiner{}).Enrich(context.Background(), doc, "Grantor: SOMEONE ELSE\n"); err != nil {
		t.Fatal(err)
	}
	if got := doc.ExtraFields["grantor"].Text(); got != "ORIGINAL VALUE" {
		t.Errorf("existing field overwritten: %q", got)
	}
	if _, ok := doc.ExtraFields["grantor_1"]; !ok {
		t.Error("colliding key should get a numeric suffix")
	}
}

func TestNormalizeFieldName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"DOB", "date_of_birth"},
		{"Passport No", "passport_number"},
		{"phone", "phone_number"},
		{"Full Name", "full_name"},
		{"name", "document_name"},
		{"grantor_name", "grantor_name"},
		{"", "unknown_field"},
		{"Effective Date!", "effective_date"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := NormalizeFieldName(tc.in); got != tc.want {
				t.Errorf("NormalizeFieldName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestMeaningfulValue(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  bool
	}{
		{"date", "15/03/1985", true},
		{"amount", "$5,000.00", true},
		{"numeric id", "12345678901", true},
		{"mrz fragment", "P<EXAOKAFOR<<CHINEDU<", true},
		{"address hint", "15 Ridge Road", true},
		{"uppercase name", "JOHN OBI", true},
		{"short phrase", "valid until renewal", true},
		{"too short", "ab", false},
		{"gibberish", "#### ---- ####", false},
		{"long prose", strings.Repeat("word ", 10), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MeaningfulValue(tc.value); got != tc.want {
				t.Errorf("MeaningfulValue(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestCleanExtraFields(t *testing.T) {
	doc := newDoc("land_use_restriction_agreement")
	doc.ExtraFields = map[string]docmodel.FieldValue{
		"Party One":  docmodel.NewField(`[ACME HOLDINGS] (the "Grantor")`, 0.9),
		"junk":       docmodel.NewField("ab", 0.9),
		"Issue Date": docmodel.NewField("2024-01-15", 0.85),
	}

	CleanExtraFields(doc)

	if f, ok := doc.ExtraFields["grantor_name"]; !ok || f.Text() != "ACME HOLDINGS" {
		t.Errorf("role name not consolidated: %v", doc.ExtraFields)
	}
	if _, ok := doc.ExtraFields["junk"]; ok {
		t.Error("meaningless value kept")
	}
	if _, ok := doc.ExtraFields["issue_date"]; !ok {
		t.Errorf("key not slugged: %v", doc.ExtraFields)
	}
}

func TestAddressMiner(t *testing.T) {
	text := `Residential information follows.
Address: 15 Ridge Road, Hill Station
State: Plateau
Phone: 0803 555 1234
Email: j.obi@example.com`

	doc := newDoc("national_id_card")
	if err := (AddressMiner{}).Enrich(context.Background(), doc, text); err != nil {
		t.Fatal(err)
	}

	if f, ok := doc.Field("address"); !ok || !strings.Contains(f.Text(), "Ridge Road") {
		t.Errorf("address not mined: %v", doc.Fields)
	}
	if f, ok := doc.Field("address"); ok && f.Confidence != 0.85 {
		t.Errorf("address confidence = %.2f, want 0.85", f.Confidence)
	}
	if f, ok := doc.Field("email"); !ok || f.Text() != "j.obi@example.com" {
		t.Errorf("email not mined: %v", doc.Fields)
	}
	if f, ok := doc.Field("phone_number"); !ok || f.Confidence != 0.9 {
		t.Errorf("phone not mined with 0.9 confidence: %v", doc.Fields)
	}
}

func TestAddressMinerDoesNotOverwrite(t *testing.T) {
	doc := newDoc("national_id_card")
	doc.SetField("address", docmodel.NewField("EXTRACTED ADDRESS", 0.9))

	if err := (AddressMiner{}).Enrich(context.Background(), doc, "Address: 15 Ridge Road, Hill Station\n"); err != nil {
		t.Fatal(err)
	}
	if got, _ := doc.Field("address"); got.Text() != "EXTRACTED ADDRESS" {
		t.Errorf("existing address overwritten: %q", got.Text())
	}
}

func TestSemanticMiner(t *testing.T) {
	longText := strings.Repeat("This agreement concerns the property at 15 Ridge Road. ", 8)

	t.Run("adds valuable fields", func(t *testing.T) {
		client := providers.NewMockClient()
		client.ResponseJSON = json.RawMessage(`{
			"grantor_name": {"value": "ACME HOLDINGS", "confidence": 0.95},
			"property_address": {"value": "15 Ridge Road", "confidence": 0.9},
			"random_blob": {"value": "something", "confidence": 0.5}
		}`)

		doc := newDoc("land_use_restriction_agreement")
		m := NewSemanticMiner(client, "test-model", nil)
		if err := m.Enrich(context.Background(), doc, longText); err != nil {
			t.Fatal(err)
		}
		if _, ok := doc.ExtraFields["grantor_name"]; !ok {
			t.Error("grantor_name should be added")
		}
		if _, ok := doc.ExtraFields["property_address"]; !ok {
			t.Error("property_address should be added")
		}
		if _, ok := doc.ExtraFields["random_blob"]; ok {
			t.Error("non-valuable low-confidence field should be dropped")
		}
	})

	t.Run("short text skipped", func(t *testing.T) {
		client := providers.NewMockClient()
		m := NewSemanticMiner(client, "", nil)
		if err := m.Enrich(context.Background(), newDoc("contract"), "short"); err != nil {
			t.Fatal(err)
		}
		if client.RequestCount() != 0 {
			t.Error("provider should not be called for short text")
		}
	})

	t.Run("provider failure tolerated", func(t *testing.T) {
		client := providers.NewMockClient()
		client.ShouldFail = true
		m := NewSemanticMiner(client, "", nil)
		doc := newDoc("contract")
		if err := m.Enrich(context.Background(), doc, longText); err != nil {
			t.Errorf("semantic mining must tolerate provider failure, got %v", err)
		}
	})
}
