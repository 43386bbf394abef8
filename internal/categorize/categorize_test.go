package categorize

import (
	"testing"

	"github.com/jackzampolin/veridoc/internal/docmodel"
)

func fields(names ...string) map[string]docmodel.FieldValue {
	out := make(map[string]docmodel.FieldValue, len(names))
	for _, n := range names {
		out[n] = docmodel.NewField("x", 0.9)
	}
	return out
}

func TestCategoryFor(t *testing.T) {
	cases := []struct{ field, want string }{
		{"full_name", CategoryPersonal},
		{"date_of_birth", CategoryPersonal},
		{"nationality", CategoryPersonal},
		{"passport_number", CategoryIdentification},
		{"drivers_license_number", CategoryIdentification},
		{"phone_number", CategoryContact},
		{"email", CategoryContact},
		{"property_address", CategoryAddress},
		{"payment_amount", CategoryFinancial},
		{"effective_date", CategoryDates},
		{"document_status", CategoryDocument},
		{"parcel_size", CategoryProperty},
		{"grantor", CategoryParties},
		{"governing_law", CategoryLegal},
		{"mystery_blob", CategoryOther},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			if got := CategoryFor(tc.field); got != tc.want {
				t.Errorf("CategoryFor(%q) = %q, want %q", tc.field, got, tc.want)
			}
		})
	}
}

func TestCategorize(t *testing.T) {
	got := Categorize(fields("full_name", "passport_number", "email", "mystery_blob"))

	if len(got) != 4 {
		t.Fatalf("expected 4 categories, got %d: %v", len(got), got)
	}
	if _, ok := got[CategoryPersonal]["full_name"]; !ok {
		t.Error("full_name should be personal information")
	}
	if _, ok := got[CategoryOther]["mystery_blob"]; !ok {
		t.Error("unmatched field should fall into other_information")
	}
	for cat, fs := range got {
		if len(fs) == 0 {
			t.Errorf("empty category %q should be omitted", cat)
		}
	}
}

func TestPrimaryFields(t *testing.T) {
	t.Run("exact priority match", func(t *testing.T) {
		cat := Categorize(fields("full_name", "spouse_name", "email"))
		primary := PrimaryFields(cat)
		if _, ok := primary["full_name"]; !ok {
			t.Errorf("full_name should be primary, got %v", primary)
		}
		if _, ok := primary["email"]; !ok {
			t.Errorf("email should be primary, got %v", primary)
		}
	})

	t.Run("substring fallback", func(t *testing.T) {
		cat := Categorize(fields("holder_full_name"))
		primary := PrimaryFields(cat)
		if _, ok := primary["holder_full_name"]; !ok {
			t.Errorf("substring match should elect holder_full_name, got %v", primary)
		}
	})

	t.Run("first field fallback", func(t *testing.T) {
		cat := map[string]map[string]docmodel.FieldValue{
			CategoryParties: fields("trustee"),
		}
		primary := PrimaryFields(cat)
		if _, ok := primary["trustee"]; !ok {
			t.Errorf("sole field should be elected, got %v", primary)
		}
	})
}

func TestRelatedFields(t *testing.T) {
	t.Run("counterpart rules", func(t *testing.T) {
		rel := RelatedFields([]string{"grantor_name", "grantee_name", "effective_date", "term_date"})

		found := map[[2]string]float64{}
		for _, r := range rel {
			found[[2]string{r.Field1, r.Field2}] = r.Score
		}
		if score := found[[2]string{"grantee_name", "grantor_name"}]; score != 0.9 {
			t.Errorf("grantor/grantee score = %.2f, want 0.9", score)
		}
		if score := found[[2]string{"effective_date", "term_date"}]; score != 0.8 {
			t.Errorf("effective/term date score = %.2f, want 0.8", score)
		}
	})

	t.Run("shared prefix heuristic", func(t *testing.T) {
		rel := RelatedFields([]string{"property_address", "property_value"})
		if len(rel) != 1 || rel[0].Score != 0.7 {
			t.Fatalf("expected one 0.7 prefix relation, got %v", rel)
		}
	})

	t.Run("strongest first", func(t *testing.T) {
		rel := RelatedFields([]string{"buyer_name", "seller_name", "property_address", "property_value"})
		if len(rel) < 2 {
			t.Fatalf("expected multiple relations, got %v", rel)
		}
		for i := 1; i < len(rel); i++ {
			if rel[i].Score > rel[i-1].Score {
				t.Errorf("relations not sorted by score: %v", rel)
			}
		}
	})

	t.Run("unrelated pairs dropped", func(t *testing.T) {
		if rel := RelatedFields([]string{"full_name", "mystery_blob"}); len(rel) != 0 {
			t.Errorf("expected no relations, got %v", rel)
		}
	})
}
