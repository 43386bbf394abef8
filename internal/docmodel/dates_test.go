package docmodel

import "testing"

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1990-05-14", "1990-05-14"},
		{"14/05/1990", "1990-05-14"},
		{"14-05-1990", "1990-05-14"},
		{"14 May 1990", "1990-05-14"},
		{"May 14 1990", "1990-05-14"},
		{"14.05.1990", "1990-05-14"},
		{"1990/05/14", "1990-05-14"},
		{"not a date", "not a date"},
		{"  1990-05-14  ", "1990-05-14"},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := NormalizeDate(tc.in); got != tc.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsDateField(t *testing.T) {
	for _, name := range []string{"date_of_birth", "date_of_expiry", "issue_date", "expiration", "birth_registration_date"} {
		if !IsDateField(name) {
			t.Errorf("IsDateField(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"surname", "document_number", "address"} {
		if IsDateField(name) {
			t.Errorf("IsDateField(%q) = true, want false", name)
		}
	}
}
