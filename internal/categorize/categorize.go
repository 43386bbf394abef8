// Package categorize organizes extracted fields into semantic categories
// and finds relationships between them. Categorization is presentation
// logic: it never alters field values or confidences, only groups them.
package categorize

import (
	"sort"
	"strings"

	"github.com/jackzampolin/veridoc/internal/docmodel"
)

// Field categories, in match priority order: the first category whose
// terms match a field name wins.
const (
	CategoryPersonal       = "personal_information"
	CategoryIdentification = "identification_documents"
	CategoryContact        = "contact_details"
	CategoryAddress        = "address_information"
	CategoryFinancial      = "financial_details"
	CategoryDates          = "important_dates"
	CategoryDocument       = "document_information"
	CategoryProperty       = "property_details"
	CategoryParties        = "involved_parties"
	CategoryLegal          = "legal_terms"
	CategoryOther          = "other_information"
)

type categoryRule struct {
	name  string
	terms []string
}

// Ordered rules. A field is assigned to the first category with a
// matching term, so earlier categories shadow later ones (a field named
// "full_name" is personal, never document, despite matching "name" in
// both).
var categoryRules = []categoryRule{
	{CategoryPersonal, []string{
		"name", "first", "last", "middle", "full", "gender", "sex",
		"age", "birth", "nationality", "citizenship", "marital",
		"spouse", "dependent",
	}},
	{CategoryIdentification, []string{
		"id", "identification", "passport", "license", "ssn", "social_security",
		"tax", "tin", "driver", "national_id", "certificate", "registration",
	}},
	{CategoryContact, []string{
		"phone", "mobile", "cell", "telephone", "email", "fax",
		"website", "url", "web", "contact",
	}},
	{CategoryAddress, []string{
		"address", "street", "road", "avenue", "boulevard", "lane", "drive",
		"city", "town", "state", "province", "county", "country", "zip", "postal",
		"apartment", "unit", "building", "floor", "suite",
	}},
	{CategoryFinancial, []string{
		"amount", "payment", "fee", "price", "cost", "value", "total",
		"sum", "balance", "deposit", "withdraw", "transfer", "transaction",
		"account", "bank", "currency", "interest", "principal", "loan", "debt",
		"credit", "debit", "income", "expense", "salary", "wage", "rate",
	}},
	{CategoryDates, []string{
		"date", "time", "day", "month", "year", "expiry", "expiration",
		"issued", "effective", "start", "end", "term", "period", "duration",
		"deadline", "schedule", "calendar", "anniversary", "renewal",
	}},
	{CategoryDocument, []string{
		"document", "form", "application", "file", "record", "type",
		"category", "class", "title", "subject", "reference", "number",
		"status", "version", "revision", "edition", "signature",
	}},
	{CategoryProperty, []string{
		"property", "land", "real_estate", "parcel", "lot", "plot", "acre",
		"hectare", "square", "dimension", "area", "footage", "asset", "estate",
	}},
	{CategoryParties, []string{
		"party", "grantor", "grantee", "borrower", "lender", "buyer", "seller",
		"owner", "tenant", "landlord", "lessor", "lessee", "assignor", "assignee",
		"trustee", "beneficiary", "guarantor", "witness", "signatory", "agent",
		"representative", "broker", "attorney", "lawyer", "notary",
	}},
	{CategoryLegal, []string{
		"condition", "clause", "provision", "covenant", "warranty",
		"representation", "indemnity", "liability", "obligation", "right",
		"law", "legal", "regulation", "compliance", "violation", "penalty",
		"dispute", "resolution", "arbitration", "litigation", "jurisdiction",
		"governing", "enforcement",
	}},
}

// Categorize groups fields by semantic category. Empty categories are
// omitted.
func Categorize(fields map[string]docmodel.FieldValue) map[string]map[string]docmodel.FieldValue {
	out := make(map[string]map[string]docmodel.FieldValue)
	for name, f := range fields {
		cat := CategoryFor(name)
		if out[cat] == nil {
			out[cat] = make(map[string]docmodel.FieldValue)
		}
		out[cat][name] = f
	}
	return out
}

// CategoryFor returns the semantic category for a field name.
func CategoryFor(fieldName string) string {
	lower := strings.ToLower(fieldName)
	for _, rule := range categoryRules {
		for _, term := range rule.terms {
			if strings.Contains(lower, term) {
				return rule.name
			}
		}
	}
	return CategoryOther
}

// Priority fields elected as each category's primary representative.
var priorityFields = map[string][]string{
	CategoryPersonal:       {"full_name", "first_name", "last_name", "surname", "given_names", "date_of_birth", "gender"},
	CategoryIdentification: {"identification_number", "passport_number", "document_number", "drivers_license_number", "nin"},
	CategoryContact:        {"email", "phone_number", "mobile_number"},
	CategoryAddress:        {"address", "street_address", "city", "state", "zip_code", "country"},
	CategoryFinancial:      {"total_amount", "payment_amount", "fee_amount", "price_amount"},
	CategoryDates:          {"issue_date", "effective_date", "expiration_date", "date_of_issue", "date_of_expiry"},
	CategoryDocument:       {"document_type", "document_number", "document_title", "reference_number"},
	CategoryParties:        {"grantor", "grantee", "buyer", "seller", "owner", "tenant"},
	CategoryProperty:       {"property_address", "property_description", "property_value"},
}

// PrimaryFields elects the most important fields from each category:
// exact priority-name matches first, then substring matches, then the
// first field of the category as a fallback.
func PrimaryFields(categorized map[string]map[string]docmodel.FieldValue) map[string]docmodel.FieldValue {
	primary := make(map[string]docmodel.FieldValue)

	for category, fields := range categorized {
		priorities, ok := priorityFields[category]
		if !ok {
			continue
		}

		matched := false
		for _, want := range priorities {
			if f, ok := fields[want]; ok {
				primary[want] = f
				matched = true
			}
		}
		if matched {
			continue
		}

		for _, name := range sortedKeys(fields) {
			for _, want := range priorities {
				if strings.Contains(name, want) {
					primary[name] = fields[name]
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if matched {
			continue
		}

		if names := sortedKeys(fields); len(names) > 0 {
			primary[names[0]] = fields[names[0]]
		}
	}

	return primary
}

func sortedKeys(fields map[string]docmodel.FieldValue) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
