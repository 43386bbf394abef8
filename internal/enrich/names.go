package enrich

import (
	"regexp"
	"strings"
)

var (
	nonWordRe       = regexp.MustCompile(`[^\w]+`)
	multiUnderscore = regexp.MustCompile(`_+`)
)

// Canonical replacements for common field-name variants.
var fieldNameReplacements = map[string]string{
	// Personal identification
	"dob":            "date_of_birth",
	"birthdate":      "date_of_birth",
	"birth_date":     "date_of_birth",
	"date_birth":     "date_of_birth",
	"ssn":            "social_security_number",
	"social_sec":     "social_security_number",
	"social_sec_num": "social_security_number",
	"tin":            "tax_identification_number",
	"tax_id":         "tax_identification_number",
	"passport_no":    "passport_number",
	"passport_num":   "passport_number",
	"driver_license": "drivers_license_number",
	"dl_number":      "drivers_license_number",
	"dl_num":         "drivers_license_number",
	"drivers_lic":    "drivers_license_number",
	"id_num":         "identification_number",
	"id_number":      "identification_number",
	"id_no":          "identification_number",
	"ident_num":      "identification_number",

	// Names
	"fname":         "first_name",
	"firstname":     "first_name",
	"given_name":    "first_name",
	"lname":         "last_name",
	"lastname":      "last_name",
	"family_name":   "last_name",
	"mname":         "middle_name",
	"middlename":    "middle_name",
	"fullname":      "full_name",
	"complete_name": "full_name",

	// Contact information
	"addr":           "address",
	"addr_1":         "address_line1",
	"addr_2":         "address_line2",
	"address_line_1": "address_line1",
	"address_line_2": "address_line2",
	"street_addr":    "street_address",
	"city_name":      "city",
	"state_name":     "state",
	"province":       "state",
	"zip":            "zip_code",
	"zipcode":        "zip_code",
	"postal":         "postal_code",
	"country_name":   "country",
	"phone":          "phone_number",
	"phone_num":      "phone_number",
	"telephone":      "phone_number",
	"tel":            "phone_number",
	"tel_num":        "phone_number",
	"mobile":         "mobile_number",
	"cell":           "mobile_number",
	"cellphone":      "mobile_number",
	"fax":            "fax_number",
	"fax_num":        "fax_number",
	"email_address":  "email",
	"e_mail":         "email",

	// Dates
	"exp":         "expiration",
	"exp_date":    "expiration_date",
	"expiry":      "expiration_date",
	"expiry_date": "expiration_date",
	"expiration":  "expiration_date",
	"issue_dt":    "issue_date",
	"issued":      "issue_date",
	"issued_date": "issue_date",
	"date_issued": "issue_date",
	"effective":   "effective_date",
	"start":       "start_date",
	"start_dt":    "start_date",
	"date_start":  "start_date",
	"end":         "end_date",
	"end_dt":      "end_date",
	"date_end":    "end_date",
	"term":        "term_date",

	// Financial
	"amt":       "amount",
	"total_amt": "total_amount",
	"sum":       "total_amount",
	"fee":       "fee_amount",
	"charge":    "charge_amount",
	"price":     "price_amount",
	"cost":      "cost_amount",
	"rate":      "rate_value",
	"pct":       "percentage_value",
	"balance":   "balance_amount",
	"payment":   "payment_amount",
	"deposit":   "deposit_amount",
	"currency":  "currency_type",

	// Document
	"desc":          "description",
	"descr":         "description",
	"ref":           "reference",
	"ref_num":       "reference_number",
	"reference_num": "reference_number",
	"doc_num":       "document_number",
	"document_num":  "document_number",
	"doc_type":      "document_type",
	"title":         "document_title",

	// Organization
	"org":          "organization",
	"org_name":     "organization_name",
	"company":      "organization_name",
	"company_name": "organization_name",
	"business":     "business_name",
	"corp":         "corporation_name",
	"corporation":  "corporation_name",
}

// Generic single-word names get a document_ prefix so they stay
// descriptive.
var genericFieldNames = map[string]bool{
	"name": true, "date": true, "number": true, "id": true,
	"amount": true, "address": true, "code": true,
}

// NormalizeFieldName rewrites a mined field name into a consistent
// snake_case form, resolving common abbreviations and variants.
func NormalizeFieldName(fieldName string) string {
	if fieldName == "" {
		return "unknown_field"
	}

	name := strings.ToLower(fieldName)
	name = nonWordRe.ReplaceAllString(name, "_")
	name = multiUnderscore.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return "unknown_field"
	}

	if canonical, ok := fieldNameReplacements[name]; ok {
		return canonical
	}

	// Replace known variants appearing as a component of the name, then
	// collapse duplicates the expansion may introduce (effective_date_date).
	parts := strings.Split(name, "_")
	for i, part := range parts {
		if canonical, ok := fieldNameReplacements[part]; ok {
			parts[i] = canonical
			name = dedupeComponents(strings.Join(parts, "_"))
			break
		}
	}

	if genericFieldNames[name] {
		return "document_" + name
	}
	return name
}

func dedupeComponents(name string) string {
	parts := strings.Split(multiUnderscore.ReplaceAllString(name, "_"), "_")
	out := parts[:0]
	for _, p := range parts {
		if len(out) == 0 || out[len(out)-1] != p {
			out = append(out, p)
		}
	}
	return strings.Join(out, "_")
}
