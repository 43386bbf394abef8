package docmodel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// fieldSchema is the JSON schema fragment for a confidence-wrapped field.
const fieldSchema = `{
	"type": "object",
	"properties": {
		"value": {},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	},
	"required": ["value", "confidence"]
}`

// ResponseSchemaJSON builds the JSON schema we hand to providers as the
// structured-output response format. Every schema field accepts either a
// wrapped {value, confidence} object or a bare scalar, since models are not
// perfectly consistent about wrapping.
func ResponseSchemaJSON() []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"object","properties":{`)
	buf.WriteString(`"document_type":{"anyOf":[`)
	buf.WriteString(fieldSchema)
	buf.WriteString(`,{"type":"string"}]}`)

	names := SchemaFieldNames()
	sort.Strings(names)
	for _, name := range names {
		buf.WriteString(`,`)
		fmt.Fprintf(&buf, `%q:`, name)
		if IsListField(name) {
			buf.WriteString(`{"anyOf":[{"type":"array"},`)
			buf.WriteString(fieldSchema)
			buf.WriteString(`,{"type":"null"}]}`)
		} else {
			buf.WriteString(`{"anyOf":[`)
			buf.WriteString(fieldSchema)
			buf.WriteString(`,{"type":"string"},{"type":"number"},{"type":"null"}]}`)
		}
	}
	buf.WriteString(`,"confidence_score":{"type":["number","null"]}`)
	buf.WriteString(`,"extra_fields":{"type":["object","null"]}`)
	buf.WriteString(`},"required":["document_type"]}`)
	return buf.Bytes()
}

var responseSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("document.schema.json", strings.NewReader(string(ResponseSchemaJSON()))); err != nil {
		panic(fmt.Sprintf("docmodel: add schema resource: %v", err))
	}
	s, err := c.Compile("document.schema.json")
	if err != nil {
		panic(fmt.Sprintf("docmodel: compile response schema: %v", err))
	}
	return s
}

// ValidateResponse checks a raw provider response against the extraction
// response schema.
func ValidateResponse(raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if err := responseSchema.Validate(v); err != nil {
		return fmt.Errorf("validating response: %w", err)
	}
	return nil
}
