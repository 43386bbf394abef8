// Package docmodel defines the data model shared by every pipeline stage:
// confidence-scored field values, extracted documents, and per-request
// extraction results.
package docmodel

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldValue is the universal unit of extracted data: a value paired with a
// confidence score in [0,1]. Value is one of:
//   - a scalar (string, float64, bool)
//   - a list of FieldValue (e.g. MRZ lines)
//   - a map of string to FieldValue
type FieldValue struct {
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
}

// NewField creates a FieldValue with the confidence clamped to [0,1].
func NewField(value any, confidence float64) FieldValue {
	return FieldValue{Value: value, Confidence: clamp01(confidence)}
}

// Clamp returns a copy with the confidence forced into [0,1].
func (f FieldValue) Clamp() FieldValue {
	f.Confidence = clamp01(f.Confidence)
	return f
}

// IsEmpty reports whether the field carries no usable value. Empty fields
// are treated as absent and never materialized in output.
func (f FieldValue) IsEmpty() bool {
	switch v := f.Value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []FieldValue:
		for _, item := range v {
			if !item.IsEmpty() {
				return false
			}
		}
		return true
	case map[string]FieldValue:
		for _, item := range v {
			if !item.IsEmpty() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Text returns the value rendered as a string for grounding checks.
// List and map values are flattened with spaces between elements.
func (f FieldValue) Text() string {
	return valueText(f.Value)
}

func valueText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []FieldValue:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := item.Text(); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case map[string]FieldValue:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := item.Text(); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// CoerceField converts a loosely typed JSON value into a FieldValue.
// Providers may return either {"value": ..., "confidence": ...} objects or
// bare scalars; bare scalars get the supplied default confidence.
func CoerceField(raw any, defaultConfidence float64) FieldValue {
	switch v := raw.(type) {
	case map[string]any:
		if inner, ok := v["value"]; ok {
			conf := defaultConfidence
			if c, ok := v["confidence"].(float64); ok {
				conf = c
			}
			return NewField(coerceValue(inner, conf), conf)
		}
		// A plain object with no value key becomes a nested field map.
		return NewField(coerceValue(v, defaultConfidence), defaultConfidence)
	case []any:
		return NewField(coerceValue(v, defaultConfidence), defaultConfidence)
	default:
		return NewField(v, defaultConfidence)
	}
}

// CoerceListField converts a loosely typed JSON value into a FieldValue
// whose value is always a list. Declared list fields (MRZ lines, vehicle
// categories) route through here so single items still become lists.
func CoerceListField(raw any, defaultConfidence float64) FieldValue {
	switch v := raw.(type) {
	case []any:
		items := make([]FieldValue, 0, len(v))
		for _, item := range v {
			items = append(items, CoerceField(item, defaultConfidence))
		}
		return NewField(items, defaultConfidence)
	case map[string]any:
		// A wrapped field whose inner value is a list expands into a list
		// of fields sharing the wrapper's confidence.
		if inner, ok := v["value"]; ok {
			conf := defaultConfidence
			if c, ok := v["confidence"].(float64); ok {
				conf = c
			}
			if list, ok := inner.([]any); ok {
				items := make([]FieldValue, 0, len(list))
				for _, item := range list {
					items = append(items, CoerceField(item, conf))
				}
				return NewField(items, conf)
			}
			return NewField([]FieldValue{NewField(inner, conf)}, conf)
		}
		return NewField([]FieldValue{CoerceField(raw, defaultConfidence)}, defaultConfidence)
	default:
		return NewField([]FieldValue{CoerceField(raw, defaultConfidence)}, defaultConfidence)
	}
}

func coerceValue(v any, defaultConfidence float64) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]FieldValue, len(val))
		for k, item := range val {
			m[k] = CoerceField(item, defaultConfidence)
		}
		return m
	case []any:
		items := make([]FieldValue, 0, len(val))
		for _, item := range val {
			items = append(items, CoerceField(item, defaultConfidence))
		}
		return items
	default:
		return val
	}
}

// MarshalJSON renders the field as {"value": ..., "confidence": ...}.
func (f FieldValue) MarshalJSON() ([]byte, error) {
	type alias struct {
		Value      any     `json:"value"`
		Confidence float64 `json:"confidence"`
	}
	return json.Marshal(alias{Value: f.Value, Confidence: clamp01(f.Confidence)})
}

// UnmarshalJSON accepts both wrapped objects and bare scalars.
func (f *FieldValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = CoerceField(raw, 0.7)
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
