package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/officercg/rockcrest-inventory-api/internal/shopify"
)

// Kind tags the decoded form of a metafield value. Upstream encodes the same
// logical data three ways (plain string, JSON-encoded dimension object,
// boolean-as-string), so decoding happens once here at the API boundary.
type Kind int

const (
	Absent Kind = iota
	Text
	Measurement
	Boolean
)

type Value struct {
	Kind   Kind
	Text   string
	Number float64
	Unit   string
	Bool   bool
}

// measurementPattern matches plain-text values like "4", "4.5 ft", "18 inches".
var measurementPattern = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*([A-Za-z]+)?\s*$`)

// unitAbbrev maps spelled-out units to their display abbreviation.
// Unrecognized units pass through lower-cased.
var unitAbbrev = map[string]string{
	"inches":      "in",
	"inch":        "in",
	"in":          "in",
	"feet":        "ft",
	"foot":        "ft",
	"ft":          "ft",
	"centimeters": "cm",
	"cm":          "cm",
	"meters":      "m",
	"m":           "m",
}

// DecodeValue decodes a raw metafield value into its tagged form. It is
// total: any input yields a Value, never an error.
func DecodeValue(raw json.RawMessage) Value {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return Value{Kind: Absent}
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		// Not valid JSON at all; treat the raw bytes as text.
		return decodeText(trimmed)
	}

	switch v := decoded.(type) {
	case bool:
		return Value{Kind: Boolean, Bool: v}
	case float64:
		return Value{Kind: Measurement, Number: v}
	case string:
		return decodeText(v)
	case map[string]interface{}:
		return decodeObject(v, trimmed)
	default:
		return Value{Kind: Text, Text: trimmed}
	}
}

// decodeText handles the string encodings: boolean words, a JSON-encoded
// dimension object, or a plain "<number> <unit>" form. Anything else stays
// text unchanged.
func decodeText(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Value{Kind: Absent}
	}
	if strings.EqualFold(trimmed, "true") {
		return Value{Kind: Boolean, Bool: true}
	}
	if strings.EqualFold(trimmed, "false") {
		return Value{Kind: Boolean, Bool: false}
	}
	if strings.HasPrefix(trimmed, "{") {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
			return decodeObject(obj, trimmed)
		}
	}
	if m := measurementPattern.FindStringSubmatch(trimmed); m != nil {
		num, err := strconv.ParseFloat(m[1], 64)
		if err == nil && !math.IsInf(num, 0) && !math.IsNaN(num) {
			return Value{Kind: Measurement, Number: num, Unit: m[2]}
		}
	}
	return Value{Kind: Text, Text: s}
}

// decodeObject handles the dimension-object encoding {"value": n, "unit": u}.
// An object without a coercible value falls back to the value's string form,
// or to the raw text when no value field exists at all.
func decodeObject(obj map[string]interface{}, raw string) Value {
	inner, ok := obj["value"]
	if !ok {
		return decodeObjectFallback(raw)
	}
	unit, _ := obj["unit"].(string)

	switch n := inner.(type) {
	case float64:
		if math.IsInf(n, 0) || math.IsNaN(n) {
			return Value{Kind: Text, Text: fmt.Sprint(inner)}
		}
		return Value{Kind: Measurement, Number: n, Unit: unit}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return Value{Kind: Measurement, Number: f, Unit: unit}
		}
		return Value{Kind: Text, Text: n}
	default:
		return Value{Kind: Text, Text: fmt.Sprint(inner)}
	}
}

func decodeObjectFallback(raw string) Value {
	if m := measurementPattern.FindStringSubmatch(raw); m != nil {
		if num, err := strconv.ParseFloat(m[1], 64); err == nil {
			return Value{Kind: Measurement, Number: num, Unit: m[2]}
		}
	}
	return Value{Kind: Text, Text: raw}
}

// Display renders a decoded value for the embed. Measurements become
// "<number> <unit-abbreviation>", using defaultUnit when the value carried
// none. Absent values render as the empty string.
func (v Value) Display(defaultUnit string) string {
	switch v.Kind {
	case Absent:
		return ""
	case Boolean:
		return strconv.FormatBool(v.Bool)
	case Measurement:
		unit := v.Unit
		if unit == "" {
			unit = defaultUnit
		}
		num := strconv.FormatFloat(v.Number, 'f', -1, 64)
		if abbrev := abbreviateUnit(unit); abbrev != "" {
			return num + " " + abbrev
		}
		return num
	default:
		return v.Text
	}
}

// Normalize converts a raw string metafield value into its display form.
// It is total and idempotent: normalizing an already-normalized string
// returns an equivalent value.
func Normalize(raw, defaultUnit string) string {
	return decodeText(raw).Display(defaultUnit)
}

func abbreviateUnit(unit string) string {
	lower := strings.ToLower(strings.TrimSpace(unit))
	if lower == "" {
		return ""
	}
	if abbrev, ok := unitAbbrev[lower]; ok {
		return abbrev
	}
	return lower
}

// FieldKey names a metafield as (namespace, key).
type FieldKey struct {
	Namespace string
	Key       string
}

// ParseFieldKey splits a "namespace.key" setting; a bare key gets the
// "custom" namespace.
func ParseFieldKey(s string) FieldKey {
	if ns, key, ok := strings.Cut(strings.TrimSpace(s), "."); ok {
		return FieldKey{Namespace: ns, Key: key}
	}
	return FieldKey{Namespace: "custom", Key: strings.TrimSpace(s)}
}

type ownerRef struct {
	resource string
	id       int64
}

// MetafieldIndex holds every fetched metafield, decoded once, keyed by owner
// and field.
type MetafieldIndex struct {
	values map[ownerRef]map[FieldKey]Value
}

// BuildMetafieldIndex decodes a fetched metafield set into an index.
func BuildMetafieldIndex(byProduct map[int64][]shopify.Metafield) *MetafieldIndex {
	idx := &MetafieldIndex{values: make(map[ownerRef]map[FieldKey]Value)}
	for _, metafields := range byProduct {
		for _, m := range metafields {
			idx.Add(m)
		}
	}
	return idx
}

func (idx *MetafieldIndex) Add(m shopify.Metafield) {
	owner := ownerRef{resource: m.OwnerResource, id: m.OwnerID}
	fields, ok := idx.values[owner]
	if !ok {
		fields = make(map[FieldKey]Value)
		idx.values[owner] = fields
	}
	fields[FieldKey{Namespace: m.Namespace, Key: m.Key}] = DecodeValue(m.Value)
}

// Lookup returns the decoded value a given owner holds for a field, or an
// Absent value.
func (idx *MetafieldIndex) Lookup(resource string, id int64, key FieldKey) Value {
	if idx == nil {
		return Value{Kind: Absent}
	}
	if fields, ok := idx.values[ownerRef{resource: resource, id: id}]; ok {
		if v, ok := fields[key]; ok {
			return v
		}
	}
	return Value{Kind: Absent}
}
