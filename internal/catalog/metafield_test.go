package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officercg/rockcrest-inventory-api/internal/shopify"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name        string
		raw         string
		defaultUnit string
		want        string
	}{
		{"EmptyIsAbsent", "", "in", ""},
		{"WhitespaceIsAbsent", "   ", "in", ""},
		{"PlainNumberWithUnitWord", "4 INCHES", "in", "4 in"},
		{"PlainNumberUsesDefaultUnit", "4", "in", "4 in"},
		{"FeetSpelledOut", "12 feet", "in", "12 ft"},
		{"Centimeters", "30 centimeters", "in", "30 cm"},
		{"DecimalValue", "4.5 inch", "in", "4.5 in"},
		{"JSONDimensionObject", `{"value": 4, "unit": "INCHES"}`, "ft", "4 in"},
		{"JSONDimensionStringValue", `{"value": "2.5", "unit": "in"}`, "ft", "2.5 in"},
		{"JSONObjectWithoutValue", `{"unit": "in"}`, "in", `{"unit": "in"}`},
		{"UnrecognizedUnitLowercased", "3 Gal", "in", "3 gal"},
		{"NotANumberPassesThrough", "not a number", "in", "not a number"},
		{"BooleanString", "true", "", "true"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.raw, tc.defaultUnit))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"4 INCHES",
		"4",
		"12 feet",
		`{"value": 4, "unit": "INCHES"}`,
		"not a number",
		"true",
		"3 Gal",
		"6-8 ft mixed range",
	}
	for _, raw := range inputs {
		once := Normalize(raw, "in")
		twice := Normalize(once, "in")
		assert.Equal(t, once, twice, "normalize not idempotent for %q", raw)
	}
}

func TestDecodeValue(t *testing.T) {
	t.Run("NullIsAbsent", func(t *testing.T) {
		assert.Equal(t, Absent, DecodeValue(nil).Kind)
		assert.Equal(t, Absent, DecodeValue(json.RawMessage(`null`)).Kind)
		assert.Equal(t, Absent, DecodeValue(json.RawMessage(`""`)).Kind)
	})

	t.Run("JSONBoolean", func(t *testing.T) {
		v := DecodeValue(json.RawMessage(`true`))
		require.Equal(t, Boolean, v.Kind)
		assert.True(t, v.Bool)
	})

	t.Run("BooleanAsString", func(t *testing.T) {
		v := DecodeValue(json.RawMessage(`"false"`))
		require.Equal(t, Boolean, v.Kind)
		assert.False(t, v.Bool)
	})

	t.Run("BareNumber", func(t *testing.T) {
		v := DecodeValue(json.RawMessage(`2.5`))
		require.Equal(t, Measurement, v.Kind)
		assert.Equal(t, 2.5, v.Number)
		assert.Empty(t, v.Unit)
	})

	t.Run("DimensionObject", func(t *testing.T) {
		v := DecodeValue(json.RawMessage(`{"value": 4.0, "unit": "FEET"}`))
		require.Equal(t, Measurement, v.Kind)
		assert.Equal(t, 4.0, v.Number)
		assert.Equal(t, "4 ft", v.Display("in"))
	})

	t.Run("JSONEncodedDimensionString", func(t *testing.T) {
		// The object arrives double-encoded: a JSON string holding JSON.
		v := DecodeValue(json.RawMessage(`"{\"value\": 18, \"unit\": \"cm\"}"`))
		require.Equal(t, Measurement, v.Kind)
		assert.Equal(t, "18 cm", v.Display("in"))
	})

	t.Run("ObjectWithNonNumericValue", func(t *testing.T) {
		v := DecodeValue(json.RawMessage(`{"value": "tall"}`))
		require.Equal(t, Text, v.Kind)
		assert.Equal(t, "tall", v.Text)
	})

	t.Run("FreeTextUnchanged", func(t *testing.T) {
		v := DecodeValue(json.RawMessage(`"Partial Shade"`))
		require.Equal(t, Text, v.Kind)
		assert.Equal(t, "Partial Shade", v.Display(""))
	})
}

func TestParseFieldKey(t *testing.T) {
	assert.Equal(t, FieldKey{Namespace: "custom", Key: "plant_caliper"}, ParseFieldKey("custom.plant_caliper"))
	assert.Equal(t, FieldKey{Namespace: "specs", Key: "height"}, ParseFieldKey("specs.height"))
	assert.Equal(t, FieldKey{Namespace: "custom", Key: "height"}, ParseFieldKey("height"))
}

func TestMetafieldIndexLookup(t *testing.T) {
	idx := BuildMetafieldIndex(map[int64][]shopify.Metafield{
		101: {
			{Namespace: "custom", Key: "plant_height", Value: json.RawMessage(`"6 feet"`), OwnerResource: "product", OwnerID: 101},
			{Namespace: "custom", Key: "exclude_from_embed", Value: json.RawMessage(`"true"`), OwnerResource: "product", OwnerID: 101},
		},
	})

	key := FieldKey{Namespace: "custom", Key: "plant_height"}
	assert.Equal(t, "6 ft", idx.Lookup("product", 101, key).Display("in"))
	assert.Equal(t, Absent, idx.Lookup("variant", 101, key).Kind)
	assert.Equal(t, Absent, idx.Lookup("product", 999, key).Kind)

	flag := idx.Lookup("product", 101, FieldKey{Namespace: "custom", Key: "exclude_from_embed"})
	require.Equal(t, Boolean, flag.Kind)
	assert.True(t, flag.Bool)
}
