package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	raw := json.RawMessage(`[
		{"id": "opt-1", "name": "Maintenance", "price_ht": 150, "selected": true},
		{"id": "opt-2", "name": "Formation", "price_ht": 300, "selected": false}
	]`)

	options, err := ParseOptions(raw)

	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "Maintenance", options[0].Name)
	assert.Equal(t, 150.0, options[0].PriceHt)
	assert.True(t, options[0].Selected)
	assert.False(t, options[1].Selected)
}

func TestParseOptions_Empty(t *testing.T) {
	options, err := ParseOptions(nil)
	require.NoError(t, err)
	assert.Nil(t, options)

	options, err = ParseOptions(json.RawMessage(`[]`))
	require.NoError(t, err)
	assert.Empty(t, options)
}

func TestParseOptions_Invalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `{invalid`},
		{"not an array", `{"id": "opt-1"}`},
		{"missing id", `[{"name": "X", "price_ht": 10}]`},
		{"missing name", `[{"id": "opt-1", "price_ht": 10}]`},
		{"negative price", `[{"id": "opt-1", "name": "X", "price_ht": -5}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseOptions(json.RawMessage(tc.raw))
			assert.Error(t, err)
		})
	}
}

func TestOptionsTotal(t *testing.T) {
	options := []ArticleOption{
		{ID: "a", Name: "A", PriceHt: 100, Selected: true},
		{ID: "b", Name: "B", PriceHt: 50, Selected: false},
		{ID: "c", Name: "C", PriceHt: 25.5, Selected: true},
	}

	assert.InDelta(t, 125.5, OptionsTotal(options), 1e-9)
	assert.Zero(t, OptionsTotal(nil))
}
