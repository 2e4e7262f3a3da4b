package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korjavin/ispirami/pkg/quantity"
)

func TestIngredientUnmarshalPositional(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantQty  *float64
		wantUnit *string
	}{
		{"name only", `["sale"]`, "sale", nil, nil},
		{"name and number", `["uova", 2]`, "uova", ptr(2.0), nil},
		{"name and numeric text", `["uova", "2"]`, "uova", ptr(2.0), nil},
		{"name and raw text", `["farina", "1,5 kg"]`, "farina", ptr(1.5), ptr("kg")},
		{"raw text to taste", `["pepe", "q.b."]`, "pepe", ptr(1.0), ptr("g")},
		{"full triple", `["spaghetti", 320, "g"]`, "spaghetti", ptr(320.0), ptr("g")},
		{"null unit", `["limoni", 2, null]`, "limoni", ptr(2.0), nil},
		{"null quantity", `["basilico", null, null]`, "basilico", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ing Ingredient
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ing))
			assert.Equal(t, tt.wantName, ing.Name)
			assert.Equal(t, tt.wantQty, ing.Quantity)
			assert.Equal(t, tt.wantUnit, ing.Unit)
		})
	}
}

func TestIngredientUnmarshalObject(t *testing.T) {
	var ing Ingredient
	require.NoError(t, json.Unmarshal([]byte(`{"name":"burro","quantity":50,"unit":"g"}`), &ing))
	assert.Equal(t, "burro", ing.Name)
	assert.Equal(t, quantity.Amount{Quantity: 50, Unit: "g"}, ing.Amount())
}

func TestIngredientUnmarshalInvalid(t *testing.T) {
	for _, input := range []string{`[]`, `[1, 2]`, `["a", 1, "g", "x"]`, `["a", true]`} {
		var ing Ingredient
		assert.Error(t, json.Unmarshal([]byte(input), &ing), input)
	}
}

func TestRecipeLegacyFile(t *testing.T) {
	data := `{"title":"Spaghetti aglio e olio","category":"Primi piatti","url":"https://example.com/ricette/aglio.html",
		"n_people":"4","ingredients":[["spaghetti",320,"g"],["aglio",2,null],["olio",1,"g"]]}`

	var r Recipe
	require.NoError(t, json.Unmarshal([]byte(data), &r))
	assert.Equal(t, "4", r.Servings)
	assert.Equal(t, []string{"spaghetti", "aglio", "olio"}, r.IngredientNames())

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), `{"name":"aglio","quantity":2}`)
}

func TestNewIngredient(t *testing.T) {
	ing := NewIngredient("uova", quantity.Parse("2 medie"))
	assert.Equal(t, 2.0, *ing.Quantity)
	assert.Nil(t, ing.Unit)
	assert.Equal(t, quantity.Amount{Quantity: 1}, Ingredient{Name: "x"}.Amount())
}

func TestFridgeNames(t *testing.T) {
	f := NewFridge("fridge:1", 1)
	f.Ingredients["sale"] = FridgeItem{Name: "sale"}
	f.Ingredients["Pasta"] = FridgeItem{Name: "Pasta"}

	assert.Equal(t, []string{"Pasta", "sale"}, f.Names())
	assert.Len(t, f.Items(), 2)
	assert.Equal(t, "Pasta", f.Items()[0].Name)
}

func ptr[T any](v T) *T {
	return &v
}
