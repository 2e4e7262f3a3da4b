package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/pkg/errors"

	"github.com/korjavin/ispirami/pkg/quantity"
)

// Ingredient is one ingredient line of a recipe
type Ingredient struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     *string  `json:"unit,omitempty"`
}

// NewIngredient builds an ingredient from a parsed amount
func NewIngredient(name string, amount quantity.Amount) Ingredient {
	q := amount.Quantity
	return Ingredient{
		Name:     name,
		Quantity: &q,
		Unit:     amount.UnitPtr(),
	}
}

// Amount returns the quantity and unit, using 1 for a missing quantity
func (i Ingredient) Amount() quantity.Amount {
	a := quantity.Amount{Quantity: 1}
	if i.Quantity != nil {
		a.Quantity = *i.Quantity
	}
	if i.Unit != nil {
		a.Unit = *i.Unit
	}
	return a
}

// UnmarshalJSON accepts both the object form and the positional
// [name], [name, quantity] and [name, quantity, unit] arrays written by
// older scrapes. A quantity given as text is run through quantity.Parse.
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		type plain Ingredient
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return errors.Wrap(err, "decode ingredient")
		}
		*i = Ingredient(p)
		return nil
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return errors.Wrap(err, "decode ingredient array")
	}
	if len(parts) == 0 || len(parts) > 3 {
		return errors.Errorf("ingredient array must have 1 to 3 elements, got %d", len(parts))
	}

	var out Ingredient
	if err := json.Unmarshal(parts[0], &out.Name); err != nil {
		return errors.Wrap(err, "decode ingredient name")
	}

	if len(parts) >= 2 {
		q, unit, err := decodeQuantity(parts[1])
		if err != nil {
			return err
		}
		out.Quantity = q
		out.Unit = unit
	}

	if len(parts) == 3 {
		var unit *string
		if err := json.Unmarshal(parts[2], &unit); err != nil {
			return errors.Wrap(err, "decode ingredient unit")
		}
		if unit != nil {
			out.Unit = unit
		}
	}

	*i = out
	return nil
}

// decodeQuantity reads a numeric, textual or null quantity element
func decodeQuantity(raw json.RawMessage) (*float64, *string, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(raw, []byte("null")):
		return nil, nil, nil
	case len(raw) > 0 && raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, nil, errors.Wrap(err, "decode ingredient quantity")
		}
		// a plain number stored as text, e.g. "2"
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && !math.IsInf(f, 0) {
			return &f, nil, nil
		}
		a := quantity.Parse(s)
		q := a.Quantity
		return &q, a.UnitPtr(), nil
	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, nil, errors.Wrap(err, "decode ingredient quantity")
		}
		return &f, nil, nil
	}
}
