package fridge

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/korjavin/ispirami/pkg/models"
)

// LoadFile reads a fridge from a JSON object mapping ingredient names to
// amounts, e.g. {"pasta": 500, "uova": "6", "sale": null}. Amounts are kept as text.
func LoadFile(path string) (*models.Fridge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(models.ErrNotFound, "fridge file %s", path)
		}
		return nil, errors.Wrap(err, "failed to read fridge file")
	}

	f, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "fridge file %s", path)
	}
	return f, nil
}

// Decode parses the fridge JSON mapping
func Decode(data []byte) (*models.Fridge, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode fridge")
	}

	f := models.NewFridge("", 0)
	for name, value := range raw {
		f.Ingredients[name] = models.FridgeItem{
			Name:     name,
			Quantity: amountText(value),
			AddedAt:  f.LastUpdated,
		}
	}
	return f, nil
}

func amountText(value json.RawMessage) string {
	value = bytes.TrimSpace(value)
	if bytes.Equal(value, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	return string(value)
}

// SaveFile writes the fridge back in the name -> amount mapping format.
// Numeric amounts are written as numbers.
func SaveFile(path string, f *models.Fridge) error {
	names := make([]string, 0, len(f.Ingredients))
	for name := range f.Ingredients {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]interface{}, len(names))
	for _, name := range names {
		q := strings.TrimSpace(f.Ingredients[name].Quantity)
		if n, err := strconv.ParseFloat(q, 64); err == nil {
			out[name] = n
		} else if q == "" {
			out[name] = nil
		} else {
			out[name] = q
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode fridge")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrap(err, "failed to write fridge file")
	}
	return nil
}

// Merge copies items into dst, stamping them with the current time
func Merge(dst *models.Fridge, items map[string]string) {
	now := time.Now()
	for name, q := range items {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		dst.Ingredients[name] = models.FridgeItem{Name: name, Quantity: q, AddedAt: now}
	}
	dst.LastUpdated = now
}

// Remove deletes the named items, comparing names case-insensitively, and
// returns the names that were present.
func Remove(f *models.Fridge, names []string) []string {
	var removed []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		for existing := range f.Ingredients {
			if strings.EqualFold(existing, name) {
				delete(f.Ingredients, existing)
				removed = append(removed, existing)
			}
		}
	}
	f.LastUpdated = time.Now()
	return removed
}
