package domain

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePreference(t *testing.T) {
	tests := []struct {
		name  string
		pref  Preference
		field string
	}{
		{"valid", Preference{Name: "basil", Kind: PreferenceLike}, ""},
		{"missing name", Preference{Kind: PreferenceLike}, "name"},
		{"missing kind", Preference{Name: "basil"}, "kind"},
		{"unknown kind", Preference{Name: "basil", Kind: "LOVE"}, "kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.pref)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidateDraftDates(t *testing.T) {
	qty := 1.0
	d := FoodItemDraft{Name: "Milk", TotalQuantity: &qty, WeightPerItem: &qty, Unit: "oz", Type: "Dairy"}

	assert.NoError(t, Validate(d))

	d.ExpirationDate = "2026-10-31"
	assert.NoError(t, Validate(d))

	d.ExpirationDate = "31/10/2026"
	var verr *ValidationError
	require.ErrorAs(t, Validate(d), &verr)
	assert.Equal(t, "expirationDate", verr.Field)
	assert.Equal(t, "invalid expirationDate: must be a date formatted YYYY-MM-DD", verr.Error())
}

func TestNewValidatorRegistersIsoDate(t *testing.T) {
	var v *validator.Validate
	require.NotPanics(t, func() { v = newValidator() })

	assert.NoError(t, v.Var("", "isodate"))
	assert.NoError(t, v.Var("2026-10-15", "isodate"))
	assert.Error(t, v.Var("2026-13-01", "isodate"))
	assert.Error(t, v.Var("15/10/2026", "isodate"))
}

func TestPatchApply(t *testing.T) {
	item := FoodItem{ID: 7, Name: "Milk", TotalQuantity: 1, WeightPerItem: 32, Unit: "oz", Type: "Dairy", ExpirationDate: "2026-10-31"}
	qty := 2.0
	empty := ""

	got := FoodItemPatch{TotalQuantity: &qty, ExpirationDate: &empty}.Apply(item)

	want := item
	want.TotalQuantity = 2
	want.ExpirationDate = ""
	assert.Equal(t, want, got)
}

func TestErrorKinds(t *testing.T) {
	nf := &NotFoundError{ID: 3}
	assert.ErrorIs(t, nf, ErrNotFound)
	assert.Equal(t, "food item 3 not found", nf.Error())

	up := &UpstreamError{Provider: "openai", StatusCode: 401, Message: "bad key"}
	assert.Equal(t, "openai returned status 401: bad key", up.Error())

	se := &SchemaError{Reason: "missing recipes"}
	assert.Equal(t, "malformed recipe response: missing recipes", se.Error())
}
