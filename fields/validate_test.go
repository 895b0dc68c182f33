package fields

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/formfiller/types"
)

func pizzaFields(t *testing.T) *Descriptor {
	t.Helper()
	d, err := New(
		Field{Name: "name", Kind: String, Required: true, Description: "pizza name"},
		Field{Name: "size", Kind: Enum, Required: true, Options: []string{"S", "M", "L"}},
		Field{Name: "quantity", Kind: Integer, Min: Bound(1), Max: Bound(20), Default: 1},
		Field{Name: "delivery", Kind: Boolean},
	)
	require.NoError(t, err)
	return d
}

func TestNewRejectsBadDescriptors(t *testing.T) {
	t.Parallel()
	cases := map[string][]Field{
		"empty name":     {{Name: " "}},
		"duplicate":      {{Name: "a"}, {Name: "a"}},
		"enum no option": {{Name: "size", Kind: Enum}},
		"bad pattern":    {{Name: "code", Pattern: "("}},
		"bad default":    {{Name: "n", Kind: Integer, Default: "many"}},
	}
	for name, fs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(fs...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDescriptor))
		})
	}
}

func TestValidateMissingRequired(t *testing.T) {
	t.Parallel()
	d := pizzaFields(t)

	res := d.Validate(types.Record{"name": "Margherita"})

	assert.Equal(t, []string{"size"}, res.AskFor)
	assert.Empty(t, res.Errors)
	assert.Equal(t, types.StateIncomplete, res.State)
	assert.Equal(t, types.Record{"name": "Margherita", "quantity": int64(1)}, res.Record)
}

func TestValidateDropsInvalidValue(t *testing.T) {
	t.Parallel()
	d := pizzaFields(t)

	res := d.Validate(types.Record{"name": "Margherita", "size": "XL"})

	assert.Empty(t, res.AskFor)
	assert.Equal(t, []types.FieldError{{Field: "size", Message: "not a valid option"}}, res.Errors)
	assert.NotContains(t, res.Record, "size")
	assert.Equal(t, types.StateIncomplete, res.State)
}

func TestValidateCompleteAndNormalized(t *testing.T) {
	t.Parallel()
	d := pizzaFields(t)

	res := d.Validate(types.Record{
		"name":     "  Margherita ",
		"size":     "m",
		"quantity": "3",
		"delivery": "yes",
		"topping":  "pineapple",
	})

	assert.True(t, res.Complete())
	assert.Equal(t, types.StateComplete, res.State)
	assert.Equal(t, types.Record{
		"name":     "Margherita",
		"size":     "M",
		"quantity": int64(3),
		"delivery": true,
	}, res.Record)
}

func TestValidateRangeAndKinds(t *testing.T) {
	t.Parallel()
	d, err := New(
		Field{Name: "qty", Kind: Integer, Min: Bound(1), Max: Bound(5)},
		Field{Name: "price", Kind: Number},
		Field{Name: "when", Kind: Date},
		Field{Name: "email", Kind: Email},
		Field{Name: "tags", Kind: List, MaxLength: 2},
		Field{Name: "zip", Kind: String, Pattern: `^\d{5}$`},
	)
	require.NoError(t, err)

	res := d.Validate(types.Record{
		"qty":   2.5,
		"price": "12.50",
		"when":  "Jan 2, 2026",
		"email": "Mario <Mario@Example.com>",
		"tags":  []any{"a", "b", "c"},
		"zip":   "1234",
	})

	assert.Equal(t, types.Record{
		"price": 12.5,
		"when":  "2026-01-02",
		"email": "mario@example.com",
	}, res.Record)
	assert.Equal(t, []types.FieldError{
		{Field: "qty", Message: "must be a whole number"},
		{Field: "tags", Message: "must have at most 2 items"},
		{Field: "zip", Message: "has an invalid format"},
	}, res.Errors)

	res = d.Validate(types.Record{"qty": 9})
	assert.Equal(t, []types.FieldError{{Field: "qty", Message: "must be at most 5"}}, res.Errors)
}

func TestValidateMissingAndErrorsAreDisjoint(t *testing.T) {
	t.Parallel()
	d := pizzaFields(t)

	for _, candidate := range []types.Record{
		{},
		{"size": "XL"},
		{"name": nil, "size": "giant", "quantity": 0},
		{"name": "x", "size": "S"},
	} {
		res := d.Validate(candidate)
		for _, e := range res.Errors {
			assert.NotContains(t, res.AskFor, e.Field)
			assert.NotContains(t, res.Record, e.Field)
		}
		assert.Equal(t, res.Complete(), res.State == types.StateComplete)
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	t.Parallel()
	d := pizzaFields(t)
	candidate := types.Record{"name": "Diavola", "size": "XXL", "quantity": "2"}

	first := d.Validate(candidate)
	for range 5 {
		assert.Equal(t, first, d.Validate(candidate))
	}
	assert.Equal(t, "XXL", candidate["size"], "candidate must not be modified")
}

func TestStructureAndSchema(t *testing.T) {
	t.Parallel()
	d := pizzaFields(t)

	structure := d.Structure()
	assert.Contains(t, structure, "\"name\": // pizza name Must be of type `str` or `null`")
	assert.Contains(t, structure, "one of: S, M, L")

	s := d.JSONSchema()
	assert.Equal(t, "object", s.Type)
	size, ok := s.Properties.Get("size")
	require.True(t, ok)
	assert.Equal(t, []any{"S", "M", "L"}, size.Enum)

	assert.Contains(t, d.Table(), "quantity")
}

func TestValidateIntegerOutsideInt64Range(t *testing.T) {
	t.Parallel()
	d, err := New(Field{Name: "qty", Kind: Integer, Required: true, Max: Bound(100)})
	require.NoError(t, err)

	for _, raw := range []any{1e19, -1e19, "1e19", 9223372036854775808.0} {
		res := d.Validate(types.Record{"qty": raw})
		assert.Empty(t, res.Record, "value %v", raw)
		assert.Equal(t, []types.FieldError{{Field: "qty", Message: "must be a whole number"}}, res.Errors, "value %v", raw)
		assert.Equal(t, types.StateIncomplete, res.State)
	}

	res := d.Validate(types.Record{"qty": 1e2})
	assert.Equal(t, types.Record{"qty": int64(100)}, res.Record)
	assert.Equal(t, types.StateComplete, res.State)
}

func TestValidateAcceptsJSONNumbers(t *testing.T) {
	t.Parallel()
	d, err := New(
		Field{Name: "id", Kind: Integer},
		Field{Name: "price", Kind: Number},
		Field{Name: "gift", Kind: Boolean},
	)
	require.NoError(t, err)

	res := d.Validate(types.Record{
		"id":    json.Number("9007199254740993"),
		"price": json.Number("12.5"),
		"gift":  json.Number("1"),
	})

	assert.Empty(t, res.Errors)
	assert.Equal(t, types.Record{"id": int64(9007199254740993), "price": 12.5, "gift": true}, res.Record)

	res = d.Validate(types.Record{"id": json.Number("1e19")})
	assert.Equal(t, []types.FieldError{{Field: "id", Message: "must be a whole number"}}, res.Errors)
}
