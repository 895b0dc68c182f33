package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/formfiller/types"
)

func TestMergeOverwritesOnCollision(t *testing.T) {
	t.Parallel()
	record := types.Record{"name": "Margherita", "size": "S"}

	merged, err := Merge(record, types.Record{"size": "M", "phone": "123"})

	require.NoError(t, err)
	assert.Equal(t, types.Record{"name": "Margherita", "size": "M", "phone": "123"}, merged)
	assert.Equal(t, "S", record["size"])
}

func TestMergeEmptyUpdate(t *testing.T) {
	t.Parallel()
	merged, err := Merge(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, types.Record{}, merged)

	merged, err = Merge(types.Record{"a": "b"}, types.Record{})
	require.NoError(t, err)
	assert.Equal(t, types.Record{"a": "b"}, merged)
}

func TestMergeKeepsLargeIntegers(t *testing.T) {
	t.Parallel()
	record := types.Record{"id": int64(9007199254740993), "price": 12.5}

	merged, err := Merge(record, types.Record{"name": "x"})

	require.NoError(t, err)
	require.IsType(t, json.Number(""), merged["id"])
	id, err := merged["id"].(json.Number).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), id)
	assert.Equal(t, json.Number("12.5"), merged["price"])
	assert.Equal(t, "x", merged["name"])
}

func TestChanged(t *testing.T) {
	t.Parallel()
	keys, err := Changed(
		types.Record{"name": "Margherita", "size": "S"},
		types.Record{"name": "Margherita", "size": "M", "phone": "123"},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"phone", "size"}, keys)

	keys, err = Changed(types.Record{"a": 1.0}, types.Record{"a": 1.0})
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestUnknown(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"pineapple", "topping"},
		Unknown(types.Record{"name": "x", "topping": "y", "pineapple": true}, []string{"name", "size"}))
	assert.Empty(t, Unknown(types.Record{"name": "x"}, []string{"name"}))
}
