package persistence

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxByCategoryColumn(t *testing.T) {
	t.Run("per category keys survive the roundtrip", func(t *testing.T) {
		taxes := map[string]decimal.Decimal{
			"general":     decimal.NewFromFloat(42),
			"electronics": decimal.NewFromFloat(30),
		}

		raw, err := marshalTaxByCategory(taxes)
		require.NoError(t, err)

		restored, err := unmarshalTaxByCategory(raw)
		require.NoError(t, err)
		require.Len(t, restored, 2)
		assert.True(t, restored["general"].Equal(decimal.NewFromInt(42)))
		assert.True(t, restored["electronics"].Equal(decimal.NewFromInt(30)))
		assert.NotContains(t, restored, "", "no synthetic empty-string category")
	})

	t.Run("null column reads as empty map", func(t *testing.T) {
		restored, err := unmarshalTaxByCategory(nil)
		require.NoError(t, err)
		require.NotNil(t, restored)
		assert.Empty(t, restored)
	})

	t.Run("nil map marshals as empty object", func(t *testing.T) {
		raw, err := marshalTaxByCategory(nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(raw))
	})
}
