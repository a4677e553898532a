package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTripPreservesOrderAndFields(t *testing.T) {
	items := []LineItem{
		{
			ProductID:      "quilmes-1l",
			Name:           "Quilmes 1L",
			Kind:           KindProduct,
			Unit:           UnitSingle,
			Quantity:       12,
			PackPrice:      dec("60"),
			UnitPrice:      dec("11.50"),
			PalletPrice:    dec("55"),
			UnitsPerPack:   6,
			PacksPerPallet: 48,
			FinalPrice:     dec("0"),
			BulkTiers: []BulkTier{
				{MinQuantity: 10, Price: dec("9.90")},
				{MinQuantity: 50, Price: dec("7")},
			},
		},
		{
			ProductID:      "quilmes-1l",
			Kind:           KindProduct,
			Unit:           UnitPallet,
			Quantity:       2,
			PalletPrice:    dec("1000"),
			PacksPerPallet: 20,
		},
		{
			ProductID:  "combo-fiesta",
			Name:       "Combo Fiesta",
			Kind:       KindCombo,
			Unit:       UnitSingle,
			Quantity:   1,
			FinalPrice: dec("150"),
		},
	}

	data := EncodeItems(items)
	got, err := DecodeItems(data)
	require.NoError(t, err)

	require.Len(t, got, len(items))
	for i := range items {
		assert.Equal(t, items[i].ProductID, got[i].ProductID)
		assert.Equal(t, items[i].Kind, got[i].Kind)
		assert.Equal(t, items[i].Unit, got[i].Unit)
		assert.Equal(t, items[i].Quantity, got[i].Quantity)
		assert.True(t, items[i].PackPrice.Equal(got[i].PackPrice))
		assert.True(t, items[i].UnitPrice.Equal(got[i].UnitPrice))
		assert.True(t, items[i].PalletPrice.Equal(got[i].PalletPrice))
		assert.Equal(t, items[i].UnitsPerPack, got[i].UnitsPerPack)
		assert.Equal(t, items[i].PacksPerPallet, got[i].PacksPerPallet)
		assert.True(t, items[i].FinalPrice.Equal(got[i].FinalPrice))
		require.Len(t, got[i].BulkTiers, len(items[i].BulkTiers))
		for j := range items[i].BulkTiers {
			assert.Equal(t, items[i].BulkTiers[j].MinQuantity, got[i].BulkTiers[j].MinQuantity)
			assert.True(t, items[i].BulkTiers[j].Price.Equal(got[i].BulkTiers[j].Price))
		}
	}

	// The decoded list must reprice identically.
	c := &Cart{items: got}
	assert.True(t, dec("40268.8").Equal(c.Subtotal()),
		"12x9.90 + 2x20000 + 1x150, got %s", c.Subtotal())
}

func TestCodec_EmptyList(t *testing.T) {
	got, err := DecodeItems(EncodeItems(nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCodec_MalformedPayload(t *testing.T) {
	for _, data := range []string{
		"",
		"{",
		`{"not":"an array"}`,
		`[{"quantity":"twelve"}]`,
	} {
		_, err := DecodeItems([]byte(data))
		assert.Error(t, err, "payload %q should not decode", data)
	}
}

func TestCodec_UnknownFieldsAreSkipped(t *testing.T) {
	data := []byte(`[{"productId":"p1","kind":"product","unit":"unit","quantity":2,"legacyField":{"a":1}}]`)

	got, err := DecodeItems(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ProductID)
	assert.Equal(t, 2, got[0].Quantity)
}
