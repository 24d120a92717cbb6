package cart

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageKey(t *testing.T) {
	assert.Equal(t, "mall_cart_guest", StorageKey(DefaultKeyPrefix, "guest"))
	assert.Equal(t, "mall_cart_u-1", StorageKey(DefaultKeyPrefix, "u-1"))
}

func TestEncodeItemsWritesCamelCaseNumbers(t *testing.T) {
	payload, err := encodeItems([]LineItem{{
		ProductID: "p1",
		Title:     "Shoe",
		UnitPrice: decimal.RequireFromString("9.99"),
		Currency:  "USD",
		ShopName:  "Shop",
		Quantity:  2,
	}})
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "p1", raw[0]["productId"])
	assert.Equal(t, 9.99, raw[0]["unitPrice"])
	assert.Equal(t, float64(2), raw[0]["quantity"])
	assert.Equal(t, "", raw[0]["imageUrl"])
}

func TestEncodeNilItems(t *testing.T) {
	payload, err := encodeItems(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", payload)
}

func TestDecodeItemsRoundTrip(t *testing.T) {
	in := []LineItem{
		{ProductID: "a", Title: "A", UnitPrice: decimal.RequireFromString("1.10"), Currency: "USD", ShopName: "Shop", Quantity: 1},
		{ProductID: "b", Title: "B", UnitPrice: decimal.NewFromInt(7), Currency: "EUR", ImageURL: "b.png", ShopID: "s", ShopName: "Bees", Quantity: 3},
	}
	payload, err := encodeItems(in)
	require.NoError(t, err)

	out, err := decodeItems(payload)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for i := range in {
		assert.True(t, in[i].UnitPrice.Equal(out[i].UnitPrice))
		out[i].UnitPrice = in[i].UnitPrice
	}
	assert.Equal(t, in, out)
}

func TestDecodeItemsRejectsGarbage(t *testing.T) {
	_, err := decodeItems("not json{")
	assert.Error(t, err)
}

func TestDecodeItemsClampsQuantities(t *testing.T) {
	out, err := decodeItems(`[{"productId":"a","quantity":-2},{"productId":"b","quantity":2.7},{"productId":"c"}]`)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, 1, out[0].Quantity)
	assert.Equal(t, 2, out[1].Quantity)
	assert.Equal(t, 1, out[2].Quantity)
}
